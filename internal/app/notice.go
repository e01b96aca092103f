package app

// NoticeKind classifies a message for the notification sink.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeWarning NoticeKind = "warning"
	NoticeInfo    NoticeKind = "info"
)

// Notice is a user-facing message produced by a command.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Messages shown to the user.
const (
	MsgTransactionAdded   = "Transaction added!"
	MsgTransactionUpdated = "Transaction updated!"
	MsgTransactionDeleted = "Transaction deleted."
	MsgSettingsSaved      = "Settings saved!"
	MsgImported           = "Transactions imported successfully!"
	MsgNothingImported    = "No transactions were imported."
	MsgImportErrorPrefix  = "Error reading JSON: "
	MsgCSVErrorPrefix     = "Error reading CSV: "
	MsgNothingToExport    = "No transactions to export."
	MsgFixErrors          = "Please fix the highlighted fields."
	MsgNotFound           = "Transaction not found."
)

func success(msg string) *Notice { return &Notice{Kind: NoticeSuccess, Message: msg} }
func failure(msg string) *Notice { return &Notice{Kind: NoticeError, Message: msg} }
func warning(msg string) *Notice { return &Notice{Kind: NoticeWarning, Message: msg} }
