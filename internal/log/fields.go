package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldDescription   = "description"
	FieldAmount        = "amount"
	FieldCategory      = "category"
	FieldDate          = "date"
	FieldCount         = "count"
	FieldSkipped       = "skipped"
	FieldRevision      = "revision"
	FieldStorageKey    = "storage_key"
	FieldFormat        = "format"
	FieldSortKey       = "sort_key"
	FieldAscending     = "ascending"
	FieldQuery         = "query"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentSettings = "settings"
	ComponentStorage  = "storage"
	ComponentTransfer = "transfer"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentSheets   = "sheets"
	ComponentCache    = "cache"
	ComponentBackend  = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpFilter   = "filter"
	OpSort     = "sort"
	OpImport   = "import"
	OpExport   = "export"
	OpLoad     = "load"
	OpSave     = "save"
	OpMirror   = "mirror"
	OpPublish  = "publish"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds the error message; a nil error adds nothing.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithTransaction adds the fields identifying a ledger entry.
func (f LogFields) WithTransaction(id, category, amount string) LogFields {
	f[FieldTransactionID] = id
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

func (f LogFields) WithRevision(rev uint64) LogFields {
	f[FieldRevision] = rev
	return f
}

func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
	return f
}

// ToSlice converts LogFields to alternating key/value arguments for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
