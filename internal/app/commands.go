package app

import (
	"fintrack/internal/core"
	"fintrack/internal/transfer"
)

// Command is a user intent handled by Session.Dispatch.
type Command interface {
	commandName() string
}

type (
	// Refresh recomputes the view without changing anything.
	Refresh struct{}

	CreateTransaction struct {
		Input core.TransactionInput
	}

	EditTransaction struct {
		ID    string
		Input core.TransactionInput
	}

	DeleteTransaction struct {
		ID string
	}

	SetSearchQuery struct {
		Query string
	}

	// SetSort toggles the sort on Key and reorders the ledger.
	SetSort struct {
		Key string
	}

	ImportFile struct {
		Format  transfer.Format
		Content []byte
	}

	Export struct {
		Format transfer.Format
	}

	SaveSettings struct {
		Settings core.Settings
	}
)

func (Refresh) commandName() string           { return "refresh" }
func (CreateTransaction) commandName() string { return "create_transaction" }
func (EditTransaction) commandName() string   { return "edit_transaction" }
func (DeleteTransaction) commandName() string { return "delete_transaction" }
func (SetSearchQuery) commandName() string    { return "set_search_query" }
func (SetSort) commandName() string           { return "set_sort" }
func (ImportFile) commandName() string        { return "import_file" }
func (Export) commandName() string            { return "export" }
func (SaveSettings) commandName() string      { return "save_settings" }
