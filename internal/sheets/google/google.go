package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/log"
	ports "fintrack/internal/sheets"
)

// Ensure interface conformance
var _ ports.Mirror = (*Client)(nil)

// DefaultSheetName is used when no sheet name is configured.
const DefaultSheetName = "Transactions"

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// valuesAPI is the subset of the Sheets values endpoint the client uses.
type valuesAPI interface {
	Get(ctx context.Context, rng string) ([][]any, error)
	Clear(ctx context.Context, rng string) error
	Update(ctx context.Context, rng string, values [][]any) error
}

// Client mirrors the ledger into one sheet of a spreadsheet.
type Client struct {
	values    valuesAPI
	sheetName string
	logger    *log.Logger
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = log.Discard()
	}
	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(&serviceValues{svc: svc, spreadsheetID: cfg.SpreadsheetID}, cfg.SheetName, logger), nil
}

func newClient(values valuesAPI, sheetName string, logger *log.Logger) *Client {
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{values: values, sheetName: sheetName, logger: logger.WithComponent(log.ComponentSheets)}
}

// newSheetsService initializes a Sheets Service from inline JSON, a file, or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Creating Google Sheets service",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// MirrorLedger rewrites the sheet with the header row and one row per
// transaction. Nothing is written when the sheet already matches.
func (c *Client) MirrorLedger(ctx context.Context, l core.Ledger) error {
	current, err := c.ReadLedger(ctx)
	if err == nil && sameLedger(current, l) {
		c.logger.DebugContext(ctx, "Sheet already up to date", log.FieldCount, len(l))
		return nil
	}
	if err != nil {
		c.logger.WarnContext(ctx, "Could not read sheet before mirroring, rewriting", log.FieldError, err)
	}

	if err := c.values.Clear(ctx, a1Range(c.sheetName, "A:G")); err != nil {
		return fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}
	values := ledgerValues(l)
	rng := a1Range(c.sheetName, fmt.Sprintf("A1:G%d", len(values)))
	if err := c.values.Update(ctx, rng, values); err != nil {
		return fmt.Errorf("write sheet %s: %w", c.sheetName, err)
	}

	c.logger.InfoContext(ctx, "Ledger mirrored to sheet",
		log.FieldOperation, log.OpMirror, log.FieldCount, len(l), "sheet", c.sheetName)
	return nil
}

// ReadLedger parses the rows currently in the sheet.
func (c *Client) ReadLedger(ctx context.Context) (core.Ledger, error) {
	values, err := c.values.Get(ctx, a1Range(c.sheetName, "A:G"))
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", c.sheetName, err)
	}
	return parseLedger(values)
}

// serviceValues adapts gsheet.Service to valuesAPI.
type serviceValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (s *serviceValues) Get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *serviceValues) Clear(ctx context.Context, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// Update writes values verbatim so dates and ids read back unchanged.
func (s *serviceValues) Update(ctx context.Context, rng string, values [][]any) error {
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}
