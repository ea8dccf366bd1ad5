// Package google mirrors group ledgers to a Google Spreadsheet, one sheet
// tab per group. The mirror is a read-only convenience view; the SQLite
// snapshot stays the source of truth.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"divvy/internal/core"
	"divvy/internal/engine"
	ports "divvy/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Ensure interface conformance
var (
	_ ports.GroupMirror  = (*Client)(nil)
	_ ports.GroupRemover = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// MirrorGroup rewrites the group's tab: members header, expense rows, then
// the owes list. The tab is created on first mirror.
func (c *Client) MirrorGroup(ctx context.Context, g core.Group, expenses []core.Expense, owes []engine.Obligation) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	if err := c.ensureSheet(ctx, g.Title); err != nil {
		return fmt.Errorf("ensure sheet %q: %w", g.Title, err)
	}

	values := [][]any{
		{"Group", g.Title, "Members", strings.Join(g.Members, ", ")},
		{},
		{"Expense", "Amount", "Paid by", "Split with"},
	}
	for _, e := range expenses {
		values = append(values, []any{
			e.Title, e.Amount.String(), e.PaidBy, strings.Join(e.SplitWith, ", "),
		})
	}
	values = append(values, []any{}, []any{"Owes", "Owed to", "Amount", "For"})
	for _, o := range owes {
		values = append(values, []any{o.Owes, o.OwedTo, o.Amount.String(), o.ForExpense})
	}

	clearRange := fmt.Sprintf("%s!A:Z", g.Title)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", g.Title, err)
	}

	writeRange := fmt.Sprintf("%s!A1", g.Title)
	vr := &gsheet.ValueRange{Values: values}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update sheet %s: %w", g.Title, err)
	}

	slog.InfoContext(ctx, "Group mirrored to spreadsheet",
		"group", g.Title,
		"expenses", len(expenses),
		"obligations", len(owes))
	return nil
}

// RemoveGroup deletes the group's tab if present.
func (c *Client) RemoveGroup(ctx context.Context, groupTitle string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	sheetID, ok, err := c.findSheet(ctx, groupTitle)
	if err != nil {
		return fmt.Errorf("find sheet %q: %w", groupTitle, err)
	}
	if !ok {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{
			{DeleteSheet: &gsheet.DeleteSheetRequest{SheetId: sheetID}},
		},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete sheet %s: %w", groupTitle, err)
	}

	slog.InfoContext(ctx, "Group tab removed from spreadsheet", "group", groupTitle)
	return nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	_, ok, err := c.findSheet(ctx, title)
	if err != nil || ok {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{
			{AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			}},
		},
	}
	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	return nil
}

func (c *Client) findSheet(ctx context.Context, title string) (int64, bool, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return sh.Properties.SheetId, true, nil
		}
	}
	return 0, false, nil
}
