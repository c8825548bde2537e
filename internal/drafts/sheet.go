// Package drafts keeps a log of generated post variants in a Google Sheet so
// they can be reviewed and scheduled outside the CLI.
package drafts

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"snappost/internal/logger"
	"snappost/pkg/models"
)

// DefaultSheetName is the tab drafts are appended to.
const DefaultSheetName = "Drafts"

var (
	spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

	headers = []interface{}{
		"Created", "Source", "Book", "Author", "Mode", "Tone", "Characters", "Text", "Excerpt ID",
	}
)

// columnRange spans the header columns A to I.
const columnRange = "A:I"

// SheetLog appends drafts to a spreadsheet.
type SheetLog struct {
	sheetsService *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// Draft is one generated variant with the context it was generated from.
type Draft struct {
	CreatedAt time.Time
	Source    string
	Book      string
	Author    string
	Mode      string
	ExcerptID string
	Variant   models.Variant
}

// NewSheetLog creates a log for the spreadsheet at sheetURL. Credentials come
// from GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS.
func NewSheetLog(ctx context.Context, sheetURL string) (*SheetLog, error) {
	const op = "NewSheetLog"

	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to extract spreadsheet ID: %w", op, err)
	}

	var creds []byte
	if credsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsFile != "" {
		creds, err = os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read credentials file: %w", op, err)
		}
	} else if credsJSON := os.Getenv("GOOGLE_CREDENTIALS"); credsJSON != "" {
		creds = []byte(credsJSON)
	} else {
		return nil, fmt.Errorf("%s: neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set", op)
	}

	config, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheets service: %w", op, err)
	}

	return NewSheetLogWithService(sheetsService, spreadsheetID), nil
}

// NewSheetLogWithService creates a log on an existing Sheets service.
func NewSheetLogWithService(sheetsService *sheets.Service, spreadsheetID string) *SheetLog {
	return &SheetLog{
		sheetsService: sheetsService,
		spreadsheetID: spreadsheetID,
		log:           logger.WithComponent("drafts"),
	}
}

// FromVariants pairs each variant with the excerpt and book context.
func FromVariants(excerpt *models.Excerpt, book, author, mode string, posts []models.Variant) []Draft {
	drafts := make([]Draft, 0, len(posts))
	now := time.Now()
	for _, post := range posts {
		d := Draft{
			CreatedAt: now,
			Book:      book,
			Author:    author,
			Mode:      mode,
			Variant:   post,
		}
		if excerpt != nil {
			d.ExcerptID = excerpt.ID
			if excerpt.SourceHint != nil {
				d.Source = *excerpt.SourceHint
			}
		}
		drafts = append(drafts, d)
	}
	return drafts
}

// Append writes drafts to sheetName, creating the tab and header row if needed.
func (s *SheetLog) Append(ctx context.Context, sheetName string, drafts []Draft) error {
	const op = "SheetLog.Append"

	if len(drafts) == 0 {
		return nil
	}
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	if err := s.ensureSheetWithHeaders(ctx, sheetName); err != nil {
		return fmt.Errorf("%s: failed to ensure sheet exists: %w", op, err)
	}

	values := make([][]interface{}, 0, len(drafts))
	for _, d := range drafts {
		values = append(values, rowValues(d))
	}

	_, err := s.sheetsService.Spreadsheets.Values.Append(
		s.spreadsheetID,
		sheetName+"!"+columnRange,
		&sheets.ValueRange{Values: values},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to append values to sheet: %w", op, err)
	}

	s.log.Info().
		Str("sheet", sheetName).
		Int("rows_written", len(values)).
		Msg("Appended drafts to Google Sheet")

	return nil
}

func rowValues(d Draft) []interface{} {
	return []interface{}{
		d.CreatedAt.UTC().Format(time.RFC3339),
		d.Source,
		d.Book,
		d.Author,
		d.Mode,
		d.Variant.Tone.DisplayName(),
		d.Variant.CharacterCount(),
		d.Variant.Text,
		d.ExcerptID,
	}
}

func (s *SheetLog) ensureSheetWithHeaders(ctx context.Context, sheetName string) error {
	const op = "ensureSheetWithHeaders"

	spreadsheet, err := s.sheetsService.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get spreadsheet: %w", op, err)
	}

	exists := false
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == sheetName {
			exists = true
			break
		}
	}

	if !exists {
		s.log.Info().Str("sheet", sheetName).Msg("Creating new sheet")

		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{
				{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: sheetName}}},
			},
		}
		if _, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("%s: failed to create sheet: %w", op, err)
		}
	}

	headerRange := sheetName + "!A1:I1"
	resp, err := s.sheetsService.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get headers: %w", op, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	_, err = s.sheetsService.Spreadsheets.Values.Update(
		s.spreadsheetID,
		headerRange,
		&sheets.ValueRange{Values: [][]interface{}{headers}},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to add headers: %w", op, err)
	}
	return nil
}

func extractSpreadsheetID(url string) (string, error) {
	matches := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Google Sheets URL format")
	}
	return matches[1], nil
}
