package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spendsheet/spendsheet/internal/common"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// readRange covers every column any of our sheet layouts uses.
const readRange = "A:Z"

// Service is the spreadsheet gateway. It holds the service-identity
// principal used for all row-level reads and writes; delegated-token
// clients are built per call for file search and creation only.
//
// Initialization failure is not fatal: the service comes up unavailable and
// every operation degrades per the local-mode rules.
type Service struct {
	logger    *slog.Logger
	sheetsSvc *sheets.Service
	driveSvc  *drive.Service
	saEmail   string
	cfg       Config
	available bool
}

// NewService initializes the service-identity clients. On any credential or
// client failure it logs and returns a Service that reports unavailable,
// so callers fall back to local-only mode instead of crashing.
func NewService(ctx context.Context, cfg Config, logger *slog.Logger) *Service {
	s := &Service{cfg: cfg, logger: logger}

	if err := cfg.Validate(); err != nil {
		logger.Error("sheets service disabled", "error", err)
		return s
	}

	jsonKey, err := cfg.serviceAccountKey()
	if err != nil {
		logger.Error("sheets service disabled", "error", err)
		return s
	}

	var keyInfo struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(jsonKey, &keyInfo); err != nil {
		logger.Error("sheets service disabled: unreadable service account key", "error", err)
		return s
	}
	s.saEmail = keyInfo.ClientEmail

	jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope, drive.DriveFileScope)
	if err != nil {
		logger.Error("sheets service disabled: unable to parse service account key", "error", err)
		return s
	}

	httpClient := oauth2.NewClient(ctx, jwtConfig.TokenSource(ctx))

	sheetsSvc, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		logger.Error("sheets service disabled: unable to create sheets client", "error", err)
		return s
	}

	driveSvc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		logger.Error("sheets service disabled: unable to create drive client", "error", err)
		return s
	}

	s.sheetsSvc = sheetsSvc
	s.driveSvc = driveSvc
	s.available = true
	logger.Info("sheets service initialized", "service_account", s.saEmail)

	return s
}

// serviceAccountKey resolves the key bytes from inline JSON or a file path.
func (c *Config) serviceAccountKey() ([]byte, error) {
	if c.ServiceAccountJSON != "" {
		return []byte(c.ServiceAccountJSON), nil
	}
	if c.ServiceAccountPath == "" {
		return nil, fmt.Errorf("%w: no service account credentials", common.ErrMissingConfig)
	}
	jsonKey, err := os.ReadFile(c.ServiceAccountPath) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("unable to read service account key file: %w", err)
	}
	return jsonKey, nil
}

// Available reports whether the service identity was initialized.
func (s *Service) Available() bool {
	return s.available
}

// ServiceAccountEmail returns the service identity's email address, used as
// the grantee when delegated-token file creation shares access back.
func (s *Service) ServiceAccountEmail() string {
	return s.saEmail
}

// userDrive builds a Drive client acting as the end user via a delegated
// access token.
func (s *Service) userDrive(ctx context.Context, accessToken string) (*drive.Service, error) {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	httpClient := oauth2.NewClient(ctx, tokenSource)

	driveSvc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create user drive client: %w", err)
	}
	return driveSvc, nil
}

// opCtx bounds a single remote call.
func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.RequestTimeout)
}

// ReadRows returns the full contents of a sheet as string tuples, header
// row included. Cell values are untyped in the spreadsheet; everything is
// surfaced as a string and parsed defensively by the caller.
func (s *Service) ReadRows(ctx context.Context, sheetID string) ([][]string, error) {
	if !s.available {
		return nil, common.ErrSheetsUnavailable
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	resp, err := s.sheetsSvc.Spreadsheets.Values.Get(sheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetID, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ReadRecords returns all data rows keyed by the header row. Cells past the
// header width are dropped; missing trailing cells read as empty strings.
func (s *Service) ReadRecords(ctx context.Context, sheetID string) ([]map[string]string, error) {
	rows, err := s.ReadRows(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(row) {
				record[key] = row[i]
			} else {
				record[key] = ""
			}
		}
		records = append(records, record)
	}

	return records, nil
}

// AppendRow appends a single row after the last data row.
func (s *Service) AppendRow(ctx context.Context, sheetID string, row []any) error {
	return s.AppendRows(ctx, sheetID, [][]any{row})
}

// AppendRows appends rows after the last data row.
func (s *Service) AppendRows(ctx context.Context, sheetID string, rows [][]any) error {
	if !s.available {
		return common.ErrSheetsUnavailable
	}
	if len(rows) == 0 {
		return nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	valueRange := &sheets.ValueRange{Values: rows}
	_, err := s.sheetsSvc.Spreadsheets.Values.Append(sheetID, "A1", valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to sheet %s: %w", sheetID, err)
	}

	return nil
}

// UpdateCell rewrites a single cell. Row and column are 1-based, matching
// the spreadsheet UI.
func (s *Service) UpdateCell(ctx context.Context, sheetID string, row, col int64, value string) error {
	if !s.available {
		return common.ErrSheetsUnavailable
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rangeStr := fmt.Sprintf("%s%d", columnName(col), row)
	valueRange := &sheets.ValueRange{Values: [][]any{{value}}}
	_, err := s.sheetsSvc.Spreadsheets.Values.Update(sheetID, rangeStr, valueRange).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update cell %s of sheet %s: %w", rangeStr, sheetID, err)
	}

	return nil
}

// writeHeader rewrites the header row in place. Idempotent.
func (s *Service) writeHeader(ctx context.Context, sheetID string, header []any) error {
	if !s.available {
		return common.ErrSheetsUnavailable
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rangeStr := fmt.Sprintf("A1:%s1", columnName(int64(len(header))))
	valueRange := &sheets.ValueRange{Values: [][]any{header}}
	_, err := s.sheetsSvc.Spreadsheets.Values.Update(sheetID, rangeStr, valueRange).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write header of sheet %s: %w", sheetID, err)
	}

	return nil
}

// columnName converts a 1-based column number to A1 letters.
func columnName(col int64) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}
