package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/spendsheet/spendsheet/internal/common"
	"github.com/spendsheet/spendsheet/internal/model"
	"google.golang.org/api/drive/v3"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// SheetKind selects which pair of spreadsheets an operation targets.
type SheetKind int

const (
	// KindExpense covers the categories and transactions sheets.
	KindExpense SheetKind = iota
	// KindIncome covers the income-categories and cashflows sheets.
	KindIncome
)

// SheetPair holds the two spreadsheet ids of one kind: the categories-type
// sheet and the entries-type sheet.
type SheetPair struct {
	Categories string
	Entries    string
}

// LocalSheetPair is the sentinel pair for users without spreadsheet backing.
var LocalSheetPair = SheetPair{Categories: model.LocalSheetID, Entries: model.LocalSheetID}

// titles returns the deterministic spreadsheet titles for a user. The
// naming convention is the only linkage between a user and their files.
func (k SheetKind) titles(userID string) (categories, entries string) {
	switch k {
	case KindIncome:
		return fmt.Sprintf("%s - Income Categories", userID), fmt.Sprintf("%s - Cashflows", userID)
	default:
		return fmt.Sprintf("%s - Categories", userID), fmt.Sprintf("%s - Expenses", userID)
	}
}

func (k SheetKind) String() string {
	if k == KindIncome {
		return "income"
	}
	return "expense"
}

// Locate finds a user's existing spreadsheets of one kind by title. With a
// delegated token it queries the user's own file space; otherwise it
// enumerates every spreadsheet visible to the service identity. Both sheets
// of the kind must be found; a partial match is treated as not-found so the
// caller recreates the full pair. Returns (nil, nil) when not found.
func (s *Service) Locate(ctx context.Context, userID, accessToken string, kind SheetKind) (*SheetPair, error) {
	if !s.available {
		return nil, common.ErrSheetsUnavailable
	}

	categoriesTitle, entriesTitle := kind.titles(userID)

	var found map[string]string
	var err error
	if accessToken != "" {
		found, err = s.findInUserSpace(ctx, accessToken, categoriesTitle, entriesTitle)
	} else {
		found, err = s.findInServiceSpace(ctx, categoriesTitle, entriesTitle)
	}
	if err != nil {
		return nil, err
	}

	categoriesID, okCategories := found[categoriesTitle]
	entriesID, okEntries := found[entriesTitle]
	if !okCategories || !okEntries {
		s.logger.Debug("sheets not located",
			"user_id", userID,
			"kind", kind.String(),
			"matched", len(found))
		return nil, nil
	}

	return &SheetPair{Categories: categoriesID, Entries: entriesID}, nil
}

// findInUserSpace issues one Drive query against the delegated principal's
// file space, filtered by exact titles, spreadsheet mime type and trash
// state.
func (s *Service) findInUserSpace(ctx context.Context, accessToken, titleA, titleB string) (map[string]string, error) {
	userDrive, err := s.userDrive(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("(name='%s' or name='%s') and mimeType='%s' and trashed=false",
		escapeQueryString(titleA), escapeQueryString(titleB), spreadsheetMimeType)

	found := make(map[string]string)
	pageToken := ""
	for {
		callCtx, cancel := s.opCtx(ctx)
		call := userDrive.Files.List().Q(query).Fields("nextPageToken, files(id, name)").Context(callCtx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to list user files: %w", err)
		}

		for _, file := range resp.Files {
			found[file.Name] = file.Id
		}

		if resp.NextPageToken == "" {
			return found, nil
		}
		pageToken = resp.NextPageToken
	}
}

// findInServiceSpace enumerates every spreadsheet the service identity can
// see and matches titles exactly. Linear in the total number of sheets the
// identity owns; used only when no delegated token is available.
func (s *Service) findInServiceSpace(ctx context.Context, titles ...string) (map[string]string, error) {
	wanted := make(map[string]bool, len(titles))
	for _, title := range titles {
		wanted[title] = true
	}

	query := fmt.Sprintf("mimeType='%s' and trashed=false", spreadsheetMimeType)

	found := make(map[string]string)
	pageToken := ""
	for {
		callCtx, cancel := s.opCtx(ctx)
		call := s.driveSvc.Files.List().Q(query).Fields("nextPageToken, files(id, name)").Context(callCtx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to list service account files: %w", err)
		}

		for _, file := range resp.Files {
			if wanted[file.Name] {
				found[file.Name] = file.Id
			}
		}

		if len(found) == len(wanted) || resp.NextPageToken == "" {
			return found, nil
		}
		pageToken = resp.NextPageToken
	}
}

// grantServiceAccess shares a delegated-token-created file with the service
// identity so background propagation and hydration keep working when no
// live token is around. Failure is logged and non-fatal: later service
// identity calls against the file will simply fail as unavailable.
func (s *Service) grantServiceAccess(ctx context.Context, userDrive *drive.Service, fileID string) {
	if s.saEmail == "" {
		return
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	permission := &drive.Permission{
		Type:         "user",
		Role:         "writer",
		EmailAddress: s.saEmail,
	}
	_, err := userDrive.Permissions.Create(fileID, permission).Context(ctx).Do()
	if err != nil {
		s.logger.Warn("could not grant service account access",
			"file_id", fileID,
			"error", err)
		return
	}

	s.logger.Info("granted service account access", "file_id", fileID)
}

// escapeQueryString escapes single quotes for a Drive query literal.
func escapeQueryString(s string) string {
	return strings.ReplaceAll(s, `'`, `\'`)
}
