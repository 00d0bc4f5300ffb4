package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

// GetOrCreateSheets returns the spreadsheet pair of the given kind for a
// user, locating existing sheets first and creating (and seeding) a fresh
// pair otherwise. Every failure path degrades to the local sentinel pair:
// the user keeps working cache-only and a later login retries.
func (s *Service) GetOrCreateSheets(ctx context.Context, userID, email, accessToken string, kind SheetKind) SheetPair {
	if !s.available {
		s.logger.Warn("sheets unavailable, falling back to local-only mode", "user_id", userID)
		return LocalSheetPair
	}

	pair, err := s.Locate(ctx, userID, accessToken, kind)
	if err != nil {
		s.logger.Error("sheet lookup failed, falling back to local-only mode",
			"user_id", userID,
			"kind", kind.String(),
			"error", err)
		return LocalSheetPair
	}
	if pair != nil {
		s.logger.Info("found existing sheets",
			"user_id", userID,
			"kind", kind.String())
		return *pair
	}

	s.logger.Info("creating new sheets",
		"user_id", userID,
		"email", email,
		"kind", kind.String(),
		"delegated", accessToken != "")

	created, err := s.createSheets(ctx, userID, accessToken, kind)
	if err != nil {
		s.logger.Error("sheet creation failed, falling back to local-only mode",
			"user_id", userID,
			"kind", kind.String(),
			"error", err)
		return LocalSheetPair
	}

	// Seeding failures leave usable, empty sheets behind; the sheet ids
	// are already committed at this point.
	if err := s.initializeSheets(ctx, *created, kind); err != nil {
		s.logger.Error("sheet seeding failed",
			"user_id", userID,
			"kind", kind.String(),
			"error", err)
	}

	return *created
}

// createSheets creates both spreadsheets of a kind. With a delegated token
// the files land in the user's own file space and the service identity is
// granted writer access; otherwise they are created directly under the
// service identity.
func (s *Service) createSheets(ctx context.Context, userID, accessToken string, kind SheetKind) (*SheetPair, error) {
	categoriesTitle, entriesTitle := kind.titles(userID)

	if accessToken == "" {
		categoriesID, err := s.createServiceSpreadsheet(ctx, categoriesTitle)
		if err != nil {
			return nil, err
		}
		entriesID, err := s.createServiceSpreadsheet(ctx, entriesTitle)
		if err != nil {
			return nil, err
		}
		return &SheetPair{Categories: categoriesID, Entries: entriesID}, nil
	}

	userDrive, err := s.userDrive(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	categoriesID, err := s.createUserSpreadsheet(ctx, userDrive, categoriesTitle)
	if err != nil {
		return nil, err
	}
	entriesID, err := s.createUserSpreadsheet(ctx, userDrive, entriesTitle)
	if err != nil {
		return nil, err
	}

	s.grantServiceAccess(ctx, userDrive, categoriesID)
	s.grantServiceAccess(ctx, userDrive, entriesID)

	return &SheetPair{Categories: categoriesID, Entries: entriesID}, nil
}

// createServiceSpreadsheet creates a spreadsheet owned by the service
// identity.
func (s *Service) createServiceSpreadsheet(ctx context.Context, title string) (string, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}
	created, err := s.sheetsSvc.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet %q: %w", title, err)
	}

	s.logger.Info("created spreadsheet", "title", title, "id", created.SpreadsheetId)
	return created.SpreadsheetId, nil
}

// createUserSpreadsheet creates a spreadsheet in the delegated principal's
// file space, which keeps the file under the user's own storage quota.
func (s *Service) createUserSpreadsheet(ctx context.Context, userDrive *drive.Service, title string) (string, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	file := &drive.File{
		Name:     title,
		MimeType: spreadsheetMimeType,
	}
	created, err := userDrive.Files.Create(file).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet %q in user space: %w", title, err)
	}

	s.logger.Info("created spreadsheet in user space", "title", title, "id", created.Id)
	return created.Id, nil
}

// initializeSheets writes headers into a freshly created pair and seeds the
// default taxonomy. Only called once per pair, at creation time: header
// writes are guarded, seeding appends are not.
func (s *Service) initializeSheets(ctx context.Context, pair SheetPair, kind SheetKind) error {
	switch kind {
	case KindIncome:
		if err := s.seedIncomeCategories(ctx, pair.Categories); err != nil {
			return err
		}
		return s.ensureHeader(ctx, pair.Entries, cashflowsHeader)
	default:
		if err := s.seedCategories(ctx, pair.Categories); err != nil {
			return err
		}
		return s.ensureHeader(ctx, pair.Entries, transactionsHeader)
	}
}
