// Package hydrate rebuilds the local cache from the spreadsheets. The cache
// is disposable: every hydration wipes a user's cached rows and re-inserts
// them from the sheet contents, re-deriving the category hierarchy and the
// numeric ids in the process.
package hydrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendsheet/spendsheet/internal/model"
	"github.com/spendsheet/spendsheet/internal/service"
	"github.com/spendsheet/spendsheet/internal/sheets"
)

// Hydrator rebuilds per-user cache state from the remote sheets.
type Hydrator struct {
	store  service.Storage
	gw     service.SheetGateway
	logger *slog.Logger
}

// New creates a hydrator over a cache store and a sheet gateway.
func New(store service.Storage, gw service.SheetGateway, logger *slog.Logger) *Hydrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hydrator{store: store, gw: gw, logger: logger}
}

// HydrateUser rebuilds both data sets for one user. The expense and income
// sides are independent: a failure on one side is logged and does not stop
// the other, and a missing (local-sentinel) side is a silent no-op. The
// returned error is the first failure, for callers that want to surface it.
func (h *Hydrator) HydrateUser(ctx context.Context, user *model.User) error {
	var firstErr error

	if user.HasExpenseSheets() {
		if err := h.hydrateExpenses(ctx, user); err != nil {
			h.logger.Error("expense hydration failed", "user_id", user.ID, "error", err)
			firstErr = err
		}
	} else {
		h.logger.Debug("skipping expense hydration, no sheet backing", "user_id", user.ID)
	}

	if user.HasIncomeSheets() {
		if err := h.hydrateIncome(ctx, user); err != nil {
			h.logger.Error("income hydration failed", "user_id", user.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	} else {
		h.logger.Debug("skipping income hydration, no sheet backing", "user_id", user.ID)
	}

	return firstErr
}

// HydrateAll rebuilds the cache for every known user. Per-user failures are
// logged and counted, never fatal to the sweep.
func (h *Hydrator) HydrateAll(ctx context.Context) error {
	users, err := h.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	failed := 0
	for i := range users {
		if err := h.HydrateUser(ctx, &users[i]); err != nil {
			failed++
		}
	}

	h.logger.Info("hydration sweep complete", "users", len(users), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("hydration failed for %d of %d users", failed, len(users))
	}
	return nil
}

// hydrateExpenses wipes and rebuilds the categories and transactions cache
// from the expense sheet pair. Categories and transactions are separate
// steps in separate transactions, and a failed categories step does not
// stop the transactions step: it runs against an empty lookup and skips
// every row. The wipe happens first so a partial failure leaves an empty
// cache rather than a stale one.
func (h *Hydrator) hydrateExpenses(ctx context.Context, user *model.User) error {
	start := time.Now()

	if err := h.store.ClearExpenseCache(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to clear expense cache: %w", err)
	}

	c2ByPath, catErr := h.hydrateCategories(ctx, user)
	if catErr != nil {
		h.logger.Error("category hydration failed", "user_id", user.ID, "error", catErr)
		c2ByPath = map[string]*model.Category2{}
	}

	inserted, skipped, err := h.hydrateTransactions(ctx, user, c2ByPath)
	if err != nil {
		return err
	}

	h.logger.Info("expense cache rebuilt",
		"user_id", user.ID,
		"subcategories", len(c2ByPath),
		"transactions", inserted,
		"skipped", skipped,
		"duration", time.Since(start))
	return catErr
}

// hydrateCategories reads the categories sheet and reconstructs the
// two-level hierarchy: top-level categories are created lazily the first
// time their name appears, subcategories attach to them in row order.
// Returns the subcategory lookup map keyed by "c1/c2" path.
func (h *Hydrator) hydrateCategories(ctx context.Context, user *model.User) (map[string]*model.Category2, error) {
	records, err := h.gw.ReadRecords(ctx, user.CategoriesSheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories sheet: %w", err)
	}

	tx, err := h.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin categories transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	c1ByName := make(map[string]*model.Category1)
	c2ByPath := make(map[string]*model.Category2)
	now := time.Now().UTC()

	for _, record := range records {
		row, ok := sheets.ParseCategoryRecord(record)
		if !ok {
			continue
		}

		c1, seen := c1ByName[row.C1Name]
		if !seen {
			c1 = &model.Category1{
				UserID:    user.ID,
				Name:      row.C1Name,
				Active:    true,
				CreatedAt: now,
			}
			if err := tx.CreateCategory1(ctx, c1); err != nil {
				return nil, fmt.Errorf("failed to insert category %q: %w", row.C1Name, err)
			}
			c1ByName[row.C1Name] = c1
		}

		path := row.C1Name + "/" + row.C2Name
		if _, dup := c2ByPath[path]; dup {
			h.logger.Warn("duplicate subcategory row ignored", "user_id", user.ID, "path", path)
			continue
		}

		c2 := &model.Category2{
			UserID:    user.ID,
			Name:      row.C2Name,
			C1ID:      c1.ID,
			C1Name:    row.C1Name,
			Active:    row.Active,
			CreatedAt: now,
		}
		if err := tx.CreateCategory2(ctx, c2); err != nil {
			return nil, fmt.Errorf("failed to insert subcategory %q: %w", path, err)
		}
		c2ByPath[path] = c2
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit categories: %w", err)
	}
	return c2ByPath, nil
}

// hydrateTransactions reads the transactions sheet and inserts rows whose
// category path resolves against the hierarchy built in the same run.
// Orphan rows, whose path is unknown, are skipped with a warning; they stay
// in the sheet and resurface once the category exists.
func (h *Hydrator) hydrateTransactions(ctx context.Context, user *model.User, c2ByPath map[string]*model.Category2) (inserted, skipped int, err error) {
	records, err := h.gw.ReadRecords(ctx, user.TransactionsSheetID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read transactions sheet: %w", err)
	}

	tx, err := h.store.BeginTx(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transactions transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, record := range records {
		row, ok := sheets.ParseTransactionRecord(record)
		if !ok {
			continue
		}

		path := row.C1Name + "/" + row.C2Name
		c2, found := c2ByPath[path]
		if !found {
			h.logger.Warn("skipping transaction with unknown category",
				"user_id", user.ID,
				"path", path,
				"amount", row.Amount)
			skipped++
			continue
		}

		txn := &model.Transaction{
			UserID:      user.ID,
			Date:        row.Date,
			Amount:      row.Amount,
			C1ID:        c2.C1ID,
			C2ID:        c2.ID,
			C1Name:      row.C1Name,
			C2Name:      row.C2Name,
			PaymentMode: row.PaymentMode,
			Notes:       row.Notes,
			Person:      row.Person,
			NeedVsWant:  row.NeedVsWant,
			Deleted:     row.Deleted,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.CreatedAt,
		}
		// A bad row must never abort the batch; the row stays in the
		// sheet and the rest of the rebuild proceeds.
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			h.logger.Warn("skipping unusable transaction row",
				"user_id", user.ID,
				"path", path,
				"error", err)
			skipped++
			continue
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transactions: %w", err)
	}
	return inserted, skipped, nil
}

// hydrateIncome wipes and rebuilds the income-categories and inflows cache
// from the income sheet pair. As on the expense side, a failed categories
// step does not stop the inflows step.
func (h *Hydrator) hydrateIncome(ctx context.Context, user *model.User) error {
	start := time.Now()

	if err := h.store.ClearIncomeCache(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to clear income cache: %w", err)
	}

	catByName, catErr := h.hydrateIncomeCategories(ctx, user)
	if catErr != nil {
		h.logger.Error("income category hydration failed", "user_id", user.ID, "error", catErr)
		catByName = map[string]*model.IncomeCategory{}
	}

	inserted, skipped, err := h.hydrateInflows(ctx, user, catByName)
	if err != nil {
		return err
	}

	h.logger.Info("income cache rebuilt",
		"user_id", user.ID,
		"categories", len(catByName),
		"inflows", inserted,
		"skipped", skipped,
		"duration", time.Since(start))
	return catErr
}

// hydrateIncomeCategories reads the income-categories sheet. Income
// categories are flat; the lookup map is keyed by name.
func (h *Hydrator) hydrateIncomeCategories(ctx context.Context, user *model.User) (map[string]*model.IncomeCategory, error) {
	records, err := h.gw.ReadRecords(ctx, user.IncomeCategoriesSheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to read income categories sheet: %w", err)
	}

	tx, err := h.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin income categories transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	catByName := make(map[string]*model.IncomeCategory)
	now := time.Now().UTC()

	for _, record := range records {
		row, ok := sheets.ParseIncomeCategoryRecord(record)
		if !ok {
			continue
		}
		if _, dup := catByName[row.Name]; dup {
			h.logger.Warn("duplicate income category row ignored", "user_id", user.ID, "name", row.Name)
			continue
		}

		cat := &model.IncomeCategory{
			UserID:    user.ID,
			Name:      row.Name,
			Active:    row.Active,
			CreatedAt: now,
		}
		if err := tx.CreateIncomeCategory(ctx, cat); err != nil {
			return nil, fmt.Errorf("failed to insert income category %q: %w", row.Name, err)
		}
		catByName[row.Name] = cat
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit income categories: %w", err)
	}
	return catByName, nil
}

// hydrateInflows reads the cashflows sheet. Rows referencing an unknown
// income category are skipped with a warning, mirroring the expense side.
func (h *Hydrator) hydrateInflows(ctx context.Context, user *model.User, catByName map[string]*model.IncomeCategory) (inserted, skipped int, err error) {
	records, err := h.gw.ReadRecords(ctx, user.CashflowsSheetID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read cashflows sheet: %w", err)
	}

	tx, err := h.store.BeginTx(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin inflows transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, record := range records {
		row, ok := sheets.ParseInflowRecord(record)
		if !ok {
			continue
		}

		cat, found := catByName[row.CategoryName]
		if !found {
			h.logger.Warn("skipping inflow with unknown category",
				"user_id", user.ID,
				"category", row.CategoryName,
				"external_id", row.ExternalID)
			skipped++
			continue
		}

		inflow := &model.Inflow{
			UserID:       user.ID,
			ExternalID:   row.ExternalID,
			Date:         row.Date,
			Amount:       row.Amount,
			CategoryID:   cat.ID,
			CategoryName: row.CategoryName,
			Notes:        row.Notes,
			Deleted:      row.Deleted,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.CreatedAt,
		}
		if err := tx.CreateInflow(ctx, inflow); err != nil {
			h.logger.Warn("skipping unusable inflow row",
				"user_id", user.ID,
				"external_id", row.ExternalID,
				"error", err)
			skipped++
			continue
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit inflows: %w", err)
	}
	return inserted, skipped, nil
}
