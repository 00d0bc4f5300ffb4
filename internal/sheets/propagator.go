package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/spendsheet/spendsheet/internal/common"
	"github.com/spendsheet/spendsheet/internal/model"
	"github.com/spendsheet/spendsheet/internal/service"
)

// Propagator mirrors local cache mutations into the spreadsheets. Every
// method is best-effort: callers commit locally first, then call here, and
// a returned error means the sheet and the cache have diverged until the
// next hydration.
type Propagator struct {
	gw     service.SheetGateway
	logger *slog.Logger
}

// NewPropagator creates a write-propagator over a sheet gateway.
func NewPropagator(gw service.SheetGateway, logger *slog.Logger) *Propagator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Propagator{gw: gw, logger: logger}
}

// skipLocal reports whether a sheet id is the local sentinel (or unset) and
// logs the skip. Propagation against the sentinel is a silent success.
func (p *Propagator) skipLocal(sheetID, op string) bool {
	if sheetID == "" || sheetID == model.LocalSheetID {
		p.logger.Debug("skipping sheet propagation for local-only user", "op", op)
		return true
	}
	return false
}

// AppendCategory appends a subcategory row to the categories sheet.
func (p *Propagator) AppendCategory(ctx context.Context, sheetID, c1Name, c2Name string, active bool) error {
	if p.skipLocal(sheetID, "append_category") {
		return nil
	}

	row := []any{c1Name, c2Name, FormatSheetBool(active)}
	if err := p.gw.AppendRow(ctx, sheetID, row); err != nil {
		return fmt.Errorf("failed to append category row: %w", err)
	}

	p.logger.Info("appended category row", "sheet_id", sheetID, "c1_name", c1Name, "c2_name", c2Name)
	return nil
}

// AppendTransaction appends an expense row to the transactions sheet.
func (p *Propagator) AppendTransaction(ctx context.Context, sheetID string, txn *model.Transaction) error {
	if p.skipLocal(sheetID, "append_transaction") {
		return nil
	}

	if err := p.gw.AppendRow(ctx, sheetID, transactionRowValues(txn)); err != nil {
		return fmt.Errorf("failed to append transaction row: %w", err)
	}

	p.logger.Info("appended transaction row", "sheet_id", sheetID, "c2_name", txn.C2Name, "amount", txn.Amount)
	return nil
}

// AppendIncomeCategory appends a row to the income-categories sheet.
func (p *Propagator) AppendIncomeCategory(ctx context.Context, sheetID, name string, active bool) error {
	if p.skipLocal(sheetID, "append_income_category") {
		return nil
	}

	row := []any{name, FormatSheetBool(active)}
	if err := p.gw.AppendRow(ctx, sheetID, row); err != nil {
		return fmt.Errorf("failed to append income category row: %w", err)
	}

	p.logger.Info("appended income category row", "sheet_id", sheetID, "name", name)
	return nil
}

// AppendInflow appends an income row to the cashflows sheet. An external id
// is generated here when the inflow does not carry one yet; the caller must
// persist the assigned id so deletes can find the row later.
func (p *Propagator) AppendInflow(ctx context.Context, sheetID string, inflow *model.Inflow) error {
	if inflow.ExternalID == "" {
		inflow.ExternalID = uuid.NewString()
	}

	if p.skipLocal(sheetID, "append_inflow") {
		return nil
	}

	if err := p.gw.AppendRow(ctx, sheetID, inflowRowValues(inflow)); err != nil {
		return fmt.Errorf("failed to append inflow row: %w", err)
	}

	p.logger.Info("appended inflow row", "sheet_id", sheetID, "external_id", inflow.ExternalID, "amount", inflow.Amount)
	return nil
}

// UpdateCategoryStatus rewrites the is_active cell of the first row whose
// name pair matches. The name pair is the row key; duplicates beyond the
// first are left untouched.
func (p *Propagator) UpdateCategoryStatus(ctx context.Context, sheetID, c1Name, c2Name string, active bool) error {
	if p.skipLocal(sheetID, "update_category_status") {
		return nil
	}

	rows, err := p.gw.ReadRows(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("failed to read categories sheet: %w", err)
	}

	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		if strings.TrimSpace(row[0]) != c1Name || strings.TrimSpace(row[1]) != c2Name {
			continue
		}
		if err := p.gw.UpdateCell(ctx, sheetID, int64(i+1), categoryActiveColumn, FormatSheetBool(active)); err != nil {
			return fmt.Errorf("failed to update category status: %w", err)
		}
		p.logger.Info("updated category status", "sheet_id", sheetID, "c1_name", c1Name, "c2_name", c2Name, "active", active)
		return nil
	}

	p.logger.Warn("category row not found in sheet", "sheet_id", sheetID, "c1_name", c1Name, "c2_name", c2Name)
	return fmt.Errorf("category %s/%s: %w", c1Name, c2Name, common.ErrRowNotFound)
}

// UpdateIncomeCategoryStatus rewrites the is_active cell of the first row
// whose name matches.
func (p *Propagator) UpdateIncomeCategoryStatus(ctx context.Context, sheetID, name string, active bool) error {
	if p.skipLocal(sheetID, "update_income_category_status") {
		return nil
	}

	rows, err := p.gw.ReadRows(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("failed to read income categories sheet: %w", err)
	}

	for i, row := range rows {
		if i == 0 || len(row) < 1 {
			continue
		}
		if strings.TrimSpace(row[0]) != name {
			continue
		}
		if err := p.gw.UpdateCell(ctx, sheetID, int64(i+1), incomeCategoryActiveColumn, FormatSheetBool(active)); err != nil {
			return fmt.Errorf("failed to update income category status: %w", err)
		}
		p.logger.Info("updated income category status", "sheet_id", sheetID, "name", name, "active", active)
		return nil
	}

	p.logger.Warn("income category row not found in sheet", "sheet_id", sheetID, "name", name)
	return fmt.Errorf("income category %s: %w", name, common.ErrRowNotFound)
}

// MarkTransactionDeleted soft-deletes the first transaction row matching
// the heuristic key. The transactions sheet carries no stable row id, so
// identification relies on MatchesTransactionRow.
func (p *Propagator) MarkTransactionDeleted(ctx context.Context, sheetID string, key TransactionKey) error {
	if p.skipLocal(sheetID, "mark_transaction_deleted") {
		return nil
	}

	rows, err := p.gw.ReadRows(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("failed to read transactions sheet: %w", err)
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if !MatchesTransactionRow(row, key) {
			continue
		}
		if err := p.gw.UpdateCell(ctx, sheetID, int64(i+1), colTxnDeleted+1, FormatSheetBool(true)); err != nil {
			return fmt.Errorf("failed to mark transaction deleted: %w", err)
		}
		p.logger.Info("marked transaction deleted", "sheet_id", sheetID, "row", i+1, "c2_name", key.C2Name)
		return nil
	}

	p.logger.Warn("transaction row not found in sheet",
		"sheet_id", sheetID,
		"c2_name", key.C2Name,
		"amount", key.Amount,
		"date", key.Date.UTC().Format("2006-01-02"))
	return fmt.Errorf("transaction: %w", common.ErrRowNotFound)
}

// MarkInflowDeleted soft-deletes the cashflow row whose external id matches.
func (p *Propagator) MarkInflowDeleted(ctx context.Context, sheetID, externalID string) error {
	if p.skipLocal(sheetID, "mark_inflow_deleted") {
		return nil
	}

	rows, err := p.gw.ReadRows(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("failed to read cashflows sheet: %w", err)
	}

	for i, row := range rows {
		if i == 0 || len(row) <= colInflowID {
			continue
		}
		if strings.TrimSpace(row[colInflowID]) != externalID {
			continue
		}
		if err := p.gw.UpdateCell(ctx, sheetID, int64(i+1), colInflowDeleted+1, FormatSheetBool(true)); err != nil {
			return fmt.Errorf("failed to mark inflow deleted: %w", err)
		}
		p.logger.Info("marked inflow deleted", "sheet_id", sheetID, "row", i+1, "external_id", externalID)
		return nil
	}

	p.logger.Warn("inflow row not found in sheet", "sheet_id", sheetID, "external_id", externalID)
	return fmt.Errorf("inflow %s: %w", externalID, common.ErrRowNotFound)
}
