package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spendsheet/spendsheet/internal/common"
	"github.com/spendsheet/spendsheet/internal/model"
)

func transactionsFixture() [][]string {
	return [][]string{
		{"date", "amount", "c1_name", "c2_name", "payment_mode", "notes", "person", "need_vs_want", "created_at", "deleted"},
		{"2026-03-14T00:00:00Z", "99", "Food", "Snacks", "Cash", "", "", "", "2026-03-14T10:00:00Z", "FALSE"},
		{"2026-03-15T00:00:00Z", "250.5", "Food", "Groceries", "UPI", "", "", "", "2026-03-15T09:30:12Z", "FALSE"},
		{"2026-03-15T00:00:00Z", "250.5", "Food", "Groceries", "UPI", "", "", "", "2026-03-15T18:45:00Z", "FALSE"},
	}
}

func TestPropagatorSkipsLocalSentinel(t *testing.T) {
	gw := NewMockGateway()
	p := NewPropagator(gw, nil)
	ctx := context.Background()

	for _, sheetID := range []string{model.LocalSheetID, ""} {
		if err := p.AppendCategory(ctx, sheetID, "Food", "Groceries", true); err != nil {
			t.Errorf("AppendCategory(%q) = %v, want nil", sheetID, err)
		}
		if err := p.AppendTransaction(ctx, sheetID, &model.Transaction{}); err != nil {
			t.Errorf("AppendTransaction(%q) = %v, want nil", sheetID, err)
		}
		if err := p.UpdateCategoryStatus(ctx, sheetID, "Food", "Groceries", false); err != nil {
			t.Errorf("UpdateCategoryStatus(%q) = %v, want nil", sheetID, err)
		}
		if err := p.MarkTransactionDeleted(ctx, sheetID, TransactionKey{}); err != nil {
			t.Errorf("MarkTransactionDeleted(%q) = %v, want nil", sheetID, err)
		}
		if err := p.MarkInflowDeleted(ctx, sheetID, "abc"); err != nil {
			t.Errorf("MarkInflowDeleted(%q) = %v, want nil", sheetID, err)
		}
	}

	if calls := gw.TotalCalls(); calls != 0 {
		t.Errorf("gateway saw %d calls against the local sentinel, want 0", calls)
	}
}

func TestAppendTransaction(t *testing.T) {
	gw := NewMockGateway()
	gw.SetRows("sheet-1", [][]string{
		{"date", "amount", "c1_name", "c2_name", "payment_mode", "notes", "person", "need_vs_want", "created_at", "deleted"},
	})
	p := NewPropagator(gw, nil)

	txn := &model.Transaction{
		Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2026, 3, 15, 9, 30, 12, 0, time.UTC),
		C1Name:      "Food",
		C2Name:      "Groceries",
		PaymentMode: "UPI",
		Amount:      250.5,
	}
	if err := p.AppendTransaction(context.Background(), "sheet-1", txn); err != nil {
		t.Fatalf("AppendTransaction() = %v", err)
	}

	rows := gw.Rows("sheet-1")
	if len(rows) != 2 {
		t.Fatalf("sheet has %d rows, want 2", len(rows))
	}
	got := rows[1]
	if got[colTxnAmount] != "250.5" {
		t.Errorf("amount cell = %q, want 250.5", got[colTxnAmount])
	}
	if got[colTxnC2Name] != "Groceries" {
		t.Errorf("c2 cell = %q", got[colTxnC2Name])
	}
	if got[colTxnDeleted] != "FALSE" {
		t.Errorf("deleted cell = %q, want FALSE", got[colTxnDeleted])
	}
}

func TestAppendInflowAssignsExternalID(t *testing.T) {
	gw := NewMockGateway()
	p := NewPropagator(gw, nil)

	inflow := &model.Inflow{
		Date:         time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:    time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		CategoryName: "Salary",
		Amount:       50000,
	}
	if err := p.AppendInflow(context.Background(), "sheet-1", inflow); err != nil {
		t.Fatalf("AppendInflow() = %v", err)
	}

	if inflow.ExternalID == "" {
		t.Fatal("expected an external id to be assigned")
	}
	rows := gw.Rows("sheet-1")
	if len(rows) != 1 {
		t.Fatalf("sheet has %d rows, want 1", len(rows))
	}
	if rows[0][colInflowID] != inflow.ExternalID {
		t.Errorf("id cell = %q, want %q", rows[0][colInflowID], inflow.ExternalID)
	}
}

func TestAppendInflowAssignsExternalIDEvenForLocalUser(t *testing.T) {
	gw := NewMockGateway()
	p := NewPropagator(gw, nil)

	inflow := &model.Inflow{CategoryName: "Salary", Amount: 100}
	if err := p.AppendInflow(context.Background(), model.LocalSheetID, inflow); err != nil {
		t.Fatalf("AppendInflow() = %v", err)
	}
	if inflow.ExternalID == "" {
		t.Error("expected an external id even without sheet backing")
	}
	if gw.TotalCalls() != 0 {
		t.Error("expected no gateway calls for local sentinel")
	}
}

func TestUpdateCategoryStatus(t *testing.T) {
	gw := NewMockGateway()
	gw.SetRows("sheet-1", [][]string{
		{"c1_name", "c2_name", "is_active"},
		{"Food", "Groceries", "TRUE"},
		{"Food", "Snacks", "TRUE"},
		{"Food", "Groceries", "TRUE"},
	})
	p := NewPropagator(gw, nil)

	if err := p.UpdateCategoryStatus(context.Background(), "sheet-1", "Food", "Groceries", false); err != nil {
		t.Fatalf("UpdateCategoryStatus() = %v", err)
	}

	rows := gw.Rows("sheet-1")
	if rows[1][2] != "FALSE" {
		t.Errorf("first matching row = %q, want FALSE", rows[1][2])
	}
	if rows[3][2] != "TRUE" {
		t.Errorf("duplicate row = %q, want untouched TRUE", rows[3][2])
	}
}

func TestUpdateCategoryStatusNotFound(t *testing.T) {
	gw := NewMockGateway()
	gw.SetRows("sheet-1", [][]string{
		{"c1_name", "c2_name", "is_active"},
		{"Food", "Groceries", "TRUE"},
	})
	p := NewPropagator(gw, nil)

	err := p.UpdateCategoryStatus(context.Background(), "sheet-1", "Travel", "Stay", false)
	if !errors.Is(err, common.ErrRowNotFound) {
		t.Errorf("err = %v, want ErrRowNotFound", err)
	}
}

func TestUpdateIncomeCategoryStatus(t *testing.T) {
	gw := NewMockGateway()
	gw.SetRows("sheet-1", [][]string{
		{"c2_name", "is_active"},
		{"Salary", "TRUE"},
		{"Freelance", "TRUE"},
	})
	p := NewPropagator(gw, nil)

	if err := p.UpdateIncomeCategoryStatus(context.Background(), "sheet-1", "Freelance", false); err != nil {
		t.Fatalf("UpdateIncomeCategoryStatus() = %v", err)
	}

	rows := gw.Rows("sheet-1")
	if rows[2][1] != "FALSE" {
		t.Errorf("row = %q, want FALSE", rows[2][1])
	}
	if rows[1][1] != "TRUE" {
		t.Errorf("other row = %q, want untouched TRUE", rows[1][1])
	}
}

func TestMarkTransactionDeleted(t *testing.T) {
	gw := NewMockGateway()
	gw.SetRows("sheet-1", transactionsFixture())
	p := NewPropagator(gw, nil)

	key := TransactionKey{
		Date:      time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2026, 3, 15, 9, 30, 12, 0, time.UTC),
		C2Name:    "Groceries",
		Amount:    250.5,
	}
	if err := p.MarkTransactionDeleted(context.Background(), "sheet-1", key); err != nil {
		t.Fatalf("MarkTransactionDeleted() = %v", err)
	}

	rows := gw.Rows("sheet-1")
	if rows[2][colTxnDeleted] != "TRUE" {
		t.Errorf("matched row deleted cell = %q, want TRUE", rows[2][colTxnDeleted])
	}
	if rows[3][colTxnDeleted] != "FALSE" {
		t.Errorf("same-day row with a different created_at was touched")
	}
	if rows[1][colTxnDeleted] != "FALSE" {
		t.Errorf("unrelated row was touched")
	}
}

func TestMarkTransactionDeletedFirstMatchWins(t *testing.T) {
	fixture := transactionsFixture()
	// Duplicate the target row exactly; only the first copy must change.
	fixture = append(fixture, append([]string(nil), fixture[2]...))
	gw := NewMockGateway()
	gw.SetRows("sheet-1", fixture)
	p := NewPropagator(gw, nil)

	key := TransactionKey{
		Date:      time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2026, 3, 15, 9, 30, 12, 0, time.UTC),
		C2Name:    "Groceries",
		Amount:    250.5,
	}
	if err := p.MarkTransactionDeleted(context.Background(), "sheet-1", key); err != nil {
		t.Fatalf("MarkTransactionDeleted() = %v", err)
	}

	rows := gw.Rows("sheet-1")
	if rows[2][colTxnDeleted] != "TRUE" {
		t.Error("first duplicate was not marked")
	}
	if rows[4][colTxnDeleted] != "FALSE" {
		t.Error("second duplicate was marked, want first match only")
	}
}

func TestMarkTransactionDeletedNotFound(t *testing.T) {
	gw := NewMockGateway()
	gw.SetRows("sheet-1", transactionsFixture())
	p := NewPropagator(gw, nil)

	key := TransactionKey{
		Date:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
		C2Name:    "Groceries",
		Amount:    1,
	}
	err := p.MarkTransactionDeleted(context.Background(), "sheet-1", key)
	if !errors.Is(err, common.ErrRowNotFound) {
		t.Errorf("err = %v, want ErrRowNotFound", err)
	}
	if gw.UpdateCalls != 0 {
		t.Error("no cell should have been written")
	}
}

func TestMarkInflowDeleted(t *testing.T) {
	gw := NewMockGateway()
	gw.SetRows("sheet-1", [][]string{
		{"id", "date", "amount", "c2_name", "notes", "created_at", "is_deleted"},
		{"abc-123", "2026-03-01", "50000", "Salary", "", "2026-03-01T08:00:00Z", "FALSE"},
		{"def-456", "2026-03-02", "1200", "Freelance", "", "2026-03-02T08:00:00Z", "FALSE"},
	})
	p := NewPropagator(gw, nil)

	if err := p.MarkInflowDeleted(context.Background(), "sheet-1", "def-456"); err != nil {
		t.Fatalf("MarkInflowDeleted() = %v", err)
	}

	rows := gw.Rows("sheet-1")
	if rows[2][colInflowDeleted] != "TRUE" {
		t.Errorf("matched row = %q, want TRUE", rows[2][colInflowDeleted])
	}
	if rows[1][colInflowDeleted] != "FALSE" {
		t.Error("unrelated row was touched")
	}
}

func TestMarkInflowDeletedNotFound(t *testing.T) {
	gw := NewMockGateway()
	gw.SetRows("sheet-1", [][]string{
		{"id", "date", "amount", "c2_name", "notes", "created_at", "is_deleted"},
	})
	p := NewPropagator(gw, nil)

	err := p.MarkInflowDeleted(context.Background(), "sheet-1", "missing")
	if !errors.Is(err, common.ErrRowNotFound) {
		t.Errorf("err = %v, want ErrRowNotFound", err)
	}
}

func TestPropagatorSurfacesGatewayErrors(t *testing.T) {
	gw := NewMockGateway()
	gw.Err = errors.New("boom")
	p := NewPropagator(gw, nil)
	ctx := context.Background()

	if err := p.AppendCategory(ctx, "sheet-1", "Food", "Groceries", true); err == nil {
		t.Error("AppendCategory() = nil, want error")
	}
	if err := p.MarkInflowDeleted(ctx, "sheet-1", "abc"); err == nil {
		t.Error("MarkInflowDeleted() = nil, want error")
	}
}
