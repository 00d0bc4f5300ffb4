package usermap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spendsheet/spendsheet/internal/model"
)

func TestStoreMissingFileIsEmpty(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "mapping.json"))
	if err != nil {
		t.Fatalf("NewStore() = %v", err)
	}

	if _, ok := store.Get("user-1"); ok {
		t.Error("expected no entry in a fresh store")
	}
	if got := store.UserIDs(); len(got) != 0 {
		t.Errorf("UserIDs() = %v, want empty", got)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() = %v", err)
	}
	if err := store.SetExpenseSheets("user-1", "cat-1", "txn-1"); err != nil {
		t.Fatalf("SetExpenseSheets() = %v", err)
	}
	if err := store.SetIncomeSheets("user-1", "inc-1", "cf-1"); err != nil {
		t.Fatalf("SetIncomeSheets() = %v", err)
	}

	// A fresh store over the same file must see the saved state.
	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() reload = %v", err)
	}
	entry, ok := reloaded.Get("user-1")
	if !ok {
		t.Fatal("entry lost across reload")
	}
	want := Entry{
		CategoriesSheetID:       "cat-1",
		TransactionsSheetID:     "txn-1",
		IncomeCategoriesSheetID: "inc-1",
		CashflowsSheetID:        "cf-1",
	}
	if entry != want {
		t.Errorf("entry = %+v, want %+v", entry, want)
	}
}

func TestStorePartialSetsPreserveOtherSide(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "mapping.json"))
	if err != nil {
		t.Fatalf("NewStore() = %v", err)
	}

	if err := store.SetExpenseSheets("user-1", "cat-1", "txn-1"); err != nil {
		t.Fatalf("SetExpenseSheets() = %v", err)
	}
	if err := store.SetIncomeSheets("user-1", "inc-1", "cf-1"); err != nil {
		t.Fatalf("SetIncomeSheets() = %v", err)
	}
	if err := store.SetExpenseSheets("user-1", "cat-2", "txn-2"); err != nil {
		t.Fatalf("SetExpenseSheets() = %v", err)
	}

	entry, _ := store.Get("user-1")
	if entry.IncomeCategoriesSheetID != "inc-1" || entry.CashflowsSheetID != "cf-1" {
		t.Errorf("income ids lost on expense update: %+v", entry)
	}
	if entry.CategoriesSheetID != "cat-2" {
		t.Errorf("expense ids not updated: %+v", entry)
	}
}

func TestStoreSentinelDoesNotCountAsBacking(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "mapping.json"))
	if err != nil {
		t.Fatalf("NewStore() = %v", err)
	}

	if err := store.SetExpenseSheets("user-1", model.LocalSheetID, model.LocalSheetID); err != nil {
		t.Fatalf("SetExpenseSheets() = %v", err)
	}
	if store.HasExpenseSheets("user-1") {
		t.Error("local sentinel must not count as expense backing")
	}

	if err := store.SetExpenseSheets("user-2", "cat-1", "txn-1"); err != nil {
		t.Fatalf("SetExpenseSheets() = %v", err)
	}
	if !store.HasExpenseSheets("user-2") {
		t.Error("real ids must count as expense backing")
	}
	if store.HasIncomeSheets("user-2") {
		t.Error("expense ids must not imply income backing")
	}
}

func TestStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := NewStore(path); err == nil {
		t.Error("expected an error for a corrupt mapping file")
	}
}
