// Package usermap persists the user-to-spreadsheet-id mapping in a JSON
// side file. The mapping is the durable record of which files back which
// user; unlike the cache database it must survive a cache wipe, so it lives
// outside SQLite.
package usermap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spendsheet/spendsheet/internal/model"
)

// Entry is one user's spreadsheet ids. Zero-value fields mean the side has
// never been provisioned.
type Entry struct {
	CategoriesSheetID       string `json:"categories_sheet_id,omitempty"`
	TransactionsSheetID     string `json:"expenses_sheet_id,omitempty"`
	IncomeCategoriesSheetID string `json:"income_categories_sheet_id,omitempty"`
	CashflowsSheetID        string `json:"cashflows_sheet_id,omitempty"`
}

// Store is a mutex-guarded JSON file of user-id to Entry. Every mutation
// rewrites the whole file atomically.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry
}

// NewStore loads the mapping file at path, treating a missing file as an
// empty mapping.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]Entry),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user mapping file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.entries); err != nil {
			return nil, fmt.Errorf("failed to parse user mapping file %s: %w", path, err)
		}
	}
	return s, nil
}

// Get returns a user's entry and whether one exists.
func (s *Store) Get(userID string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[userID]
	return entry, ok
}

// HasExpenseSheets reports whether the user has a recorded, non-sentinel
// expense pair.
func (s *Store) HasExpenseSheets(userID string) bool {
	entry, ok := s.Get(userID)
	return ok &&
		entry.CategoriesSheetID != "" && entry.CategoriesSheetID != model.LocalSheetID &&
		entry.TransactionsSheetID != "" && entry.TransactionsSheetID != model.LocalSheetID
}

// HasIncomeSheets reports whether the user has a recorded, non-sentinel
// income pair.
func (s *Store) HasIncomeSheets(userID string) bool {
	entry, ok := s.Get(userID)
	return ok &&
		entry.IncomeCategoriesSheetID != "" && entry.IncomeCategoriesSheetID != model.LocalSheetID &&
		entry.CashflowsSheetID != "" && entry.CashflowsSheetID != model.LocalSheetID
}

// SetExpenseSheets records a user's expense pair, preserving any income ids
// already present.
func (s *Store) SetExpenseSheets(userID, categoriesID, transactionsID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entries[userID]
	entry.CategoriesSheetID = categoriesID
	entry.TransactionsSheetID = transactionsID
	s.entries[userID] = entry
	return s.save()
}

// SetIncomeSheets records a user's income pair, preserving any expense ids
// already present.
func (s *Store) SetIncomeSheets(userID, incomeCategoriesID, cashflowsID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entries[userID]
	entry.IncomeCategoriesSheetID = incomeCategoriesID
	entry.CashflowsSheetID = cashflowsID
	s.entries[userID] = entry
	return s.save()
}

// UserIDs returns every user id in the mapping.
func (s *Store) UserIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}

// save writes the mapping to a temp file in the same directory and renames
// it over the target, so readers never see a torn file. Caller holds mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user mapping: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".usermap-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp mapping file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp mapping file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp mapping file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace mapping file: %w", err)
	}
	return nil
}
