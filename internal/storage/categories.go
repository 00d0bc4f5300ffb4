package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendsheet/spendsheet/internal/model"
)

// ClearExpenseCache removes all Category1, Category2 and Transaction rows
// for one user in a single transaction. The hydrator calls this before
// reinserting from the spreadsheet.
func (s *SQLiteStorage) ClearExpenseCache(ctx context.Context, userID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Children first so the foreign keys stay satisfiable mid-delete.
	queries := []string{
		`DELETE FROM transactions WHERE user_id = ?`,
		`DELETE FROM categories2 WHERE user_id = ?`,
		`DELETE FROM categories1 WHERE user_id = ?`,
	}
	for _, query := range queries {
		if _, err := tx.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("failed to clear expense cache: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache clear: %w", err)
	}

	slog.Debug("cleared expense cache", "user_id", userID)
	return nil
}

// GetCategory1s returns a user's top-level categories ordered by name.
func (s *SQLiteStorage) GetCategory1s(ctx context.Context, userID string) ([]model.Category1, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, name, is_active, created_at
		FROM categories1
		WHERE user_id = ?
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories1: %w", err)
	}
	defer rows.Close()

	var cats []model.Category1
	for rows.Next() {
		var cat model.Category1
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Active, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category1: %w", err)
		}
		cats = append(cats, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories1: %w", err)
	}

	return cats, nil
}

// GetCategory2s returns a user's subcategories ordered by parent then name.
func (s *SQLiteStorage) GetCategory2s(ctx context.Context, userID string) ([]model.Category2, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, c1_id, c1_name, name, is_active, created_at
		FROM categories2
		WHERE user_id = ?
		ORDER BY c1_name, name`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories2: %w", err)
	}
	defer rows.Close()

	var cats []model.Category2
	for rows.Next() {
		var cat model.Category2
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.C1ID, &cat.C1Name, &cat.Name, &cat.Active, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category2: %w", err)
		}
		cats = append(cats, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories2: %w", err)
	}

	return cats, nil
}

// GetActiveCategory2s returns the subcategories offered for new entries:
// those whose own active flag is set.
func (s *SQLiteStorage) GetActiveCategory2s(ctx context.Context, userID string) ([]model.Category2, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, c1_id, c1_name, name, is_active, created_at
		FROM categories2
		WHERE user_id = ? AND is_active = 1
		ORDER BY c1_name, name`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active categories2: %w", err)
	}
	defer rows.Close()

	var cats []model.Category2
	for rows.Next() {
		var cat model.Category2
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.C1ID, &cat.C1Name, &cat.Name, &cat.Active, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category2: %w", err)
		}
		cats = append(cats, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active categories2: %w", err)
	}

	return cats, nil
}

// CreateCategory1 inserts a top-level category within a transaction and
// fills in the generated id.
func (t *sqliteTx) CreateCategory1(ctx context.Context, c1 *model.Category1) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if c1 == nil {
		return fmt.Errorf("%w: c1", ErrNilParameter)
	}
	if err := validateString(c1.Name, "c1.Name"); err != nil {
		return err
	}

	if c1.CreatedAt.IsZero() {
		c1.CreatedAt = time.Now().UTC()
	}

	result, err := t.tx.ExecContext(ctx,
		`INSERT INTO categories1 (user_id, name, is_active, created_at) VALUES (?, ?, ?, ?)`,
		c1.UserID, c1.Name, c1.Active, c1.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create category1: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category1 id: %w", err)
	}
	c1.ID = id

	return nil
}

// CreateCategory2 inserts a subcategory within a transaction and fills in
// the generated id. The caller is responsible for keeping C1Name consistent
// with the parent row.
func (t *sqliteTx) CreateCategory2(ctx context.Context, c2 *model.Category2) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if c2 == nil {
		return fmt.Errorf("%w: c2", ErrNilParameter)
	}
	if err := validateString(c2.Name, "c2.Name"); err != nil {
		return err
	}

	if c2.CreatedAt.IsZero() {
		c2.CreatedAt = time.Now().UTC()
	}

	result, err := t.tx.ExecContext(ctx,
		`INSERT INTO categories2 (user_id, c1_id, c1_name, name, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c2.UserID, c2.C1ID, c2.C1Name, c2.Name, c2.Active, c2.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create category2: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category2 id: %w", err)
	}
	c2.ID = id

	return nil
}
