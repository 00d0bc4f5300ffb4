package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendsheet/spendsheet/internal/model"
)

// ClearIncomeCache removes all IncomeCategory and Inflow rows for one user
// in a single transaction.
func (s *SQLiteStorage) ClearIncomeCache(ctx context.Context, userID string) error {
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

	queries := []string{
		`DELETE FROM inflows WHERE user_id = ?`,
		`DELETE FROM income_categories WHERE user_id = ?`,
	}
	for _, query := range queries {
		if _, err := tx.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("failed to clear income cache: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache clear: %w", err)
	}

	slog.Debug("cleared income cache", "user_id", userID)
	return nil
}

// GetIncomeCategories returns a user's income categories ordered by name.
func (s *SQLiteStorage) GetIncomeCategories(ctx context.Context, userID string) ([]model.IncomeCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, name, is_active, created_at
		FROM income_categories
		WHERE user_id = ?
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query income categories: %w", err)
	}
	defer rows.Close()

	var cats []model.IncomeCategory
	for rows.Next() {
		var cat model.IncomeCategory
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Active, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan income category: %w", err)
		}
		cats = append(cats, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating income categories: %w", err)
	}

	return cats, nil
}

// GetInflows returns every inflow for a user, newest first. Soft-deleted
// rows are included.
func (s *SQLiteStorage) GetInflows(ctx context.Context, userID string) ([]model.Inflow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, external_id, date, amount, category_id, category_name,
			notes, is_deleted, created_at, updated_at
		FROM inflows
		WHERE user_id = ?
		ORDER BY date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inflows: %w", err)
	}
	defer rows.Close()

	var inflows []model.Inflow
	for rows.Next() {
		var in model.Inflow
		if err := rows.Scan(
			&in.ID, &in.UserID, &in.ExternalID, &in.Date, &in.Amount,
			&in.CategoryID, &in.CategoryName, &in.Notes, &in.Deleted,
			&in.CreatedAt, &in.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inflow: %w", err)
		}
		inflows = append(inflows, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inflows: %w", err)
	}

	return inflows, nil
}

// CreateIncomeCategory inserts an income category within a transaction and
// fills in the generated id.
func (t *sqliteTx) CreateIncomeCategory(ctx context.Context, cat *model.IncomeCategory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("%w: cat", ErrNilParameter)
	}
	if err := validateString(cat.Name, "cat.Name"); err != nil {
		return err
	}

	if cat.CreatedAt.IsZero() {
		cat.CreatedAt = time.Now().UTC()
	}

	result, err := t.tx.ExecContext(ctx,
		`INSERT INTO income_categories (user_id, name, is_active, created_at) VALUES (?, ?, ?, ?)`,
		cat.UserID, cat.Name, cat.Active, cat.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create income category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get income category id: %w", err)
	}
	cat.ID = id

	return nil
}

// CreateInflow inserts an inflow within a transaction and fills in the
// generated id. ExternalID must already be assigned.
func (t *sqliteTx) CreateInflow(ctx context.Context, inflow *model.Inflow) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if inflow == nil {
		return fmt.Errorf("%w: inflow", ErrNilParameter)
	}
	if err := validateString(inflow.ExternalID, "inflow.ExternalID"); err != nil {
		return err
	}
	if err := validateAmount(inflow.Amount, "inflow.Amount"); err != nil {
		return err
	}

	now := time.Now().UTC()
	if inflow.CreatedAt.IsZero() {
		inflow.CreatedAt = now
	}
	if inflow.UpdatedAt.IsZero() {
		inflow.UpdatedAt = now
	}

	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO inflows (
			user_id, external_id, date, amount, category_id, category_name,
			notes, is_deleted, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inflow.UserID, inflow.ExternalID, inflow.Date, inflow.Amount,
		inflow.CategoryID, inflow.CategoryName, inflow.Notes, inflow.Deleted,
		inflow.CreatedAt, inflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inflow: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inflow id: %w", err)
	}
	inflow.ID = id

	return nil
}
