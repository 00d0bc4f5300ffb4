package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendsheet/spendsheet/internal/common"
	"github.com/spendsheet/spendsheet/internal/model"
)

// UpsertUser creates a user on first login and refreshes the login
// timestamp, profile fields and delegated tokens on every subsequent login.
// Sheet ids are never touched here; see UpdateUserSheetIDs.
func (s *SQLiteStorage) UpsertUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.LastLoginAt = now

	query := `
		INSERT INTO users (
			id, email, name, picture,
			access_token, refresh_token,
			created_at, last_login_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			picture = excluded.picture,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			last_login_at = excluded.last_login_at`

	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.Picture,
		user.AccessToken, user.RefreshToken,
		user.CreatedAt, user.LastLoginAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	slog.Debug("upserted user", "user_id", user.ID)
	return nil
}

// GetUser returns a user by its identity key, or common.ErrNotFound.
func (s *SQLiteStorage) GetUser(ctx context.Context, id string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, email, name, picture,
			categories_sheet_id, transactions_sheet_id,
			income_categories_sheet_id, cashflows_sheet_id,
			access_token, refresh_token,
			created_at, last_login_at
		FROM users
		WHERE id = ?`

	var user model.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.Picture,
		&user.CategoriesSheetID, &user.TransactionsSheetID,
		&user.IncomeCategoriesSheetID, &user.CashflowsSheetID,
		&user.AccessToken, &user.RefreshToken,
		&user.CreatedAt, &user.LastLoginAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// ListUsers returns every stored user, oldest first.
func (s *SQLiteStorage) ListUsers(ctx context.Context) ([]model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, email, name, picture,
			categories_sheet_id, transactions_sheet_id,
			income_categories_sheet_id, cashflows_sheet_id,
			access_token, refresh_token,
			created_at, last_login_at
		FROM users
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(
			&user.ID, &user.Email, &user.Name, &user.Picture,
			&user.CategoriesSheetID, &user.TransactionsSheetID,
			&user.IncomeCategoriesSheetID, &user.CashflowsSheetID,
			&user.AccessToken, &user.RefreshToken,
			&user.CreatedAt, &user.LastLoginAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdateUserSheetIDs stores newly located or created spreadsheet ids.
// Empty fields in ids are left unchanged.
func (s *SQLiteStorage) UpdateUserSheetIDs(ctx context.Context, userID string, ids model.SheetIDs) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	query := `
		UPDATE users SET
			categories_sheet_id = CASE WHEN ? != '' THEN ? ELSE categories_sheet_id END,
			transactions_sheet_id = CASE WHEN ? != '' THEN ? ELSE transactions_sheet_id END,
			income_categories_sheet_id = CASE WHEN ? != '' THEN ? ELSE income_categories_sheet_id END,
			cashflows_sheet_id = CASE WHEN ? != '' THEN ? ELSE cashflows_sheet_id END
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		ids.Categories, ids.Categories,
		ids.Transactions, ids.Transactions,
		ids.IncomeCategories, ids.IncomeCategories,
		ids.Cashflows, ids.Cashflows,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sheet ids: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
	}

	slog.Info("updated user sheet ids", "user_id", userID)
	return nil
}
