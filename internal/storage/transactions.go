package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/spendsheet/spendsheet/internal/model"
)

// GetTransactions returns every transaction for a user, newest first.
// Soft-deleted rows are included; the Deleted flag distinguishes them.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, date, amount, c1_id, c2_id, c1_name, c2_name,
			payment_mode, notes, person, need_vs_want, deleted,
			created_at, updated_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		if err := rows.Scan(
			&txn.ID, &txn.UserID, &txn.Date, &txn.Amount,
			&txn.C1ID, &txn.C2ID, &txn.C1Name, &txn.C2Name,
			&txn.PaymentMode, &txn.Notes, &txn.Person, &txn.NeedVsWant,
			&txn.Deleted, &txn.CreatedAt, &txn.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}

// GetActiveTransactions returns a user's transactions with soft-deleted
// rows filtered out, newest first.
func (s *SQLiteStorage) GetActiveTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, date, amount, c1_id, c2_id, c1_name, c2_name,
			payment_mode, notes, person, need_vs_want, deleted,
			created_at, updated_at
		FROM transactions
		WHERE user_id = ? AND deleted = 0
		ORDER BY date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		if err := rows.Scan(
			&txn.ID, &txn.UserID, &txn.Date, &txn.Amount,
			&txn.C1ID, &txn.C2ID, &txn.C1Name, &txn.C2Name,
			&txn.PaymentMode, &txn.Notes, &txn.Person, &txn.NeedVsWant,
			&txn.Deleted, &txn.CreatedAt, &txn.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active transactions: %w", err)
	}

	return txns, nil
}

// CreateTransaction inserts a transaction within a transaction scope and
// fills in the generated id.
func (t *sqliteTx) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if txn == nil {
		return fmt.Errorf("%w: txn", ErrNilParameter)
	}
	if err := validateAmount(txn.Amount, "txn.Amount"); err != nil {
		return err
	}

	now := time.Now().UTC()
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = now
	}
	if txn.UpdatedAt.IsZero() {
		txn.UpdatedAt = now
	}

	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO transactions (
			user_id, date, amount, c1_id, c2_id, c1_name, c2_name,
			payment_mode, notes, person, need_vs_want, deleted,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.UserID, txn.Date, txn.Amount, txn.C1ID, txn.C2ID, txn.C1Name, txn.C2Name,
		txn.PaymentMode, txn.Notes, txn.Person, txn.NeedVsWant, txn.Deleted,
		txn.CreatedAt, txn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction id: %w", err)
	}
	txn.ID = id

	return nil
}
