// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/spendsheet/spendsheet/internal/model"
)

// Storage defines the contract for the local cache layer. The cache is a
// disposable projection of the spreadsheets; nothing here is durable beyond
// the next hydration.
type Storage interface {
	// User operations
	UpsertUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserSheetIDs(ctx context.Context, userID string, ids model.SheetIDs) error

	// Hydration support: per-user cache teardown, each in a single transaction.
	ClearExpenseCache(ctx context.Context, userID string) error
	ClearIncomeCache(ctx context.Context, userID string) error

	// Read-side operations used by the CRUD layer and tests.
	GetCategory1s(ctx context.Context, userID string) ([]model.Category1, error)
	GetCategory2s(ctx context.Context, userID string) ([]model.Category2, error)
	GetActiveCategory2s(ctx context.Context, userID string) ([]model.Category2, error)
	GetTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	GetActiveTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	GetIncomeCategories(ctx context.Context, userID string) ([]model.IncomeCategory, error)
	GetInflows(ctx context.Context, userID string) ([]model.Inflow, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is a cache transaction carrying the hydration insert operations.
// Creates fill in the generated row id on the passed entity.
type Tx interface {
	Commit() error
	Rollback() error

	CreateCategory1(ctx context.Context, c1 *model.Category1) error
	CreateCategory2(ctx context.Context, c2 *model.Category2) error
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	CreateIncomeCategory(ctx context.Context, cat *model.IncomeCategory) error
	CreateInflow(ctx context.Context, inflow *model.Inflow) error
}

// SheetGateway is the remote tabular API consumed by the hydrator and the
// write-propagator. Row and column positions are 1-based, matching the
// spreadsheet UI.
type SheetGateway interface {
	ReadRecords(ctx context.Context, sheetID string) ([]map[string]string, error)
	ReadRows(ctx context.Context, sheetID string) ([][]string, error)
	AppendRow(ctx context.Context, sheetID string, row []any) error
	AppendRows(ctx context.Context, sheetID string, rows [][]any) error
	UpdateCell(ctx context.Context, sheetID string, row, col int64, value string) error
}

// RetryOptions configures retry behavior for remote operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
