package model

import "time"

// IncomeCategory is a single-level income category; there is no parent tier.
type IncomeCategory struct {
	CreatedAt time.Time
	Name      string
	UserID    string
	ID        int64
	Active    bool
}

// Inflow is an income entry. Unlike Transaction it carries ExternalID, a
// random token assigned when the row is first appended to the cashflows
// sheet, so later lookups are exact instead of heuristic.
type Inflow struct {
	Date         time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ExternalID   string
	UserID       string
	CategoryName string
	Notes        string
	ID           int64
	CategoryID   int64
	Amount       float64
	Deleted      bool
}
