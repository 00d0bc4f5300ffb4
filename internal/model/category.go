package model

import "time"

// Category1 is a top-level expense category. The active flag is advisory at
// this level: it does not gate the subcategories underneath it.
type Category1 struct {
	CreatedAt time.Time
	Name      string
	UserID    string
	ID        int64
	Active    bool
}

// Category2 is a subcategory owned by exactly one Category1. C1Name is
// denormalized alongside C1ID so rows can round-trip through the
// spreadsheet, which only carries names. Its active flag is authoritative:
// it decides whether the subcategory is offered for new transactions.
type Category2 struct {
	CreatedAt time.Time
	Name      string
	C1Name    string
	UserID    string
	ID        int64
	C1ID      int64
	Active    bool
}
