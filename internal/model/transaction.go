package model

import "time"

// Transaction is a single expense entry. Category names are denormalized
// alongside the numeric ids because the spreadsheet rows carry names only;
// the hydrator re-resolves ids on every rebuild.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      string
	C1Name      string
	C2Name      string
	PaymentMode string
	Notes       string
	Person      string
	NeedVsWant  string
	ID          int64
	C1ID        int64
	C2ID        int64
	Amount      float64
	Deleted     bool
}
