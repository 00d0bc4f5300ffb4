// Package model defines the domain entities shared across the application.
package model

import "time"

// LocalSheetID is the sentinel spreadsheet id meaning a user has no
// spreadsheet backing. It permanently disables hydration and propagation
// for the affected data set; it is not a transient error state.
const LocalSheetID = "local"

// User represents an authenticated account. The identity key is the opaque
// subject id issued by the identity provider, not an email.
type User struct {
	CreatedAt   time.Time
	LastLoginAt time.Time
	ID          string
	Email       string
	Name        string
	Picture     string

	// Spreadsheet ids backing this user's data. Each is either a real
	// Drive file id or LocalSheetID.
	CategoriesSheetID       string
	TransactionsSheetID     string
	IncomeCategoriesSheetID string
	CashflowsSheetID        string

	// Delegated credentials captured at login; may be empty.
	AccessToken  string
	RefreshToken string
}

// SheetIDs bundles the four spreadsheet ids backing one user. Empty fields
// mean "leave unchanged" when passed to an update.
type SheetIDs struct {
	Categories       string
	Transactions     string
	IncomeCategories string
	Cashflows        string
}

// HasExpenseSheets reports whether the user's expense data is backed by
// real spreadsheets rather than the local sentinel.
func (u *User) HasExpenseSheets() bool {
	return u.CategoriesSheetID != "" && u.CategoriesSheetID != LocalSheetID &&
		u.TransactionsSheetID != "" && u.TransactionsSheetID != LocalSheetID
}

// HasIncomeSheets reports whether the user's income data is spreadsheet-backed.
func (u *User) HasIncomeSheets() bool {
	return u.IncomeCategoriesSheetID != "" && u.IncomeCategoriesSheetID != LocalSheetID &&
		u.CashflowsSheetID != "" && u.CashflowsSheetID != LocalSheetID
}
