package sheets

import (
	"strconv"
	"strings"
	"time"

	"github.com/spendsheet/spendsheet/internal/model"
)

// Fixed column orders. Header rows are mandatory; every sheet's first row
// is the header below.
var (
	categoriesHeader       = []any{"c1_name", "c2_name", "is_active"}
	transactionsHeader     = []any{"date", "amount", "c1_name", "c2_name", "payment_mode", "notes", "person", "need_vs_want", "created_at", "deleted"}
	incomeCategoriesHeader = []any{"c2_name", "is_active"}
	cashflowsHeader        = []any{"id", "date", "amount", "c2_name", "notes", "created_at", "is_deleted"}
)

// 0-based column positions within a raw transactions-sheet row.
const (
	colTxnDate = iota
	colTxnAmount
	colTxnC1Name
	colTxnC2Name
	colTxnPaymentMode
	colTxnNotes
	colTxnPerson
	colTxnNeedVsWant
	colTxnCreatedAt
	colTxnDeleted
)

// 0-based column positions within a raw cashflows-sheet row.
const (
	colInflowID = iota
	colInflowDate
	colInflowAmount
	colInflowC2Name
	colInflowNotes
	colInflowCreatedAt
	colInflowDeleted
)

// 1-based status columns rewritten by the propagator.
const (
	categoryActiveColumn       = 3
	incomeCategoryActiveColumn = 2
)

// ParseSheetBool reads a spreadsheet boolean cell. Only a case-insensitive
// "TRUE" (ignoring surrounding whitespace) is true; any other value,
// including empty, is false.
func ParseSheetBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "TRUE")
}

// FormatSheetBool writes the exact-case literal the sheets expect.
func FormatSheetBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// timeLayouts are tried in order when reading timestamp cells.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseSheetTime reads an ISO-8601 timestamp cell, accepting a trailing Z
// as a UTC offset. The second return value reports whether parsing
// succeeded; callers substitute their own fallback on failure.
func ParseSheetTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseSheetAmount coerces an amount cell to a float, 0 on anything
// missing or unparseable.
func parseSheetAmount(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// CategoryRow is one parsed row of the categories sheet.
type CategoryRow struct {
	C1Name string
	C2Name string
	Active bool
}

// ParseCategoryRecord parses a header-keyed categories row. Rows missing
// either name are reported unusable.
func ParseCategoryRecord(record map[string]string) (CategoryRow, bool) {
	row := CategoryRow{
		C1Name: strings.TrimSpace(record["c1_name"]),
		C2Name: strings.TrimSpace(record["c2_name"]),
		Active: ParseSheetBool(record["is_active"]),
	}
	if row.C1Name == "" || row.C2Name == "" {
		return CategoryRow{}, false
	}
	return row, true
}

// TransactionRow is one parsed row of the transactions sheet. Date and
// CreatedAt degrade to the current time when unparseable rather than
// rejecting the row.
type TransactionRow struct {
	Date        time.Time
	CreatedAt   time.Time
	C1Name      string
	C2Name      string
	PaymentMode string
	Notes       string
	Person      string
	NeedVsWant  string
	Amount      float64
	Deleted     bool
}

// ParseTransactionRecord parses a header-keyed transactions row. Rows
// missing either category name are reported unusable; every other field
// degrades to an explicit default.
func ParseTransactionRecord(record map[string]string) (TransactionRow, bool) {
	row := TransactionRow{
		C1Name:      strings.TrimSpace(record["c1_name"]),
		C2Name:      strings.TrimSpace(record["c2_name"]),
		PaymentMode: record["payment_mode"],
		Notes:       record["notes"],
		Person:      record["person"],
		NeedVsWant:  record["need_vs_want"],
		Amount:      parseSheetAmount(record["amount"]),
		Deleted:     ParseSheetBool(record["deleted"]),
	}
	if row.C1Name == "" || row.C2Name == "" {
		return TransactionRow{}, false
	}

	now := time.Now().UTC()
	if t, ok := ParseSheetTime(record["date"]); ok {
		row.Date = t
	} else {
		row.Date = now
	}
	if t, ok := ParseSheetTime(record["created_at"]); ok {
		row.CreatedAt = t
	} else {
		row.CreatedAt = now
	}

	if row.PaymentMode == "" {
		row.PaymentMode = "Cash"
	}

	return row, true
}

// IncomeCategoryRow is one parsed row of the income-categories sheet.
type IncomeCategoryRow struct {
	Name   string
	Active bool
}

// ParseIncomeCategoryRecord parses a header-keyed income-categories row.
func ParseIncomeCategoryRecord(record map[string]string) (IncomeCategoryRow, bool) {
	row := IncomeCategoryRow{
		Name:   strings.TrimSpace(record["c2_name"]),
		Active: ParseSheetBool(record["is_active"]),
	}
	if row.Name == "" {
		return IncomeCategoryRow{}, false
	}
	return row, true
}

// InflowRow is one parsed row of the cashflows sheet.
type InflowRow struct {
	Date         time.Time
	CreatedAt    time.Time
	ExternalID   string
	CategoryName string
	Notes        string
	Amount       float64
	Deleted      bool
}

// ParseInflowRecord parses a header-keyed cashflows row. Rows missing the
// external id or category name are reported unusable.
func ParseInflowRecord(record map[string]string) (InflowRow, bool) {
	row := InflowRow{
		ExternalID:   strings.TrimSpace(record["id"]),
		CategoryName: strings.TrimSpace(record["c2_name"]),
		Notes:        record["notes"],
		Amount:       parseSheetAmount(record["amount"]),
		Deleted:      ParseSheetBool(record["is_deleted"]),
	}
	if row.ExternalID == "" || row.CategoryName == "" {
		return InflowRow{}, false
	}

	now := time.Now().UTC()
	if t, ok := ParseSheetTime(record["date"]); ok {
		row.Date = t
	} else {
		row.Date = now
	}
	if t, ok := ParseSheetTime(record["created_at"]); ok {
		row.CreatedAt = t
	} else {
		row.CreatedAt = now
	}

	return row, true
}

// transactionRowValues serializes a transaction in the fixed column order.
// New rows always carry a false soft-delete flag.
func transactionRowValues(txn *model.Transaction) []any {
	return []any{
		txn.Date.UTC().Format(time.RFC3339),
		txn.Amount,
		txn.C1Name,
		txn.C2Name,
		txn.PaymentMode,
		txn.Notes,
		txn.Person,
		txn.NeedVsWant,
		txn.CreatedAt.UTC().Format(time.RFC3339),
		FormatSheetBool(false),
	}
}

// inflowRowValues serializes an inflow in the fixed column order.
func inflowRowValues(inflow *model.Inflow) []any {
	return []any{
		inflow.ExternalID,
		inflow.Date.UTC().Format(time.RFC3339),
		inflow.Amount,
		inflow.CategoryName,
		inflow.Notes,
		inflow.CreatedAt.UTC().Format(time.RFC3339),
		FormatSheetBool(false),
	}
}
