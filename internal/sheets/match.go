package sheets

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// amountTolerance is the absolute tolerance used when comparing amount
// cells numerically.
var amountTolerance = decimal.NewFromFloat(0.01)

// TransactionKey identifies a transaction row in the spreadsheet. The
// transactions sheet has no stable row id, so identification is a
// conjunction of business fields; CreatedAt is the tie-breaker between rows
// that share a date, amount and subcategory.
type TransactionKey struct {
	Date      time.Time
	CreatedAt time.Time
	C2Name    string
	Amount    float64
}

// MatchesTransactionRow reports whether a raw transactions-sheet row
// matches the key. All four predicates must hold:
//
//  1. the date cell, truncated to its date portion, equals the key's date;
//  2. the amount cell equals the key's amount, as an exact string or as a
//     number within 0.01;
//  3. the subcategory cell equals the key's subcategory name;
//  4. the creation-timestamp cell, fractional seconds dropped on both
//     sides, starts with the key's creation timestamp.
//
// When duplicate rows satisfy all four, callers mutate the first match in
// file order; there is no further tie-break.
func MatchesTransactionRow(row []string, key TransactionKey) bool {
	if len(row) <= colTxnCreatedAt {
		return false
	}

	if datePortion(row[colTxnDate]) != key.Date.UTC().Format("2006-01-02") {
		return false
	}

	if !amountMatches(row[colTxnAmount], key.Amount) {
		return false
	}

	if row[colTxnC2Name] != key.C2Name {
		return false
	}

	target := dropFractionalSeconds(key.CreatedAt.UTC().Format(time.RFC3339))
	cell := dropFractionalSeconds(strings.TrimSpace(row[colTxnCreatedAt]))
	return strings.HasPrefix(cell, strings.TrimSuffix(target, "Z"))
}

// datePortion truncates a timestamp cell to everything before the first
// time separator.
func datePortion(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		return s[:i]
	}
	return s
}

// dropFractionalSeconds removes a fractional-seconds run while keeping any
// zone designator that follows it.
func dropFractionalSeconds(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		end := i + 1
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		return s[:i] + s[end:]
	}
	return s
}

// amountMatches compares an amount cell against a target value, first as an
// exact string, then numerically within the absolute tolerance.
func amountMatches(cell string, amount float64) bool {
	cell = strings.TrimSpace(cell)
	if cell == strconv.FormatFloat(amount, 'f', -1, 64) {
		return true
	}

	cellValue, err := decimal.NewFromString(cell)
	if err != nil {
		return false
	}
	diff := cellValue.Sub(decimal.NewFromFloat(amount)).Abs()
	return diff.LessThanOrEqual(amountTolerance)
}
