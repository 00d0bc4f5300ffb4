package sheets

import (
	"testing"
	"time"
)

func TestParseSheetBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"TRUE", true},
		{"true", true},
		{"true ", true},
		{"True", true},
		{" TRUE ", true},
		{"FALSE", false},
		{"False", false},
		{"false", false},
		{"", false},
		{"yes", false},
		{"1", false},
	}
	for _, tt := range tests {
		if got := ParseSheetBool(tt.in); got != tt.want {
			t.Errorf("ParseSheetBool(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseSheetTime(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{"2026-03-15T09:30:12Z", time.Date(2026, 3, 15, 9, 30, 12, 0, time.UTC), true},
		{"2026-03-15T09:30:12", time.Date(2026, 3, 15, 9, 30, 12, 0, time.UTC), true},
		{"2026-03-15 09:30:12", time.Date(2026, 3, 15, 9, 30, 12, 0, time.UTC), true},
		{"2026-03-15", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"not a date", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseSheetTime(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ParseSheetTime(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("ParseSheetTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseCategoryRecord(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]string
		want   CategoryRow
		wantOK bool
	}{
		{
			name:   "complete row",
			record: map[string]string{"c1_name": "Food", "c2_name": "Groceries", "is_active": "TRUE"},
			want:   CategoryRow{C1Name: "Food", C2Name: "Groceries", Active: true},
			wantOK: true,
		},
		{
			name:   "inactive row",
			record: map[string]string{"c1_name": "Food", "c2_name": "Groceries", "is_active": "FALSE"},
			want:   CategoryRow{C1Name: "Food", C2Name: "Groceries", Active: false},
			wantOK: true,
		},
		{
			name:   "names trimmed",
			record: map[string]string{"c1_name": " Food ", "c2_name": " Groceries ", "is_active": "TRUE"},
			want:   CategoryRow{C1Name: "Food", C2Name: "Groceries", Active: true},
			wantOK: true,
		},
		{
			name:   "missing subcategory",
			record: map[string]string{"c1_name": "Food", "c2_name": "", "is_active": "TRUE"},
			wantOK: false,
		},
		{
			name:   "missing parent",
			record: map[string]string{"c1_name": "", "c2_name": "Groceries", "is_active": "TRUE"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCategoryRecord(tt.record)
			if ok != tt.wantOK {
				t.Fatalf("ParseCategoryRecord() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseCategoryRecord() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseTransactionRecord(t *testing.T) {
	record := map[string]string{
		"date":         "2026-03-15T00:00:00Z",
		"amount":       "250.5",
		"c1_name":      "Food",
		"c2_name":      "Groceries",
		"payment_mode": "UPI",
		"notes":        "weekly shop",
		"person":       "",
		"need_vs_want": "Need",
		"created_at":   "2026-03-15T09:30:12Z",
		"deleted":      "FALSE",
	}

	row, ok := ParseTransactionRecord(record)
	if !ok {
		t.Fatal("expected row to parse")
	}
	if row.Amount != 250.5 {
		t.Errorf("Amount = %v, want 250.5", row.Amount)
	}
	if row.PaymentMode != "UPI" {
		t.Errorf("PaymentMode = %q, want UPI", row.PaymentMode)
	}
	if row.Deleted {
		t.Error("Deleted = true, want false")
	}
	if !row.Date.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", row.Date)
	}
}

func TestParseTransactionRecordDefaults(t *testing.T) {
	before := time.Now().UTC()
	row, ok := ParseTransactionRecord(map[string]string{
		"c1_name": "Food",
		"c2_name": "Groceries",
		"amount":  "garbage",
		"date":    "not a date",
	})
	if !ok {
		t.Fatal("expected row to parse")
	}

	if row.Amount != 0 {
		t.Errorf("Amount = %v, want 0 for unparseable cell", row.Amount)
	}
	if row.PaymentMode != "Cash" {
		t.Errorf("PaymentMode = %q, want Cash default", row.PaymentMode)
	}
	if row.Date.Before(before) {
		t.Errorf("Date = %v, expected fallback to current time", row.Date)
	}
	if row.CreatedAt.Before(before) {
		t.Errorf("CreatedAt = %v, expected fallback to current time", row.CreatedAt)
	}
}

func TestParseTransactionRecordMissingCategory(t *testing.T) {
	if _, ok := ParseTransactionRecord(map[string]string{"c1_name": "Food", "amount": "10"}); ok {
		t.Error("expected row without subcategory to be rejected")
	}
	if _, ok := ParseTransactionRecord(map[string]string{"c2_name": "Groceries", "amount": "10"}); ok {
		t.Error("expected row without parent category to be rejected")
	}
}

func TestParseInflowRecord(t *testing.T) {
	record := map[string]string{
		"id":         "abc-123",
		"date":       "2026-03-01",
		"amount":     "50000",
		"c2_name":    "Salary",
		"notes":      "march",
		"created_at": "2026-03-01T08:00:00Z",
		"is_deleted": "TRUE",
	}

	row, ok := ParseInflowRecord(record)
	if !ok {
		t.Fatal("expected row to parse")
	}
	if row.ExternalID != "abc-123" {
		t.Errorf("ExternalID = %q", row.ExternalID)
	}
	if row.Amount != 50000 {
		t.Errorf("Amount = %v", row.Amount)
	}
	if !row.Deleted {
		t.Error("Deleted = false, want true")
	}
}

func TestParseInflowRecordRejectsMissingKeys(t *testing.T) {
	if _, ok := ParseInflowRecord(map[string]string{"c2_name": "Salary", "amount": "10"}); ok {
		t.Error("expected row without external id to be rejected")
	}
	if _, ok := ParseInflowRecord(map[string]string{"id": "abc", "amount": "10"}); ok {
		t.Error("expected row without category to be rejected")
	}
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		col  int64
		want string
	}{
		{1, "A"},
		{2, "B"},
		{10, "J"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{53, "BA"},
	}
	for _, tt := range tests {
		if got := columnName(tt.col); got != tt.want {
			t.Errorf("columnName(%d) = %q, want %q", tt.col, got, tt.want)
		}
	}
}
