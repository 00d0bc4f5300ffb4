package sheets

import (
	"context"
	"fmt"

	"github.com/spendsheet/spendsheet/internal/common"
	"github.com/spendsheet/spendsheet/internal/service"
)

// TaxonomyGroup is one top-level category and its subcategories in the
// default expense taxonomy.
type TaxonomyGroup struct {
	Name          string
	Subcategories []string
}

// DefaultTaxonomy is appended to every freshly created categories sheet.
// Order is part of the contract: rows land in the sheet in this order.
var DefaultTaxonomy = []TaxonomyGroup{
	{Name: "Food", Subcategories: []string{"Eat Outside", "Groceries", "Office Food", "Snacks", "Beverages"}},
	{Name: "Transport", Subcategories: []string{"Scooty Petrol", "Maintenance", "Parking", "Cab/Auto", "Public Transport"}},
	{Name: "Health & Fitness", Subcategories: []string{"Gym Membership", "Trainer", "Protein Powder", "Supplements", "Skincare", "Doctor/Medical"}},
	{Name: "Education & Career", Subcategories: []string{"Courses", "ChatGPT/AI Tools", "Books", "Certifications", "Workshops"}},
	{Name: "Home & Living", Subcategories: []string{"Cooking Supplies", "Utilities", "Rent", "Maintenance", "Household Items"}},
	{Name: "Family & Relationships", Subcategories: []string{"Parents Support", "Medical for Family", "Gifts", "Festivals", "Occasions"}},
	{Name: "Lifestyle", Subcategories: []string{"Shopping", "Entertainment", "Cafes", "Hobbies", "Self-care"}},
	{Name: "Subscriptions & Tools", Subcategories: []string{"Streaming", "Cloud Services", "Software", "Productivity Apps"}},
	{Name: "Travel", Subcategories: []string{"Transport", "Stay", "Food (Travel)", "Local Travel", "Activities"}},
	{Name: "Investments & Loans", Subcategories: []string{"Mutual Funds", "Stocks", "Loans", "Insurance"}},
	{Name: "Miscellaneous", Subcategories: []string{"One-off Expenses", "Unplanned", "Unknown"}},
}

// DefaultIncomeCategories is appended to every freshly created
// income-categories sheet.
var DefaultIncomeCategories = []string{
	"Salary",
	"Freelance",
	"Interest",
	"Dividends",
	"Cashback",
	"Gifts",
	"Other",
}

// DefaultSubcategoryCount returns the total number of subcategories across
// the default taxonomy.
func DefaultSubcategoryCount() int {
	count := 0
	for _, group := range DefaultTaxonomy {
		count += len(group.Subcategories)
	}
	return count
}

// headerPresent reports whether the sheet's first row already starts with
// the expected header. Only the first cell is checked; a sheet whose first
// column name matches is assumed to have been initialized before.
func headerPresent(rows [][]string, header []any) bool {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return false
	}
	return rows[0][0] == fmt.Sprint(header[0])
}

// ensureHeader writes the header row unless it is already present, so
// repeated initialization never duplicates headers. The write retries; it
// rewrites the same cells every time.
func (s *Service) ensureHeader(ctx context.Context, sheetID string, header []any) error {
	rows, err := s.ReadRows(ctx, sheetID)
	if err != nil {
		return err
	}

	if headerPresent(rows, header) {
		return nil
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  s.cfg.RetryAttempts,
		InitialDelay: s.cfg.RetryDelay,
	}
	return common.WithRetry(ctx, func() error {
		return s.writeHeader(ctx, sheetID, header)
	}, retryOpts)
}

// seedCategories initializes a fresh categories sheet: header first, then
// the full default taxonomy, every row active. Must only be called once,
// at creation time; the appends themselves are not deduplicated.
func (s *Service) seedCategories(ctx context.Context, sheetID string) error {
	if err := s.ensureHeader(ctx, sheetID, categoriesHeader); err != nil {
		return err
	}

	rows := make([][]any, 0, DefaultSubcategoryCount())
	for _, group := range DefaultTaxonomy {
		for _, sub := range group.Subcategories {
			rows = append(rows, []any{group.Name, sub, FormatSheetBool(true)})
		}
	}

	if err := s.AppendRows(ctx, sheetID, rows); err != nil {
		return err
	}

	s.logger.Info("seeded default taxonomy", "sheet_id", sheetID, "rows", len(rows))
	return nil
}

// seedIncomeCategories initializes a fresh income-categories sheet.
func (s *Service) seedIncomeCategories(ctx context.Context, sheetID string) error {
	if err := s.ensureHeader(ctx, sheetID, incomeCategoriesHeader); err != nil {
		return err
	}

	rows := make([][]any, 0, len(DefaultIncomeCategories))
	for _, name := range DefaultIncomeCategories {
		rows = append(rows, []any{name, FormatSheetBool(true)})
	}

	if err := s.AppendRows(ctx, sheetID, rows); err != nil {
		return err
	}

	s.logger.Info("seeded default income categories", "sheet_id", sheetID, "rows", len(rows))
	return nil
}
