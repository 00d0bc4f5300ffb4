package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spendsheet/spendsheet/internal/config"
	"github.com/spendsheet/spendsheet/internal/model"
	"github.com/spendsheet/spendsheet/internal/sheets"
	"github.com/spendsheet/spendsheet/internal/storage"
	"github.com/spendsheet/spendsheet/internal/usermap"

	"github.com/spf13/cobra"
)

func sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Manage the spreadsheets backing a user",
	}

	cmd.AddCommand(sheetsProvisionCmd())
	cmd.AddCommand(sheetsLocateCmd())
	cmd.AddCommand(sheetsMappingsCmd())

	return cmd
}

func sheetsProvisionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision <user-id>",
		Short: "Locate or create a user's spreadsheet pair",
		Long: `Find the user's spreadsheets by their title convention, creating and
seeding a fresh pair when none exist. The resulting ids are recorded in
the cache database and the mapping file. Without a delegated access
token the files are created under the service identity.`,
		Args: cobra.ExactArgs(1),
		RunE: runSheetsProvision,
	}

	cmd.Flags().Bool("income", false, "Provision the income pair instead of the expense pair")
	cmd.Flags().String("email", "", "User email, recorded in the provisioning log")
	cmd.Flags().String("access-token", "", "Delegated access token; files are created in the user's own space")

	return cmd
}

func runSheetsProvision(cmd *cobra.Command, args []string) error {
	userID := args[0]
	income, _ := cmd.Flags().GetBool("income")
	email, _ := cmd.Flags().GetString("email")
	accessToken, _ := cmd.Flags().GetString("access-token")

	kind := sheets.KindExpense
	if income {
		kind = sheets.KindIncome
	}

	ctx := cmd.Context()

	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	mapping, err := usermap.NewStore(config.UserMappingPath())
	if err != nil {
		return fmt.Errorf("failed to load user mapping: %w", err)
	}

	svc := sheets.NewService(ctx, config.LoadSheetsConfig(), slog.Default())

	pair := svc.GetOrCreateSheets(ctx, userID, email, accessToken, kind)

	var ids model.SheetIDs
	if income {
		ids.IncomeCategories = pair.Categories
		ids.Cashflows = pair.Entries
		if err := mapping.SetIncomeSheets(userID, pair.Categories, pair.Entries); err != nil {
			return fmt.Errorf("failed to record income sheet ids: %w", err)
		}
	} else {
		ids.Categories = pair.Categories
		ids.Transactions = pair.Entries
		if err := mapping.SetExpenseSheets(userID, pair.Categories, pair.Entries); err != nil {
			return fmt.Errorf("failed to record expense sheet ids: %w", err)
		}
	}

	if err := store.UpdateUserSheetIDs(ctx, userID, ids); err != nil {
		return fmt.Errorf("failed to record sheet ids for user %s: %w", userID, err)
	}

	slog.Info("sheets provisioned",
		"user_id", userID,
		"kind", kind.String(),
		"categories_sheet", pair.Categories,
		"entries_sheet", pair.Entries)
	return nil
}

func sheetsMappingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mappings",
		Short: "List every recorded user-to-spreadsheet mapping",
		Args:  cobra.NoArgs,
		RunE:  runSheetsMappings,
	}
}

func runSheetsMappings(cmd *cobra.Command, _ []string) error {
	mapping, err := usermap.NewStore(config.UserMappingPath())
	if err != nil {
		return fmt.Errorf("failed to load user mapping: %w", err)
	}

	ids := mapping.UserIDs()
	sort.Strings(ids)
	for _, userID := range ids {
		entry, _ := mapping.Get(userID)
		fmt.Fprintf(cmd.OutOrStdout(), "%s\texpense=%v\tincome=%v\n",
			userID, mapping.HasExpenseSheets(userID), mapping.HasIncomeSheets(userID))
		if entry.CategoriesSheetID != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\tcategories=%s\texpenses=%s\n",
				entry.CategoriesSheetID, entry.TransactionsSheetID)
		}
		if entry.IncomeCategoriesSheetID != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\tincome_categories=%s\tcashflows=%s\n",
				entry.IncomeCategoriesSheetID, entry.CashflowsSheetID)
		}
	}

	slog.Info("mappings listed", "users", len(ids))
	return nil
}

func sheetsLocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate <user-id>",
		Short: "Find a user's spreadsheets without creating anything",
		Args:  cobra.ExactArgs(1),
		RunE:  runSheetsLocate,
	}

	cmd.Flags().Bool("income", false, "Locate the income pair instead of the expense pair")
	cmd.Flags().String("access-token", "", "Delegated access token; searches the user's own space")

	return cmd
}

func runSheetsLocate(cmd *cobra.Command, args []string) error {
	userID := args[0]
	income, _ := cmd.Flags().GetBool("income")
	accessToken, _ := cmd.Flags().GetString("access-token")

	kind := sheets.KindExpense
	if income {
		kind = sheets.KindIncome
	}

	ctx := cmd.Context()
	svc := sheets.NewService(ctx, config.LoadSheetsConfig(), slog.Default())

	pair, err := svc.Locate(ctx, userID, accessToken, kind)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	if pair == nil {
		slog.Info("no sheets found", "user_id", userID, "kind", kind.String())
		return nil
	}

	slog.Info("sheets found",
		"user_id", userID,
		"kind", kind.String(),
		"categories_sheet", pair.Categories,
		"entries_sheet", pair.Entries)
	return nil
}
