package main

import (
	"fmt"
	"log/slog"

	"github.com/spendsheet/spendsheet/internal/config"
	"github.com/spendsheet/spendsheet/internal/hydrate"
	"github.com/spendsheet/spendsheet/internal/sheets"
	"github.com/spendsheet/spendsheet/internal/storage"

	"github.com/spf13/cobra"
)

func hydrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hydrate [user-id]",
		Short: "Rebuild the local cache from the spreadsheets",
		Long: `Wipe and rebuild the cached categories, transactions, income categories
and inflows from the spreadsheet contents. With a user id the rebuild
covers that user only; with --all it sweeps every known user.

Users without spreadsheet backing are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHydrate,
	}

	cmd.Flags().Bool("all", false, "Hydrate every known user")

	return cmd
}

func runHydrate(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	if !all && len(args) == 0 {
		return fmt.Errorf("a user id or --all is required")
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

	svc := sheets.NewService(ctx, config.LoadSheetsConfig(), slog.Default())
	if !svc.Available() {
		return fmt.Errorf("sheets service unavailable, nothing to hydrate from")
	}

	hydrator := hydrate.New(store, svc, slog.Default())

	if all {
		return hydrator.HydrateAll(ctx)
	}

	user, err := store.GetUser(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", args[0], err)
	}
	return hydrator.HydrateUser(ctx, user)
}
