package main

import (
	"fmt"
	"log/slog"

	"github.com/spendsheet/spendsheet/internal/config"
	"github.com/spendsheet/spendsheet/internal/model"
	"github.com/spendsheet/spendsheet/internal/storage"

	"github.com/spf13/cobra"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage known users",
	}

	cmd.AddCommand(usersListCmd())
	cmd.AddCommand(usersAddCmd())

	return cmd
}

func usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known users and their sheet backing",
		RunE:  runUsersList,
	}
}

func runUsersList(cmd *cobra.Command, _ []string) error {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	for i := range users {
		u := &users[i]
		slog.Info("user",
			"id", u.ID,
			"email", u.Email,
			"expense_sheets", u.HasExpenseSheets(),
			"income_sheets", u.HasIncomeSheets())
	}
	slog.Info("total users", "count", len(users))
	return nil
}

func usersAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <user-id>",
		Short: "Register or refresh a user record",
		Long: `Insert a user, or refresh the profile fields of an existing one. Sheet
ids already recorded for the user are never touched by this command.`,
		Args: cobra.ExactArgs(1),
		RunE: runUsersAdd,
	}

	cmd.Flags().String("email", "", "User email")
	cmd.Flags().String("name", "", "Display name")

	return cmd
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")

	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	user := &model.User{
		ID:    args[0],
		Email: email,
		Name:  name,
	}
	if err := store.UpsertUser(ctx, user); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	slog.Info("user recorded", "id", user.ID, "email", user.Email)
	return nil
}
