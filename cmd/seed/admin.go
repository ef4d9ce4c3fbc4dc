package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/service"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

// adminCmd creates an administrator. Admin registration over HTTP needs an
// admin token, so the first one has to come from here.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create an administrator account",
	Example: `  seed admin --email admin@shop.io --password secret
  seed admin --name "Store Owner" --email owner@shop.io --password secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := createAdmin(cmd.Context(), current.auth, adminName, adminEmail, adminPassword)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s\n", adminEmail)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists\n", adminEmail)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)

	adminCmd.Flags().StringVar(&adminName, "name", "Admin", "Display name")
	adminCmd.Flags().StringVar(&adminEmail, "email", "", "Login email (required)")
	adminCmd.Flags().StringVar(&adminPassword, "password", "", "Login password (required)")
	_ = adminCmd.MarkFlagRequired("email")
	_ = adminCmd.MarkFlagRequired("password")
}

// createAdmin registers an administrator. An existing account with the same
// email is left untouched and reported as not created.
func createAdmin(ctx context.Context, authService service.AuthService, name, email, password string) (bool, error) {
	user, err := authService.Register(ctx, service.RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     model.RoleAdmin,
	})
	if errors.Is(err, apperrors.ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	slog.InfoContext(ctx, "admin created", "user_id", user.ID)
	return true, nil
}
