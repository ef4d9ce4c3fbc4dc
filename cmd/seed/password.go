package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"
)

var (
	resetEmail    string
	resetRole     string
	resetPassword string
)

var passwordCmd = &cobra.Command{
	Use:     "password",
	Short:   "Reset the password of an account",
	Example: `  seed password --email admin@shop.io --role admin --password new-secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role := model.Role(resetRole)
		if !role.Valid() {
			return fmt.Errorf("unknown role %q", resetRole)
		}
		if err := resetAccountPassword(cmd.Context(), current.users, current.auth, resetEmail, role, resetPassword); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", resetEmail)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(passwordCmd)

	passwordCmd.Flags().StringVar(&resetEmail, "email", "", "Account email (required)")
	passwordCmd.Flags().StringVar(&resetRole, "role", string(model.RoleAdmin), "Account role: admin or user")
	passwordCmd.Flags().StringVar(&resetPassword, "password", "", "New password (required)")
	_ = passwordCmd.MarkFlagRequired("email")
	_ = passwordCmd.MarkFlagRequired("password")
}

func resetAccountPassword(ctx context.Context, users repository.UserRepository, authService service.AuthService, email string, role model.Role, password string) error {
	user, err := users.FindByEmailAndRole(ctx, strings.ToLower(strings.TrimSpace(email)), role)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("find account: %w", err)
	}
	return authService.ChangePassword(ctx, user.ID, password)
}
