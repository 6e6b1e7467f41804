// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/auth"
	"github.com/danielhkuo/scan-for-a-prize/db"
	"github.com/danielhkuo/scan-for-a-prize/models"
)

// CreateAdminOptions holds flags for the create-admin command.
type CreateAdminOptions struct {
	Email    string
	Password string
	Name     string
}

// NewCreateAdminCommand creates the create-admin command.
func NewCreateAdminCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateAdminOptions{}

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the master admin, or promote an existing user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openDB(rootOpts.Config)
			if err != nil {
				return err
			}
			defer db.Close(conn)

			user, created, err := createAdmin(conn, *opts)
			if err != nil {
				return err
			}
			verb := "promoted"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "master admin %s: %s (%s)\n", verb, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "admin email (required)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "admin password, at least 6 characters (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "Master Admin", "display name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func createAdmin(conn *gorm.DB, opts CreateAdminOptions) (models.User, bool, error) {
	email := auth.NormalizeEmail(opts.Email)
	if email == "" {
		return models.User{}, false, errors.New("email is required")
	}
	if len(opts.Password) < auth.MinPasswordLength {
		return models.User{}, false, fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
	}
	if len(opts.Password) > auth.MaxPasswordLength {
		return models.User{}, false, fmt.Errorf("password must be at most %d bytes", auth.MaxPasswordLength)
	}

	hash, err := auth.HashPassword(opts.Password)
	if err != nil {
		return models.User{}, false, err
	}

	var user models.User
	created := false
	err = conn.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).Take(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			now := time.Now().UTC()
			user = models.User{
				ID:           auth.NewID(),
				Email:        email,
				PasswordHash: &hash,
				Name:         opts.Name,
				Role:         models.RoleMasterAdmin,
				VerifiedAt:   &now,
			}
			created = true
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}

		user.Role = models.RoleMasterAdmin
		user.PasswordHash = &hash
		return tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
			"role":          models.RoleMasterAdmin,
			"password_hash": hash,
		}).Error
	})
	if err != nil {
		return models.User{}, false, fmt.Errorf("failed to save admin: %w", err)
	}

	slog.Info("master admin ready", "user_id", user.ID, "created", created)
	return user, created, nil
}
