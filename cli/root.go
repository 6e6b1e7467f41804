// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/cliparse"
	"github.com/danielhkuo/scan-for-a-prize/db"
	"github.com/danielhkuo/scan-for-a-prize/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
	Config  cliparse.Config
}

// NewRootCommand creates the root command for the scanforaprize CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "scanforaprize",
		Short: "Scan for a Prize - QR lead capture for real estate",
		Long: `Scan for a Prize serves property landing pages behind QR codes,
captures visitor leads, and lets realtors claim properties and manage
their leads from an admin console.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.EnvFile != "" {
				if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("failed to load %s: %w", opts.EnvFile, err)
				}
			}
			if err := opts.Config.Resolve(); err != nil {
				return err
			}
			return logging.Setup(opts.Config.LogLevel, opts.Config.LogFormat)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cliparse.AddFlags(cmd.PersistentFlags(), &opts.Config)

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewCreateAdminCommand(opts))
	cmd.AddCommand(NewImportPropertiesCommand(opts))

	return cmd
}

// openDB connects with the resolved settings and brings the schema up to date.
func openDB(cfg cliparse.Config) (*gorm.DB, error) {
	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := db.Migrate(conn); err != nil {
		db.Close(conn)
		return nil, err
	}
	return conn, nil
}
