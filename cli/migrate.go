// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/scan-for-a-prize/db"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openDB(rootOpts.Config)
			if err != nil {
				return err
			}
			defer db.Close(conn)

			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", rootOpts.Config.DatabaseType)
			return nil
		},
	}
}
