// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/scan-for-a-prize/claims"
	"github.com/danielhkuo/scan-for-a-prize/db"
	"github.com/danielhkuo/scan-for-a-prize/mailer"
)

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Release stale claim reservations and purge expired tokens",
		Long: `Expire claims that were approved longer ago than --claim-reservation-ttl
without completing signup, return their properties to unclaimed, and delete
expired verification tokens. Run it from cron, or set --reconcile-interval on
serve to do the same in-process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			conn, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close(conn)

			svc := claims.NewService(conn, mailer.Log{}, cfg.BaseURL)
			res, err := svc.Reconcile(cmd.Context(), cfg.ClaimReservationTTL)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "claims expired: %d\nproperties released: %d\ntokens purged: %d\n",
				res.Expired, res.Released, res.TokensPurged)
			return nil
		},
	}
}
