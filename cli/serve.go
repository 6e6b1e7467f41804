// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/scan-for-a-prize/billing"
	"github.com/danielhkuo/scan-for-a-prize/claims"
	"github.com/danielhkuo/scan-for-a-prize/cliparse"
	"github.com/danielhkuo/scan-for-a-prize/db"
	"github.com/danielhkuo/scan-for-a-prize/mailer"
	"github.com/danielhkuo/scan-for-a-prize/media"
	"github.com/danielhkuo/scan-for-a-prize/middleware"
	"github.com/danielhkuo/scan-for-a-prize/router"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts.Config)
		},
	}
}

// buildDeps picks real integrations where credentials are configured.
func buildDeps(cfg cliparse.Config) (router.Deps, error) {
	uploader, err := media.New(cfg.CloudinaryURL)
	if err != nil {
		return router.Deps{}, err
	}

	deps := router.Deps{
		Mail:  mailer.New(cfg.MailjetAPIKey, cfg.MailjetSecretKey, cfg.MailFrom),
		Media: uploader,
	}
	if cfg.StripeSecretKey != "" {
		deps.Billing = billing.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		slog.Warn("STRIPE_SECRET_KEY not set, billing endpoints will return 503")
	}
	return deps, nil
}

func runServe(ctx context.Context, cfg cliparse.Config) error {
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	conn, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close(conn)
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ReconcileInterval > 0 {
		svc := claims.NewService(conn, deps.Mail, cfg.BaseURL)
		go svc.RunReconciler(ctx, cfg.ReconcileInterval, cfg.ClaimReservationTTL)
		slog.Info("reconciler started", "interval", cfg.ReconcileInterval, "reservation_ttl", cfg.ClaimReservationTTL)
	}

	server := http.Server{
		Handler:           middleware.CORS(router.NewRouter(conn, cfg, deps)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	slog.Info("Listening", "port", cfg.Port, "base_url", cfg.BaseURL)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
		return err
	}
	slog.Info("Server closed")
	return nil
}
