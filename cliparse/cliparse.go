// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

const (
	DefaultPort                = 3318
	DefaultDatabaseType        = "sqlite"
	DefaultSQLitePath          = "file:scanforaprize.db"
	DefaultBaseURL             = "http://localhost:3318"
	DefaultSessionTTL          = 7 * 24 * time.Hour
	DefaultClaimReservationTTL = 72 * time.Hour
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	BaseURL      string

	SessionSecret string
	SessionTTL    time.Duration

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceSingle   string
	StripePriceMulti    string

	MailjetAPIKey    string
	MailjetSecretKey string
	MailFrom         string

	CloudinaryURL string

	ClaimReservationTTL time.Duration
	ReconcileInterval   time.Duration

	LogLevel  string
	LogFormat string
}

// AddFlags binds every config flag to cfg. Zero defaults mean "not set" so
// Resolve can fall back to the environment.
func AddFlags(fs *pflag.FlagSet, cfg *Config) {
	// Network and storage
	fs.IntVarP(&cfg.Port, "port", "p", 0, "Server port (PORT)")
	fs.StringVarP(&cfg.DatabaseURL, "database-url", "d", "", "Database URL (DATABASE_URL)")
	fs.StringVarP(&cfg.DatabaseType, "database-type", "t", "", "Database type, sqlite or postgres (DATABASE_TYPE)")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL for links and QR codes (BASE_URL)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (SESSION_SECRET)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Session lifetime (SESSION_TTL)")
	fs.StringVar(&cfg.StripeSecretKey, "stripe-secret-key", "", "Stripe secret key (STRIPE_SECRET_KEY)")
	fs.StringVar(&cfg.StripeWebhookSecret, "stripe-webhook-secret", "", "Stripe webhook signing secret (STRIPE_WEBHOOK_SECRET)")
	fs.StringVar(&cfg.StripePriceSingle, "stripe-price-single", "", "Stripe price for the single property plan (STRIPE_PRICE_SINGLE)")
	fs.StringVar(&cfg.StripePriceMulti, "stripe-price-multi", "", "Stripe price for the multi property plan (STRIPE_PRICE_MULTI)")
	fs.StringVar(&cfg.MailjetAPIKey, "mailjet-api-key", "", "Mailjet API key (MAILJET_API_KEY)")
	fs.StringVar(&cfg.MailjetSecretKey, "mailjet-secret-key", "", "Mailjet secret key (MAILJET_SECRET_KEY)")
	fs.StringVar(&cfg.MailFrom, "mail-from", "", "Sender address for outbound mail (MAIL_FROM)")
	fs.StringVar(&cfg.CloudinaryURL, "cloudinary-url", "", "Cloudinary URL for prize images (CLOUDINARY_URL)")

	// Background work
	fs.DurationVar(&cfg.ClaimReservationTTL, "claim-reservation-ttl", 0, "How long a claim may wait for signup (CLAIM_RESERVATION_TTL)")
	fs.DurationVar(&cfg.ReconcileInterval, "reconcile-interval", 0, "Run claim reconciliation on this interval, 0 disables (RECONCILE_INTERVAL)")

	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level: debug, info, warn, error (LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format: auto, text, json (LOG_FORMAT)")
}

// Resolve fills unset fields from the environment, then from defaults, and
// validates the result.
func (cfg *Config) Resolve() error {
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	envString(&cfg.DatabaseType, "DATABASE_TYPE", DefaultDatabaseType)
	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	switch cfg.DatabaseType {
	case "sqlite":
		envString(&cfg.DatabaseURL, "DATABASE_URL", DefaultSQLitePath)
	case "postgres":
		envString(&cfg.DatabaseURL, "DATABASE_URL", "")
		if cfg.DatabaseURL == "" {
			return errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
	default:
		return fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	envString(&cfg.BaseURL, "BASE_URL", DefaultBaseURL)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	envString(&cfg.SessionSecret, "SESSION_SECRET", "")
	envString(&cfg.StripeSecretKey, "STRIPE_SECRET_KEY", "")
	envString(&cfg.StripeWebhookSecret, "STRIPE_WEBHOOK_SECRET", "")
	envString(&cfg.StripePriceSingle, "STRIPE_PRICE_SINGLE", "")
	envString(&cfg.StripePriceMulti, "STRIPE_PRICE_MULTI", "")
	envString(&cfg.MailjetAPIKey, "MAILJET_API_KEY", "")
	envString(&cfg.MailjetSecretKey, "MAILJET_SECRET_KEY", "")
	envString(&cfg.MailFrom, "MAIL_FROM", "noreply@scanforaprize.com")
	envString(&cfg.CloudinaryURL, "CLOUDINARY_URL", "")
	envString(&cfg.LogLevel, "LOG_LEVEL", "info")
	envString(&cfg.LogFormat, "LOG_FORMAT", "auto")

	var err error
	if cfg.SessionTTL, err = envDuration(cfg.SessionTTL, "SESSION_TTL", DefaultSessionTTL); err != nil {
		return err
	}
	if cfg.ClaimReservationTTL, err = envDuration(cfg.ClaimReservationTTL, "CLAIM_RESERVATION_TTL", DefaultClaimReservationTTL); err != nil {
		return err
	}
	if cfg.ReconcileInterval, err = envDuration(cfg.ReconcileInterval, "RECONCILE_INTERVAL", 0); err != nil {
		return err
	}

	return nil
}

// ValidateServe checks the settings the HTTP server cannot run without.
func (cfg Config) ValidateServe() error {
	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET required")
	}
	if len(cfg.SessionSecret) < 16 {
		return errors.New("SESSION_SECRET must be at least 16 characters")
	}
	return nil
}

// ParseFlags parses args on a fresh flag set and resolves the result.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := pflag.NewFlagSet("scanforaprize", pflag.ContinueOnError)
	AddFlags(fs, &cfg)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Resolve(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envString(dst *string, key, def string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		*dst = v
		return
	}
	*dst = def
}

func envDuration(current time.Duration, key string, def time.Duration) (time.Duration, error) {
	if current != 0 {
		return current, nil
	}
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return d, nil
}
