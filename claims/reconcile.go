// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package claims

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/models"
)

type ReconcileResult struct {
	Released     int
	Expired      int
	TokensPurged int64
}

// Reconcile releases reservations whose signup never happened. A claim still
// approved after ttl is expired, and its property goes back to unclaimed when
// nobody has been linked to it. Expired verification tokens are deleted.
func (s *Service) Reconcile(ctx context.Context, ttl time.Duration) (ReconcileResult, error) {
	var result ReconcileResult
	now := s.now()
	cutoff := now.Add(-ttl)

	var stale []models.PropertyClaim
	if err := s.db.WithContext(ctx).
		Where("claim_status = ? AND approved_at < ?", models.ClaimApproved, cutoff).
		Find(&stale).Error; err != nil {
		return result, fmt.Errorf("failed to find stale claims: %w", err)
	}

	for _, claim := range stale {
		released := false
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Property{}).
				Where("id = ? AND status = ? AND claimed_by_user_id IS NULL", claim.PropertyID, models.StatusClaimed).
				Updates(map[string]any{"status": models.StatusUnclaimed, "claimed_at": nil})
			if res.Error != nil {
				return res.Error
			}
			released = res.RowsAffected > 0

			return tx.Model(&models.PropertyClaim{}).
				Where("id = ? AND claim_status = ?", claim.ID, models.ClaimApproved).
				Update("claim_status", models.ClaimExpired).Error
		})
		if err != nil {
			return result, fmt.Errorf("failed to expire claim %s: %w", claim.ID, err)
		}
		result.Expired++
		if released {
			result.Released++
			slog.Info("released stale reservation", "property_id", claim.PropertyID, "claim_id", claim.ID)
		}
	}

	res := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.VerificationToken{})
	if res.Error != nil {
		return result, fmt.Errorf("failed to purge tokens: %w", res.Error)
	}
	result.TokensPurged = res.RowsAffected

	slog.Info("reconcile complete",
		"claims_expired", result.Expired,
		"properties_released", result.Released,
		"tokens_purged", result.TokensPurged,
	)
	return result, nil
}

// RunReconciler calls Reconcile every interval until ctx is done.
func (s *Service) RunReconciler(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Reconcile(ctx, ttl); err != nil {
				slog.Error("reconcile failed", "error", err)
			}
		}
	}
}
