// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package claims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/apperr"
	"github.com/danielhkuo/scan-for-a-prize/auth"
	"github.com/danielhkuo/scan-for-a-prize/mailer"
	"github.com/danielhkuo/scan-for-a-prize/models"
)

type Verified struct {
	User     models.User
	Property models.Property
}

// RequestVerification checks the property code and mails a one-time link
// that claims the property for email.
func (s *Service) RequestVerification(ctx context.Context, slug, email, code string) error {
	email = auth.NormalizeEmail(email)
	if slug == "" || email == "" || code == "" {
		return apperr.Validation("All fields are required")
	}

	token, err := auth.GenerateToken()
	if err != nil {
		return err
	}

	var property models.Property
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := findBySlug(tx, slug)
		if err != nil {
			return err
		}
		if !auth.CodesMatch(code, p.VerificationCode) {
			return ErrInvalidCode
		}
		if p.Status != models.StatusUnclaimed {
			return ErrAlreadyClaimed
		}
		property = p

		var user models.User
		err = tx.Where("email = ?", email).Take(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{ID: auth.NewID(), Email: email, Role: models.RoleRealtor}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		return tx.Create(&models.VerificationToken{
			ID:         auth.NewID(),
			Token:      token,
			UserID:     user.ID,
			PropertyID: p.ID,
			ExpiresAt:  s.now().Add(TokenTTL),
		}).Error
	})
	if err != nil {
		return err
	}

	msg, err := mailer.VerificationMessage(mailer.Verification{
		Email:           email,
		PropertyAddress: property.Address,
		URL:             s.VerificationURL(token),
	})
	if err != nil {
		s.revokeToken(ctx, token)
		return err
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		slog.Error("failed to send verification email", "error", err, "property_id", property.ID)
		s.revokeToken(ctx, token)
		return apperr.Wrap(apperr.KindUnavailable, "Failed to send verification email", err)
	}

	slog.Info("verification issued", "property_id", property.ID)
	return nil
}

// revokeToken deletes a token whose link was never delivered. It runs even
// if the request was cancelled.
func (s *Service) revokeToken(ctx context.Context, token string) {
	err := s.db.WithContext(context.WithoutCancel(ctx)).
		Where("token = ?", token).
		Delete(&models.VerificationToken{}).Error
	if err != nil {
		slog.Error("failed to revoke undelivered token", "error", err)
	}
}

// VerificationURL is the link mailed for token.
func (s *Service) VerificationURL(token string) string {
	return s.baseURL + "/verify?token=" + url.QueryEscape(token)
}

// ConsumeVerification redeems a token: the user is marked verified, the
// property is linked to them, and the token is deleted. All or nothing.
func (s *Service) ConsumeVerification(ctx context.Context, token string) (Verified, error) {
	if strings.TrimSpace(token) == "" {
		return Verified{}, ErrTokenExpired
	}

	var out Verified
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()

		var vt models.VerificationToken
		err := tx.Where("token = ? AND expires_at > ?", token, now).Take(&vt).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenExpired
		}
		if err != nil {
			return fmt.Errorf("failed to load token: %w", err)
		}

		if err := tx.Model(&models.User{}).Where("id = ?", vt.UserID).Update("verified_at", now).Error; err != nil {
			return fmt.Errorf("failed to verify user: %w", err)
		}

		res := tx.Model(&models.Property{}).
			Where("id = ? AND (status = ? OR claimed_by_user_id = ?)", vt.PropertyID, models.StatusUnclaimed, vt.UserID).
			Updates(map[string]any{
				"claimed_by_user_id": vt.UserID,
				"status":             models.StatusActive,
				"claimed_at":         gorm.Expr("COALESCE(claimed_at, ?)", now),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to link property: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyClaimed
		}

		if err := tx.Delete(&models.VerificationToken{}, "id = ?", vt.ID).Error; err != nil {
			return fmt.Errorf("failed to delete token: %w", err)
		}

		if err := tx.Where("id = ?", vt.UserID).Take(&out.User).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", vt.PropertyID).Take(&out.Property).Error
	})
	if err != nil {
		return Verified{}, err
	}

	slog.Info("verification consumed", "user_id", out.User.ID, "property_id", out.Property.ID)
	return out, nil
}
