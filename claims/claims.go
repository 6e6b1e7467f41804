// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package claims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/apperr"
	"github.com/danielhkuo/scan-for-a-prize/auth"
	"github.com/danielhkuo/scan-for-a-prize/mailer"
	"github.com/danielhkuo/scan-for-a-prize/models"
)

var (
	ErrPropertyNotFound = apperr.NotFound("Property not found")
	ErrAlreadyClaimed   = apperr.Conflict("This property has already been claimed")
	ErrInvalidCode      = apperr.Validation("Invalid verification code")
	ErrDuplicateEmail   = apperr.Conflict("An account with this email already exists. Please sign in to your existing account.")
	ErrInvalidClaim     = apperr.Validation("Invalid or expired claim. Please try claiming the property again.")
	ErrTokenExpired     = apperr.New(apperr.KindExpired, "The verification link has expired or is invalid")
)

// TokenTTL is how long an emailed verification link stays valid.
const TokenTTL = 24 * time.Hour

type Service struct {
	db      *gorm.DB
	mail    mailer.Sender
	baseURL string
	now     func() time.Time
}

func NewService(db *gorm.DB, mail mailer.Sender, baseURL string) *Service {
	return &Service{
		db:      db,
		mail:    mail,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type ClaimInput struct {
	Slug             string
	VerificationCode string
	Email            string
	Name             string
	Phone            string
}

type ClaimResult struct {
	Claim     models.PropertyClaim
	Property  models.Property
	LeadCount int64
}

type SignupInput struct {
	Email           string
	Name            string
	Phone           string
	Password        string
	ConfirmPassword string
	CompanyName     string
	ClaimID         string
	PropertyID      string
}

type SignupResult struct {
	User      models.User
	Property  *models.Property
	LeadCount int64
}

// VerifyProperty checks that slug names a property. It has no side effects.
func (s *Service) VerifyProperty(ctx context.Context, slug string) (models.Property, error) {
	if strings.TrimSpace(slug) == "" {
		return models.Property{}, apperr.Validation("Property code is required")
	}
	return findBySlug(s.db.WithContext(ctx), slug)
}

// Claim reserves an unclaimed property for a realtor who knows its code.
// The property moves to claimed with no owner until signup completes.
func (s *Service) Claim(ctx context.Context, in ClaimInput) (ClaimResult, error) {
	in.Email = auth.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Slug == "" || in.VerificationCode == "" || in.Email == "" || in.Name == "" {
		return ClaimResult{}, apperr.Validation("Property code, verification code, email, and name are required")
	}

	var result ClaimResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := findBySlug(tx, in.Slug)
		if err != nil {
			return err
		}
		if property.Status != models.StatusUnclaimed {
			return ErrAlreadyClaimed
		}
		if !auth.CodesMatch(in.VerificationCode, property.VerificationCode) {
			return ErrInvalidCode
		}
		if taken, err := emailTaken(tx, in.Email); err != nil {
			return err
		} else if taken {
			return ErrDuplicateEmail
		}

		now := s.now()
		claim := models.PropertyClaim{
			ID:                      auth.NewID(),
			PropertyID:              property.ID,
			RealtorEmail:            in.Email,
			RealtorName:             in.Name,
			RealtorPhone:            strings.TrimSpace(in.Phone),
			VerificationCodeEntered: in.VerificationCode,
			ClaimStatus:             models.ClaimApproved,
			ApprovedAt:              now,
		}
		if err := tx.Create(&claim).Error; err != nil {
			return fmt.Errorf("failed to create claim: %w", err)
		}

		// Conditional write: a concurrent claim that already flipped the
		// status leaves zero rows affected.
		res := tx.Model(&models.Property{}).
			Where("id = ? AND status = ?", property.ID, models.StatusUnclaimed).
			Updates(map[string]any{"status": models.StatusClaimed, "claimed_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to reserve property: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyClaimed
		}

		property.Status = models.StatusClaimed
		property.ClaimedAt = &now
		result.Claim = claim
		result.Property = property
		return nil
	})
	if err != nil {
		return ClaimResult{}, err
	}

	if result.LeadCount, err = s.LeadCount(ctx, result.Property.ID); err != nil {
		return ClaimResult{}, err
	}

	slog.Info("property claimed", "property_id", result.Property.ID, "claim_id", result.Claim.ID)
	return result, nil
}

// CompleteSignup creates a realtor account. With a claim id it also links the
// reserved property and completes the claim, all in one transaction.
func (s *Service) CompleteSignup(ctx context.Context, in SignupInput) (SignupResult, error) {
	in.Email = auth.NormalizeEmail(in.Email)
	if in.Email == "" || strings.TrimSpace(in.Name) == "" {
		return SignupResult{}, apperr.Validation("Email and name are required")
	}
	if len(in.Password) < auth.MinPasswordLength {
		return SignupResult{}, apperr.Validation(fmt.Sprintf("Password must be at least %d characters", auth.MinPasswordLength))
	}
	if len(in.Password) > auth.MaxPasswordLength {
		return SignupResult{}, apperr.Validation(fmt.Sprintf("Password must be at most %d bytes", auth.MaxPasswordLength))
	}
	if in.Password != in.ConfirmPassword {
		return SignupResult{}, apperr.Validation("Passwords do not match")
	}
	if (in.ClaimID == "") != (in.PropertyID == "") {
		return SignupResult{}, apperr.Validation("claimId and propertyId must be provided together")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return SignupResult{}, err
	}

	var result SignupResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if taken, err := emailTaken(tx, in.Email); err != nil {
			return err
		} else if taken {
			return ErrDuplicateEmail
		}

		var claim models.PropertyClaim
		if in.ClaimID != "" {
			err := tx.Where("id = ?", in.ClaimID).Take(&claim).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidClaim
			}
			if err != nil {
				return fmt.Errorf("failed to load claim: %w", err)
			}
			if claim.PropertyID != in.PropertyID || claim.RealtorEmail != in.Email || claim.ClaimStatus != models.ClaimApproved {
				return ErrInvalidClaim
			}
		}

		now := s.now()
		user := models.User{
			ID:           auth.NewID(),
			Email:        in.Email,
			PasswordHash: &hash,
			Name:         strings.TrimSpace(in.Name),
			Phone:        strings.TrimSpace(in.Phone),
			Role:         models.RoleRealtor,
			VerifiedAt:   &now,
			CompanyName:  strings.TrimSpace(in.CompanyName),
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		result.User = user

		if in.ClaimID == "" {
			return nil
		}

		res := tx.Model(&models.Property{}).
			Where("id = ? AND status = ? AND claimed_by_user_id IS NULL", in.PropertyID, models.StatusClaimed).
			Updates(map[string]any{"claimed_by_user_id": user.ID, "status": models.StatusActive})
		if res.Error != nil {
			return fmt.Errorf("failed to link property: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvalidClaim
		}

		if err := tx.Model(&models.PropertyClaim{}).Where("id = ?", claim.ID).Updates(map[string]any{
			"claim_status": models.ClaimCompleted,
			"completed_at": now,
			"user_id":      user.ID,
		}).Error; err != nil {
			return fmt.Errorf("failed to complete claim: %w", err)
		}

		var property models.Property
		if err := tx.Where("id = ?", in.PropertyID).Take(&property).Error; err != nil {
			return fmt.Errorf("failed to reload property: %w", err)
		}
		result.Property = &property
		return nil
	})
	if err != nil {
		return SignupResult{}, err
	}

	if result.Property != nil {
		if result.LeadCount, err = s.LeadCount(ctx, result.Property.ID); err != nil {
			return SignupResult{}, err
		}
		slog.Info("signup linked property", "user_id", result.User.ID, "property_id", result.Property.ID)
	} else {
		slog.Info("user signed up", "user_id", result.User.ID)
	}
	return result, nil
}

// LeadCount returns the number of leads captured for a property.
func (s *Service) LeadCount(ctx context.Context, propertyID string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Lead{}).Where("property_id = ?", propertyID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return n, nil
}

func findBySlug(tx *gorm.DB, slug string) (models.Property, error) {
	var p models.Property
	err := tx.Where("slug = ?", slug).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Property{}, ErrPropertyNotFound
	}
	if err != nil {
		return models.Property{}, fmt.Errorf("failed to load property: %w", err)
	}
	return p, nil
}

func emailTaken(tx *gorm.DB, email string) (bool, error) {
	var n int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return n > 0, nil
}
