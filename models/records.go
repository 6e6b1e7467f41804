// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"

	"gorm.io/datatypes"
)

type Property struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	Slug             string     `gorm:"uniqueIndex;size:60;not null" json:"slug"`
	Address          string     `gorm:"not null" json:"address"`
	VerificationCode string     `gorm:"<-:create;size:12;not null" json:"-"`
	Status           string     `gorm:"index;size:16;not null;default:unclaimed" json:"status"`
	ClaimedByUserID  *string    `gorm:"index;size:36" json:"claimedByUserId,omitempty"`
	ClaimedAt        *time.Time `json:"claimedAt,omitempty"`
	PrizeTitle       *string    `json:"prizeTitle,omitempty"`
	PrizeDescription *string    `json:"prizeDescription,omitempty"`
	PrizeImageURL    *string    `json:"prizeImageUrl,omitempty"`
	CreatedByMaster  bool       `gorm:"column:created_by_master_admin;not null;default:false" json:"createdByMasterAdmin"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type Lead struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	PropertyID string    `gorm:"index;size:36;not null" json:"propertyId"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"not null" json:"email"`
	Phone      *string   `json:"phone"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

type User struct {
	ID               string `gorm:"primaryKey;size:36"`
	Email            string `gorm:"uniqueIndex;not null"`
	PasswordHash     *string
	Name             string
	Phone            string
	Role             string `gorm:"size:16;not null;default:realtor"`
	VerifiedAt       *time.Time
	IsSubscribed     bool `gorm:"not null;default:false"`
	CompanyName      string
	StripeCustomerID *string `gorm:"index"`
	CreatedAt        time.Time
}

// View returns the public projection of u.
func (u User) View() UserView {
	return UserView{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Phone:        u.Phone,
		Role:         u.Role,
		IsSubscribed: u.IsSubscribed,
		CompanyName:  u.CompanyName,
		VerifiedAt:   u.VerifiedAt,
	}
}

// PropertyClaim records the realtor identity captured between a successful
// code check and account creation.
type PropertyClaim struct {
	ID                      string `gorm:"primaryKey;size:36"`
	PropertyID              string `gorm:"index;size:36;not null"`
	RealtorEmail            string `gorm:"index;not null"`
	RealtorName             string `gorm:"not null"`
	RealtorPhone            string
	VerificationCodeEntered string `gorm:"size:12"`
	ClaimStatus             string `gorm:"index;size:16;not null"`
	ApprovedAt              time.Time
	CompletedAt             *time.Time
	UserID                  *string `gorm:"size:36"`
	CreatedAt               time.Time
}

type VerificationToken struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Token      string    `gorm:"uniqueIndex;size:32;not null"`
	UserID     string    `gorm:"index;size:36;not null"`
	PropertyID string    `gorm:"size:36;not null"`
	ExpiresAt  time.Time `gorm:"index;not null"`
	CreatedAt  time.Time
}

type Subscription struct {
	ID                   string  `gorm:"primaryKey;size:36"`
	UserID               string  `gorm:"index;size:36;not null"`
	PropertyID           *string `gorm:"size:36"`
	StripeSubscriptionID string  `gorm:"uniqueIndex;not null"`
	Status               string  `gorm:"size:32;not null"`
	CurrentPeriodEnd     *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// BillingEvent is a processed billing webhook, keyed by the provider event id.
type BillingEvent struct {
	ID        string         `gorm:"primaryKey"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
}

// AllRecords lists every persisted type in migration order.
func AllRecords() []any {
	return []any{
		&User{},
		&Property{},
		&Lead{},
		&PropertyClaim{},
		&VerificationToken{},
		&Subscription{},
		&BillingEvent{},
	}
}
