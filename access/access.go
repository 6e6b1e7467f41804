// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package access decides how much lead data a user may see. Every endpoint
// that returns or exports leads goes through Resolve and Entitlement.Leads.
package access

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/models"
)

// FreeLeadLimit is the number of leads an unsubscribed realtor can see.
const FreeLeadLimit = 10

const (
	PlanFree      = "free"
	PlanPro       = "pro"
	PlanUnlimited = "unlimited"
)

// Entitlement is the outcome of the free-tier policy. The plan, limit and
// upgrade fields are decided from UserLeads. TotalLeads and VisibleLeads
// describe the scope that was asked for.
type Entitlement struct {
	Plan         string
	Unlimited    bool
	UserLeads    int64
	TotalLeads   int64
	VisibleLeads int64
	OverLimit    bool
	HasMoreLeads bool
	CanExport    bool
}

// Decide applies the free-tier policy to a lead total.
func Decide(user models.User, totalLeads int64) Entitlement {
	e := Entitlement{UserLeads: totalLeads, TotalLeads: totalLeads}

	switch {
	case user.Role == models.RoleMasterAdmin:
		e.Plan = PlanUnlimited
		e.Unlimited = true
	case user.IsSubscribed:
		e.Plan = PlanPro
		e.Unlimited = true
	default:
		e.Plan = PlanFree
	}

	if e.Unlimited {
		e.VisibleLeads = totalLeads
		e.CanExport = true
		return e
	}

	e.VisibleLeads = min(totalLeads, FreeLeadLimit)
	e.OverLimit = totalLeads >= FreeLeadLimit
	e.HasMoreLeads = totalLeads > FreeLeadLimit
	return e
}

// Window clamps a requested page to the visible range. Leads are ordered
// newest first, so the visible range is always the head of the list. The
// returned limit is zero when nothing on the page is visible.
func (e Entitlement) Window(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 50
	}
	visible := int(e.VisibleLeads)
	if offset >= visible {
		return offset, 0
	}
	if offset+limit > visible {
		limit = visible - offset
	}
	return offset, limit
}

// UpgradeMessage is shown when leads are hidden. Empty otherwise.
func (e Entitlement) UpgradeMessage() string {
	if !e.HasMoreLeads {
		return ""
	}
	visible := min(e.UserLeads, FreeLeadLimit)
	return fmt.Sprintf("You are viewing %s of %s leads. Upgrade to see the remaining %s.",
		humanize.Comma(visible), humanize.Comma(e.UserLeads), humanize.Comma(e.UserLeads-visible))
}

// PropertyScope restricts a properties query to what user may manage.
func PropertyScope(db *gorm.DB, user models.User) *gorm.DB {
	if user.Role == models.RoleMasterAdmin {
		return db
	}
	return db.Where("claimed_by_user_id = ?", user.ID)
}

// LeadScope restricts a leads query to leads on properties user may manage.
// propertyID narrows it further when non-empty.
func LeadScope(db *gorm.DB, user models.User, propertyID string) *gorm.DB {
	q := db.Model(&models.Lead{})
	if propertyID != "" {
		q = q.Where("leads.property_id = ?", propertyID)
	}
	if user.Role == models.RoleMasterAdmin {
		return q
	}
	return q.Where("leads.property_id IN (?)",
		db.Session(&gorm.Session{NewDB: true}).Model(&models.Property{}).Select("id").Where("claimed_by_user_id = ?", user.ID))
}

// Leads restricts a leads query to what the entitlement lets user see. On
// the free plan only the user's newest FreeLeadLimit leads across every
// property qualify, however the query is narrowed.
func (e Entitlement) Leads(db *gorm.DB, user models.User, propertyID string) *gorm.DB {
	q := LeadScope(db, user, propertyID)
	if e.Unlimited {
		return q
	}
	newest := LeadScope(db.Session(&gorm.Session{NewDB: true}), user, "").
		Select("leads.id").
		Order("leads.created_at DESC, leads.id DESC").
		Limit(FreeLeadLimit)
	return q.Where("leads.id IN (?)", newest)
}

// Resolve decides the entitlement from every lead user may see, then counts
// the leads in scope and how many of them are visible. propertyID narrows
// the scope when non-empty.
func Resolve(ctx context.Context, db *gorm.DB, user models.User, propertyID string) (Entitlement, error) {
	db = db.WithContext(ctx)

	var userTotal int64
	if err := LeadScope(db, user, "").Count(&userTotal).Error; err != nil {
		return Entitlement{}, fmt.Errorf("failed to count leads: %w", err)
	}
	e := Decide(user, userTotal)
	if propertyID == "" {
		return e, nil
	}

	if err := LeadScope(db, user, propertyID).Count(&e.TotalLeads).Error; err != nil {
		return Entitlement{}, fmt.Errorf("failed to count property leads: %w", err)
	}
	if e.Unlimited {
		e.VisibleLeads = e.TotalLeads
		return e, nil
	}
	if err := e.Leads(db, user, propertyID).Count(&e.VisibleLeads).Error; err != nil {
		return Entitlement{}, fmt.Errorf("failed to count visible leads: %w", err)
	}
	return e, nil
}
