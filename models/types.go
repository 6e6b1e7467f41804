// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Property status constants
const (
	StatusUnclaimed = "unclaimed"
	StatusClaimed   = "claimed"
	StatusActive    = "active"
)

// Claim status constants
const (
	ClaimApproved  = "approved"
	ClaimCompleted = "completed"
	ClaimExpired   = "expired"
)

// User role constants
const (
	RoleRealtor     = "realtor"
	RoleMasterAdmin = "master_admin"
)

// Request types

type VerifyPropertyRequest struct {
	Slug string `json:"slug" validate:"required"`
}

type ClaimRequest struct {
	Slug             string `json:"slug" validate:"required"`
	VerificationCode string `json:"verificationCode" validate:"required"`
	RealtorEmail     string `json:"realtorEmail" validate:"required,email"`
	RealtorName      string `json:"realtorName" validate:"required"`
	RealtorPhone     string `json:"realtorPhone"`
}

type SignupRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Name            string `json:"name" validate:"required"`
	Phone           string `json:"phone"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	CompanyName     string `json:"companyName"`
	ClaimID         string `json:"claimId"`
	PropertyID      string `json:"propertyId"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ClaimPropertyRequest struct {
	Slug             string `json:"slug" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	VerificationCode string `json:"verificationCode" validate:"required"`
}

type CreateLeadRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone"`
	PropertyID string `json:"propertyId" validate:"required"`
}

type CreatePropertyRequest struct {
	Address          string `json:"address" validate:"required"`
	PrizeTitle       string `json:"prizeTitle"`
	PrizeDescription string `json:"prizeDescription"`
	IsMasterAdmin    bool   `json:"isMasterAdmin"`
}

// Nil fields are left untouched.
type UpdatePropertyRequest struct {
	Address          *string `json:"address"`
	PrizeTitle       *string `json:"prizeTitle"`
	PrizeDescription *string `json:"prizeDescription"`
}

type ExportLeadsRequest struct {
	PropertyID string `json:"propertyId"`
	Format     string `json:"format" validate:"omitempty,oneof=csv json"`
}

type QRCodeRequest struct {
	Size int `json:"size" validate:"omitempty,min=64,max=2048"`
}

type UpdateProfileRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	CompanyName *string `json:"companyName"`
}

type SubscriptionActionRequest struct {
	Action string `json:"action" validate:"required,oneof=upgrade cancel manage"`
}

type CheckoutSessionRequest struct {
	PropertyID string `json:"propertyId" validate:"required"`
	PlanType   string `json:"planType" validate:"required,oneof=single multi"`
}

// Response types

type VerifyPropertyResponse struct {
	Success bool   `json:"success"`
	Address string `json:"address"`
}

type PropertySummary struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	Slug      string `json:"slug,omitempty"`
	LeadCount int64  `json:"leadCount"`
}

type RealtorInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

type ClaimResponse struct {
	Success  bool            `json:"success"`
	ClaimID  string          `json:"claimId"`
	Property PropertySummary `json:"property"`
	Realtor  RealtorInfo     `json:"realtor"`
}

type SignupResponse struct {
	Success  bool             `json:"success"`
	User     UserView         `json:"user"`
	Token    string           `json:"token"`
	Property *PropertySummary `json:"property,omitempty"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type PublicProperty struct {
	ID               string  `json:"id"`
	Address          string  `json:"address"`
	Slug             string  `json:"slug"`
	PrizeTitle       *string `json:"prizeTitle,omitempty"`
	PrizeDescription *string `json:"prizeDescription,omitempty"`
	PrizeImageURL    *string `json:"prizeImageUrl,omitempty"`
}

type LeadResponse struct {
	Success bool `json:"success"`
	Lead    Lead `json:"lead"`
}

type LeadCount struct {
	Leads int64 `json:"leads"`
}

type PropertyWithCount struct {
	Property
	Count LeadCount `json:"_count"`
}

// CreatePropertyResponse is the only place a verification code is returned.
type CreatePropertyResponse struct {
	Property
	VerificationCode string `json:"verificationCode"`
	LandingURL       string `json:"landingUrl"`
}

type WebhookResponse struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate,omitempty"`
}

type PropertyListResponse struct {
	Properties []PropertyWithCount `json:"properties"`
}

type LeadView struct {
	Lead
	PropertyAddress string  `json:"propertyAddress"`
	PrizeTitle      *string `json:"prizeTitle,omitempty"`
}

type LeadListResponse struct {
	Leads        []LeadView `json:"leads"`
	TotalCount   int64      `json:"totalCount"`
	VisibleCount int64      `json:"visibleCount"`
	HasMore      bool       `json:"hasMore"`
	UpgradeMsg   string     `json:"upgradeMessage,omitempty"`
}

type QRCodeResponse struct {
	DataURL string `json:"dataUrl"`
	URL     string `json:"url"`
	Slug    string `json:"slug"`
}

type DashboardResponse struct {
	Property     Property   `json:"property"`
	User         UserView   `json:"user"`
	TotalLeads   int64      `json:"totalLeads"`
	Leads        []LeadView `json:"leads"`
	Plan         string     `json:"plan"`
	HasMoreLeads bool       `json:"hasMoreLeads"`
	UpgradeMsg   string     `json:"upgradeMessage,omitempty"`
}

type ProfileResponse struct {
	User       UserView `json:"user"`
	TotalLeads int64    `json:"totalLeads"`
	CanExport  bool     `json:"canExport"`
}

type RedirectResponse struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Message     string `json:"message,omitempty"`
}

type CheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// UserView is the public projection of a User.
type UserView struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone,omitempty"`
	Role         string     `json:"role"`
	IsSubscribed bool       `json:"isSubscribed"`
	CompanyName  string     `json:"companyName,omitempty"`
	VerifiedAt   *time.Time `json:"verifiedAt,omitempty"`
}
