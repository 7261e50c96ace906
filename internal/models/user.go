package models

import (
	"time"

	"github.com/google/uuid"
)

// Tier is the subscription level gating feature access and pricing.
type Tier string

const (
	TierFree         Tier = "free"
	TierStarter      Tier = "starter"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

// UnlimitedCredits is the sentinel balance for tiers that are never decremented.
const UnlimitedCredits = -1

// ValidTier reports whether t is one of the known subscription tiers.
func ValidTier(t Tier) bool {
	switch t {
	case TierFree, TierStarter, TierProfessional, TierEnterprise:
		return true
	}
	return false
}

type User struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	Email             string     `json:"email" db:"email"`
	PasswordHash      string     `json:"-" db:"password_hash"`
	FullName          string     `json:"full_name,omitempty" db:"full_name"`
	Phone             string     `json:"phone,omitempty" db:"phone"`
	AvatarURL         string     `json:"avatar_url,omitempty" db:"avatar_url"`
	Credits           int        `json:"credits" db:"credits"`
	Tier              Tier       `json:"tier" db:"tier"`
	SubscriptionStart *time.Time `json:"subscription_start,omitempty" db:"subscription_start"`
	SubscriptionEnd   *time.Time `json:"subscription_end,omitempty" db:"subscription_end"`
	ResetToken        string     `json:"-" db:"reset_token"`
	ResetTokenExpires *time.Time `json:"-" db:"reset_token_expires"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	Active            bool       `json:"active" db:"active"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

type APIKey struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	KeyHash    string     `json:"-" db:"key_hash"`
	Name       string     `json:"name" db:"name"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	Active     bool       `json:"active" db:"active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
