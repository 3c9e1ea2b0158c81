package model

import (
	"time"

	"trading-journal-api/internal/domain"
)

type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
	TierMax  Tier = "max"
)

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierMax:
		return true
	}
	return false
}

// Grantable reports whether an invite code may grant t.
// Free is the default tier and is never granted by a code.
func (t Tier) Grantable() bool { return t == TierPro || t == TierMax }

// Subscription is the single per-user subscription record.
// Exactly one row exists per user; writes go through upserts.
type Subscription struct {
	UserID          string
	Tier            Tier
	IsOwner         bool
	IsTrial         bool
	TrialEndsAt     *time.Time
	GrantedByCodeID *string
	UpdatedAt       time.Time
}

// NewFreeSubscription builds the default row created at signup.
func NewFreeSubscription(userID string) (*Subscription, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Subscription{
		UserID:    userID,
		Tier:      TierFree,
		UpdatedAt: time.Now(),
	}, nil
}

// TrialExpired reports whether a trial has lapsed as of now.
func (s *Subscription) TrialExpired(now time.Time) bool {
	return s.IsTrial && s.TrialEndsAt != nil && now.After(*s.TrialEndsAt)
}

// Entitlement is the effective, resolved view of a user's access.
// The owner email match may force it regardless of the stored row.
type Entitlement struct {
	Tier            Tier       `json:"tier"`
	IsOwner         bool       `json:"is_owner"`
	IsTrial         bool       `json:"is_trial"`
	TrialEndsAt     *time.Time `json:"trial_end,omitempty"`
	GrantedByCodeID *string    `json:"granted_by_invite_code,omitempty"`
}

// FreeEntitlement is the fail-safe default when no row exists or the
// store is unreachable.
func FreeEntitlement() Entitlement { return Entitlement{Tier: TierFree} }

// OwnerEntitlement is the fixed result for the configured owner.
func OwnerEntitlement() Entitlement { return Entitlement{Tier: TierMax, IsOwner: true} }
