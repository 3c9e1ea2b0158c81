package model

import (
	"time"

	"trading-journal-api/internal/domain"

	"github.com/google/uuid"
)

// InviteCode is a redeemable upgrade token. CurrentUses only ever grows
// and is mutated exclusively by the redemption workflow.
type InviteCode struct {
	ID          string
	Code        string // normalized uppercase, unique
	Tier        Tier   // tier granted on redemption (pro|max)
	Description string
	IsActive    bool
	MaxUses     *int // nil = unlimited
	CurrentUses int
	ExpiresAt   *time.Time // nil = never expires
	CreatedBy   *string    // nulled when the creator is purged
	CreatedAt   time.Time
}

func NewInviteCode(code string, tier Tier, description string, maxUses *int, expiresAt *time.Time, createdBy string) (*InviteCode, error) {
	if code == "" || !tier.Grantable() {
		return nil, domain.ErrInvalidArgument
	}
	if maxUses != nil && *maxUses <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	var creator *string
	if createdBy != "" {
		creator = &createdBy
	}
	return &InviteCode{
		ID:          uuid.NewString(),
		Code:        code,
		Tier:        tier,
		Description: description,
		IsActive:    true,
		MaxUses:     maxUses,
		ExpiresAt:   expiresAt,
		CreatedBy:   creator,
		CreatedAt:   time.Now(),
	}, nil
}

// Validate checks activation and expiry in order; the first failing
// rule wins. Exhaustion and prior-redemption depend on the redeeming
// user and are checked by the redemption workflow.
func (c *InviteCode) Validate(now time.Time) error {
	if !c.IsActive {
		return domain.ErrCodeInactive
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return domain.ErrCodeExpired
	}
	return nil
}

// Exhausted reports whether a bounded code has no uses left.
func (c *InviteCode) Exhausted() bool {
	return c.MaxUses != nil && c.CurrentUses >= *c.MaxUses
}
