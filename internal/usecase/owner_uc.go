package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/repository"
)

// OwnerResolver is the single authoritative owner-determination rule.
// Every call site (auth middleware, admin operations) consults it; the
// configured email match always wins over the persisted flag.
type OwnerResolver struct {
	ownerEmail string // lowercase; empty disables owner provisioning
	subs       repository.SubscriptionRepository
	log        *zerolog.Logger
}

func NewOwnerResolver(ownerEmail string, subs repository.SubscriptionRepository, logger *zerolog.Logger) *OwnerResolver {
	return &OwnerResolver{
		ownerEmail: strings.ToLower(strings.TrimSpace(ownerEmail)),
		subs:       subs,
		log:        logger,
	}
}

// EmailMatches reports whether email is the configured owner email.
func (r *OwnerResolver) EmailMatches(email string) bool {
	return r.ownerEmail != "" && strings.EqualFold(strings.TrimSpace(email), r.ownerEmail)
}

// IsOwner determines owner status for an authenticated principal.
// The email match short-circuits; the DB fallback fails closed.
func (r *OwnerResolver) IsOwner(ctx context.Context, userID, email string) bool {
	if r.EmailMatches(email) {
		return true
	}
	sub, err := r.subs.FindByUser(ctx, repository.NoTX, userID)
	if err != nil {
		if err != domain.ErrNotFound {
			r.log.Warn().Err(err).Str("user_id", userID).Msg("owner lookup failed; treating as non-owner")
		}
		return false
	}
	return sub.IsOwner
}

// EnsureOwner re-asserts the owner subscription row after a session is
// established. Safe to run on every login. Returns whether the
// principal is the configured owner; a failed write is logged but does
// not change the result.
func (r *OwnerResolver) EnsureOwner(ctx context.Context, user *model.User) bool {
	if user.IsZero() || !r.EmailMatches(user.Email) {
		return false
	}

	sub, err := r.subs.FindByUser(ctx, repository.NoTX, user.ID)
	switch {
	case err == domain.ErrNotFound:
		sub = &model.Subscription{UserID: user.ID}
	case err != nil:
		r.log.Error().Err(err).Str("user_id", user.ID).Msg("owner provisioning read failed")
		return true
	case sub.Tier == model.TierMax && sub.IsOwner:
		return true // invariant already holds
	}

	sub.Tier = model.TierMax
	sub.IsOwner = true
	sub.UpdatedAt = time.Now()
	if err := r.subs.Upsert(ctx, repository.NoTX, sub); err != nil {
		r.log.Error().Err(err).Str("user_id", user.ID).Msg("owner provisioning write failed")
	}
	return true
}
