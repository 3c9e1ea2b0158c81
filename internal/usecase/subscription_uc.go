package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/repository"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionUseCase resolves a user's effective entitlement and
// maintains the per-user subscription row.
type SubscriptionUseCase interface {
	// Resolve returns the effective entitlement. Precedence: configured
	// owner email, then the persisted row, then the free default.
	Resolve(ctx context.Context, userID, email string) model.Entitlement
	// FinalizeSignup ensures a free-tier row exists for the user.
	FinalizeSignup(ctx context.Context, userID string) error
	// CountByTier reports row counts per tier for metrics/stats.
	CountByTier(ctx context.Context) (map[model.Tier]int, error)
}

type subscriptionUC struct {
	subs  repository.SubscriptionRepository
	owner *OwnerResolver
	log   *zerolog.Logger
}

func NewSubscriptionUseCase(subs repository.SubscriptionRepository, owner *OwnerResolver, logger *zerolog.Logger) *subscriptionUC {
	return &subscriptionUC{subs: subs, owner: owner, log: logger}
}

// Resolve never fails: a persistence error degrades to the free-tier
// default rather than blocking the user.
func (uc *subscriptionUC) Resolve(ctx context.Context, userID, email string) model.Entitlement {
	if uc.owner.EmailMatches(email) {
		return model.OwnerEntitlement()
	}

	sub, err := uc.subs.FindByUser(ctx, repository.NoTX, userID)
	if err != nil {
		if err != domain.ErrNotFound {
			uc.log.Warn().Err(err).Str("user_id", userID).Msg("subscription read failed; defaulting to free")
		}
		return model.FreeEntitlement()
	}
	return model.Entitlement{
		Tier:            sub.Tier,
		IsOwner:         sub.IsOwner,
		IsTrial:         sub.IsTrial,
		TrialEndsAt:     sub.TrialEndsAt,
		GrantedByCodeID: sub.GrantedByCodeID,
	}
}

// FinalizeSignup is best-effort idempotent: an existing row is left
// untouched whatever its tier.
func (uc *subscriptionUC) FinalizeSignup(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrInvalidArgument
	}
	_, err := uc.subs.FindByUser(ctx, repository.NoTX, userID)
	if err == nil {
		return nil
	}
	if err != domain.ErrNotFound {
		return err
	}
	sub, err := model.NewFreeSubscription(userID)
	if err != nil {
		return err
	}
	return uc.subs.Upsert(ctx, repository.NoTX, sub)
}

func (uc *subscriptionUC) CountByTier(ctx context.Context) (map[model.Tier]int, error) {
	return uc.subs.CountByTier(ctx, repository.NoTX)
}
