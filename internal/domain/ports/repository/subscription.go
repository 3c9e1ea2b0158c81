package repository

import (
	"context"
	"time"

	"trading-journal-api/internal/domain/model"
)

// SubscriptionRepository is the port for the per-user subscription row.
type SubscriptionRepository interface {
	// Upsert writes the row keyed by user id.
	Upsert(ctx context.Context, tx Tx, sub *model.Subscription) error
	// FindByUser returns the row, or domain.ErrNotFound.
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	// SetTier updates only the tier and granted-by fields, preserving
	// owner/trial flags.
	SetTier(ctx context.Context, tx Tx, userID string, tier model.Tier, grantedByCodeID *string) error
	// ListExpiredTrials returns trial rows whose trial_ends_at is before now.
	ListExpiredTrials(ctx context.Context, tx Tx, now time.Time) ([]*model.Subscription, error)
	// CountByTier returns row counts keyed by tier.
	CountByTier(ctx context.Context, tx Tx) (map[model.Tier]int, error)
	// DeleteByUser removes the row for a user.
	DeleteByUser(ctx context.Context, tx Tx, userID string) error
}
