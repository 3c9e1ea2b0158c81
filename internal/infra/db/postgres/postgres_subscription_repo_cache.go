package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/repository"
	"trading-journal-api/internal/infra/metrics"
	red "trading-journal-api/internal/infra/redis"
)

var _ repository.SubscriptionRepository = (*subscriptionRepoCacheDecorator)(nil)

// subscriptionRepoCacheDecorator caches the per-user subscription row
// in Redis. Every gated feature resolves the entitlement, so this is
// the hottest read path; writes invalidate the key so the UI sees tier
// changes immediately after a redemption.
type subscriptionRepoCacheDecorator struct {
	inner repository.SubscriptionRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewSubscriptionRepoCacheDecorator(inner repository.SubscriptionRepository, cache red.RedisClient, ttl time.Duration) repository.SubscriptionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &subscriptionRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func subKey(userID string) string { return fmt.Sprintf("sub:user:%s", userID) }

func (d *subscriptionRepoCacheDecorator) Upsert(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	_ = d.cache.Del(ctx, subKey(sub.UserID))
	return d.inner.Upsert(ctx, tx, sub)
}

func (d *subscriptionRepoCacheDecorator) SetTier(ctx context.Context, tx repository.Tx, userID string, tier model.Tier, grantedByCodeID *string) error {
	_ = d.cache.Del(ctx, subKey(userID))
	return d.inner.SetTier(ctx, tx, userID, tier, grantedByCodeID)
}

// InvalidateUser drops the cached row. Callers that change the tier
// inside a transaction invoke this after commit; the Del in SetTier
// runs before commit and a read in between can re-cache the old row.
func (d *subscriptionRepoCacheDecorator) InvalidateUser(ctx context.Context, userID string) error {
	return d.cache.Del(ctx, subKey(userID))
}

func (d *subscriptionRepoCacheDecorator) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	// Reads inside a transaction must see the locked row, not the cache.
	if tx != nil {
		return d.inner.FindByUser(ctx, tx, userID)
	}

	key := subKey(userID)
	if val, err := d.cache.Get(ctx, key); err == nil {
		metrics.IncCacheRequest("subscription", "hit")
		var sub model.Subscription
		if json.Unmarshal([]byte(val), &sub) == nil {
			return &sub, nil
		}
	}

	metrics.IncCacheRequest("subscription", "miss")
	sub, err := d.inner.FindByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(sub); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return sub, nil
}

func (d *subscriptionRepoCacheDecorator) ListExpiredTrials(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Subscription, error) {
	return d.inner.ListExpiredTrials(ctx, tx, now)
}

func (d *subscriptionRepoCacheDecorator) CountByTier(ctx context.Context, tx repository.Tx) (map[model.Tier]int, error) {
	return d.inner.CountByTier(ctx, tx)
}

func (d *subscriptionRepoCacheDecorator) DeleteByUser(ctx context.Context, tx repository.Tx, userID string) error {
	_ = d.cache.Del(ctx, subKey(userID))
	return d.inner.DeleteByUser(ctx, tx, userID)
}
