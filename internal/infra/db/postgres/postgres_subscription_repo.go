package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) repository.SubscriptionRepository {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `user_id, tier, is_owner, is_trial, trial_ends_at, granted_by_code_id, updated_at`

func (r *subscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (user_id, tier, is_owner, is_trial, trial_ends_at, granted_by_code_id, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_id) DO UPDATE SET
  tier = EXCLUDED.tier,
  is_owner = EXCLUDED.is_owner,
  is_trial = EXCLUDED.is_trial,
  trial_ends_at = EXCLUDED.trial_ends_at,
  granted_by_code_id = EXCLUDED.granted_by_code_id,
  updated_at = EXCLUDED.updated_at;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		sub.UserID, sub.Tier, sub.IsOwner, sub.IsTrial, sub.TrialEndsAt, sub.GrantedByCodeID, sub.UpdatedAt,
	)
	return err
}

func (r *subscriptionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

// SetTier upserts only the tier grant, leaving owner/trial flags as
// they are for an existing row.
func (r *subscriptionRepo) SetTier(ctx context.Context, tx repository.Tx, userID string, tier model.Tier, grantedByCodeID *string) error {
	const q = `
INSERT INTO subscriptions (user_id, tier, is_owner, is_trial, trial_ends_at, granted_by_code_id, updated_at)
VALUES ($1, $2, FALSE, FALSE, NULL, $3, $4)
ON CONFLICT (user_id) DO UPDATE SET
  tier = EXCLUDED.tier,
  granted_by_code_id = EXCLUDED.granted_by_code_id,
  updated_at = EXCLUDED.updated_at;
`
	_, err := execSQL(ctx, r.pool, tx, q, userID, tier, grantedByCodeID, time.Now())
	return err
}

func (r *subscriptionRepo) ListExpiredTrials(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE is_trial = TRUE AND trial_ends_at IS NOT NULL AND trial_ends_at < $1;`
	rows, err := queryRows(ctx, r.pool, tx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (r *subscriptionRepo) CountByTier(ctx context.Context, tx repository.Tx) (map[model.Tier]int, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT tier, COUNT(*) FROM subscriptions GROUP BY tier;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.Tier]int)
	for rows.Next() {
		var tier model.Tier
		var n int
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[tier] = n
	}
	return out, rows.Err()
}

func (r *subscriptionRepo) DeleteByUser(ctx context.Context, tx repository.Tx, userID string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM subscriptions WHERE user_id = $1;`, userID)
	return err
}

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var s model.Subscription
	err := row.Scan(&s.UserID, &s.Tier, &s.IsOwner, &s.IsTrial, &s.TrialEndsAt, &s.GrantedByCodeID, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &s, nil
}
