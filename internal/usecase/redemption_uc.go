package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/repository"
)

// Compile-time check
var _ RedemptionUseCase = (*redemptionUC)(nil)

// RedemptionUseCase validates and applies invite code redemptions.
type RedemptionUseCase interface {
	// Redeem consumes a code for the user and returns the granted tier.
	// Business rejections are the sentinel errors ErrCodeNotFound,
	// ErrCodeInactive, ErrCodeExpired, ErrAlreadyRedeemed and
	// ErrCodeExhausted, checked in that order.
	Redeem(ctx context.Context, userID, rawCode string) (model.Tier, error)
}

// subscriptionCacheInvalidator is implemented by cache-decorated
// subscription repos.
type subscriptionCacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}

type redemptionUC struct {
	codes       repository.InviteCodeRepository
	redemptions repository.RedemptionRepository
	subs        repository.SubscriptionRepository
	txm         repository.TransactionManager
	log         *zerolog.Logger
}

func NewRedemptionUseCase(
	codes repository.InviteCodeRepository,
	redemptions repository.RedemptionRepository,
	subs repository.SubscriptionRepository,
	txm repository.TransactionManager,
	logger *zerolog.Logger,
) *redemptionUC {
	return &redemptionUC{codes: codes, redemptions: redemptions, subs: subs, txm: txm, log: logger}
}

// NormalizeCode uppercases and trims a submitted code.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Redeem runs the whole redemption inside one serializable transaction:
// the code row is locked, the subscription upsert, redemption insert and
// usage increment either all commit or none do. A concurrent duplicate
// for the same (code, user) pair fails at the redemption log's unique
// constraint instead of relying on the preceding existence check.
func (uc *redemptionUC) Redeem(ctx context.Context, userID, rawCode string) (model.Tier, error) {
	if userID == "" {
		return "", domain.ErrInvalidArgument
	}
	code := NormalizeCode(rawCode)
	if code == "" {
		return "", domain.ErrInvalidArgument
	}

	var tier model.Tier
	err := uc.txm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(ctx context.Context, tx repository.Tx) error {
		ic, err := uc.codes.FindByCode(ctx, tx, code)
		if err != nil {
			if err == domain.ErrNotFound {
				return domain.ErrCodeNotFound
			}
			return err
		}
		if err := ic.Validate(time.Now()); err != nil {
			return err
		}

		// A prior redemption by this user wins over exhaustion, so a
		// spent single-use code still tells its redeemer they already
		// used it. The unique constraint below still backstops races.
		redeemed, err := uc.redemptions.Exists(ctx, tx, ic.ID, userID)
		if err != nil {
			return err
		}
		if redeemed {
			return domain.ErrAlreadyRedeemed
		}
		if ic.Exhausted() {
			return domain.ErrCodeExhausted
		}

		if err := uc.subs.SetTier(ctx, tx, userID, ic.Tier, &ic.ID); err != nil {
			return err
		}
		red, err := model.NewRedemption(ic.ID, userID)
		if err != nil {
			return err
		}
		if err := uc.redemptions.Insert(ctx, tx, red); err != nil {
			return err
		}
		if err := uc.codes.IncrementUses(ctx, tx, ic.ID); err != nil {
			return err
		}

		tier = ic.Tier
		return nil
	})
	if err != nil {
		return "", err
	}

	// The in-tx Del runs before commit, so a concurrent read can
	// re-cache the old row until its TTL. Drop the key again now that
	// the tier change is visible.
	if inv, ok := uc.subs.(subscriptionCacheInvalidator); ok {
		if err := inv.InvalidateUser(ctx, userID); err != nil {
			uc.log.Warn().Err(err).Str("user_id", userID).Msg("subscription cache invalidation failed")
		}
	}

	uc.log.Info().Str("user_id", userID).Str("code", code).Str("tier", string(tier)).Msg("invite code redeemed")
	return tier, nil
}
