package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/repository"
	"trading-journal-api/internal/infra/metrics"
	"trading-journal-api/internal/usecase"
)

// TrialExpiryWorker periodically downgrades lapsed trials to the free
// tier and refreshes the per-tier subscription gauge.
type TrialExpiryWorker struct {
	interval time.Duration
	subs     repository.SubscriptionRepository
	subUC    usecase.SubscriptionUseCase
	log      *zerolog.Logger
}

func NewTrialExpiryWorker(interval time.Duration, subs repository.SubscriptionRepository, subUC usecase.SubscriptionUseCase, logger *zerolog.Logger) *TrialExpiryWorker {
	wl := logger.With().Str("component", "TrialExpiryWorker").Logger()
	return &TrialExpiryWorker{
		interval: interval,
		subs:     subs,
		subUC:    subUC,
		log:      &wl,
	}
}

func (w *TrialExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting trial expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping trial expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.sweep(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("trial sweep error")
			}
			if n > 0 {
				metrics.IncTrialsExpired(n)
				w.log.Info().Int("count", n).Msg("expired trials downgraded")
			}
			w.refreshGauge(ctx)
		}
	}
}

// sweep downgrades each lapsed trial individually; one bad row does not
// stop the rest.
func (w *TrialExpiryWorker) sweep(ctx context.Context) (int, error) {
	expired, err := w.subs.ListExpiredTrials(ctx, repository.NoTX, time.Now())
	if err != nil {
		return 0, err
	}

	downgraded := 0
	for _, sub := range expired {
		sub.Tier = model.TierFree
		sub.IsTrial = false
		sub.TrialEndsAt = nil
		sub.UpdatedAt = time.Now()
		if err := w.subs.Upsert(ctx, repository.NoTX, sub); err != nil {
			w.log.Error().Err(err).Str("user_id", sub.UserID).Msg("trial downgrade failed")
			continue
		}
		downgraded++
	}
	return downgraded, nil
}

func (w *TrialExpiryWorker) refreshGauge(ctx context.Context) {
	counts, err := w.subUC.CountByTier(ctx)
	if err != nil {
		w.log.Warn().Err(err).Msg("tier count refresh failed")
		return
	}
	metrics.SetSubscriptionsTotal(counts)
}
