package ai

import (
	"context"
	"time"

	"trading-journal-api/internal/domain/ports/adapter"
	"trading-journal-api/internal/infra/metrics"
)

var _ adapter.AIServiceAdapter = (*InstrumentedAdapter)(nil)

// InstrumentedAdapter decorates another adapter with token and latency
// metrics per call.
type InstrumentedAdapter struct {
	inner    adapter.AIServiceAdapter
	provider string
}

func NewInstrumentedAdapter(inner adapter.AIServiceAdapter, provider string) *InstrumentedAdapter {
	return &InstrumentedAdapter{inner: inner, provider: provider}
}

func (a *InstrumentedAdapter) ListModels(ctx context.Context) ([]string, error) {
	return a.inner.ListModels(ctx)
}

func (a *InstrumentedAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return a.inner.CountTokens(ctx, model, messages)
}

func (a *InstrumentedAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	start := time.Now()
	reply, err := a.inner.Chat(ctx, model, messages)
	latencyMs := float64(time.Since(start).Milliseconds())

	tokens := 0
	if n, terr := a.inner.CountTokens(ctx, model, messages); terr == nil {
		tokens = n
	}
	metrics.ObserveCoachCall(a.provider, model, tokens, latencyMs, err == nil)
	return reply, err
}
