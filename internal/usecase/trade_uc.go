package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/repository"
)

// Compile-time check
var _ TradeUseCase = (*tradeUC)(nil)

// TagStats aggregates the user's closed trades per tag.
type TagStats struct {
	Tag      string  `json:"tag"`
	Trades   int     `json:"trades"`
	TotalPnL float64 `json:"total_pnl"`
	WinRate  float64 `json:"win_rate"`
}

// DailyPnL is the realized profit/loss of all trades closed on one UTC day.
type DailyPnL struct {
	Date string  `json:"date"` // YYYY-MM-DD
	PnL  float64 `json:"pnl"`
}

// EquityPoint is one step of the cumulative realized PnL curve.
type EquityPoint struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
}

// TradeUseCase implements journal trade operations and dashboard aggregations.
type TradeUseCase interface {
	Create(ctx context.Context, userID, symbol string, side model.TradeSide, qty, entry float64, openedAt time.Time, tags []string, fees float64) (*model.Trade, error)
	Close(ctx context.Context, userID, tradeID string, exit float64, closedAt time.Time) (*model.Trade, error)
	List(ctx context.Context, userID string, offset, limit int) ([]*model.Trade, error)
	Delete(ctx context.Context, userID, tradeID string) error
	GroupByTag(ctx context.Context, userID string) ([]TagStats, error)
	CalculateDailyPnL(ctx context.Context, userID string) ([]DailyPnL, error)
	EquityCurve(ctx context.Context, userID string) ([]EquityPoint, error)
}

type tradeUC struct {
	trades repository.TradeRepository
	log    *zerolog.Logger
}

func NewTradeUseCase(trades repository.TradeRepository, logger *zerolog.Logger) *tradeUC {
	return &tradeUC{trades: trades, log: logger}
}

func (uc *tradeUC) Create(ctx context.Context, userID, symbol string, side model.TradeSide, qty, entry float64, openedAt time.Time, tags []string, fees float64) (*model.Trade, error) {
	t, err := model.NewTrade(userID, symbol, side, qty, entry, openedAt)
	if err != nil {
		return nil, err
	}
	t.Tags = tags
	t.Fees = fees
	if err := uc.trades.Save(ctx, repository.NoTX, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *tradeUC) Close(ctx context.Context, userID, tradeID string, exit float64, closedAt time.Time) (*model.Trade, error) {
	t, err := uc.ownTrade(ctx, userID, tradeID)
	if err != nil {
		return nil, err
	}
	if err := t.Close(exit, closedAt); err != nil {
		return nil, err
	}
	if err := uc.trades.Save(ctx, repository.NoTX, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *tradeUC) List(ctx context.Context, userID string, offset, limit int) ([]*model.Trade, error) {
	return uc.trades.ListByUser(ctx, repository.NoTX, userID, offset, limit)
}

func (uc *tradeUC) Delete(ctx context.Context, userID, tradeID string) error {
	if _, err := uc.ownTrade(ctx, userID, tradeID); err != nil {
		return err
	}
	return uc.trades.Delete(ctx, repository.NoTX, tradeID)
}

// ownTrade loads a trade and rejects access across users.
func (uc *tradeUC) ownTrade(ctx context.Context, userID, tradeID string) (*model.Trade, error) {
	t, err := uc.trades.FindByID(ctx, repository.NoTX, tradeID)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// GroupByTag maps each tag to count, total realized PnL and win rate
// over the user's closed trades. Untagged trades land under "untagged".
func (uc *tradeUC) GroupByTag(ctx context.Context, userID string) ([]TagStats, error) {
	trades, err := uc.trades.ListAllByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}

	type acc struct {
		n, wins int
		pnl     float64
	}
	byTag := make(map[string]*acc)
	add := func(tag string, pnl float64) {
		a := byTag[tag]
		if a == nil {
			a = &acc{}
			byTag[tag] = a
		}
		a.n++
		a.pnl += pnl
		if pnl > 0 {
			a.wins++
		}
	}

	for _, t := range trades {
		if !t.Closed() {
			continue
		}
		pnl := t.PnL()
		if len(t.Tags) == 0 {
			add("untagged", pnl)
			continue
		}
		for _, tag := range t.Tags {
			add(tag, pnl)
		}
	}

	out := make([]TagStats, 0, len(byTag))
	for tag, a := range byTag {
		out = append(out, TagStats{
			Tag:      tag,
			Trades:   a.n,
			TotalPnL: a.pnl,
			WinRate:  float64(a.wins) / float64(a.n),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out, nil
}

// CalculateDailyPnL sums realized PnL per UTC day of trade close,
// returned in date order.
func (uc *tradeUC) CalculateDailyPnL(ctx context.Context, userID string) ([]DailyPnL, error) {
	trades, err := uc.trades.ListAllByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]float64)
	for _, t := range trades {
		if !t.Closed() || t.ClosedAt == nil {
			continue
		}
		day := t.ClosedAt.UTC().Format("2006-01-02")
		byDay[day] += t.PnL()
	}

	out := make([]DailyPnL, 0, len(byDay))
	for day, pnl := range byDay {
		out = append(out, DailyPnL{Date: day, PnL: pnl})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// EquityCurve walks closed trades in close-time order accumulating PnL.
func (uc *tradeUC) EquityCurve(ctx context.Context, userID string) ([]EquityPoint, error) {
	trades, err := uc.trades.ListAllByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}

	closed := make([]*model.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Closed() && t.ClosedAt != nil {
			closed = append(closed, t)
		}
	}
	sort.Slice(closed, func(i, j int) bool { return closed[i].ClosedAt.Before(*closed[j].ClosedAt) })

	out := make([]EquityPoint, 0, len(closed))
	var equity float64
	for _, t := range closed {
		equity += t.PnL()
		out = append(out, EquityPoint{Time: *t.ClosedAt, Equity: equity})
	}
	return out, nil
}
