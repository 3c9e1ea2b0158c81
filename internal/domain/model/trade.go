package model

import (
	"time"

	"trading-journal-api/internal/domain"

	"github.com/oklog/ulid/v2"
)

type TradeSide string

const (
	TradeSideLong  TradeSide = "long"
	TradeSideShort TradeSide = "short"
)

// Trade is a single journal entry for a position. A trade with a nil
// ExitPrice is still open and carries no realized PnL.
type Trade struct {
	ID         string // ulid, time-sortable
	UserID     string
	Symbol     string
	Side       TradeSide
	Quantity   float64
	EntryPrice float64
	ExitPrice  *float64
	Fees       float64
	Tags       []string
	OpenedAt   time.Time
	ClosedAt   *time.Time
	CreatedAt  time.Time
}

func NewTrade(userID, symbol string, side TradeSide, qty, entry float64, openedAt time.Time) (*Trade, error) {
	if userID == "" || symbol == "" || qty <= 0 || entry <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if side != TradeSideLong && side != TradeSideShort {
		return nil, domain.ErrInvalidArgument
	}
	if openedAt.IsZero() {
		openedAt = time.Now()
	}
	return &Trade{
		ID:         ulid.Make().String(),
		UserID:     userID,
		Symbol:     symbol,
		Side:       side,
		Quantity:   qty,
		EntryPrice: entry,
		OpenedAt:   openedAt,
		CreatedAt:  time.Now(),
	}, nil
}

// Closed reports whether the position has been exited.
func (t *Trade) Closed() bool { return t.ExitPrice != nil }

// PnL returns the realized profit/loss net of fees, or 0 for open trades.
func (t *Trade) PnL() float64 {
	if t.ExitPrice == nil {
		return 0
	}
	diff := *t.ExitPrice - t.EntryPrice
	if t.Side == TradeSideShort {
		diff = -diff
	}
	return diff*t.Quantity - t.Fees
}

// Close records the exit. ClosedAt defaults to now when zero.
func (t *Trade) Close(exit float64, closedAt time.Time) error {
	if exit <= 0 {
		return domain.ErrInvalidArgument
	}
	if closedAt.IsZero() {
		closedAt = time.Now()
	}
	t.ExitPrice = &exit
	t.ClosedAt = &closedAt
	return nil
}
