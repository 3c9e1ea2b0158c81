package repository

import (
	"context"

	"trading-journal-api/internal/domain/model"
)

// TradeRepository is the port for journal trades.
type TradeRepository interface {
	Save(ctx context.Context, tx Tx, t *model.Trade) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Trade, error)
	// ListByUser returns the user's trades ordered by OpenedAt ascending.
	ListByUser(ctx context.Context, tx Tx, userID string, offset, limit int) ([]*model.Trade, error)
	// ListAllByUser returns every trade for aggregation, OpenedAt ascending.
	ListAllByUser(ctx context.Context, tx Tx, userID string) ([]*model.Trade, error)
	Delete(ctx context.Context, tx Tx, id string) error
	DeleteByUser(ctx context.Context, tx Tx, userID string) error
}
