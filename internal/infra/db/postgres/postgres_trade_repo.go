package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/repository"
)

var _ repository.TradeRepository = (*tradeRepo)(nil)

type tradeRepo struct {
	pool *pgxpool.Pool
}

func NewTradeRepo(pool *pgxpool.Pool) repository.TradeRepository {
	return &tradeRepo{pool: pool}
}

const tradeColumns = `id, user_id, symbol, side, quantity, entry_price, exit_price, fees, tags, opened_at, closed_at, created_at`

func (r *tradeRepo) Save(ctx context.Context, tx repository.Tx, t *model.Trade) error {
	const q = `
INSERT INTO trades (id, user_id, symbol, side, quantity, entry_price, exit_price, fees, tags, opened_at, closed_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
  symbol = EXCLUDED.symbol,
  side = EXCLUDED.side,
  quantity = EXCLUDED.quantity,
  entry_price = EXCLUDED.entry_price,
  exit_price = EXCLUDED.exit_price,
  fees = EXCLUDED.fees,
  tags = EXCLUDED.tags,
  opened_at = EXCLUDED.opened_at,
  closed_at = EXCLUDED.closed_at;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		t.ID, t.UserID, t.Symbol, t.Side, t.Quantity, t.EntryPrice, t.ExitPrice, t.Fees, t.Tags, t.OpenedAt, t.ClosedAt, t.CreatedAt,
	)
	return err
}

func (r *tradeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Trade, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+tradeColumns+` FROM trades WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	return scanTrade(row)
}

func (r *tradeRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Trade, error) {
	q := `SELECT ` + tradeColumns + ` FROM trades WHERE user_id = $1 ORDER BY opened_at LIMIT $2 OFFSET $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrades(rows)
}

func (r *tradeRepo) ListAllByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Trade, error) {
	q := `SELECT ` + tradeColumns + ` FROM trades WHERE user_id = $1 ORDER BY opened_at;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrades(rows)
}

func (r *tradeRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM trades WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *tradeRepo) DeleteByUser(ctx context.Context, tx repository.Tx, userID string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM trades WHERE user_id = $1;`, userID)
	return err
}

func collectTrades(rows pgx.Rows) ([]*model.Trade, error) {
	var out []*model.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTrade(row pgx.Row) (*model.Trade, error) {
	var t model.Trade
	err := row.Scan(
		&t.ID, &t.UserID, &t.Symbol, &t.Side, &t.Quantity, &t.EntryPrice, &t.ExitPrice, &t.Fees, &t.Tags, &t.OpenedAt, &t.ClosedAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &t, nil
}
