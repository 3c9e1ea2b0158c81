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

var _ repository.NoteRepository = (*noteRepo)(nil)

type noteRepo struct {
	pool *pgxpool.Pool
}

func NewNoteRepo(pool *pgxpool.Pool) repository.NoteRepository {
	return &noteRepo{pool: pool}
}

func (r *noteRepo) Save(ctx context.Context, tx repository.Tx, n *model.Note) error {
	const q = `
INSERT INTO notes (id, user_id, content, trade_id, taken_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
  content = EXCLUDED.content,
  trade_id = EXCLUDED.trade_id;
`
	_, err := execSQL(ctx, r.pool, tx, q, n.ID, n.UserID, n.Content, n.TradeID, n.TakenAt, n.CreatedAt)
	return err
}

func (r *noteRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Note, error) {
	const q = `
SELECT id, user_id, content, trade_id, taken_at, created_at
  FROM notes WHERE user_id = $1 ORDER BY taken_at DESC LIMIT $2 OFFSET $3;
`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.TradeID, &n.TakenAt, &n.CreatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *noteRepo) DeleteByUser(ctx context.Context, tx repository.Tx, userID string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM notes WHERE user_id = $1;`, userID)
	return err
}
