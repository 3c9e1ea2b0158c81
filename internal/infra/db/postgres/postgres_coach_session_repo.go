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

var _ repository.CoachSessionRepository = (*coachSessionRepo)(nil)

type coachSessionRepo struct {
	pool *pgxpool.Pool
}

func NewCoachSessionRepo(pool *pgxpool.Pool) repository.CoachSessionRepository {
	return &coachSessionRepo{pool: pool}
}

func (r *coachSessionRepo) Save(ctx context.Context, tx repository.Tx, s *model.CoachSession) error {
	const q = `
INSERT INTO coach_sessions (id, user_id, model, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  updated_at = EXCLUDED.updated_at;
`
	_, err := execSQL(ctx, r.pool, tx, q, s.ID, s.UserID, s.Model, s.Status, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *coachSessionRepo) SaveMessage(ctx context.Context, tx repository.Tx, m *model.CoachMessage) error {
	const q = `
INSERT INTO coach_messages (session_id, role, content, tokens, created_at)
VALUES ($1, $2, $3, $4, $5);
`
	_, err := execSQL(ctx, r.pool, tx, q, m.SessionID, m.Role, m.Content, m.Tokens, m.Timestamp)
	return err
}

func (r *coachSessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.CoachSession, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT id, user_id, model, status, created_at, updated_at FROM coach_sessions WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	s, err := scanCoachSession(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadMessages(ctx, tx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *coachSessionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.CoachSession, error) {
	const q = `
SELECT id, user_id, model, status, created_at, updated_at
  FROM coach_sessions
 WHERE user_id = $1 AND status = 'active'
 ORDER BY created_at DESC LIMIT 1;
`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	s, err := scanCoachSession(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadMessages(ctx, tx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *coachSessionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.CoachSessionStatus) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE coach_sessions SET status = $2, updated_at = NOW() WHERE id = $1;`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *coachSessionRepo) DeleteByUser(ctx context.Context, tx repository.Tx, userID string) error {
	if _, err := execSQL(ctx, r.pool, tx, `DELETE FROM coach_messages WHERE session_id IN (SELECT id FROM coach_sessions WHERE user_id = $1);`, userID); err != nil {
		return err
	}
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM coach_sessions WHERE user_id = $1;`, userID)
	return err
}

func (r *coachSessionRepo) loadMessages(ctx context.Context, tx repository.Tx, s *model.CoachSession) error {
	const q = `
SELECT session_id, role, content, tokens, created_at
  FROM coach_messages WHERE session_id = $1 ORDER BY created_at;
`
	rows, err := queryRows(ctx, r.pool, tx, q, s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m model.CoachMessage
		if err := rows.Scan(&m.SessionID, &m.Role, &m.Content, &m.Tokens, &m.Timestamp); err != nil {
			return domain.ErrReadDatabaseRow
		}
		s.Messages = append(s.Messages, m)
	}
	return rows.Err()
}

func scanCoachSession(row pgx.Row) (*model.CoachSession, error) {
	var s model.CoachSession
	if err := row.Scan(&s.ID, &s.UserID, &s.Model, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &s, nil
}
