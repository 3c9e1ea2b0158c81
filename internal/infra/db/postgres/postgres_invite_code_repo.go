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

// Ensure implementation satisfies the interface.
var _ repository.InviteCodeRepository = (*inviteCodeRepo)(nil)

type inviteCodeRepo struct {
	pool *pgxpool.Pool
}

func NewInviteCodeRepo(pool *pgxpool.Pool) repository.InviteCodeRepository {
	return &inviteCodeRepo{pool: pool}
}

const inviteCodeColumns = `id, code, tier, description, is_active, max_uses, current_uses, expires_at, created_by, created_at`

// Save creates or updates an invite code. ON CONFLICT covers both the
// create path and admin updates such as deactivation.
func (r *inviteCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.InviteCode) error {
	const q = `
INSERT INTO invite_codes (id, code, tier, description, is_active, max_uses, current_uses, expires_at, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
  description = EXCLUDED.description,
  is_active = EXCLUDED.is_active,
  max_uses = EXCLUDED.max_uses,
  expires_at = EXCLUDED.expires_at;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		code.ID, code.Code, code.Tier, code.Description, code.IsActive, code.MaxUses, code.CurrentUses, code.ExpiresAt, code.CreatedBy, code.CreatedAt,
	)
	return err
}

// FindByCode fetches a code by its normalized string. Inside a
// transaction the row is locked so the usage counter cannot race.
func (r *inviteCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.InviteCode, error) {
	q := `SELECT ` + inviteCodeColumns + ` FROM invite_codes WHERE code = $1`
	if _, inTx := tx.(pgx.Tx); inTx {
		q += ` FOR UPDATE`
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", code)
	if err != nil {
		return nil, err
	}
	return scanInviteCode(row)
}

func (r *inviteCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.InviteCode, error) {
	q := `SELECT ` + inviteCodeColumns + ` FROM invite_codes WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanInviteCode(row)
}

func (r *inviteCodeRepo) IncrementUses(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE invite_codes SET current_uses = current_uses + 1 WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *inviteCodeRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.InviteCode, error) {
	q := `SELECT ` + inviteCodeColumns + ` FROM invite_codes ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.InviteCode
	for rows.Next() {
		ic, err := scanInviteCode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ic)
	}
	return out, rows.Err()
}

func (r *inviteCodeRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM invite_codes WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *inviteCodeRepo) ClearCreatedBy(ctx context.Context, tx repository.Tx, userID string) error {
	_, err := execSQL(ctx, r.pool, tx, `UPDATE invite_codes SET created_by = NULL WHERE created_by = $1;`, userID)
	return err
}

func scanInviteCode(row pgx.Row) (*model.InviteCode, error) {
	var ic model.InviteCode
	err := row.Scan(
		&ic.ID, &ic.Code, &ic.Tier, &ic.Description, &ic.IsActive, &ic.MaxUses, &ic.CurrentUses, &ic.ExpiresAt, &ic.CreatedBy, &ic.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &ic, nil
}
