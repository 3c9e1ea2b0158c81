package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.RedemptionRepository = (*redemptionRepo)(nil)

type redemptionRepo struct {
	pool *pgxpool.Pool
}

func NewRedemptionRepo(pool *pgxpool.Pool) repository.RedemptionRepository {
	return &redemptionRepo{pool: pool}
}

// Insert relies on the UNIQUE (code_id, user_id) constraint: a
// concurrent duplicate fails here instead of slipping past the
// existence pre-check.
func (r *redemptionRepo) Insert(ctx context.Context, tx repository.Tx, red *model.Redemption) error {
	const q = `
INSERT INTO redemptions (id, code_id, user_id, created_at)
VALUES ($1, $2, $3, $4);
`
	_, err := execSQL(ctx, r.pool, tx, q, red.ID, red.CodeID, red.UserID, red.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRedeemed
		}
		return err
	}
	return nil
}

func (r *redemptionRepo) Exists(ctx context.Context, tx repository.Tx, codeID, userID string) (bool, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT EXISTS(SELECT 1 FROM redemptions WHERE code_id = $1 AND user_id = $2);`, codeID, userID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}

func (r *redemptionRepo) DeleteByUser(ctx context.Context, tx repository.Tx, userID string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM redemptions WHERE user_id = $1;`, userID)
	return err
}
