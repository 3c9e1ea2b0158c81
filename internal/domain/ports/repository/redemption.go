package repository

import (
	"context"

	"trading-journal-api/internal/domain/model"
)

// RedemptionRepository is the port for the redemption log.
type RedemptionRepository interface {
	// Insert adds a redemption. Returns domain.ErrAlreadyRedeemed when
	// the (code, user) pair already exists.
	Insert(ctx context.Context, tx Tx, r *model.Redemption) error
	// Exists reports whether the user has redeemed the code before.
	Exists(ctx context.Context, tx Tx, codeID, userID string) (bool, error)
	// DeleteByUser removes all redemptions for a user.
	DeleteByUser(ctx context.Context, tx Tx, userID string) error
}
