package repository

import (
	"context"

	"trading-journal-api/internal/domain/model"
)

// InviteCodeRepository is the port for managing invite codes.
type InviteCodeRepository interface {
	// Save creates or updates an invite code.
	Save(ctx context.Context, tx Tx, code *model.InviteCode) error
	// FindByCode looks a code up by its normalized code string. When
	// called inside a transaction the row is locked for update.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.InviteCode, error)
	// FindByID looks a code up by id.
	FindByID(ctx context.Context, tx Tx, id string) (*model.InviteCode, error)
	// IncrementUses bumps current_uses by one.
	IncrementUses(ctx context.Context, tx Tx, id string) error
	// ListAll returns every code, newest first.
	ListAll(ctx context.Context, tx Tx) ([]*model.InviteCode, error)
	// Delete removes a code permanently.
	Delete(ctx context.Context, tx Tx, id string) error
	// ClearCreatedBy nulls created_by on all codes created by userID.
	ClearCreatedBy(ctx context.Context, tx Tx, userID string) error
}
