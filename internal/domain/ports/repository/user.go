package repository

import (
	"context"

	"trading-journal-api/internal/domain/model"
)

// UserRepository is the port for journal accounts.
type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
	Delete(ctx context.Context, tx Tx, id string) error
}
