package repository

import (
	"context"

	"trading-journal-api/internal/domain/model"
)

// NoteRepository is the port for journal notes.
type NoteRepository interface {
	Save(ctx context.Context, tx Tx, n *model.Note) error
	ListByUser(ctx context.Context, tx Tx, userID string, offset, limit int) ([]*model.Note, error)
	DeleteByUser(ctx context.Context, tx Tx, userID string) error
}
