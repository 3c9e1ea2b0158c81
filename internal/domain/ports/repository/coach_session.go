package repository

import (
	"context"

	"trading-journal-api/internal/domain/model"
)

// CoachSessionRepository is the port for AI coach conversations.
type CoachSessionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.CoachSession) error
	SaveMessage(ctx context.Context, tx Tx, m *model.CoachMessage) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.CoachSession, error)
	FindActiveByUser(ctx context.Context, tx Tx, userID string) (*model.CoachSession, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.CoachSessionStatus) error
	DeleteByUser(ctx context.Context, tx Tx, userID string) error
}
