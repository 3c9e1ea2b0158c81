package model

import (
	"time"

	"trading-journal-api/internal/domain"

	"github.com/google/uuid"
)

// Note is a free-form journal note, optionally linked to the trade it
// was written about.
type Note struct {
	ID        string
	UserID    string
	Content   string
	TradeID   *string
	TakenAt   time.Time // when the note refers to, used for auto-linking
	CreatedAt time.Time
}

func NewNote(userID, content string, takenAt time.Time) (*Note, error) {
	if userID == "" || content == "" {
		return nil, domain.ErrInvalidArgument
	}
	if takenAt.IsZero() {
		takenAt = time.Now()
	}
	return &Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		TakenAt:   takenAt,
		CreatedAt: time.Now(),
	}, nil
}
