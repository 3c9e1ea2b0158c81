package model

import (
	"time"

	"trading-journal-api/internal/domain"

	"github.com/oklog/ulid/v2"
)

// Redemption logs one user consuming one invite code. The store enforces
// uniqueness on (CodeID, UserID).
type Redemption struct {
	ID        string // ulid, time-sortable
	CodeID    string
	UserID    string
	CreatedAt time.Time
}

func NewRedemption(codeID, userID string) (*Redemption, error) {
	if codeID == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Redemption{
		ID:        ulid.Make().String(),
		CodeID:    codeID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}, nil
}
