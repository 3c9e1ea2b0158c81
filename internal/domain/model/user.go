package model

import (
	"strings"
	"time"

	"trading-journal-api/internal/domain"

	"github.com/google/uuid"
)

// User is a journal account holder, identified by email.
type User struct {
	ID          string
	Email       string // stored lowercase
	DisplayName string
	CreatedAt   time.Time
	LastLoginAt time.Time
}

func NewUser(id, email, displayName string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidArgument
	}
	if displayName == "" {
		displayName = email[:strings.Index(email, "@")]
	}
	now := time.Now()
	return &User{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   now,
		LastLoginAt: now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.LastLoginAt = time.Now() }
