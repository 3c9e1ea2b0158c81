package model

import (
	"time"
)

type CoachSessionStatus string

const (
	CoachSessionActive   CoachSessionStatus = "active"
	CoachSessionFinished CoachSessionStatus = "finished"
)

// CoachMessage represents one message within a coach conversation.
type CoachMessage struct {
	SessionID string
	Role      string // "user" | "assistant" | "system"
	Content   string
	Tokens    int
	Timestamp time.Time
}

// CoachSession is the aggregate root for a running conversation with
// the AI trading coach.
type CoachSession struct {
	ID        string
	UserID    string
	Model     string
	Status    CoachSessionStatus
	Messages  []CoachMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCoachSession(id, userID, model string) *CoachSession {
	return &CoachSession{
		ID:        id,
		UserID:    userID,
		Model:     model,
		Status:    CoachSessionActive,
		Messages:  make([]CoachMessage, 0, 8),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (s *CoachSession) AddMessage(role, content string, tokens int) {
	s.Messages = append(s.Messages, CoachMessage{
		SessionID: s.ID,
		Role:      role,
		Content:   content,
		Tokens:    tokens,
		Timestamp: time.Now(),
	})
	s.UpdatedAt = time.Now()
}

func (s *CoachSession) GetRecentMessages(n int) []CoachMessage {
	if n <= 0 || len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}
