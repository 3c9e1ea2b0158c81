package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/adapter"
	"trading-journal-api/internal/domain/ports/repository"
)

// Compile-time check
var _ CoachUseCase = (*coachUC)(nil)

// CoachUseCase drives the AI trading coach. The feature is gated to the
// pro and max tiers; the effective tier is resolved on every message.
type CoachUseCase interface {
	Chat(ctx context.Context, userID, email, message string) (reply string, err error)
	EndSession(ctx context.Context, userID string) error
}

type coachUC struct {
	sessions     repository.CoachSessionRepository
	ai           adapter.AIServiceAdapter
	subs         SubscriptionUseCase
	model        string
	systemPrompt string
	log          *zerolog.Logger
}

const defaultSystemPrompt = "You are a trading coach reviewing a personal crypto/stock trading journal. " +
	"Be concrete, reference the trader's own entries, and never give financial advice as guarantees."

func NewCoachUseCase(sessions repository.CoachSessionRepository, ai adapter.AIServiceAdapter, subs SubscriptionUseCase, modelName, systemPrompt string, logger *zerolog.Logger) *coachUC {
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	return &coachUC{sessions: sessions, ai: ai, subs: subs, model: modelName, systemPrompt: systemPrompt, log: logger}
}

func (c *coachUC) Chat(ctx context.Context, userID, email, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", domain.ErrInvalidArgument
	}

	ent := c.subs.Resolve(ctx, userID, email)
	if !ent.Tier.Grantable() { // free tier has no coach access
		return "", domain.ErrTierRequired
	}

	// One active session per user; create lazily.
	s, err := c.sessions.FindActiveByUser(ctx, repository.NoTX, userID)
	if err != nil || s == nil {
		s = model.NewCoachSession(uuid.NewString(), userID, c.model)
		if err := c.sessions.Save(ctx, repository.NoTX, s); err != nil {
			return "", err
		}
	}

	s.AddMessage("user", message, 0)
	if err := c.sessions.SaveMessage(ctx, repository.NoTX, &s.Messages[len(s.Messages)-1]); err != nil {
		return "", err
	}

	// Recent context window plus the coaching system prompt.
	msgs := s.GetRecentMessages(15)
	adapterMsgs := make([]adapter.Message, 0, len(msgs)+1)
	adapterMsgs = append(adapterMsgs, adapter.Message{Role: "system", Content: c.systemPrompt})
	for _, m := range msgs {
		adapterMsgs = append(adapterMsgs, adapter.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := c.ai.Chat(ctx, s.Model, adapterMsgs)
	if err != nil {
		return "", err
	}

	s.AddMessage("assistant", reply, 0)
	if err := c.sessions.SaveMessage(ctx, repository.NoTX, &s.Messages[len(s.Messages)-1]); err != nil {
		return "", err
	}
	s.UpdatedAt = time.Now()
	_ = c.sessions.Save(ctx, repository.NoTX, s)
	return reply, nil
}

// EndSession finishes the user's active session. Ending with no active
// session is a no-op.
func (c *coachUC) EndSession(ctx context.Context, userID string) error {
	s, err := c.sessions.FindActiveByUser(ctx, repository.NoTX, userID)
	if err == domain.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	return c.sessions.UpdateStatus(ctx, repository.NoTX, s.ID, model.CoachSessionFinished)
}
