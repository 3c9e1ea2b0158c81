package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/repository"
)

// Compile-time check
var _ NoteUseCase = (*noteUC)(nil)

// NoteUseCase manages journal notes, auto-linking each new note to the
// trade opened nearest in time.
type NoteUseCase interface {
	Create(ctx context.Context, userID, content string, takenAt time.Time) (*model.Note, error)
	List(ctx context.Context, userID string, offset, limit int) ([]*model.Note, error)
}

type noteUC struct {
	notes      repository.NoteRepository
	trades     repository.TradeRepository
	linkWindow time.Duration
	log        *zerolog.Logger
}

func NewNoteUseCase(notes repository.NoteRepository, trades repository.TradeRepository, linkWindow time.Duration, logger *zerolog.Logger) *noteUC {
	if linkWindow <= 0 {
		linkWindow = 12 * time.Hour
	}
	return &noteUC{notes: notes, trades: trades, linkWindow: linkWindow, log: logger}
}

func (uc *noteUC) Create(ctx context.Context, userID, content string, takenAt time.Time) (*model.Note, error) {
	n, err := model.NewNote(userID, content, takenAt)
	if err != nil {
		return nil, err
	}

	// Nearest-timestamp match against the user's trades. Linking is
	// best-effort: a trade lookup failure leaves the note unlinked.
	trades, err := uc.trades.ListAllByUser(ctx, repository.NoTX, userID)
	if err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Msg("trade lookup failed; saving note unlinked")
	} else if id := nearestTrade(trades, n.TakenAt, uc.linkWindow); id != "" {
		n.TradeID = &id
	}

	if err := uc.notes.Save(ctx, repository.NoTX, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (uc *noteUC) List(ctx context.Context, userID string, offset, limit int) ([]*model.Note, error) {
	return uc.notes.ListByUser(ctx, repository.NoTX, userID, offset, limit)
}

// nearestTrade returns the id of the trade whose OpenedAt is closest to
// at, or "" when none falls within the window.
func nearestTrade(trades []*model.Trade, at time.Time, window time.Duration) string {
	var best string
	bestDist := window
	for _, t := range trades {
		dist := at.Sub(t.OpenedAt)
		if dist < 0 {
			dist = -dist
		}
		if dist <= bestDist {
			best = t.ID
			bestDist = dist
		}
	}
	return best
}
