package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/repository"
)

// Compile-time check
var _ AdminUseCase = (*adminUC)(nil)

// AdminUseCase holds owner-only operations: invite code administration
// and user purging. Every call re-verifies owner status server-side; a
// client-supplied flag is never trusted.
type AdminUseCase interface {
	CreateCode(ctx context.Context, actorID, actorEmail string, tier model.Tier, description string, maxUses *int, expiresAt *time.Time) (*model.InviteCode, error)
	DeactivateCode(ctx context.Context, actorID, actorEmail, codeID string) error
	DeleteCode(ctx context.Context, actorID, actorEmail, codeID string) error
	ListCodes(ctx context.Context, actorID, actorEmail string) ([]*model.InviteCode, error)
	ListUsers(ctx context.Context, actorID, actorEmail string, offset, limit int) ([]*model.User, int, error)
	DeleteUser(ctx context.Context, actorID, actorEmail, userID string) error
}

type adminUC struct {
	owner       *OwnerResolver
	codes       repository.InviteCodeRepository
	redemptions repository.RedemptionRepository
	subs        repository.SubscriptionRepository
	users       repository.UserRepository
	trades      repository.TradeRepository
	notes       repository.NoteRepository
	sessions    repository.CoachSessionRepository
	log         *zerolog.Logger
}

func NewAdminUseCase(
	owner *OwnerResolver,
	codes repository.InviteCodeRepository,
	redemptions repository.RedemptionRepository,
	subs repository.SubscriptionRepository,
	users repository.UserRepository,
	trades repository.TradeRepository,
	notes repository.NoteRepository,
	sessions repository.CoachSessionRepository,
	logger *zerolog.Logger,
) *adminUC {
	return &adminUC{
		owner:       owner,
		codes:       codes,
		redemptions: redemptions,
		subs:        subs,
		users:       users,
		trades:      trades,
		notes:       notes,
		sessions:    sessions,
		log:         logger,
	}
}

func (uc *adminUC) requireOwner(ctx context.Context, actorID, actorEmail string) error {
	if !uc.owner.IsOwner(ctx, actorID, actorEmail) {
		return domain.ErrNotOwner
	}
	return nil
}

func (uc *adminUC) CreateCode(ctx context.Context, actorID, actorEmail string, tier model.Tier, description string, maxUses *int, expiresAt *time.Time) (*model.InviteCode, error) {
	if err := uc.requireOwner(ctx, actorID, actorEmail); err != nil {
		return nil, err
	}
	if !tier.Grantable() {
		return nil, domain.ErrInvalidArgument
	}
	code, err := generateInviteCode(tier)
	if err != nil {
		return nil, err
	}
	ic, err := model.NewInviteCode(code, tier, description, maxUses, expiresAt, actorID)
	if err != nil {
		return nil, err
	}
	if err := uc.codes.Save(ctx, repository.NoTX, ic); err != nil {
		return nil, err
	}
	uc.log.Info().Str("code_id", ic.ID).Str("tier", string(tier)).Msg("invite code created")
	return ic, nil
}

func (uc *adminUC) DeactivateCode(ctx context.Context, actorID, actorEmail, codeID string) error {
	if err := uc.requireOwner(ctx, actorID, actorEmail); err != nil {
		return err
	}
	if codeID == "" {
		return domain.ErrInvalidArgument
	}
	ic, err := uc.codes.FindByID(ctx, repository.NoTX, codeID)
	if err != nil {
		return err
	}
	if !ic.IsActive {
		return nil // already inactive, idempotent
	}
	ic.IsActive = false
	return uc.codes.Save(ctx, repository.NoTX, ic)
}

func (uc *adminUC) DeleteCode(ctx context.Context, actorID, actorEmail, codeID string) error {
	if err := uc.requireOwner(ctx, actorID, actorEmail); err != nil {
		return err
	}
	if codeID == "" {
		return domain.ErrInvalidArgument
	}
	return uc.codes.Delete(ctx, repository.NoTX, codeID)
}

func (uc *adminUC) ListCodes(ctx context.Context, actorID, actorEmail string) ([]*model.InviteCode, error) {
	if err := uc.requireOwner(ctx, actorID, actorEmail); err != nil {
		return nil, err
	}
	return uc.codes.ListAll(ctx, repository.NoTX)
}

// ListUsers pages accounts for the admin screen, oldest first, with
// the total count for pagination.
func (uc *adminUC) ListUsers(ctx context.Context, actorID, actorEmail string, offset, limit int) ([]*model.User, int, error) {
	if err := uc.requireOwner(ctx, actorID, actorEmail); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	users, err := uc.users.List(ctx, repository.NoTX, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.users.CountUsers(ctx, repository.NoTX)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// DeleteUser purges a user and every row referencing them, in a fixed
// order. Invite codes created by the user survive with created_by
// nulled. The cascade is best-effort: a failure on one table is logged
// and the remaining deletions still run; only a failure to remove the
// user row itself is returned.
func (uc *adminUC) DeleteUser(ctx context.Context, actorID, actorEmail, userID string) error {
	if err := uc.requireOwner(ctx, actorID, actorEmail); err != nil {
		return err
	}
	if userID == "" {
		return domain.ErrInvalidArgument
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"redemptions", func() error { return uc.redemptions.DeleteByUser(ctx, repository.NoTX, userID) }},
		{"coach_sessions", func() error { return uc.sessions.DeleteByUser(ctx, repository.NoTX, userID) }},
		{"notes", func() error { return uc.notes.DeleteByUser(ctx, repository.NoTX, userID) }},
		{"trades", func() error { return uc.trades.DeleteByUser(ctx, repository.NoTX, userID) }},
		{"subscriptions", func() error { return uc.subs.DeleteByUser(ctx, repository.NoTX, userID) }},
		{"invite_codes.created_by", func() error { return uc.codes.ClearCreatedBy(ctx, repository.NoTX, userID) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			uc.log.Error().Err(err).Str("user_id", userID).Str("table", s.name).Msg("user purge step failed; continuing")
		}
	}

	if err := uc.users.Delete(ctx, repository.NoTX, userID); err != nil {
		uc.log.Error().Err(err).Str("user_id", userID).Msg("user row delete failed")
		return err
	}
	uc.log.Info().Str("user_id", userID).Msg("user purged")
	return nil
}
