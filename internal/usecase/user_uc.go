package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/repository"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase manages journal accounts and session establishment.
type UserUseCase interface {
	// RegisterOrLogin upserts the account for the email and runs owner
	// auto-provisioning. The returned bool is the owner marker for the
	// session, set even when the provisioning write failed.
	RegisterOrLogin(ctx context.Context, email, displayName string) (*model.User, bool, error)
}

type userUC struct {
	users repository.UserRepository
	owner *OwnerResolver
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, owner *OwnerResolver, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, owner: owner, log: logger}
}

func (uc *userUC) RegisterOrLogin(ctx context.Context, email, displayName string) (*model.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, false, domain.ErrInvalidArgument
	}

	u, err := uc.users.FindByEmail(ctx, repository.NoTX, email)
	switch {
	case err == domain.ErrNotFound:
		u, err = model.NewUser("", email, displayName)
		if err != nil {
			return nil, false, err
		}
	case err != nil:
		return nil, false, err
	default:
		u.Touch()
		if displayName != "" {
			u.DisplayName = displayName
		}
	}
	if err := uc.users.Save(ctx, repository.NoTX, u); err != nil {
		return nil, false, err
	}

	isOwner := uc.owner.EnsureOwner(ctx, u)
	return u, isOwner, nil
}
