package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotOwner        = errors.New("operation requires owner privileges")
	ErrTierRequired    = errors.New("subscription tier does not allow this feature")

	// Invite code redemption errors, in validation order.
	ErrCodeNotFound    = errors.New("invite code not found")
	ErrCodeInactive    = errors.New("invite code is inactive")
	ErrCodeExpired     = errors.New("invite code has expired")
	ErrCodeExhausted   = errors.New("invite code has reached its usage limit")
	ErrAlreadyRedeemed = errors.New("invite code already redeemed by this user")

	// Infra-boundary errors
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrActiveChatExists   = errors.New("user already has an active coach session")
)
