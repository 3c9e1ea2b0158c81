//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/infra/redis"
	"trading-journal-api/internal/usecase"
)

// --- Mock use cases (func-field style) ---

type mockUserUC struct {
	usecase.UserUseCase
	RegisterOrLoginFunc func(ctx context.Context, email, displayName string) (*model.User, bool, error)
}

func (m *mockUserUC) RegisterOrLogin(ctx context.Context, email, displayName string) (*model.User, bool, error) {
	return m.RegisterOrLoginFunc(ctx, email, displayName)
}

type mockSubUC struct {
	usecase.SubscriptionUseCase
	ResolveFunc        func(ctx context.Context, userID, email string) model.Entitlement
	FinalizeSignupFunc func(ctx context.Context, userID string) error
}

func (m *mockSubUC) Resolve(ctx context.Context, userID, email string) model.Entitlement {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, userID, email)
	}
	return model.FreeEntitlement()
}

func (m *mockSubUC) FinalizeSignup(ctx context.Context, userID string) error {
	if m.FinalizeSignupFunc != nil {
		return m.FinalizeSignupFunc(ctx, userID)
	}
	return nil
}

type mockRedeemUC struct {
	RedeemFunc func(ctx context.Context, userID, rawCode string) (model.Tier, error)
}

func (m *mockRedeemUC) Redeem(ctx context.Context, userID, rawCode string) (model.Tier, error) {
	return m.RedeemFunc(ctx, userID, rawCode)
}

type mockAdminUC struct {
	usecase.AdminUseCase
	DeactivateCodeFunc func(ctx context.Context, actorID, actorEmail, codeID string) error
	DeleteUserFunc     func(ctx context.Context, actorID, actorEmail, userID string) error
	CreateCodeFunc     func(ctx context.Context, actorID, actorEmail string, tier model.Tier, description string, maxUses *int, expiresAt *time.Time) (*model.InviteCode, error)
	ListUsersFunc      func(ctx context.Context, actorID, actorEmail string, offset, limit int) ([]*model.User, int, error)
}

func (m *mockAdminUC) ListUsers(ctx context.Context, actorID, actorEmail string, offset, limit int) ([]*model.User, int, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, actorID, actorEmail, offset, limit)
	}
	return nil, 0, domain.ErrNotOwner
}

func (m *mockAdminUC) DeactivateCode(ctx context.Context, actorID, actorEmail, codeID string) error {
	if m.DeactivateCodeFunc != nil {
		return m.DeactivateCodeFunc(ctx, actorID, actorEmail, codeID)
	}
	return nil
}

func (m *mockAdminUC) DeleteUser(ctx context.Context, actorID, actorEmail, userID string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, actorID, actorEmail, userID)
	}
	return nil
}

func (m *mockAdminUC) CreateCode(ctx context.Context, actorID, actorEmail string, tier model.Tier, description string, maxUses *int, expiresAt *time.Time) (*model.InviteCode, error) {
	if m.CreateCodeFunc != nil {
		return m.CreateCodeFunc(ctx, actorID, actorEmail, tier, description, maxUses, expiresAt)
	}
	return nil, domain.ErrNotOwner
}

type mockCoachUC struct {
	ChatFunc       func(ctx context.Context, userID, email, message string) (string, error)
	EndSessionFunc func(ctx context.Context, userID string) error
}

func (m *mockCoachUC) Chat(ctx context.Context, userID, email, message string) (string, error) {
	return m.ChatFunc(ctx, userID, email, message)
}

func (m *mockCoachUC) EndSession(ctx context.Context, userID string) error {
	if m.EndSessionFunc != nil {
		return m.EndSessionFunc(ctx, userID)
	}
	return nil
}

type mockTradeUC struct {
	usecase.TradeUseCase
	CloseFunc func(ctx context.Context, userID, tradeID string, exit float64, closedAt time.Time) (*model.Trade, error)
}

func (m *mockTradeUC) Close(ctx context.Context, userID, tradeID string, exit float64, closedAt time.Time) (*model.Trade, error) {
	return m.CloseFunc(ctx, userID, tradeID, exit, closedAt)
}

// --- Mock redis client backing the rate limiter ---

type mockRedisClient struct {
	mu     sync.Mutex
	counts map[string]int64
	ttls   map[string]time.Duration
}

var _ redis.RedisClient = (*mockRedisClient)(nil)

func newMockRedisClient() *mockRedisClient {
	return &mockRedisClient{counts: make(map[string]int64), ttls: make(map[string]time.Duration)}
}

func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }

func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return "", redis.Nil
}

func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

func (m *mockRedisClient) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key], nil
}

func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttls[key] = expiration
	return nil
}

func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.counts, k)
		delete(m.ttls, k)
	}
	return nil
}

func (m *mockRedisClient) Close() error { return nil }
