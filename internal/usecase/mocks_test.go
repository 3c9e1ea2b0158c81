//go:build !integration

package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/adapter"
	"trading-journal-api/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// =============================
// Transaction manager
// =============================

// mockTxManager runs the function directly, passing NoTX through.
type mockTxManager struct {
	WithTxFunc func(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*mockTxManager)(nil)

func (m *mockTxManager) WithTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, opts, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Invite codes
// =============================

type memInviteCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*model.InviteCode // by id

	SaveFunc          func(ctx context.Context, tx repository.Tx, code *model.InviteCode) error
	FindByCodeFunc    func(ctx context.Context, tx repository.Tx, code string) (*model.InviteCode, error)
	IncrementUsesFunc func(ctx context.Context, tx repository.Tx, id string) error
}

var _ repository.InviteCodeRepository = (*memInviteCodeRepo)(nil)

func newMemInviteCodeRepo() *memInviteCodeRepo {
	return &memInviteCodeRepo{codes: make(map[string]*model.InviteCode)}
}

func (m *memInviteCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.InviteCode) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *code
	m.codes[code.ID] = &cp
	return nil
}

func (m *memInviteCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.InviteCode, error) {
	if m.FindByCodeFunc != nil {
		return m.FindByCodeFunc(ctx, tx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memInviteCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memInviteCodeRepo) IncrementUses(ctx context.Context, tx repository.Tx, id string) error {
	if m.IncrementUsesFunc != nil {
		return m.IncrementUsesFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.CurrentUses++
	return nil
}

func (m *memInviteCodeRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.InviteCode, 0, len(m.codes))
	for _, c := range m.codes {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memInviteCodeRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.codes, id)
	return nil
}

func (m *memInviteCodeRepo) ClearCreatedBy(ctx context.Context, tx repository.Tx, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.CreatedBy != nil && *c.CreatedBy == userID {
			c.CreatedBy = nil
		}
	}
	return nil
}

// =============================
// Redemptions
// =============================

type memRedemptionRepo struct {
	mu   sync.Mutex
	rows map[string]*model.Redemption // keyed codeID|userID

	InsertFunc func(ctx context.Context, tx repository.Tx, r *model.Redemption) error
	ExistsFunc func(ctx context.Context, tx repository.Tx, codeID, userID string) (bool, error)
}

var _ repository.RedemptionRepository = (*memRedemptionRepo)(nil)

func newMemRedemptionRepo() *memRedemptionRepo {
	return &memRedemptionRepo{rows: make(map[string]*model.Redemption)}
}

func redemptionKey(codeID, userID string) string { return codeID + "|" + userID }

func (m *memRedemptionRepo) Insert(ctx context.Context, tx repository.Tx, r *model.Redemption) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := redemptionKey(r.CodeID, r.UserID)
	if _, ok := m.rows[key]; ok {
		return domain.ErrAlreadyRedeemed
	}
	cp := *r
	m.rows[key] = &cp
	return nil
}

func (m *memRedemptionRepo) Exists(ctx context.Context, tx repository.Tx, codeID, userID string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, tx, codeID, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[redemptionKey(codeID, userID)]
	return ok, nil
}

func (m *memRedemptionRepo) DeleteByUser(ctx context.Context, tx repository.Tx, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, r := range m.rows {
		if r.UserID == userID {
			delete(m.rows, k)
		}
	}
	return nil
}

func (m *memRedemptionRepo) countByUser(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.UserID == userID {
			n++
		}
	}
	return n
}

// =============================
// Subscriptions
// =============================

type memSubscriptionRepo struct {
	mu   sync.Mutex
	rows map[string]*model.Subscription // by user id

	FindByUserFunc func(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error)
	UpsertFunc     func(ctx context.Context, tx repository.Tx, sub *model.Subscription) error
	SetTierFunc    func(ctx context.Context, tx repository.Tx, userID string, tier model.Tier, grantedByCodeID *string) error
}

var _ repository.SubscriptionRepository = (*memSubscriptionRepo)(nil)

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{rows: make(map[string]*model.Subscription)}
}

func (m *memSubscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, sub)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.rows[sub.UserID] = &cp
	return nil
}

func (m *memSubscriptionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, tx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubscriptionRepo) SetTier(ctx context.Context, tx repository.Tx, userID string, tier model.Tier, grantedByCodeID *string) error {
	if m.SetTierFunc != nil {
		return m.SetTierFunc(ctx, tx, userID, tier, grantedByCodeID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[userID]
	if !ok {
		s = &model.Subscription{UserID: userID}
		m.rows[userID] = s
	}
	s.Tier = tier
	s.GrantedByCodeID = grantedByCodeID
	s.UpdatedAt = time.Now()
	return nil
}

func (m *memSubscriptionRepo) ListExpiredTrials(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Subscription
	for _, s := range m.rows {
		if s.TrialExpired(now) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSubscriptionRepo) CountByTier(ctx context.Context, tx repository.Tx) (map[model.Tier]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[model.Tier]int)
	for _, s := range m.rows {
		out[s.Tier]++
	}
	return out, nil
}

func (m *memSubscriptionRepo) DeleteByUser(ctx context.Context, tx repository.Tx, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, userID)
	return nil
}

func (m *memSubscriptionRepo) get(userID string) *model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[userID]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

// =============================
// Users
// =============================

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // by id

	DeleteFunc func(ctx context.Context, tx repository.Tx, id string) error
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *memUserRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// =============================
// Trades
// =============================

type memTradeRepo struct {
	mu     sync.Mutex
	trades map[string]*model.Trade // by id

	ListAllByUserFunc func(ctx context.Context, tx repository.Tx, userID string) ([]*model.Trade, error)
}

var _ repository.TradeRepository = (*memTradeRepo)(nil)

func newMemTradeRepo() *memTradeRepo {
	return &memTradeRepo{trades: make(map[string]*model.Trade)}
}

func (m *memTradeRepo) Save(ctx context.Context, tx repository.Tx, t *model.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.trades[t.ID] = &cp
	return nil
}

func (m *memTradeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trades[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTradeRepo) listByUser(userID string) []*model.Trade {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Trade
	for _, t := range m.trades {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out
}

func (m *memTradeRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Trade, error) {
	all := m.listByUser(userID)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memTradeRepo) ListAllByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Trade, error) {
	if m.ListAllByUserFunc != nil {
		return m.ListAllByUserFunc(ctx, tx, userID)
	}
	return m.listByUser(userID), nil
}

func (m *memTradeRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trades[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.trades, id)
	return nil
}

func (m *memTradeRepo) DeleteByUser(ctx context.Context, tx repository.Tx, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.trades {
		if t.UserID == userID {
			delete(m.trades, id)
		}
	}
	return nil
}

// =============================
// Notes
// =============================

type memNoteRepo struct {
	mu    sync.Mutex
	notes map[string]*model.Note

	DeleteByUserFunc func(ctx context.Context, tx repository.Tx, userID string) error
}

var _ repository.NoteRepository = (*memNoteRepo)(nil)

func newMemNoteRepo() *memNoteRepo {
	return &memNoteRepo{notes: make(map[string]*model.Note)}
}

func (m *memNoteRepo) Save(ctx context.Context, tx repository.Tx, n *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.notes[n.ID] = &cp
	return nil
}

func (m *memNoteRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Note
	for _, n := range m.notes {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TakenAt.Before(out[j].TakenAt) })
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *memNoteRepo) DeleteByUser(ctx context.Context, tx repository.Tx, userID string) error {
	if m.DeleteByUserFunc != nil {
		return m.DeleteByUserFunc(ctx, tx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, n := range m.notes {
		if n.UserID == userID {
			delete(m.notes, id)
		}
	}
	return nil
}

// =============================
// Coach sessions
// =============================

type memCoachSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.CoachSession
	saved    []model.CoachMessage
}

var _ repository.CoachSessionRepository = (*memCoachSessionRepo)(nil)

func newMemCoachSessionRepo() *memCoachSessionRepo {
	return &memCoachSessionRepo{sessions: make(map[string]*model.CoachSession)}
}

func (m *memCoachSessionRepo) Save(ctx context.Context, tx repository.Tx, s *model.CoachSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	cp.Messages = append([]model.CoachMessage(nil), s.Messages...)
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memCoachSessionRepo) SaveMessage(ctx context.Context, tx repository.Tx, msg *model.CoachMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, *msg)
	if s, ok := m.sessions[msg.SessionID]; ok {
		s.Messages = append(s.Messages, *msg)
	}
	return nil
}

func (m *memCoachSessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.CoachSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	cp.Messages = append([]model.CoachMessage(nil), s.Messages...)
	return &cp, nil
}

func (m *memCoachSessionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.CoachSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UserID == userID && s.Status == model.CoachSessionActive {
			cp := *s
			cp.Messages = append([]model.CoachMessage(nil), s.Messages...)
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCoachSessionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.CoachSessionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = status
	return nil
}

func (m *memCoachSessionRepo) DeleteByUser(ctx context.Context, tx repository.Tx, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

// =============================
// AI adapter
// =============================

type mockAI struct {
	mu      sync.Mutex
	Replies []string
	Calls   [][]adapter.Message

	ChatFunc func(ctx context.Context, model string, messages []adapter.Message) (string, error)
}

var _ adapter.AIServiceAdapter = (*mockAI)(nil)

func (m *mockAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"mock-model"}, nil
}

func (m *mockAI) CountTokens(ctx context.Context, mdl string, messages []adapter.Message) (int, error) {
	n := 0
	for _, msg := range messages {
		n += len(msg.Content)
	}
	return n, nil
}

func (m *mockAI) Chat(ctx context.Context, mdl string, messages []adapter.Message) (string, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, mdl, messages)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, append([]adapter.Message(nil), messages...))
	reply := "ok"
	if len(m.Replies) > 0 {
		reply = m.Replies[0]
		m.Replies = m.Replies[1:]
	}
	return reply, nil
}
