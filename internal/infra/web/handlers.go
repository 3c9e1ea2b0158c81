package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/infra/metrics"
)

// ===== auth =====

type createSessionRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type createSessionResponse struct {
	Token   string `json:"token"`
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsOwner bool   `json:"is_owner"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Email is required"})
		return
	}

	u, isOwner, err := s.userUC.RegisterOrLogin(r.Context(), req.Email, req.DisplayName)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}

	token, err := s.auth.Mint(w, u.ID, u.Email, isOwner)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, createSessionResponse{
		Token:   token,
		UserID:  u.ID,
		Email:   u.Email,
		IsOwner: isOwner,
	})
}

type finalizeSignupRequest struct {
	UserID string `json:"userId"`
}

func (s *Server) handleFinalizeSignup(w http.ResponseWriter, r *http.Request) {
	var req finalizeSignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "User ID is required"})
		return
	}
	if err := s.subUC.FinalizeSignup(r.Context(), req.UserID); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ===== subscription =====

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())
	ent := s.subUC.Resolve(r.Context(), claims.UserID, claims.Email)
	writeJSON(w, http.StatusOK, ent)
}

// ===== invite administration =====

type createInviteRequest struct {
	Tier        string     `json:"tier"`
	Description string     `json:"description"`
	MaxUses     *int       `json:"maxUses"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

type inviteCodeView struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Tier        string     `json:"tier"`
	Description string     `json:"description,omitempty"`
	IsActive    bool       `json:"is_active"`
	MaxUses     *int       `json:"max_uses,omitempty"`
	CurrentUses int        `json:"current_uses"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toInviteCodeView(ic *model.InviteCode) inviteCodeView {
	return inviteCodeView{
		ID:          ic.ID,
		Code:        ic.Code,
		Tier:        string(ic.Tier),
		Description: ic.Description,
		IsActive:    ic.IsActive,
		MaxUses:     ic.MaxUses,
		CurrentUses: ic.CurrentUses,
		ExpiresAt:   ic.ExpiresAt,
		CreatedAt:   ic.CreatedAt,
	}
}

func (s *Server) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	var req createInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return
	}

	ic, err := s.adminUC.CreateCode(r.Context(), claims.UserID, claims.Email, model.Tier(req.Tier), req.Description, req.MaxUses, req.ExpiresAt)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	metrics.IncInviteCodeCreated(string(ic.Tier))

	writeJSON(w, http.StatusCreated, struct {
		Success bool           `json:"success"`
		Code    inviteCodeView `json:"code"`
	}{Success: true, Code: toInviteCodeView(ic)})
}

func (s *Server) handleListInvites(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	codes, err := s.adminUC.ListCodes(r.Context(), claims.UserID, claims.Email)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	views := make([]inviteCodeView, 0, len(codes))
	for _, ic := range codes {
		views = append(views, toInviteCodeView(ic))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []inviteCodeView `json:"data"`
	}{Data: views})
}

type inviteIDRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleDeactivateInvite(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	var req inviteIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Code ID is required"})
		return
	}
	if err := s.adminUC.DeactivateCode(r.Context(), claims.UserID, claims.Email, req.ID); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteInvite(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	var req inviteIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Code ID is required"})
		return
	}
	if err := s.adminUC.DeleteCode(r.Context(), claims.UserID, claims.Email, req.ID); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ===== redemption =====

type redeemRequest struct {
	Code string `json:"code"`
}

type redeemResponse struct {
	Success bool   `json:"success"`
	Tier    string `json:"tier,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleRedeem keeps business rejections at HTTP 200 with a
// success:false payload; they are expected outcomes, not faults.
func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Code is required"})
		return
	}

	tier, err := s.redeemUC.Redeem(r.Context(), claims.UserID, req.Code)
	if err != nil {
		if msg, outcome, ok := redeemOutcome(err); ok {
			metrics.IncRedemption(outcome)
			writeJSON(w, http.StatusOK, redeemResponse{Success: false, Error: msg})
			return
		}
		metrics.IncRedemption("error")
		writeError(w, r, s.log, err)
		return
	}

	metrics.IncRedemption("success")
	writeJSON(w, http.StatusOK, redeemResponse{Success: true, Tier: string(tier)})
}

// ===== admin users =====

type userView struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

func toUserView(u *model.User) userView {
	return userView{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := s.adminUC.ListUsers(r.Context(), claims.UserID, claims.Email, offset, limit)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	writeJSON(w, http.StatusOK, struct {
		Data   []userView `json:"data"`
		Total  int        `json:"total"`
		Limit  int        `json:"limit"`
		Offset int        `json:"offset"`
	}{Data: views, Total: total, Limit: limit, Offset: offset})
}

type deleteUserRequest struct {
	UserID string `json:"userId"`
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	var req deleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "User ID is required"})
		return
	}
	if req.UserID == claims.UserID {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Cannot delete your own account"})
		return
	}
	if err := s.adminUC.DeleteUser(r.Context(), claims.UserID, claims.Email, req.UserID); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ===== trades =====

type createTradeRequest struct {
	Symbol     string    `json:"symbol"`
	Side       string    `json:"side"`
	Quantity   float64   `json:"quantity"`
	EntryPrice float64   `json:"entry_price"`
	Fees       float64   `json:"fees"`
	Tags       []string  `json:"tags"`
	OpenedAt   time.Time `json:"opened_at"`
}

type tradeView struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	Side       string     `json:"side"`
	Quantity   float64    `json:"quantity"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  *float64   `json:"exit_price,omitempty"`
	Fees       float64    `json:"fees"`
	Tags       []string   `json:"tags,omitempty"`
	OpenedAt   time.Time  `json:"opened_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	PnL        *float64   `json:"pnl,omitempty"`
}

func toTradeView(t *model.Trade) tradeView {
	v := tradeView{
		ID:         t.ID,
		Symbol:     t.Symbol,
		Side:       string(t.Side),
		Quantity:   t.Quantity,
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		Fees:       t.Fees,
		Tags:       t.Tags,
		OpenedAt:   t.OpenedAt,
		ClosedAt:   t.ClosedAt,
	}
	if t.Closed() {
		pnl := t.PnL()
		v.PnL = &pnl
	}
	return v
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	var req createTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return
	}

	t, err := s.tradeUC.Create(r.Context(), claims.UserID, req.Symbol, model.TradeSide(req.Side), req.Quantity, req.EntryPrice, req.OpenedAt, req.Tags, req.Fees)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTradeView(t))
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	trades, err := s.tradeUC.List(r.Context(), claims.UserID, offset, limit)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	views := make([]tradeView, 0, len(trades))
	for _, t := range trades {
		views = append(views, toTradeView(t))
	}
	writeJSON(w, http.StatusOK, struct {
		Data   []tradeView `json:"data"`
		Limit  int         `json:"limit"`
		Offset int         `json:"offset"`
	}{Data: views, Limit: limit, Offset: offset})
}

type closeTradeRequest struct {
	ExitPrice float64    `json:"exit_price"`
	ClosedAt  *time.Time `json:"closed_at"`
}

func (s *Server) handleCloseTrade(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Trade ID is required"})
		return
	}
	var req closeTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return
	}
	closedAt := time.Now()
	if req.ClosedAt != nil {
		closedAt = *req.ClosedAt
	}

	t, err := s.tradeUC.Close(r.Context(), claims.UserID, id, req.ExitPrice, closedAt)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toTradeView(t))
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Trade ID is required"})
		return
	}
	if err := s.tradeUC.Delete(r.Context(), claims.UserID, id); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleTradeStats bundles the dashboard aggregations in one response.
func (s *Server) handleTradeStats(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())
	ctx := r.Context()

	tags, err := s.tradeUC.GroupByTag(ctx, claims.UserID)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	daily, err := s.tradeUC.CalculateDailyPnL(ctx, claims.UserID)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	equity, err := s.tradeUC.EquityCurve(ctx, claims.UserID)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Tags   any `json:"tags"`
		Daily  any `json:"daily_pnl"`
		Equity any `json:"equity_curve"`
	}{Tags: tags, Daily: daily, Equity: equity})
}

// ===== notes =====

type createNoteRequest struct {
	Content string    `json:"content"`
	TakenAt time.Time `json:"taken_at"`
}

type noteView struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	TradeID *string   `json:"trade_id,omitempty"`
	TakenAt time.Time `json:"taken_at"`
}

func toNoteView(n *model.Note) noteView {
	return noteView{ID: n.ID, Content: n.Content, TradeID: n.TradeID, TakenAt: n.TakenAt}
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Content is required"})
		return
	}

	n, err := s.noteUC.Create(r.Context(), claims.UserID, req.Content, req.TakenAt)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toNoteView(n))
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	notes, err := s.noteUC.List(r.Context(), claims.UserID, offset, limit)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	views := make([]noteView, 0, len(notes))
	for _, n := range notes {
		views = append(views, toNoteView(n))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []noteView `json:"data"`
	}{Data: views})
}

// ===== coach =====

type coachChatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleCoachChat(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	var req coachChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Message is required"})
		return
	}

	reply, err := s.coachUC.Chat(r.Context(), claims.UserID, claims.Email, req.Message)
	if err != nil {
		if err == domain.ErrTierRequired {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "Coach requires a pro or max subscription"})
			return
		}
		writeError(w, r, s.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) handleEndCoachSession(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	if err := s.coachUC.EndSession(r.Context(), claims.UserID); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
