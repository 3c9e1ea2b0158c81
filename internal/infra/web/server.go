package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"trading-journal-api/internal/infra/logging"
	"trading-journal-api/internal/infra/redis"
	"trading-journal-api/internal/usecase"
)

type Server struct {
	userUC   usecase.UserUseCase
	subUC    usecase.SubscriptionUseCase
	redeemUC usecase.RedemptionUseCase
	adminUC  usecase.AdminUseCase
	tradeUC  usecase.TradeUseCase
	noteUC   usecase.NoteUseCase
	coachUC  usecase.CoachUseCase

	auth    *AuthManager
	limiter *redis.RateLimiter

	redeemAttempts int
	redeemWindow   time.Duration
	requestTimeout time.Duration

	log *zerolog.Logger
}

func NewServer(
	userUC usecase.UserUseCase,
	subUC usecase.SubscriptionUseCase,
	redeemUC usecase.RedemptionUseCase,
	adminUC usecase.AdminUseCase,
	tradeUC usecase.TradeUseCase,
	noteUC usecase.NoteUseCase,
	coachUC usecase.CoachUseCase,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	redeemAttempts int,
	redeemWindow time.Duration,
	requestTimeout time.Duration,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		userUC:         userUC,
		subUC:          subUC,
		redeemUC:       redeemUC,
		adminUC:        adminUC,
		tradeUC:        tradeUC,
		noteUC:         noteUC,
		coachUC:        coachUC,
		auth:           auth,
		limiter:        limiter,
		redeemAttempts: redeemAttempts,
		redeemWindow:   redeemWindow,
		requestTimeout: requestTimeout,
		log:            logger,
	}
}

// Router assembles the full route table behind the shared middleware
// chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/session", s.handleCreateSession)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Post("/auth/signup", s.handleFinalizeSignup)
			r.Get("/subscription", s.handleGetSubscription)

			r.Post("/invite", s.handleCreateInvite)
			r.Get("/invite", s.handleListInvites)
			r.Patch("/invite/deactivate", s.handleDeactivateInvite)
			r.Delete("/invite", s.handleDeleteInvite)
			r.With(s.redeemRateLimit).Post("/invite/redeem", s.handleRedeem)

			r.Get("/admin/users", s.handleListUsers)
			r.Delete("/admin/users", s.handleDeleteUser)

			r.Post("/trades", s.handleCreateTrade)
			r.Get("/trades", s.handleListTrades)
			r.Get("/trades/stats", s.handleTradeStats)
			r.Patch("/trades/{id}/close", s.handleCloseTrade)
			r.Delete("/trades/{id}", s.handleDeleteTrade)

			r.Post("/notes", s.handleCreateNote)
			r.Get("/notes", s.handleListNotes)

			r.Post("/coach/chat", s.handleCoachChat)
			r.Delete("/coach/session", s.handleEndCoachSession)
		})
	})

	return Chain(r,
		Recover(s.log),
		TraceID(),
		RequestLog(s.log),
		Timeout(s.requestTimeout),
	)
}

type claimsKey struct{}

// requireSession authenticates the request and stashes the session
// claims in the context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		ctx = logging.WithUserID(ctx, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) *SessionClaims {
	c, _ := ctx.Value(claimsKey{}).(*SessionClaims)
	return c
}

// redeemRateLimit applies the shared fixed-window limiter per user. A
// limiter backend failure lets the request through; redemption itself
// is guarded transactionally.
func (s *Server) redeemRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := sessionFrom(r.Context())
		key := redis.UserActionKey(claims.UserID, "redeem")
		allowed, retryAfter, err := s.limiter.Allow(r.Context(), key, s.redeemAttempts, s.redeemWindow)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable; allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			w.Header().Set("Retry-After", retryAfterSeconds(retryAfter))
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "Too many attempts, try again later"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
