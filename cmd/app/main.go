package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading-journal-api/internal/config"
	"trading-journal-api/internal/domain/ports/adapter"
	aiAdapters "trading-journal-api/internal/infra/adapters/ai"
	pg "trading-journal-api/internal/infra/db/postgres"
	"trading-journal-api/internal/infra/logging"
	"trading-journal-api/internal/infra/metrics"
	red "trading-journal-api/internal/infra/redis"
	"trading-journal-api/internal/infra/sched"
	"trading-journal-api/internal/infra/web"
	"trading-journal-api/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	inviteRepo := pg.NewInviteCodeRepo(pool)
	redemptionRepo := pg.NewRedemptionRepo(pool)
	subRepo := pg.NewSubscriptionRepoCacheDecorator(pg.NewSubscriptionRepo(pool), redisClient, cfg.Redis.TTL)
	tradeRepo := pg.NewTradeRepo(pool)
	noteRepo := pg.NewNoteRepo(pool)
	sessionRepo := pg.NewCoachSessionRepo(pool)
	txm := pg.NewTxManager(pool)

	// ---- Use cases ----
	owner := usecase.NewOwnerResolver(cfg.Owner.Email, subRepo, logger)
	userUC := usecase.NewUserUseCase(userRepo, owner, logger)
	subUC := usecase.NewSubscriptionUseCase(subRepo, owner, logger)
	redeemUC := usecase.NewRedemptionUseCase(inviteRepo, redemptionRepo, subRepo, txm, logger)
	adminUC := usecase.NewAdminUseCase(owner, inviteRepo, redemptionRepo, subRepo, userRepo, tradeRepo, noteRepo, sessionRepo, logger)
	tradeUC := usecase.NewTradeUseCase(tradeRepo, logger)
	noteUC := usecase.NewNoteUseCase(noteRepo, tradeRepo, cfg.Journal.NoteLinkWindow, logger)

	// ---- AI Adapter (OpenAI -> Gemini -> noop in dev) ----
	var ai adapter.AIServiceAdapter
	switch {
	case cfg.AI.OpenAIKey != "":
		ai, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		ai = aiAdapters.NewInstrumentedAdapter(ai, "openai")
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI")
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, 2048)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		ai = aiAdapters.NewInstrumentedAdapter(ai, "gemini")
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: Gemini")
	case cfg.Runtime.Dev:
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("AI adapter: noop (dev mode, no provider configured)")
	default:
		logger.Fatal().Msgf("no AI provider configured: set ai.openai_key or ai.gemini_key in %s", *cfgPath)
	}
	coachUC := usecase.NewCoachUseCase(sessionRepo, ai, subUC, cfg.AI.DefaultModel, cfg.AI.SystemPrompt, logger)

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Auth.Secret, cfg.Auth.SecureCookie, cfg.Auth.CookieDomain, cfg.Auth.SessionTTL)
	srv := web.NewServer(
		userUC, subUC, redeemUC, adminUC, tradeUC, noteUC, coachUC,
		auth, rateLimiter,
		cfg.RateLimit.RedeemAttempts, cfg.RateLimit.RedeemWindow,
		cfg.Server.RequestTimeout,
		logger,
	)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Trial expiry worker ----
	worker := sched.NewTrialExpiryWorker(cfg.Scheduler.TrialCheckInterval, subRepo, subUC, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
