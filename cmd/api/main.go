package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/audit"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/auth"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/config"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/convo"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/extract"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/notify"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/reporting"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/session"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/telephony"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/pkg/logger"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional env-file for local development; real env wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := session.EnsureSchema(rootCtx, db); err != nil {
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}
	if err := audit.EnsureSchema(rootCtx, db); err != nil {
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	store := session.NewPostgresStore(db)

	// Extraction strategy: AI-assisted when a key is configured, rule-based
	// otherwise. The controller falls back to rules on any AI failure.
	var extractor extract.Extractor = extract.RuleExtractor{}
	if cfg.OpenAI.APIKey != "" {
		extractor = extract.NewOpenAIExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.Timeout)
		log.Info("extraction strategy: openai", "model", cfg.OpenAI.Model)
	} else {
		log.Info("extraction strategy: rule-based")
	}

	var sender notify.MessageSender
	if !cfg.Twilio.SMSDisabled {
		sender = telephony.NewSMSClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
	}
	events := audit.NewService(audit.NewPostgresRepo(db))
	notifier := notify.NewRecapNotifier(store, sender, events, cfg.Twilio.SMSDisabled)

	var verifier *telephony.SignatureVerifier
	if cfg.Twilio.AuthToken != "" {
		verifier = telephony.NewSignatureVerifier(cfg.Twilio.AuthToken, cfg.Twilio.PublicBaseURL)
	} else {
		log.Warn("twilio signature verification disabled, no auth token configured")
	}

	webhooks := &telephony.WebhookHandlers{
		Store:      store,
		Controller: convo.New(extractor),
		Notifier:   notifier,
		Verifier:   verifier,
		Deduper:    session.NewTurnDeduper(rdb),
		Events:     events,
	}

	reports := reporting.NewService(store)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, db, webhooks, reports, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
