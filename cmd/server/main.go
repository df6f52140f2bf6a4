package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	chatline "github.com/set-night/chatline"
	"github.com/set-night/chatline/internal/config"
	"github.com/set-night/chatline/internal/conversation"
	"github.com/set-night/chatline/internal/format"
	"github.com/set-night/chatline/internal/handler"
	"github.com/set-night/chatline/internal/identity"
	"github.com/set-night/chatline/internal/repository"
	"github.com/set-night/chatline/internal/service"
	"github.com/set-night/chatline/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	slog.SetDefault(newLogger(cfg))

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional transcript archive
	var archiver service.Archiver
	if cfg.DatabaseURL != "" {
		migrationsFS, err := fs.Sub(chatline.MigrationsFS, "migrations")
		if err != nil {
			slog.Error("failed to load embedded migrations", "error", err)
			os.Exit(1)
		}
		if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		archiver = repository.NewArchiveRepository(pool)
	}

	// Initialize services
	var seedOpts []conversation.SeedOption
	if format.Policy(cfg.FormatPolicy) == format.PolicyStructured {
		seedOpts = append(seedOpts, conversation.WithMarkerInstruction())
	}
	store := conversation.NewStore(
		conversation.NewSeed(cfg.SystemPrompt, seedOpts...),
		conversation.WithMaxTurns(cfg.MaxTurns),
	)
	chat := service.NewChatService(service.ChatDeps{
		Store:      store,
		Provider:   newProvider(cfg),
		Normalizer: format.New(format.Policy(cfg.FormatPolicy)),
		Archiver:   archiver,
	})

	// Optional Telegram frontend
	if cfg.TelegramToken != "" {
		tg, err := telegram.NewFrontend(cfg.TelegramToken, chat)
		if err != nil {
			slog.Error("failed to create telegram frontend", "error", err)
			os.Exit(1)
		}
		go tg.Start(ctx)
	}

	// HTTP server
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handler.New(handler.Deps{
		Cfg:      cfg,
		Chat:     chat,
		Resolver: identity.NewResolver(identity.Mode(cfg.IdentityMode)),
	})
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}()

	slog.Info("starting server",
		"addr", srv.Addr,
		"provider", cfg.Provider,
		"model", cfg.Model,
		"format_policy", cfg.FormatPolicy,
		"identity_mode", cfg.IdentityMode,
		"diagnostics", cfg.DiagnosticsEnabled,
		"archive", archiver != nil,
		"telegram", cfg.TelegramToken != "",
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown
	slog.Info("server stopped gracefully")
}

func newProvider(cfg *config.Config) service.Provider {
	if cfg.Provider == "openai" {
		return service.NewOpenAIService(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout)
	}
	return service.NewOpenRouterService(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout)
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.LogFormat == "text" {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      cfg.SlogLevel(),
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
}
