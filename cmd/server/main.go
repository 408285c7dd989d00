// Package main initializes and starts the idea hub HTTP server, setting up
// configuration, logging, the password store, the database, repositories,
// services, AI clients and handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/ai"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/cache"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/config"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/crypto"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/db"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/logger"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/middleware"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/passwords"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/repository"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/server/handler/http"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const (
	cleanerInterval = time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the password record backend.
	store, err := passwords.Open(options.Store)
	if err != nil {
		zapLogger.Fatal("cannot open password store", zap.Error(err))
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	// Initialize the database and its schema.
	conn, err := db.Open(options.Database)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer conn.Close()

	// Purge long-archived ideas in the background.
	if options.Database.ArchiveRetention > 0 {
		db.StartArchiveCleaner(ctx, conn, cleanerInterval, options.Database.ArchiveRetention, zapLogger)
	}

	// Bound concurrent PBKDF2 work across all requests.
	pool := crypto.NewPool(options.Crypto.Workers)

	// Initialize repositories.
	ideaRepo := repository.NewIdeaRepository(conn)
	toolRepo := repository.NewToolRepository(conn)
	reencryptor := repository.NewReencryptor(conn)

	// Initialize the AI clients; the research cache is optional.
	groq := ai.NewGroqClient(options.Groq, zapLogger)
	tavily := ai.NewTavilyClient(options.Tavily, zapLogger)
	if !groq.Configured() {
		zapLogger.Warn("GROQ_API_KEY is not set, transcription, summaries and tool research are disabled")
	}
	if !tavily.Configured() {
		zapLogger.Warn("TAVILY_API_KEY is not set, tool research is disabled")
	}
	var researchCache ai.Cache
	if options.Redis.Addr != "" {
		rc, err := cache.Dial(ctx, options.Redis.Addr, options.Redis.TTL)
		if err != nil {
			zapLogger.Warn("research cache unavailable", zap.Error(err))
		} else {
			defer rc.Close()
			researchCache = rc
		}
	}
	researcher := ai.NewResearcher(tavily, groq, researchCache, zapLogger)

	// Initialize business-logic services.
	authService := service.NewAuthService(store, pool, reencryptor, zapLogger)
	ideaService := service.NewIdeaService(ideaRepo, zapLogger)
	toolService := service.NewToolService(toolRepo, researcher, zapLogger)
	backupService := service.NewBackupService(ideaRepo, toolRepo, authService, pool, zapLogger)
	assistService := service.NewAssistService(groq, groq, zapLogger)

	// Failed password attempts are counted per client across every route
	// that checks the password.
	limiter := middleware.NewRateLimiter()
	gate := middleware.Gate(authService, limiter, zapLogger)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService, Limiter: limiter, Log: zapLogger}
	ideaHandler := &http.IdeaHandler{IdeaService: ideaService, Log: zapLogger}
	toolHandler := &http.ToolHandler{ToolService: toolService, Log: zapLogger}
	assistHandler := &http.AssistHandler{AssistService: assistService, Log: zapLogger}
	backupHandler := &http.BackupHandler{BackupService: backupService, Limiter: limiter, Log: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, ideaHandler, toolHandler, assistHandler, backupHandler, gate, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTP server",
		zap.String("addr", options.Addr),
		zap.String("database", options.Database.Driver),
		zap.String("password_store", cmp.Or(options.Store.Backend, config.StoreFile)),
		zap.Int("crypto_workers", pool.Size()),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
