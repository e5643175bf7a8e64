package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/netplus-prep/assessment-service/internal/cache"
	"github.com/netplus-prep/assessment-service/internal/config"
	"github.com/netplus-prep/assessment-service/internal/handlers"
	"github.com/netplus-prep/assessment-service/internal/repositories"
	"github.com/netplus-prep/assessment-service/internal/repositories/memory"
	"github.com/netplus-prep/assessment-service/internal/repositories/postgres"
	"github.com/netplus-prep/assessment-service/internal/repositories/redisstore"
	"github.com/netplus-prep/assessment-service/internal/services"
	"github.com/netplus-prep/assessment-service/internal/utils"
	"github.com/netplus-prep/assessment-service/pkg"
)

// NewStartCmd creates the command that runs the HTTP server.
func NewStartCmd(port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(*port)
		},
	}
}

func runServer(port string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port != "" {
		cfg.Port = port
	}

	logger := newLogger(cfg.Environment)

	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.MigrateDatabase(db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	repo := postgres.NewRepository(db)

	// Redis is optional: without it, quiz sessions and progress live in
	// process memory and the scenario cache is disabled.
	var (
		sessionStore  repositories.SessionStore
		progressStore repositories.ProgressStore
		cacheService  cache.CacheService
	)
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		store := redisstore.NewSessionStore(redisClient, cfg.SessionTTL)
		sessionStore = store
		progressStore = store
		cacheService = cache.NewRedisCache(redisClient, logger)
		logger.Info("Using Redis session store", "ttl", cfg.SessionTTL)
	} else {
		store := memory.NewSessionStore()
		sessionStore = store
		progressStore = store
		logger.Warn("REDIS_URL not set, sessions and progress will not survive restarts")
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	validator := utils.NewValidator()
	clock := services.SystemClock()
	selector := services.NewQuizSelector(rand.New(rand.NewSource(time.Now().UnixNano())))
	scoreService := services.NewScoreService()
	engine := services.NewScoringEngine(services.ScoringConfig{
		MinKeywordLength:      cfg.Scoring.MinKeywordLength,
		MatchThreshold:        cfg.Scoring.MatchThreshold,
		PassPercentage:        cfg.Scoring.PassPercentage,
		DistinctionPercentage: cfg.Scoring.DistinctionPercentage,
	})

	quizService := services.NewQuizService(repo, sessionStore, selector, scoreService, publisher, clock, logger, validator)
	scenarioService := services.NewScenarioService(repo, engine, cacheService, publisher, clock, logger)
	progressService := services.NewProgressService(progressStore, publisher, clock, logger)
	questionService := services.NewQuestionService(repo, logger, validator)
	importExport := services.NewImportExportService(repo, questionService, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	manager := handlers.NewHandlerManager(
		quizService,
		scoreService,
		scenarioService,
		progressService,
		questionService,
		importExport,
		utils.NewSlogLogger(logger),
	)
	manager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting assessment service", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func newLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
