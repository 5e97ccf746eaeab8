package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hero-trivia-engine/internal/app"
	"hero-trivia-engine/internal/config"
	"hero-trivia-engine/internal/infra/memory"
	"hero-trivia-engine/internal/infra/postgres"
	infraredis "hero-trivia-engine/internal/infra/redis"
	"hero-trivia-engine/internal/logging"
	"hero-trivia-engine/internal/metrics"
	"hero-trivia-engine/internal/profile"
	"hero-trivia-engine/internal/questions"
	transport "hero-trivia-engine/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.File)
	defer logger.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	// profiles never expire unless redis.ttl is set
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 0)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.SubjectLoader = memory.NewStaticSubjectLoader(questions.DefaultSubjects())
	if pool != nil {
		loader = postgres.NewSubjectLoader(pool)
	}

	datasetTTL := config.TTLDuration(cfg.Dataset.TTL, 10*time.Minute)
	var datasets app.DatasetRepository
	if redisClient != nil {
		datasets = infraredis.NewDatasetRepository(redisClient, loader, datasetTTL)
	} else {
		datasets = memory.NewDatasetRepository(loader, datasetTTL)
	}

	var profiles profile.Repository
	switch {
	case pool != nil:
		profiles = postgres.NewProfileRepository(pool)
	case redisClient != nil:
		profiles = infraredis.NewProfileRepository(redisClient, redisTTL)
	default:
		profiles = memory.NewProfileRepository()
	}

	collector := metrics.NewCollector()
	service := app.NewGameService(datasets, profiles, logger,
		app.WithDefaults(cfg.Game.Defaults()),
		app.WithObserver(collector.Observe),
		app.WithPersistenceFailureHook(collector.PersistenceFailure),
	)
	if err := service.Validate(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(service, collector.Handler(), logger),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting game server", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
