package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"hero-trivia-engine/internal/config"
	"hero-trivia-engine/internal/infra/postgres"
	pgmigrations "hero-trivia-engine/internal/infra/postgres/migrations"
	"hero-trivia-engine/internal/logging"
	"hero-trivia-engine/internal/questions"
)

// NewMigrateCmd applies database migrations and optionally seeds the built-in heroes.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Logging.Level, cfg.Logging.File)
			defer logger.Sync()

			if err := runMigrationsWithConfig(cmd.Context(), cfg, logger); err != nil {
				return err
			}
			if seed {
				return seedSubjects(cmd.Context(), cfg, logger)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "insert the built-in hero dataset")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		logger.Info("no new migrations")
		return nil
	}
	logger.Info("migrations applied", zap.String("group", group.String()))
	return nil
}

func seedSubjects(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	subjects := questions.DefaultSubjects()
	if err := postgres.NewSubjectLoader(pool).SeedSubjects(ctx, subjects); err != nil {
		return err
	}
	logger.Info("subjects seeded", zap.Int("count", len(subjects)))
	return nil
}
