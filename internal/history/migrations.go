package history

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"trafficsim/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator applies the history schema's goose migrations.
type Migrator struct {
	pool *pgxpool.Pool
}

func NewMigrator(pool *pgxpool.Pool) *Migrator {
	return &Migrator{pool: pool}
}

func (m *Migrator) Up(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()

	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("history: set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("history: run migrations: %w", err)
	}
	logger.Info("history migrations applied")
	return nil
}

// RunMigrations applies migrations if autoMigrate is set.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, autoMigrate bool) error {
	if !autoMigrate {
		logger.Info("history auto-migration disabled")
		return nil
	}
	return NewMigrator(pool).Up(ctx)
}
