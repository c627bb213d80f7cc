// Package db opens the database connection and applies embedded migrations.
// Postgres is used when DATABASE_URL is set; otherwise history falls back to
// a local SQLite file so the service stays usable without external
// infrastructure.
package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	// database drivers
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/codesage-ai/codesage/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func init() {
	// modernc registers as "sqlite", which sqlx does not know out of the box.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Open connects to the configured database, pings it, and runs migrations.
// The returned cleanup closes the connection.
func Open(cfg *config.Config, logger *slog.Logger) (*sqlx.DB, func(), error) {
	driver, dsn := "sqlite", cfg.SQLitePath
	if cfg.DatabaseURL != "" {
		driver, dsn = "postgres", cfg.DatabaseURL
	}
	logger.Info("connecting to database", "driver", driver)

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite" {
		// One writer at a time keeps modernc's locking honest under
		// concurrent requests.
		conn.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, func() {}, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("running database migrations")
	if err := runMigrations(conn, driver); err != nil {
		_ = conn.Close()
		return nil, func() {}, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	cleanup := func() {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close database connection", "error", err)
		}
	}
	return conn, cleanup, nil
}

// runMigrations applies pending migrations embedded in the binary.
func runMigrations(conn *sqlx.DB, driver string) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	var dbDriver database.Driver
	switch driver {
	case "postgres":
		dbDriver, err = migratepg.WithInstance(conn.DB, &migratepg.Config{})
	default:
		dbDriver, err = migratesqlite.WithInstance(conn.DB, &migratesqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, driver, dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	_, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty migration state; fix it manually (e.g. 'migrate force <version>')")
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	slog.Debug("migrations up to date")
	return nil
}
