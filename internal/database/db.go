// Package database provides the SQLite connection, schema migrations and
// the exchange log store.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/edgard/intillasense/migrations"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// NewDB opens the SQLite database at dbPath and applies pending migrations.
func NewDB(dbPath string, log *zap.Logger) (*sqlx.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("database")

	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer; one connection also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := ApplyMigrations(db.DB, ExtractDBNameFromPath(dbPath), log); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Error closing database after migration failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info("Database connected and migrations applied", zap.String("path", dbPath))
	return db, nil
}

// CloseDB closes the connection pool, logging any error.
func CloseDB(db *sqlx.DB, log *zap.Logger) {
	if db == nil {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database connection", zap.Error(err))
		return
	}
	log.Info("Database connection closed")
}

// ApplyMigrations runs the embedded migrations against db.
func ApplyMigrations(db *sql.DB, dbName string, log *zap.Logger) error {
	if db == nil {
		return errors.New("database connection is nil, cannot apply migrations")
	}
	if dbName == "" {
		return errors.New("database name for migration driver is empty")
	}
	if log == nil {
		log = zap.NewNop()
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create embed source driver: %w", err)
	}

	dbDriver, err := sqlite.WithInstance(db, &sqlite.Config{DatabaseName: dbName})
	if err != nil {
		return fmt.Errorf("failed to create sqlite migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	start := time.Now()
	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug("No database migrations to apply")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, _ := migrator.Version()
	log.Info("Database migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty), zap.Duration("duration", time.Since(start)))
	return nil
}

// ExtractDBNameFromPath strips a file: prefix, query parameters and URL
// escaping from a SQLite DSN.
func ExtractDBNameFromPath(path string) string {
	path = strings.TrimPrefix(path, "file:")
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	if decoded, err := url.PathUnescape(path); err == nil {
		return decoded
	}
	return path
}
