package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Limits applied by RecentExchanges.
const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 500
)

// Store is the exchange log. Methods accept a context for cancellation.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveExchange inserts an exchange record and sets its ID.
	SaveExchange(ctx context.Context, ex *Exchange) error

	// RecentExchanges returns up to limit exchanges, newest first.
	RecentExchanges(ctx context.Context, limit int) ([]Exchange, error)

	// DeleteExchangesBefore removes exchanges created before cutoff and
	// returns how many were deleted.
	DeleteExchangesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance such as VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db  *sqlx.DB
	log *zap.Logger
}

// NewStore creates a Store backed by sqlx.
func NewStore(db *sqlx.DB, log *zap.Logger) Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &sqlxStore{db: db, log: log.Named("store")}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveExchange(ctx context.Context, ex *Exchange) error {
	if ex == nil {
		return errors.New("cannot save nil exchange")
	}
	if ex.RequestID == "" {
		return errors.New("exchange must have a request_id")
	}
	if ex.Status != StatusOK && ex.Status != StatusError {
		return fmt.Errorf("exchange has unknown status %q", ex.Status)
	}
	if ex.CreatedUnixMS == 0 {
		ex.CreatedUnixMS = time.Now().UnixMilli()
	}

	const query = `
        INSERT INTO exchanges (request_id, channel, farm_id, mode, provider, model, text_length,
                               has_image, history_turns, status, error_class, latency_ms, created_unix_ms)
        VALUES (:request_id, :channel, :farm_id, :mode, :provider, :model, :text_length,
                :has_image, :history_turns, :status, :error_class, :latency_ms, :created_unix_ms);
    `
	res, err := s.db.NamedExecContext(ctx, query, ex)
	if err != nil {
		s.log.Error("Error saving exchange", zap.String("request_id", ex.RequestID), zap.Error(err))
		return fmt.Errorf("failed to save exchange %s: %w", ex.RequestID, err)
	}

	if id, err := res.LastInsertId(); err == nil {
		ex.ID = id
	} else {
		s.log.Warn("Could not retrieve last insert ID after saving exchange", zap.String("request_id", ex.RequestID), zap.Error(err))
	}

	s.log.Debug("Exchange saved", zap.String("request_id", ex.RequestID), zap.Int64("id", ex.ID))
	return nil
}

func (s *sqlxStore) RecentExchanges(ctx context.Context, limit int) ([]Exchange, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}

	const query = `
        SELECT id, request_id, channel, farm_id, mode, provider, model, text_length,
               has_image, history_turns, status, error_class, latency_ms, created_unix_ms
        FROM exchanges
        ORDER BY created_unix_ms DESC, id DESC
        LIMIT ?;
    `
	var exchanges []Exchange
	if err := s.db.SelectContext(ctx, &exchanges, query, limit); err != nil {
		s.log.Error("Error fetching recent exchanges", zap.Int("limit", limit), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch recent exchanges: %w", err)
	}
	return exchanges, nil
}

func (s *sqlxStore) DeleteExchangesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exchanges WHERE created_unix_ms < ?;`, cutoff.UnixMilli())
	if err != nil {
		s.log.Error("Error deleting old exchanges", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, fmt.Errorf("failed to delete exchanges before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted exchanges: %w", err)
	}
	s.log.Debug("Deleted old exchanges", zap.Time("cutoff", cutoff), zap.Int64("deleted", n))
	return n, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		s.log.Warn("Context done before starting VACUUM", zap.Error(err))
		return err
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		s.log.Warn("Failed to set busy timeout", zap.Error(err))
	}

	start := time.Now()
	// VACUUM must run outside a transaction.
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.log.Warn("VACUUM timed out or was cancelled", zap.Error(err))
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.log.Error("VACUUM failed", zap.Error(err))
		return fmt.Errorf("database maintenance (VACUUM) failed: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		s.log.Warn("PRAGMA optimize failed", zap.Error(err))
	}

	s.log.Info("Database maintenance completed", zap.Duration("duration", time.Since(start)))
	return nil
}
