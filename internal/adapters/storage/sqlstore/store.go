package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/metric"

	"github.com/jsamuelsen11/user-lookup-service/internal/domain"
	"github.com/jsamuelsen11/user-lookup-service/internal/domain/user"
	"github.com/jsamuelsen11/user-lookup-service/internal/platform/config"
	"github.com/jsamuelsen11/user-lookup-service/internal/platform/telemetry"
	"github.com/jsamuelsen11/user-lookup-service/internal/ports"
)

// Compile-time interface checks.
var (
	_ ports.UserRepository = (*Store)(nil)
	_ ports.HealthChecker  = (*Store)(nil)
)

const (
	opFindByID = "FindByID"
	opSearch   = "Search"

	healthName = "database"
)

// Open opens a pooled handle for the configured driver. The pool itself is
// left at database/sql defaults.
func Open(cfg config.StorageConfig) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, Dialect{}, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}
	return db, dialect, nil
}

// Store implements ports.UserRepository on a *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
	queries QueryBuilder
	guard   *Guard
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// New creates a Store. If metrics is nil, metric recording is skipped.
func New(db *sql.DB, dialect Dialect, guard *Guard, metrics *telemetry.Metrics, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		db:      db,
		dialect: dialect,
		queries: NewQueryBuilder(dialect),
		guard:   guard,
		metrics: metrics,
		logger:  logger,
	}
}

// FindByID returns the user with the given identifier, or domain.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	stmt := s.queries.ByID(id)

	var u user.User
	err := s.run(ctx, opFindByID, stmt, func(ctx context.Context) error {
		return scanUser(s.db.QueryRowContext(ctx, stmt.Text, stmt.Args...), &u)
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, domain.ErrNotFound
	case err != nil:
		return nil, backendError(opFindByID, err)
	}
	return &u, nil
}

// Search returns every user matching filter. No match yields an empty,
// non-nil slice.
func (s *Store) Search(ctx context.Context, filter user.SearchFilter) ([]user.User, error) {
	stmt := s.queries.Search(filter)

	users := []user.User{}
	err := s.run(ctx, opSearch, stmt, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, stmt.Text, stmt.Args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var u user.User
			if err := scanUser(rows, &u); err != nil {
				return err
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, backendError(opSearch, err)
	}
	return users, nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return healthName
}

// HealthCheck reports the breaker state and, while the breaker is closed,
// pings the database.
//
// State mapping:
//   - "closed"    pings; returns the ping error, if any.
//   - "half-open" returns a degraded error without touching the database.
//   - "open"      returns a failing error without touching the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	switch state := s.guard.State(); state {
	case gobreaker.StateClosed:
	case gobreaker.StateHalfOpen:
		return fmt.Errorf("%s: degraded (circuit breaker half-open)", healthName)
	case gobreaker.StateOpen:
		return fmt.Errorf("%s: failing (circuit breaker open)", healthName)
	default:
		return fmt.Errorf("%s: unknown circuit breaker state %v", healthName, state)
	}

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: ping: %w", healthName, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// run executes fn through the guard and records query metrics.
func (s *Store) run(ctx context.Context, op string, stmt Statement, fn func(context.Context) error) error {
	start := time.Now()
	s.logger.DebugContext(ctx, "executing query",
		slog.String("operation", op),
		slog.String("statement", stmt.Text),
		slog.Int("args", len(stmt.Args)),
	)

	err := s.guard.Do(ctx, fn)
	s.recordMetrics(ctx, op, start, err)
	return err
}

func (s *Store) recordMetrics(ctx context.Context, op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}

	result := "success"
	cause := "none"
	switch {
	case errors.Is(err, sql.ErrNoRows):
		result = "not_found"
	case err != nil:
		result = "error"
		cause = string(classify(err))
	}

	attrs := metric.WithAttributes(
		telemetry.AttrDBOperation.String(op),
		telemetry.AttrDBSystem.String(s.dialect.System),
		telemetry.AttrResult.String(result),
		telemetry.AttrCause.String(cause),
	)

	s.metrics.QueryDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	s.metrics.QueryTotal.Add(ctx, 1, attrs)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, u *user.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Age, &u.Grade, &u.Active)
}
