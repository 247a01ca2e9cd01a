package sqlstore

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/sony/gobreaker/v2"

	"github.com/jsamuelsen11/user-lookup-service/internal/domain"
)

// pgDataExceptionClass is SQLSTATE class 22: the statement was fine but a
// bound value was not (invalid text representation, out of range, ...).
const pgDataExceptionClass = "22"

// backendError wraps a driver failure for the application layer.
func backendError(op string, err error) *domain.BackendError {
	return &domain.BackendError{Op: op, Cause: classify(err), Err: err}
}

func classify(err error) domain.BackendCause {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return domain.CauseUnavailable
	case isClientDataError(err):
		return domain.CauseClientData
	default:
		return domain.CauseBackend
	}
}

// isClientDataError reports whether the engine rejected a bound value rather
// than failing on its own.
func isClientDataError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, pgDataExceptionClass)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrMismatch, sqlite3.ErrRange, sqlite3.ErrConstraint, sqlite3.ErrTooBig:
			return true
		}
	}

	return false
}
