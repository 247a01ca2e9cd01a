package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/user-lookup-service/internal/domain/user"
)

// UserService defines the service port for user lookups.
// Implemented by the application layer; called by inbound adapters (handlers).
type UserService interface {
	// GetUser returns the user with the given identifier.
	// Returns domain.ErrNotFound if no such user exists.
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)

	// SearchUsers returns every user matching the filter. An empty result is
	// reported as domain.ErrNotFound, never as an empty success.
	SearchUsers(ctx context.Context, filter user.SearchFilter) ([]user.User, error)
}
