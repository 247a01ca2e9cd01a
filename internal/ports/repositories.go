package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/user-lookup-service/internal/domain/user"
)

// UserRepository defines the storage port for user rows.
// Implemented by the SQL adapter; called by the application layer.
// Storage failures are returned as *domain.BackendError.
type UserRepository interface {
	// FindByID returns the single row matching id.
	// Returns domain.ErrNotFound if the row does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)

	// Search returns all rows matching the filter. An empty slice is a
	// valid result at this layer.
	Search(ctx context.Context, filter user.SearchFilter) ([]user.User, error)
}
