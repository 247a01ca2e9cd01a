// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port interfaces.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/user-lookup-service/internal/domain"
	"github.com/jsamuelsen11/user-lookup-service/internal/domain/user"
	"github.com/jsamuelsen11/user-lookup-service/internal/ports"
)

// Compile-time check that UserService implements ports.UserService.
var _ ports.UserService = (*UserService)(nil)

// UserService implements ports.UserService on top of the UserRepository port.
// It turns empty collections into domain.ErrNotFound and logs failures; it
// contains no query logic.
type UserService struct {
	repo   ports.UserRepository
	logger *slog.Logger
}

// NewUserService creates a UserService. A nil logger discards output.
func NewUserService(repo ports.UserRepository, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// GetUser returns a single user by identifier.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.logger.InfoContext(ctx, "fetching user", slog.String("user_id", id.String()))

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logFailure(ctx, "GetUser", err, slog.String("user_id", id.String()))
		return nil, err
	}

	return u, nil
}

// SearchUsers returns every user matching filter. An empty match is
// reported as domain.ErrNotFound.
func (s *UserService) SearchUsers(ctx context.Context, filter user.SearchFilter) ([]user.User, error) {
	s.logger.InfoContext(ctx, "searching users",
		slog.String("name", filter.Name),
		slog.Int("grade", int(filter.Grade)),
		slog.Bool("filtered", filter.HasFilters()),
	)

	users, err := s.repo.Search(ctx, filter)
	if err != nil {
		s.logFailure(ctx, "SearchUsers", err, slog.String("name", filter.Name))
		return nil, err
	}

	if len(users) == 0 {
		return nil, domain.ErrNotFound
	}

	return users, nil
}

// logFailure logs at warn for missing entities and at error otherwise.
func (s *UserService) logFailure(ctx context.Context, op string, err error, attrs ...slog.Attr) {
	level := slog.LevelError
	msg := "user lookup failed"
	if errors.Is(err, domain.ErrNotFound) {
		level = slog.LevelWarn
		msg = "user not found"
	}

	args := make([]any, 0, len(attrs)+2)
	args = append(args, slog.String("operation", op))
	for _, a := range attrs {
		args = append(args, a)
	}
	args = append(args, slog.Any("error", err))

	s.logger.Log(ctx, level, msg, args...)
}
