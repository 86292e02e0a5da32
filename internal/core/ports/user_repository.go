package ports

import (
	"context"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

// UserRepository defines the persistence operations of the identity store.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIDs returns the users found among ids, keyed by id. Unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	// ExistsWithRole reports whether at least one user holds role.
	ExistsWithRole(ctx context.Context, role domain.Role) (bool, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
