package ports

import (
	"context"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

// RegisterInput carries the fields accepted at self-registration.
// The role is not part of it: registrations always create patients.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	PatientID string
}

// TokenVerifier is the auth gate: it resolves a bearer token to a caller.
type TokenVerifier interface {
	Authenticate(token string) (domain.Identity, error)
}

type AuthService interface {
	TokenVerifier
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Me(ctx context.Context, caller domain.Identity) (*domain.User, error)
}
