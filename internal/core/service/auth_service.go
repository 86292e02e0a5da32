package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/dentalscribe/submission-api/internal/core/domain"
	"github.com/dentalscribe/submission-api/internal/core/ports"
)

const defaultTokenTTL = 5 * time.Hour

// Claims is the token payload. It carries enough of the user for clients to
// render a session without an extra round trip.
type Claims struct {
	UserID    string `json:"id"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	PatientID string `json:"patientId,omitempty"`
	jwt.RegisteredClaims
}

// AdminSeed describes the account created when no admin exists yet.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

// AuthService implements registration, login and token verification.
type AuthService struct {
	repo      ports.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(repo ports.UserRepository, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates a patient account. The role is never taken from the caller.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	switch {
	case name == "":
		return nil, domain.Validation("name is required")
	case email == "":
		return nil, domain.Validation("email is required")
	case in.Password == "":
		return nil, domain.Validation("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RolePatient,
		PatientID:    strings.TrimSpace(in.PatientID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", created.ID).Msg("patient registered")
	return created, nil
}

// Login verifies the credentials and issues a token. Unknown email and wrong
// password produce the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Burn a comparison so response time does not reveal the miss.
			_ = bcrypt.CompareHashAndPassword(s.fallbackHash(), []byte(password))
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return token, user, nil
}

// Me returns the caller's own account.
func (s *AuthService) Me(ctx context.Context, caller domain.Identity) (*domain.User, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.repo.FindByID(ctx, caller.UserID)
}

// Authenticate verifies signature and expiry of a bearer token and resolves
// it to the caller identity. Every failure is ErrUnauthorized.
func (s *AuthService) Authenticate(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrUnauthorized
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return domain.Identity{}, domain.ErrUnauthorized
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok || claims.UserID == "" {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return domain.Identity{UserID: claims.UserID, Role: role}, nil
}

// EnsureAdmin creates the seed admin when no admin account exists. It is safe
// to call on every start; it reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	exists, err := s.repo.ExistsWithRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	if exists {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("ensure admin: hash password: %w", err)
	}

	now := s.now().UTC()
	_, err = s.repo.Create(ctx, &domain.User{
		Name:         seed.Name,
		Email:        normalizeEmail(seed.Email),
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		PatientID:    fmt.Sprintf("ADMIN%d", 100+rand.IntN(900)),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Another instance may have seeded concurrently.
		if errors.Is(err, domain.ErrUserExists) {
			if ok, checkErr := s.repo.ExistsWithRole(ctx, domain.RoleAdmin); checkErr == nil && ok {
				return false, nil
			}
		}
		return false, fmt.Errorf("ensure admin: %w", err)
	}

	s.logger.Warn().Str("email", seed.Email).Msg("default admin created, change its password")
	return true, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    user.ID,
		Role:      user.Role.String(),
		Name:      user.Name,
		Email:     user.Email,
		PatientID: user.PatientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.jwtSecret)
}

func (s *AuthService) fallbackHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
