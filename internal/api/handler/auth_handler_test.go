package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dentalscribe/submission-api/internal/api/middleware"
	"github.com/dentalscribe/submission-api/internal/core/domain"
	"github.com/dentalscribe/submission-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
	meFn       func(ctx context.Context, caller domain.Identity) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Me(ctx context.Context, caller domain.Identity) (*domain.User, error) {
	return s.meFn(ctx, caller)
}

func (s *stubAuthService) Authenticate(string) (domain.Identity, error) {
	return domain.Identity{}, domain.ErrUnauthorized
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Name != "Ana" || in.Email != "ana@example.com" || in.PatientID != "P-001" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Name: in.Name, Email: in.Email, Role: domain.RolePatient, PatientID: in.PatientID, PasswordHash: "hash"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	// A client-supplied role is ignored.
	body := `{"name":"Ana","email":"ana@example.com","password":"secret","patientId":"P-001","role":"admin"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", body), rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var user map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if user["role"] != "patient" || user["patientId"] != "P-001" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatal("credential hash leaked into response")
	}
}

func TestAuthHandler_Register_Invalid(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", `{"name":"Bob","email":"not-an-email"}`), rec)

	if err := handler.Register(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", `{"name":"Bob","email":"bob@example.com","password":"pw"}`), rec)

	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		loginFn: func(_ context.Context, email, password string) (string, *domain.User, error) {
			if email != "admin@dental.com" || password != "admin123" {
				t.Fatalf("unexpected credentials %s/%s", email, password)
			}
			return "signed.jwt.token", &domain.User{ID: "a1", Name: "Dr. Admin", Email: email, Role: domain.RoleAdmin}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"admin@dental.com","password":"admin123"}`), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "signed.jwt.token" || resp.User.Role != "admin" || resp.User.ID != "a1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		loginFn: func(context.Context, string, string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"x@example.com","password":"nope"}`), rec)

	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		meFn: func(_ context.Context, caller domain.Identity) (*domain.User, error) {
			return &domain.User{ID: caller.UserID, Name: "Ana", Role: caller.Role, PasswordHash: "hash"}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), rec)
	c.Set(middleware.IdentityKey, domain.Identity{UserID: "u1", Role: domain.RolePatient})

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var user userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if user.ID != "u1" || user.Role != "patient" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthHandler_Me_WithoutIdentity(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), httptest.NewRecorder())

	if err := handler.Me(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
