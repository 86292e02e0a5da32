package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseRole(t *testing.T) {
	for _, in := range []string{"patient", "admin"} {
		r, ok := ParseRole(in)
		if !ok || r.String() != in {
			t.Errorf("ParseRole(%q) = %q, %v", in, r, ok)
		}
	}
	for _, in := range []string{"", "Admin", "dentist"} {
		if _, ok := ParseRole(in); ok {
			t.Errorf("ParseRole(%q) accepted", in)
		}
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		caller Identity
		role   Role
		want   error
	}{
		{"matching role", Identity{UserID: "u", Role: RoleAdmin}, RoleAdmin, nil},
		{"patient on admin route", Identity{UserID: "u", Role: RolePatient}, RoleAdmin, ErrForbidden},
		{"admin on patient route", Identity{UserID: "u", Role: RoleAdmin}, RolePatient, ErrForbidden},
		{"anonymous", Identity{}, RolePatient, ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := RequireRole(tt.caller, tt.role); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUserSummary(t *testing.T) {
	u := &User{ID: "u1", Name: "Ana", Email: "ana@example.com", PasswordHash: "h", Role: RolePatient, PatientID: "P-1"}
	got := u.Summary()
	want := PatientSummary{ID: "u1", Name: "Ana", Email: "ana@example.com", PatientID: "P-1"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestErrorWrappers(t *testing.T) {
	cause := errors.New("boom")

	st := Storage("annotated image", cause)
	if !errors.Is(st, ErrStorage) || !errors.Is(st, cause) {
		t.Errorf("storage error does not match: %v", st)
	}
	pe := Persistence("save review", cause)
	if !errors.Is(pe, ErrPersistence) || !errors.Is(pe, cause) {
		t.Errorf("persistence error does not match: %v", pe)
	}

	ve := fmt.Errorf("wrap: %w", Validation("field %s missing", "image"))
	var target *ValidationError
	if !errors.Is(ve, ErrValidation) || !errors.As(ve, &target) || target.Reason != "field image missing" {
		t.Errorf("validation error does not match: %v", ve)
	}
}
