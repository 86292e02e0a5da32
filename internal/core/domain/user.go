package domain

import "time"

// Role is the access tier of an authenticated actor. Only two tiers exist.
type Role string

const (
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

// ParseRole converts a raw claim or stored value into a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RolePatient:
		return RolePatient, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// User models an account in the identity store.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	PatientID    string    `json:"patientId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary returns the owner view embedded in admin listings.
func (u *User) Summary() PatientSummary {
	return PatientSummary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		PatientID: u.PatientID,
	}
}

// PatientSummary is the reduced owner projection attached to submissions.
type PatientSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	PatientID string `json:"patientId,omitempty"`
}

// Identity is what the auth gate resolves a bearer token to.
type Identity struct {
	UserID string
	Role   Role
}

// RequireRole fails with ErrForbidden unless the caller holds role.
func RequireRole(caller Identity, role Role) error {
	if caller.UserID == "" {
		return ErrUnauthorized
	}
	if caller.Role != role {
		return ErrForbidden
	}
	return nil
}
