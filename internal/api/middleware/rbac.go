package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

// RequireRole lets the request through only when the caller holds role.
// It must run after Auth.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, _ := IdentityFrom(c)
			if err := domain.RequireRole(identity, role); err != nil {
				return err
			}
			return next(c)
		}
	}
}
