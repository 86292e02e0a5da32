package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/dentalscribe/submission-api/internal/api/middleware"
	"github.com/dentalscribe/submission-api/internal/core/domain"
)

// caller returns the identity injected by the Auth middleware. Handlers behind
// Auth always have one; its absence means the route was wired without it.
func caller(c echo.Context) (domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return identity, nil
}
