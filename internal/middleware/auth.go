package middleware

import (
	"github.com/kavro/tidepool/internal/models"
	"github.com/kavro/tidepool/internal/services"
	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// Authenticate gates a route group behind the authorization pipeline. With
// no roles given any verified principal passes; otherwise the principal's
// role must be one of the allowed set. On success the principal is attached
// to the request context for downstream handlers.
func Authenticate(gate *services.AuthGate, allowedRoles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			principal, err := gate.Authorize(header, allowedRoles...)
			if err != nil {
				return err
			}
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// OptionalAuthenticate attaches a principal when the request carries a valid
// token and lets the request through either way.
func OptionalAuthenticate(gate *services.AuthGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if principal := gate.OptionalAuthenticate(header); principal != nil {
				c.Set(principalKey, principal)
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal attached by Authenticate, or nil.
func PrincipalFrom(c echo.Context) *models.Principal {
	principal, _ := c.Get(principalKey).(*models.Principal)
	return principal
}
