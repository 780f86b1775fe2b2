package services

import (
	"github.com/kavro/tidepool/internal/models"
	"github.com/kavro/tidepool/pkg/faults"
)

// AuthGate resolves an Authorization header into a request-scoped principal:
// extract, verify, role-check, terminal on the first failure.
type AuthGate struct {
	tokens *TokenService
}

// NewAuthGate creates an AuthGate on top of a TokenService.
func NewAuthGate(tokens *TokenService) *AuthGate {
	return &AuthGate{tokens: tokens}
}

// Authorize runs the full pipeline against a raw header value. With no
// allowed roles the role check is skipped and any verified principal passes.
func (g *AuthGate) Authorize(header string, allowedRoles ...models.Role) (*models.Principal, error) {
	tokenString, err := g.tokens.ExtractFromHeader(header)
	if err != nil {
		return nil, err
	}

	claims, err := g.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	if len(allowedRoles) > 0 && !roleAllowed(claims.Role, allowedRoles) {
		required := make([]string, len(allowedRoles))
		for i, r := range allowedRoles {
			required[i] = string(r)
		}
		return nil, faults.RoleDeniedError(required, string(claims.Role))
	}

	return &models.Principal{
		ID:          claims.UserID,
		Role:        claims.Role,
		DisplayName: claims.DisplayName,
	}, nil
}

// OptionalAuthenticate runs the same pipeline but converts every failure
// into "no principal". Used by endpoints that personalize output for
// authenticated callers without requiring authentication.
func (g *AuthGate) OptionalAuthenticate(header string) *models.Principal {
	principal, err := g.Authorize(header)
	if err != nil {
		return nil
	}
	return principal
}

func roleAllowed(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
