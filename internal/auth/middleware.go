package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/crediflow/collections-service/internal/domain"
	"github.com/crediflow/collections-service/internal/repository"
	"github.com/crediflow/collections-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	UID   string
	Email string
	Role  domain.Role
	User  *domain.User
}

// Elevated reports whether the caller bypasses ownership restrictions.
func (p *Principal) Elevated() bool {
	return p.Role.IsElevated()
}

// Middleware validates bearer tokens and loads the principal.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewMiddleware constructs the middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return util.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return util.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return util.NewUnauthorized("invalid token")
	}

	principal := &Principal{UID: claims.UID, Email: claims.Email, Role: claims.Role}

	// The role claim may be absent on tokens minted before the role was
	// assigned; fall back to the stored user record.
	user, err := m.users.GetByID(c.Context(), claims.UID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return util.NewUnauthorized("user not found")
		}
		return util.MapError(err)
	}
	if !user.IsActive {
		return util.NewUnauthorized("user disabled")
	}
	principal.User = user
	if !principal.Role.Valid() {
		principal.Role = user.Role
	}
	if !principal.Role.Valid() {
		principal.Role = domain.RoleGestor
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// RequireElevated ensures the caller is supervisor or admin.
func RequireElevated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return util.NewUnauthorized("authentication required")
		}
		if !principal.Elevated() {
			return util.NewForbidden("supervisor role required")
		}
		return c.Next()
	}
}
