package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/crediflow/collections-service/internal/auth"
	"github.com/crediflow/collections-service/internal/config"
	"github.com/crediflow/collections-service/internal/domain"
	"github.com/crediflow/collections-service/internal/repository"
	"github.com/crediflow/collections-service/pkg/util"
)

// AuthService registers agents and issues bearer tokens.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.Config, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// RegisterInput describes an agent registration payload.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     domain.Role
}

// Register creates an agent account. The role defaults to gestor when absent.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, util.NewValidationError("email and password required", nil)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleGestor
	}
	if !role.Valid() {
		return nil, util.NewValidationError("invalid role", map[string]any{
			"allow": []domain.Role{domain.RoleGestor, domain.RoleSupervisor, domain.RoleAdmin},
		})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, util.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, util.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, util.MapError(err)
	}
	return user, nil
}

// LoginResult carries the issued token and its expiry.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials and issues a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, util.NewUnauthorized("invalid credentials")
		}
		return nil, util.MapError(err)
	}
	if !user.IsActive {
		return nil, util.NewUnauthorized("user disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, util.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
