package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/config"
	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/repository"
)

var (
	// ErrDuplicateEmail is returned by Signup when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAdminSignupDisabled is returned when self-signup as admin is turned off.
	ErrAdminSignupDisabled = errors.New("admin signup disabled")
	// ErrUnknownPrincipal is returned when a verified token names a user that no longer exists.
	ErrUnknownPrincipal = errors.New("principal not found")
)

// SignupInput describes a new account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates signup and login flows.
type AuthService struct {
	users            repository.UserRepository
	tokens           *auth.TokenManager
	hasher           *auth.PasswordHasher
	tokenTTL         time.Duration
	allowAdminSignup bool
	logger           *zap.Logger
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   *auth.TokenManager
	Hasher   *auth.PasswordHasher
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:            deps.UserRepo,
		tokens:           deps.Tokens,
		hasher:           deps.Hasher,
		tokenTTL:         cfg.AccessTokenTTL(),
		allowAdminSignup: cfg.AllowAdminSignup,
		logger:           logger.Named("auth"),
	}
}

// Signup creates a new account. The plaintext password is hashed before it
// reaches the repository and is never returned.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	role, ok := domain.ParseRole(input.Role)
	if !ok {
		return nil, &ValidationError{Fields: map[string]string{"role": "must be admin or normal"}}
	}
	if role == domain.RoleAdmin && !s.allowAdminSignup {
		return nil, ErrAdminSignupDisabled
	}

	email := domain.NormalizeEmail(input.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, &ValidationError{Fields: map[string]string{"password": "too long"}}
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Login checks credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.CompareDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	token, exp, err := s.tokens.Issue(user.ID, user.Role, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// CurrentUser loads the account behind a verified principal.
func (s *AuthService) CurrentUser(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownPrincipal
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}
