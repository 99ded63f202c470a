package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/domain"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// PrincipalLocalsKey is the fiber Locals key holding the verified Principal.
const PrincipalLocalsKey = "auth_principal"

// UnauthorizedMessage is the only message a 401 ever carries.
const UnauthorizedMessage = "authentication required"

// ErrMissingToken is returned when no bearer token accompanies the request.
var ErrMissingToken = errors.New("auth: missing bearer token")

// FailureRecorder counts rejected authentications by reason.
type FailureRecorder interface {
	RecordAuthFailure(reason string)
}

// AuthMiddleware validates bearer tokens and enforces per-route access levels.
type AuthMiddleware struct {
	tokens   *TokenManager
	logger   *zap.Logger
	failures FailureRecorder
}

// NewAuthMiddleware constructs middleware. failures may be nil.
func NewAuthMiddleware(tokens *TokenManager, logger *zap.Logger, failures FailureRecorder) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, logger: logger, failures: failures}
}

// Guard returns a handler admitting only callers whose bearer token satisfies access.
func (m *AuthMiddleware) Guard(access Access) fiber.Handler {
	return m.guard(access, func(c *fiber.Ctx) (domain.Principal, error) {
		return m.Authenticate(c.Get(fiber.HeaderAuthorization))
	})
}

// GuardQuery is Guard for clients that cannot set headers, such as browser
// websockets. The token is read from the named query parameter.
func (m *AuthMiddleware) GuardQuery(access Access, param string) fiber.Handler {
	return m.guard(access, func(c *fiber.Ctx) (domain.Principal, error) {
		return m.AuthenticateToken(c.Query(param))
	})
}

func (m *AuthMiddleware) guard(access Access, authenticate func(*fiber.Ctx) (domain.Principal, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := authenticate(c)
		if err != nil {
			reason := FailureReason(err)
			m.logger.Debug("authentication rejected",
				zap.String("reason", reason),
				zap.String("path", c.Path()),
				zap.Error(err))
			if m.failures != nil {
				m.failures.RecordAuthFailure(reason)
			}
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return apperrors.NewUnauthorized(UnauthorizedMessage, err)
		}

		c.Locals(PrincipalLocalsKey, principal)

		if !access.Allows(principal.Role) {
			if m.failures != nil {
				m.failures.RecordAuthFailure("forbidden")
			}
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// Authenticate turns an Authorization header value into a principal.
func (m *AuthMiddleware) Authenticate(header string) (domain.Principal, error) {
	token, err := BearerToken(header)
	if err != nil {
		return domain.Principal{}, err
	}
	return m.AuthenticateToken(token)
}

// AuthenticateToken verifies a raw token, e.g. one passed as a query parameter.
func (m *AuthMiddleware) AuthenticateToken(token string) (domain.Principal, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Principal{}, ErrMissingToken
	}
	claims, err := m.tokens.Verify(token)
	if err != nil {
		return domain.Principal{}, err
	}
	return claims.Principal(), nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingToken
	}
	return parts[1], nil
}

// SetPrincipal attaches principal to the request.
func SetPrincipal(c *fiber.Ctx, principal domain.Principal) {
	c.Locals(PrincipalLocalsKey, principal)
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (domain.Principal, bool) {
	principal, ok := c.Locals(PrincipalLocalsKey).(domain.Principal)
	return principal, ok
}
