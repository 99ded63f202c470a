package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/event-service/internal/domain"
)

// Token verification failures. Callers may tell them apart for logging and
// metrics; the HTTP layer renders all of them as the same 401.
var (
	ErrMalformed        = errors.New("auth: malformed token")
	ErrInvalidSignature = errors.New("auth: invalid token signature")
	ErrExpired          = errors.New("auth: token expired")
)

var errEmptySecret = errors.New("auth: signing secret must not be empty")

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for iat/exp.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// NewTokenManager builds a manager around an immutable copy of secret.
func NewTokenManager(secret []byte, opts ...TokenOption) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, errEmptySecret
	}
	tm := &TokenManager{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	tm.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(tm.now),
	)
	return tm, nil
}

// Claims describes the JWT payload.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a token for subject with the given role, valid for ttl from now.
// A non-positive ttl yields a token that is already expired.
func (tm *TokenManager) Issue(subject string, role domain.Role, ttl time.Duration) (string, time.Time, error) {
	if subject == "" || !role.Valid() {
		return "", time.Time{}, fmt.Errorf("auth: cannot issue token for subject %q role %q", subject, role)
	}
	if ttl < 0 {
		ttl = 0
	}

	now := tm.now()
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(now.Add(ttl))
	if ttl == 0 {
		expiresAt = issuedAt
	}

	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt.Time, nil
}

// Verify checks signature and expiry and returns the embedded claims.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	parsed, err := tm.parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (any, error) {
		return tm.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %w", ErrExpired, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrMalformed
	}
	return claims, nil
}

// Principal converts verified claims into the request principal.
func (c *Claims) Principal() domain.Principal {
	return domain.Principal{UserID: c.Subject, Role: c.Role}
}

// FailureReason is a short label for a verification error, used in logs and metrics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "missing"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}
