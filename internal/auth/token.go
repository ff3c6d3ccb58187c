package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/classroom-service/internal/domain"
)

// RefreshGraceWindow bounds how long after expiry a token may still be
// exchanged for a new one. Fixed regardless of the configured token TTL.
const RefreshGraceWindow = 30 * time.Minute

// TokenManager issues and validates signed bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    time.Duration(ttlMinutes) * time.Minute,
		now:    time.Now,
	}
}

// Claims describes the signed token payload.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserRole converts the wire role tag into the closed role set. Unknown
// tags fall back to the least-privileged role rather than any elevated one.
func (c *Claims) UserRole() domain.Role {
	return domain.RoleOrStudent(c.Role)
}

// Issue mints a token bound to the identity's role at call time.
func (tm *TokenManager) Issue(subject, username string, role domain.Role) (string, time.Time, error) {
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("issue token: unknown role %q", role)
	}

	now := tm.now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		Username: username,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrCryptoFault, err)
	}
	return tokenString, expiresAt, nil
}

// Verify validates a token for normal request authorization: signature
// plus strict expiry.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	return tm.decode(tokenStr, false)
}

// VerifyForRefresh validates a token for exchange into a new one. The
// signature check is identical to Verify, but an elapsed token is accepted
// while it remains inside the refresh grace window.
func (tm *TokenManager) VerifyForRefresh(tokenStr string) (*Claims, error) {
	claims, err := tm.decode(tokenStr, true)
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt == nil {
		return nil, ErrInvalidSignature
	}
	if tm.now().Sub(claims.ExpiresAt.Time) >= RefreshGraceWindow {
		return nil, ErrRefreshWindowExceeded
	}
	return claims, nil
}

// Refresh exchanges a fresh or in-grace token for a new one. Identity and
// role are carried over from the old claims, never re-derived, so a
// refreshed token cannot escalate beyond the original grant.
func (tm *TokenManager) Refresh(oldToken string) (string, time.Time, error) {
	claims, err := tm.VerifyForRefresh(oldToken)
	if err != nil {
		return "", time.Time{}, err
	}
	return tm.Issue(claims.Subject, claims.Username, claims.UserRole())
}

func (tm *TokenManager) decode(tokenStr string, grace bool) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(tm.now)}
	if grace {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, opts...)
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrInvalidSignature
	default:
		return fmt.Errorf("%w: %v", ErrCryptoFault, err)
	}
}
