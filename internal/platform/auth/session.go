package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// SessionKey carries the authenticated staff session through the request
// context. Operations read the acting user from here; there is no ambient
// "current user" state anywhere else.
const SessionKey contextKey = "session"

// Session identifies the staff member performing an operation.
type Session struct {
	StaffID     string          `json:"staff_id"`
	Username    string          `json:"username"`
	Name        string          `json:"name"`
	Admin       bool            `json:"admin"`
	Permissions map[string]bool `json:"permissions"`
}

// CanAccess reports whether the session may use the named module. Admins may
// use everything; otherwise the flat permission map decides.
func (s *Session) CanAccess(module string) bool {
	if s == nil {
		return false
	}
	if s.Admin {
		return true
	}
	return s.Permissions[module]
}

// FromContext retrieves the session, or nil when the request is anonymous.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(SessionKey).(*Session)
	return s
}

// WithSession returns a context carrying the given session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// Claims is the JWT payload for a staff session token.
type Claims struct {
	jwt.RegisteredClaims
	Username    string          `json:"username"`
	Name        string          `json:"name"`
	Admin       bool            `json:"admin"`
	Permissions map[string]bool `json:"permissions"`
}

// IssueToken signs a session token for the given staff session.
func IssueToken(secret []byte, s *Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.StaffID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username:    s.Username,
		Name:        s.Name,
		Admin:       s.Admin,
		Permissions: s.Permissions,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies a session token and rebuilds the session from its
// claims.
func ParseToken(secret []byte, tokenString string) (*Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return &Session{
		StaffID:     claims.Subject,
		Username:    claims.Username,
		Name:        claims.Name,
		Admin:       claims.Admin,
		Permissions: claims.Permissions,
	}, nil
}
