package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session describes a stored token. The client never verifies tokens; the
// fields are read from the payload for display only.
type Session struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Inspect reads the unverified claims of token. ok is false when the token is
// not a JWT, which is not an error: tokens are opaque to the client.
func Inspect(token string) (Session, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Session{}, false
	}

	var s Session
	s.Subject, _ = claims.GetSubject()
	if role, ok := claims["role"].(string); ok {
		s.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	return s, true
}
