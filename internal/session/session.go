// Package session identifies the authenticated user behind a request.
// Sessions are stateless signed tokens; the server holds no session table.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession indicates the request carries no valid session token.
var ErrNoSession = errors.New("session: not authenticated")

// Manager issues and verifies session tokens. The clock is injectable so
// expiry can be tested without sleeping.
type Manager struct {
	secret []byte
	ttl    time.Duration
	clock  quartz.Clock
}

// NewManager creates a session manager signing tokens with the given secret.
// A nil clock falls back to the real one.
func NewManager(secret []byte, ttl time.Duration, clock quartz.Clock) *Manager {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Manager{secret: secret, ttl: ttl, clock: clock}
}

// Issue returns a signed token identifying the username.
func (m *Manager) Issue(username string) (string, error) {
	now := m.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses a token and returns the username it identifies.
func (m *Manager) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithTimeFunc(func() time.Time { return m.clock.Now() }),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrNoSession
	}
	return claims.Subject, nil
}

// CurrentUser returns the authenticated username behind the request, or
// ErrNoSession when there is none.
func (m *Manager) CurrentUser(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", ErrNoSession
	}
	return m.Verify(strings.TrimSpace(strings.TrimPrefix(auth, prefix)))
}
