package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// AuthMethod represents different authentication methods
type AuthMethod int

const (
	AuthMethodNone AuthMethod = iota
	// AuthMethodJWT sends the login token as a bearer token
	AuthMethodJWT
)

// ErrNoRefresh is returned when an expired token has no way to be renewed.
var ErrNoRefresh = errors.New("no refresh function configured")

// Authenticator supplies credentials for outgoing requests.
type Authenticator interface {
	// GetAuthHeader returns the authorization header value
	GetAuthHeader() string
	// IsExpired checks if the authentication is expired
	IsExpired() bool
	// Refresh renews the credentials if possible
	Refresh() error
	Type() AuthMethod
}

// JWTAuth implements bearer token authentication with the token issued by
// POST /api/login.
type JWTAuth struct {
	mu          sync.RWMutex
	token       string
	expiresAt   time.Time
	RefreshFunc func() (string, time.Time, error)
}

func NewJWTAuth(token string, expiresAt time.Time) *JWTAuth {
	return &JWTAuth{token: token, expiresAt: expiresAt}
}

func (a *JWTAuth) GetAuthHeader() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.token == "" {
		return ""
	}
	return fmt.Sprintf("Bearer %s", a.token)
}

// IsExpired checks the expiry with a one minute buffer. A zero expiry never
// expires.
func (a *JWTAuth) IsExpired() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.expiresAt.IsZero() {
		return false
	}
	return time.Now().After(a.expiresAt.Add(-1 * time.Minute))
}

func (a *JWTAuth) Refresh() error {
	if a.RefreshFunc == nil {
		return ErrNoRefresh
	}
	token, expiresAt, err := a.RefreshFunc()
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	a.mu.Lock()
	a.token = token
	a.expiresAt = expiresAt
	a.mu.Unlock()
	return nil
}

func (a *JWTAuth) Type() AuthMethod {
	return AuthMethodJWT
}

// NoAuth is used before login.
type NoAuth struct{}

func NewNoAuth() *NoAuth {
	return &NoAuth{}
}

func (a *NoAuth) GetAuthHeader() string { return "" }

func (a *NoAuth) IsExpired() bool { return false }

func (a *NoAuth) Refresh() error { return nil }

func (a *NoAuth) Type() AuthMethod { return AuthMethodNone }
