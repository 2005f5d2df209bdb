// Package session holds the signed-in identity of the terminal client.
//
// The identity lives in a small JSON file so that every srportal command in
// every terminal shares one login. A Session is an explicit value: callers
// pass it down to the wizard and views and call Refresh when they want to see
// changes made by another process.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/wizard"
	"github.com/procare-io/srportal/sdk/go/auth"
)

var (
	ErrNotSignedIn = errors.New("not signed in")
	ErrExpired     = errors.New("session expired")
)

// Identity is the persisted login.
type Identity struct {
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	Role           models.UserRole `json:"role"`
	CustomerNumber string          `json:"customer_number,omitempty"`
	CustomerName   string          `json:"customer_name,omitempty"`
	CountryCode    string          `json:"country_code,omitempty"`
	LanguageCode   string          `json:"language_code,omitempty"`
	Territories    []string        `json:"territories,omitempty"`
	AccessToken    string          `json:"access_token"`
	ExpiresAt      time.Time       `json:"expires_at"`
	BaseURL        string          `json:"base_url,omitempty"`
}

// FromLogin builds an identity from a login response.
func FromLogin(resp *models.LoginResponse, baseURL string) *Identity {
	return &Identity{
		Email:          resp.Email,
		Name:           resp.Name,
		Role:           resp.Role,
		CustomerNumber: resp.CustomerNumber,
		CustomerName:   resp.CustomerName,
		CountryCode:    resp.CountryCode,
		Territories:    append([]string(nil), resp.Territories...),
		AccessToken:    resp.AccessToken,
		ExpiresAt:      resp.ExpiresAt,
		BaseURL:        baseURL,
	}
}

// Expired reports whether the token is past its expiry. A zero expiry never
// expires.
func (id *Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && !now.Before(id.ExpiresAt)
}

// Actor is the wizard's view of the identity.
func (id *Identity) Actor() wizard.Actor {
	return wizard.Actor{
		Email:          id.Email,
		Name:           id.Name,
		Role:           id.Role,
		CustomerNumber: id.CustomerNumber,
		CustomerName:   id.CustomerName,
		CountryCode:    id.CountryCode,
		LanguageCode:   id.LanguageCode,
	}
}

// Store persists one identity.
type Store interface {
	// Load returns nil, nil when nobody is signed in.
	Load() (*Identity, error)
	Save(id *Identity) error
	Clear() error
}

// Session is the in-memory copy of the store's identity.
type Session struct {
	mu       sync.RWMutex
	store    Store
	identity *Identity
	now      func() time.Time
}

// New creates a session and loads the current identity.
func New(store Store) (*Session, error) {
	s := &Session{store: store, now: time.Now}
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh re-reads the store.
func (s *Session) Refresh() error {
	id, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	s.mu.Lock()
	s.identity = id
	s.mu.Unlock()
	return nil
}

// Identity returns a copy of the current identity.
func (s *Session) Identity() (Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, ErrNotSignedIn
	}
	id := *s.identity
	id.Territories = append([]string(nil), s.identity.Territories...)
	if id.Expired(s.now()) {
		return id, ErrExpired
	}
	return id, nil
}

// SignedIn reports whether a valid, unexpired identity is present.
func (s *Session) SignedIn() bool {
	_, err := s.Identity()
	return err == nil
}

// SignIn stores id and makes it current.
func (s *Session) SignIn(id *Identity) error {
	if err := s.store.Save(id); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.mu.Lock()
	s.identity = id
	s.mu.Unlock()
	return nil
}

func (s *Session) SignOut() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()
	return nil
}

// SetLanguage records the preferred language for new drafts.
func (s *Session) SetLanguage(code string) error {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return ErrNotSignedIn
	}
	id := *s.identity
	id.LanguageCode = code
	s.mu.Unlock()
	return s.SignIn(&id)
}

// Session implements auth.Authenticator so the API client always sends the
// current token. Refresh re-reads the store, which picks up a login made in
// another terminal; a token that is still expired is rejected by the API.
var _ auth.Authenticator = (*Session)(nil)

func (s *Session) GetAuthHeader() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil || s.identity.AccessToken == "" {
		return ""
	}
	return "Bearer " + s.identity.AccessToken
}

func (s *Session) IsExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil && s.identity.Expired(s.now())
}

func (s *Session) Type() auth.AuthMethod {
	return auth.AuthMethodJWT
}
