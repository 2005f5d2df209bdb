package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository"
)

// UserRepository keeps accounts keyed by lower-cased email.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]models.User)}
}

// Add stores u, replacing any account with the same email.
func (r *UserRepository) Add(u models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[strings.ToLower(u.Email)] = u
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Territories = append([]string{}, u.Territories...)
	return &u, nil
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, email string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(email)
	u, ok := r.users[key]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLogin = &at
	r.users[key] = u
	return nil
}
