// Package memory provides in-process repositories seeded from the demo
// dataset. The server uses them when database.driver is "memory".
package memory

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/procare-io/srportal/internal/demo"
	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository"
)

// NewStore builds every repository from data. Passwords are hashed with
// bcryptCost.
func NewStore(data *demo.Dataset, bcryptCost int) (*repository.Store, error) {
	users := NewUserRepository()
	for _, seed := range data.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", seed.Email, err)
		}
		u := seed.User
		u.Password = string(hash)
		users.Add(u)
	}

	return &repository.Store{
		Users:       users,
		Items:       NewItemRepository(data.Items),
		Customers:   NewCustomerRepository(data.Customers, data.Contacts),
		Reference:   NewReferenceRepository(data),
		Requests:    NewRequestRepository(),
		Attachments: NewAttachmentRepository(),
	}, nil
}

func contains(value, term string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(term))
}

func limitTo[T any](in []T, limit int) []T {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}

func cloneRequest(r *models.ServiceRequest) *models.ServiceRequest {
	out := *r
	if r.RequestedServiceDate != nil {
		d := *r.RequestedServiceDate
		out.RequestedServiceDate = &d
	}
	out.Attachments = nil
	return &out
}
