// Package repository defines the storage contracts used by the services and
// their SQL implementations. The in-memory implementations live in
// repository/memory.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/procare-io/srportal/internal/models"
)

var (
	// ErrNotFound is returned when a lookup by key matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate key")
)

// Scope limits which service requests a caller may see.
type Scope struct {
	All            bool
	CustomerNumber string
	Territories    []string
}

// Empty reports a scope that can see nothing.
func (s Scope) Empty() bool {
	return !s.All && s.CustomerNumber == "" && len(s.Territories) == 0
}

// Allows reports whether r falls inside the scope.
func (s Scope) Allows(r *models.ServiceRequest) bool {
	switch {
	case s.All:
		return true
	case s.CustomerNumber != "":
		return r.CustomerNumber == s.CustomerNumber
	}
	for _, t := range s.Territories {
		if r.Territory == t {
			return true
		}
	}
	return false
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, email string, at time.Time) error
}

type ItemRepository interface {
	SearchSerials(ctx context.Context, term string, limit int) ([]models.LookupItem, error)
	SearchLots(ctx context.Context, term string, limit int) ([]models.LookupItem, error)
	// SearchItems matches item number or description and groups serialized
	// units into one row per item number.
	SearchItems(ctx context.Context, term string, limit int) ([]models.LookupItem, error)
	GetBySerial(ctx context.Context, serial string) (*models.Item, error)
	GetByItemNumber(ctx context.Context, itemNumber string) (*models.Item, error)
}

type CustomerRepository interface {
	// Search matches customer number or name; a non-nil territories slice
	// restricts results to those territories.
	Search(ctx context.Context, term string, territories []string, limit int) ([]models.CustomerMatch, error)
	GetContact(ctx context.Context, email string) (*models.Customer, error)
	Territory(ctx context.Context, customerNumber string) (string, error)
}

type ReferenceRepository interface {
	Countries(ctx context.Context) ([]models.Country, error)
	Languages(ctx context.Context, countryCode string) ([]models.Language, error)
	LegalDocuments(ctx context.Context, countryCode, languageCode string) ([]models.LegalDocument, error)
	// IssueReasons returns active reasons ordered by display order.
	IssueReasons(ctx context.Context, languageCode string) ([]models.IssueReason, error)
	RepairabilityStatuses(ctx context.Context) ([]models.RepairabilityStatus, error)
}

type RequestRepository interface {
	// Create stores r and its creation activity atomically and sets r.ID.
	Create(ctx context.Context, r *models.ServiceRequest, activity *models.ActivityLog) error
	Get(ctx context.Context, id int64) (*models.ServiceRequest, error)
	// List returns requests in scope, newest first.
	List(ctx context.Context, scope Scope, filter models.RequestFilter) ([]models.ServiceRequest, error)
	UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, activity *models.ActivityLog) error
	AddActivity(ctx context.Context, activity *models.ActivityLog) error
	Activity(ctx context.Context, requestID int64) ([]models.ActivityLog, error)
}

type AttachmentRepository interface {
	Add(ctx context.Context, a *models.Attachment) error
	ListByRequest(ctx context.Context, requestID int64) ([]models.Attachment, error)
	// GetByBlobPath finds an attachment by its "<request_id>/<blob name>" path.
	GetByBlobPath(ctx context.Context, blobPath string) (*models.Attachment, error)
}

// Store bundles every repository the server needs.
type Store struct {
	Users       UserRepository
	Items       ItemRepository
	Customers   CustomerRepository
	Reference   ReferenceRepository
	Requests    RequestRepository
	Attachments AttachmentRepository
}
