package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository"
)

type RequestRepository struct {
	mu       sync.RWMutex
	requests map[int64]*models.ServiceRequest
	activity map[int64][]models.ActivityLog
	nextID   int64
	nextLog  int64
}

func NewRequestRepository() *RequestRepository {
	return &RequestRepository{
		requests: make(map[int64]*models.ServiceRequest),
		activity: make(map[int64][]models.ActivityLog),
		nextID:   1,
		nextLog:  1,
	}
}

func (r *RequestRepository) Create(_ context.Context, req *models.ServiceRequest, activity *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.requests {
		if existing.RequestCode == req.RequestCode {
			return errDuplicateCode
		}
	}

	req.ID = r.nextID
	r.nextID++
	r.requests[req.ID] = cloneRequest(req)
	if activity != nil {
		r.appendActivity(req.ID, activity)
	}
	return nil
}

func (r *RequestRepository) appendActivity(requestID int64, a *models.ActivityLog) {
	a.ID = r.nextLog
	a.RequestID = requestID
	r.nextLog++
	r.activity[requestID] = append(r.activity[requestID], *a)
}

func (r *RequestRepository) Get(_ context.Context, id int64) (*models.ServiceRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneRequest(req), nil
}

func (r *RequestRepository) List(_ context.Context, scope repository.Scope, f models.RequestFilter) ([]models.ServiceRequest, error) {
	out := []models.ServiceRequest{}
	if scope.Empty() {
		return out, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, req := range r.requests {
		if !scope.Allows(req) || !matches(req, f) {
			continue
		}
		out = append(out, *cloneRequest(req))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedDate.Equal(out[j].SubmittedDate) {
			return out[i].SubmittedDate.After(out[j].SubmittedDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func matches(req *models.ServiceRequest, f models.RequestFilter) bool {
	if f.Status != "" && req.Status != f.Status {
		return false
	}
	if f.FromDate != nil && req.SubmittedDate.Before(*f.FromDate) {
		return false
	}
	if f.ToDate != nil && !req.SubmittedDate.Before(f.ToDate.Add(24*time.Hour)) {
		return false
	}
	if f.ItemNumber != "" && !contains(req.ItemNumber, f.ItemNumber) {
		return false
	}
	if f.SerialNumber != "" && !contains(req.SerialNumber, f.SerialNumber) {
		return false
	}
	return true
}

func (r *RequestRepository) UpdateStatus(_ context.Context, id int64, status models.RequestStatus, activity *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	if activity != nil && !activity.PerformedDate.IsZero() {
		now = activity.PerformedDate
	}
	req.Status = status
	req.LastModifiedDate = now
	if activity != nil {
		activity.PerformedDate = now
		r.appendActivity(id, activity)
	}
	return nil
}

func (r *RequestRepository) AddActivity(_ context.Context, activity *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[activity.RequestID]; !ok {
		return repository.ErrNotFound
	}
	if activity.PerformedDate.IsZero() {
		activity.PerformedDate = time.Now().UTC()
	}
	r.appendActivity(activity.RequestID, activity)
	return nil
}

func (r *RequestRepository) Activity(_ context.Context, requestID int64) ([]models.ActivityLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.ActivityLog{}, r.activity[requestID]...), nil
}
