package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/procare-io/srportal/internal/auth"
	"github.com/procare-io/srportal/internal/events"
	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository"
)

// RequestService lists, shows and moves service requests within the
// caller's scope.
type RequestService struct {
	requests    repository.RequestRepository
	attachments repository.AttachmentRepository
	rbac        *auth.RBAC
	publisher   events.Publisher
	metrics     *Metrics
	logger      *zap.Logger
	now         func() time.Time
}

func NewRequestService(store *repository.Store, rbac *auth.RBAC, publisher events.Publisher, metrics *Metrics, logger *zap.Logger) *RequestService {
	if rbac == nil {
		rbac = auth.NewRBAC()
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		requests:    store.Requests,
		attachments: store.Attachments,
		rbac:        rbac,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// List returns the requests visible to claims, newest first. A SalesTech
// without territories sees an empty list.
func (s *RequestService) List(ctx context.Context, claims *auth.Claims, filter models.RequestFilter) ([]models.ServiceRequest, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, Invalid("Invalid status filter: %s", filter.Status)
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		return nil, Invalid("to_date must not be before from_date")
	}
	return s.requests.List(ctx, s.rbac.ScopeFor(claims), filter)
}

// Get returns one request with its attachments.
func (s *RequestService) Get(ctx context.Context, claims *auth.Claims, id int64) (*models.ServiceRequest, error) {
	req, err := s.load(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Attachments = attachments
	return req, nil
}

// Activity returns the audit trail of a request the caller may see.
func (s *RequestService) Activity(ctx context.Context, claims *auth.Claims, id int64) ([]models.ActivityLog, error) {
	if _, err := s.load(ctx, claims, id); err != nil {
		return nil, err
	}
	return s.requests.Activity(ctx, id)
}

// UpdateStatus moves a request to status. Only staff may do this, and a
// SalesTech only inside its territories.
func (s *RequestService) UpdateStatus(ctx context.Context, claims *auth.Claims, id int64, status models.RequestStatus) (*models.StatusUpdateResponse, error) {
	if claims == nil || !s.rbac.CanUpdateStatus(claims.Role) {
		return nil, Forbidden("Insufficient permissions")
	}
	if !status.Valid() {
		return nil, Invalid("Invalid status. Allowed: %s", allowedStatuses())
	}

	req, err := s.load(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	activity := &models.ActivityLog{
		ActivityType:        models.ActivityStatusChanged,
		ActivityDescription: "Status changed from " + string(req.Status) + " to " + string(status),
		PerformedBy:         claims.Email,
		PerformedDate:       now,
	}
	if err := s.requests.UpdateStatus(ctx, id, status, activity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Request not found")
		}
		return nil, err
	}

	s.metrics.statusChanges.WithLabelValues(string(status)).Inc()
	s.logger.Info("request status changed",
		zap.String("request_code", req.RequestCode),
		zap.String("from", string(req.Status)),
		zap.String("to", string(status)),
		zap.String("by", claims.Email),
	)
	if err := s.publisher.Publish(ctx, events.Event{
		Type:           events.TypeRequestStatusChanged,
		RequestID:      id,
		RequestCode:    req.RequestCode,
		CustomerNumber: req.CustomerNumber,
		Territory:      req.Territory,
		CountryCode:    req.CountryCode,
		Status:         string(status),
		PreviousStatus: string(req.Status),
		Actor:          claims.Email,
		OccurredAt:     now,
	}); err != nil {
		s.logger.Warn("failed to publish event", zap.String("request_code", req.RequestCode), zap.Error(err))
	}

	return &models.StatusUpdateResponse{Message: "Status updated", NewStatus: status}, nil
}

// load fetches a request and enforces the caller's scope.
func (s *RequestService) load(ctx context.Context, claims *auth.Claims, id int64) (*models.ServiceRequest, error) {
	req, err := s.requests.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Request not found")
	}
	if err != nil {
		return nil, err
	}
	if !s.rbac.CanAccessRequest(claims, req) {
		return nil, Forbidden("Access denied")
	}
	return req, nil
}

func allowedStatuses() string {
	names := make([]string, len(models.RequestStatuses))
	for i, st := range models.RequestStatuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}
