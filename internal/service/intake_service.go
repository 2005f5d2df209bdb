package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/procare-io/srportal/internal/auth"
	"github.com/procare-io/srportal/internal/events"
	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository"
	"github.com/procare-io/srportal/internal/requestcode"
)

const (
	submitNextSteps = "Your request has been routed to the appropriate ProCare team and you will receive updates via email."
	// maxCodeAttempts bounds retries when a generated code is already taken.
	maxCodeAttempts = 3
)

// IntakeService turns wizard submissions into stored service requests.
type IntakeService struct {
	requests  repository.RequestRepository
	items     repository.ItemRepository
	customers repository.CustomerRepository
	codes     requestcode.Generator
	publisher events.Publisher
	metrics   *Metrics
	clean     *sanitizer
	logger    *zap.Logger
	now       func() time.Time
}

func NewIntakeService(store *repository.Store, codes requestcode.Generator, publisher events.Publisher, metrics *Metrics, logger *zap.Logger) *IntakeService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeService{
		requests:  store.Requests,
		items:     store.Items,
		customers: store.Customers,
		codes:     codes,
		publisher: publisher,
		metrics:   metrics,
		clean:     newSanitizer(),
		logger:    logger,
		now:       time.Now,
	}
}

// Submit validates sub, stores it with a fresh request code and a
// "Created" activity entry, and publishes the submission event.
func (s *IntakeService) Submit(ctx context.Context, claims *auth.Claims, sub *models.IntakeSubmission) (*models.SubmitResponse, error) {
	clean := s.sanitize(sub)
	if err := s.checkSubmission(clean); err != nil {
		return nil, err
	}

	req := s.buildRequest(claims, clean)
	s.applyItem(ctx, req)
	if req.CustomerNumber != "" {
		territory, err := s.customers.Territory(ctx, req.CustomerNumber)
		switch {
		case err == nil:
			req.Territory = territory
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("resolve territory: %w", err)
		}
	}

	activity := &models.ActivityLog{
		ActivityType:        models.ActivityCreated,
		ActivityDescription: "Service request created",
		PerformedBy:         claims.Email,
		PerformedDate:       req.SubmittedDate,
	}

	var err error
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		if req.RequestCode, err = s.codes.Next(ctx, req.CountryCode); err != nil {
			return nil, err
		}
		err = s.requests.Create(ctx, req, activity)
		if !errors.Is(err, repository.ErrDuplicate) {
			break
		}
		s.logger.Warn("request code collision", zap.String("code", req.RequestCode), zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, fmt.Errorf("store service request: %w", err)
	}

	s.metrics.submissions.WithLabelValues(string(req.RequestType), req.CountryCode).Inc()
	s.logger.Info("service request submitted",
		zap.String("request_code", req.RequestCode),
		zap.Int64("request_id", req.ID),
		zap.String("request_type", string(req.RequestType)),
		zap.String("territory", req.Territory),
		zap.String("submitted_by", claims.Email),
	)
	s.publish(ctx, events.Event{
		Type:           events.TypeRequestSubmitted,
		RequestID:      req.ID,
		RequestCode:    req.RequestCode,
		CustomerNumber: req.CustomerNumber,
		Territory:      req.Territory,
		CountryCode:    req.CountryCode,
		Status:         string(req.Status),
		Actor:          claims.Email,
		OccurredAt:     req.SubmittedDate,
	})

	return &models.SubmitResponse{
		Success:     true,
		RequestID:   req.ID,
		RequestCode: req.RequestCode,
		Message:     fmt.Sprintf("Service request %s has been successfully submitted", req.RequestCode),
		NextSteps:   submitNextSteps,
	}, nil
}

// sanitize returns a copy of sub with markup removed from free-text fields.
// Required-field checks run on this copy so markup-only input counts as empty.
func (s *IntakeService) sanitize(sub *models.IntakeSubmission) *models.IntakeSubmission {
	out := *sub
	out.CustomerName = s.clean.Text(sub.CustomerName)
	out.ContactName = s.clean.Text(sub.ContactName)
	out.SiteAddress = s.clean.Text(sub.SiteAddress)
	out.ItemDescription = s.clean.Text(sub.ItemDescription)
	out.IssueDescription = s.clean.Text(sub.IssueDescription)
	out.LoanerDetails = s.clean.Text(sub.LoanerDetails)
	out.CustomerNotes = s.clean.Text(sub.CustomerNotes)
	return &out
}

func (s *IntakeService) checkSubmission(sub *models.IntakeSubmission) error {
	if !sub.RequestType.Valid() {
		return Invalid("request_type must be Serial, Item, or General")
	}
	if sub.UrgencyLevel != "" && !sub.UrgencyLevel.Valid() {
		return Invalid("urgency_level must be Normal, Urgent, or Critical")
	}

	switch sub.RequestType {
	case models.RequestTypeSerial:
		if strings.TrimSpace(sub.SerialNumber) == "" {
			return Invalid("Serial number is required for Serial request type")
		}
	case models.RequestTypeItem:
		if strings.TrimSpace(sub.ItemNumber) == "" {
			return Invalid("Item number is required for Item request type")
		}
	case models.RequestTypeGeneral:
		if strings.TrimSpace(sub.ItemDescription) == "" || strings.TrimSpace(sub.CustomerName) == "" {
			return Invalid("Item description and customer name are required for General requests")
		}
	}
	return nil
}

func (s *IntakeService) buildRequest(claims *auth.Claims, sub *models.IntakeSubmission) *models.ServiceRequest {
	now := s.now().UTC()
	urgency := sub.UrgencyLevel
	if urgency == "" {
		urgency = models.UrgencyNormal
	}
	lang := strings.ToLower(strings.TrimSpace(sub.LanguageCode))
	if lang == "" {
		lang = "en"
	}

	req := &models.ServiceRequest{
		RequestType:           sub.RequestType,
		CustomerNumber:        strings.TrimSpace(sub.CustomerNumber),
		CustomerName:          sub.CustomerName,
		ContactEmail:          strings.TrimSpace(sub.ContactEmail),
		ContactPhone:          strings.TrimSpace(sub.ContactPhone),
		ContactName:           sub.ContactName,
		PreferredContact:      sub.PreferredContact,
		CountryCode:           strings.ToUpper(strings.TrimSpace(sub.CountryCode)),
		SiteAddress:           sub.SiteAddress,
		LotNumber:             strings.TrimSpace(sub.LotNumber),
		ItemDescription:       sub.ItemDescription,
		ProductFamily:         strings.TrimSpace(sub.ProductFamily),
		MainReason:            strings.TrimSpace(sub.MainReason),
		SubReason:             strings.TrimSpace(sub.SubReason),
		IssueDescription:      sub.IssueDescription,
		SafetyPatientInvolved: sub.SafetyPatientInvolved,
		RequestedServiceDate:  sub.RequestedServiceDate,
		UrgencyLevel:          urgency,
		LoanerRequired:        sub.LoanerRequired,
		QuoteRequired:         sub.QuoteRequired,
		PickupDate:            strings.TrimSpace(sub.PickupDate),
		PickupTime:            strings.TrimSpace(sub.PickupTime),
		POReferenceNumber:     strings.TrimSpace(sub.POReferenceNumber),
		CustomerIdentCode:     strings.TrimSpace(sub.CustomerIdentCode),
		Status:                models.StatusSubmitted,
		SubmittedByEmail:      claims.Email,
		SubmittedByName:       claims.Name,
		SubmittedDate:         now,
		LastModifiedDate:      now,
		LanguageCode:          lang,
		CustomerNotes:         sub.CustomerNotes,
	}
	if sub.LoanerRequired {
		req.LoanerDetails = sub.LoanerDetails
	}

	// Only the identity fields of the chosen request type are kept.
	switch sub.RequestType {
	case models.RequestTypeSerial:
		req.SerialNumber = strings.TrimSpace(sub.SerialNumber)
		req.ItemNumber = strings.TrimSpace(sub.ItemNumber)
	case models.RequestTypeItem:
		req.ItemNumber = strings.TrimSpace(sub.ItemNumber)
	}

	// Customers always file for their own account.
	if claims.Role == models.RoleCustomer {
		req.CustomerNumber = claims.CustomerNumber
		if claims.CustomerName != "" {
			req.CustomerName = claims.CustomerName
		}
	}
	return req
}

// applyItem copies repairability and missing catalog fields from the
// serviceable item matching the request.
func (s *IntakeService) applyItem(ctx context.Context, req *models.ServiceRequest) {
	var (
		item *models.Item
		err  error
	)
	switch {
	case req.SerialNumber != "":
		item, err = s.items.GetBySerial(ctx, req.SerialNumber)
	case req.ItemNumber != "":
		item, err = s.items.GetByItemNumber(ctx, req.ItemNumber)
	default:
		return
	}
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("item lookup failed", zap.String("serial", req.SerialNumber), zap.Error(err))
		}
		return
	}
	if !item.IsServiceable {
		return
	}

	req.RepairabilityStatus = item.RepairabilityStatus
	if req.ItemNumber == "" {
		req.ItemNumber = item.ItemNumber
	}
	if req.ItemDescription == "" {
		req.ItemDescription = item.ItemDescription
	}
	if req.ProductFamily == "" {
		req.ProductFamily = item.ProductFamily
	}
	if req.LotNumber == "" {
		req.LotNumber = item.LotNumber
	}
}

func (s *IntakeService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", e.Type), zap.String("request_code", e.RequestCode), zap.Error(err))
	}
}
