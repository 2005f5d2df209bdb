package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/procare-io/srportal/internal/database"
	"github.com/procare-io/srportal/internal/models"
)

// SQLRequestRepository stores service requests and their activity log.
type SQLRequestRepository struct {
	qb *database.QueryBuilder
}

func NewSQLRequestRepository(qb *database.QueryBuilder) *SQLRequestRepository {
	return &SQLRequestRepository{qb: qb}
}

// requestInsertColumns is every persisted column except id.
var requestInsertColumns = []string{
	"request_code", "request_type", "customer_number", "customer_name",
	"contact_email", "contact_phone", "contact_name", "preferred_contact_method",
	"country_code", "territory", "site_address",
	"serial_number", "item_number", "lot_number", "item_description", "product_family",
	"main_reason", "sub_reason", "issue_description", "safety_patient_involved",
	"repairability_status", "requested_service_date", "urgency_level",
	"loaner_required", "loaner_details", "quote_required",
	"pickup_date", "pickup_time", "po_reference_number", "customer_ident_code",
	"status", "submitted_by_email", "submitted_by_name", "submitted_date", "last_modified_date",
	"language_code", "customer_notes",
}

var requestSelectColumns = "id, " + strings.Join(requestInsertColumns, ", ")

func requestArgs(r *models.ServiceRequest) []interface{} {
	return []interface{}{
		r.RequestCode, string(r.RequestType), r.CustomerNumber, r.CustomerName,
		r.ContactEmail, r.ContactPhone, r.ContactName, r.PreferredContact,
		r.CountryCode, r.Territory, r.SiteAddress,
		r.SerialNumber, r.ItemNumber, r.LotNumber, r.ItemDescription, r.ProductFamily,
		r.MainReason, r.SubReason, r.IssueDescription, r.SafetyPatientInvolved,
		r.RepairabilityStatus, r.RequestedServiceDate, string(r.UrgencyLevel),
		r.LoanerRequired, r.LoanerDetails, r.QuoteRequired,
		r.PickupDate, r.PickupTime, r.POReferenceNumber, r.CustomerIdentCode,
		string(r.Status), r.SubmittedByEmail, r.SubmittedByName, r.SubmittedDate, r.LastModifiedDate,
		r.LanguageCode, r.CustomerNotes,
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

const insertActivity = `INSERT INTO activity_log
	(request_id, activity_type, activity_description, performed_by, performed_date)
	VALUES (?, ?, ?, ?, ?)`

func (r *SQLRequestRepository) Create(ctx context.Context, req *models.ServiceRequest, activity *models.ActivityLog) error {
	query := "INSERT INTO service_requests (" + strings.Join(requestInsertColumns, ", ") +
		") VALUES (" + placeholders(len(requestInsertColumns)) + ")"

	return r.qb.WithTx(ctx, func(tx *database.Tx) error {
		id, err := tx.InsertID(ctx, query, requestArgs(req)...)
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("request code %s: %w", req.RequestCode, ErrDuplicate)
		}
		if err != nil {
			return fmt.Errorf("insert service request: %w", err)
		}
		req.ID = id

		if activity != nil {
			activity.RequestID = id
			if _, err := tx.ExecContext(ctx, insertActivity, id, activity.ActivityType,
				activity.ActivityDescription, activity.PerformedBy, activity.PerformedDate); err != nil {
				return fmt.Errorf("insert activity: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLRequestRepository) Get(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	err := r.qb.GetContext(ctx, &req, "SELECT "+requestSelectColumns+" FROM service_requests WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get service request %d: %w", id, err)
	}
	return &req, nil
}

func (r *SQLRequestRepository) List(ctx context.Context, scope Scope, f models.RequestFilter) ([]models.ServiceRequest, error) {
	out := []models.ServiceRequest{}
	if scope.Empty() {
		return out, nil
	}

	sb := r.qb.NewSelect(requestSelectColumns).From("service_requests")
	switch {
	case scope.All:
	case scope.CustomerNumber != "":
		sb.Where("customer_number = ?", scope.CustomerNumber)
	default:
		sb.WhereIn("territory", scope.Territories)
	}

	if f.Status != "" {
		sb.Where("status = ?", string(f.Status))
	}
	if f.FromDate != nil {
		sb.Where("submitted_date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		// to_date is a calendar day and includes the whole day.
		sb.Where("submitted_date < ?", f.ToDate.Add(24*time.Hour))
	}
	if f.ItemNumber != "" {
		sb.WhereLike(f.ItemNumber, "item_number")
	}
	if f.SerialNumber != "" {
		sb.WhereLike(f.SerialNumber, "serial_number")
	}

	if err := sb.OrderBy("submitted_date DESC", "id DESC").SelectContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("list service requests: %w", err)
	}
	return out, nil
}

func (r *SQLRequestRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, activity *models.ActivityLog) error {
	return r.qb.WithTx(ctx, func(tx *database.Tx) error {
		now := time.Now().UTC()
		if activity != nil && !activity.PerformedDate.IsZero() {
			now = activity.PerformedDate
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE service_requests SET status = ?, last_modified_date = ? WHERE id = ?",
			string(status), now, id)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}

		if activity != nil {
			activity.RequestID = id
			if _, err := tx.ExecContext(ctx, insertActivity, id, activity.ActivityType,
				activity.ActivityDescription, activity.PerformedBy, now); err != nil {
				return fmt.Errorf("insert activity: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLRequestRepository) AddActivity(ctx context.Context, activity *models.ActivityLog) error {
	if activity.PerformedDate.IsZero() {
		activity.PerformedDate = time.Now().UTC()
	}
	if _, err := r.qb.ExecContext(ctx, insertActivity, activity.RequestID, activity.ActivityType,
		activity.ActivityDescription, activity.PerformedBy, activity.PerformedDate); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *SQLRequestRepository) Activity(ctx context.Context, requestID int64) ([]models.ActivityLog, error) {
	out := []models.ActivityLog{}
	if err := r.qb.SelectContext(ctx, &out, `
		SELECT id, request_id, activity_type, activity_description, performed_by, performed_date
		FROM activity_log WHERE request_id = ? ORDER BY performed_date, id`, requestID); err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return out, nil
}
