package models

import (
	"time"
)

// RequestType selects how the equipment on a request is identified.
type RequestType string

const (
	RequestTypeSerial  RequestType = "Serial"
	RequestTypeItem    RequestType = "Item"
	RequestTypeGeneral RequestType = "General"
)

func (t RequestType) Valid() bool {
	switch t {
	case RequestTypeSerial, RequestTypeItem, RequestTypeGeneral:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyNormal   Urgency = "Normal"
	UrgencyUrgent   Urgency = "Urgent"
	UrgencyCritical Urgency = "Critical"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyNormal, UrgencyUrgent, UrgencyCritical:
		return true
	}
	return false
}

type RequestStatus string

const (
	StatusSubmitted  RequestStatus = "Submitted"
	StatusInProgress RequestStatus = "In Progress"
	StatusResolved   RequestStatus = "Resolved"
	StatusClosed     RequestStatus = "Closed"
	StatusCancelled  RequestStatus = "Cancelled"
)

// RequestStatuses lists the statuses a request may be moved to, in workflow order.
var RequestStatuses = []RequestStatus{
	StatusSubmitted,
	StatusInProgress,
	StatusResolved,
	StatusClosed,
	StatusCancelled,
}

func (s RequestStatus) Valid() bool {
	for _, known := range RequestStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ServiceRequest is a submitted intake record.
type ServiceRequest struct {
	ID                    int64         `json:"id" db:"id"`
	RequestCode           string        `json:"request_code" db:"request_code"`
	RequestType           RequestType   `json:"request_type" db:"request_type"`
	CustomerNumber        string        `json:"customer_number,omitempty" db:"customer_number"`
	CustomerName          string        `json:"customer_name,omitempty" db:"customer_name"`
	ContactEmail          string        `json:"contact_email" db:"contact_email"`
	ContactPhone          string        `json:"contact_phone" db:"contact_phone"`
	ContactName           string        `json:"contact_name" db:"contact_name"`
	PreferredContact      string        `json:"preferred_contact_method,omitempty" db:"preferred_contact_method"`
	CountryCode           string        `json:"country_code" db:"country_code"`
	Territory             string        `json:"territory,omitempty" db:"territory"`
	SiteAddress           string        `json:"site_address,omitempty" db:"site_address"`
	SerialNumber          string        `json:"serial_number,omitempty" db:"serial_number"`
	ItemNumber            string        `json:"item_number,omitempty" db:"item_number"`
	LotNumber             string        `json:"lot_number,omitempty" db:"lot_number"`
	ItemDescription       string        `json:"item_description,omitempty" db:"item_description"`
	ProductFamily         string        `json:"product_family,omitempty" db:"product_family"`
	MainReason            string        `json:"main_reason" db:"main_reason"`
	SubReason             string        `json:"sub_reason,omitempty" db:"sub_reason"`
	IssueDescription      string        `json:"issue_description,omitempty" db:"issue_description"`
	SafetyPatientInvolved bool          `json:"safety_patient_involved" db:"safety_patient_involved"`
	RepairabilityStatus   string        `json:"repairability_status,omitempty" db:"repairability_status"`
	RequestedServiceDate  *time.Time    `json:"requested_service_date,omitempty" db:"requested_service_date"`
	UrgencyLevel          Urgency       `json:"urgency_level" db:"urgency_level"`
	LoanerRequired        bool          `json:"loaner_required" db:"loaner_required"`
	LoanerDetails         string        `json:"loaner_details,omitempty" db:"loaner_details"`
	QuoteRequired         bool          `json:"quote_required" db:"quote_required"`
	PickupDate            string        `json:"pickup_date,omitempty" db:"pickup_date"`
	PickupTime            string        `json:"pickup_time,omitempty" db:"pickup_time"`
	POReferenceNumber     string        `json:"po_reference_number,omitempty" db:"po_reference_number"`
	CustomerIdentCode     string        `json:"customer_ident_code,omitempty" db:"customer_ident_code"`
	Status                RequestStatus `json:"status" db:"status"`
	SubmittedByEmail      string        `json:"submitted_by_email" db:"submitted_by_email"`
	SubmittedByName       string        `json:"submitted_by_name" db:"submitted_by_name"`
	SubmittedDate         time.Time     `json:"submitted_date" db:"submitted_date"`
	LastModifiedDate      time.Time     `json:"last_modified_date" db:"last_modified_date"`
	LanguageCode          string        `json:"language_code" db:"language_code"`
	CustomerNotes         string        `json:"customer_notes,omitempty" db:"customer_notes"`
	Attachments           []Attachment  `json:"attachments,omitempty" db:"-"`
}

// IntakeSubmission is the body of POST /api/intake/submit.
type IntakeSubmission struct {
	RequestType           RequestType `json:"request_type" binding:"required"`
	CountryCode           string      `json:"country_code" binding:"required"`
	ContactEmail          string      `json:"contact_email" binding:"required,email"`
	ContactName           string      `json:"contact_name" binding:"required"`
	ContactPhone          string      `json:"contact_phone" binding:"required"`
	MainReason            string      `json:"main_reason" binding:"required"`
	PreferredContact      string      `json:"preferred_contact_method,omitempty"`
	CustomerNumber        string      `json:"customer_number,omitempty"`
	CustomerName          string      `json:"customer_name,omitempty"`
	SiteAddress           string      `json:"site_address,omitempty"`
	SerialNumber          string      `json:"serial_number,omitempty"`
	ItemNumber            string      `json:"item_number,omitempty"`
	LotNumber             string      `json:"lot_number,omitempty"`
	ItemDescription       string      `json:"item_description,omitempty"`
	ProductFamily         string      `json:"product_family,omitempty"`
	SubReason             string      `json:"sub_reason,omitempty"`
	IssueDescription      string      `json:"issue_description,omitempty"`
	SafetyPatientInvolved bool        `json:"safety_patient_involved"`
	RequestedServiceDate  *time.Time  `json:"requested_service_date,omitempty"`
	UrgencyLevel          Urgency     `json:"urgency_level,omitempty"`
	LoanerRequired        bool        `json:"loaner_required"`
	LoanerDetails         string      `json:"loaner_details,omitempty"`
	QuoteRequired         bool        `json:"quote_required"`
	PickupDate            string      `json:"pickup_date,omitempty"`
	PickupTime            string      `json:"pickup_time,omitempty"`
	POReferenceNumber     string      `json:"po_reference_number,omitempty"`
	CustomerIdentCode     string      `json:"customer_ident_code,omitempty"`
	LanguageCode          string      `json:"language_code,omitempty"`
	CustomerNotes         string      `json:"customer_notes,omitempty"`
}

// SubmitResponse is returned once a request has been stored.
type SubmitResponse struct {
	Success     bool   `json:"success"`
	RequestID   int64  `json:"request_id"`
	RequestCode string `json:"request_code"`
	Message     string `json:"message"`
	NextSteps   string `json:"next_steps"`
}

// StatusUpdate is the body of PATCH /api/requests/:id/status.
type StatusUpdate struct {
	Status RequestStatus `json:"status" form:"new_status"`
}

type StatusUpdateResponse struct {
	Message   string        `json:"message"`
	NewStatus RequestStatus `json:"new_status"`
}

// RequestFilter narrows GET /api/requests.
type RequestFilter struct {
	Status       RequestStatus `form:"status"`
	FromDate     *time.Time    `form:"from_date" time_format:"2006-01-02"`
	ToDate       *time.Time    `form:"to_date" time_format:"2006-01-02"`
	ItemNumber   string        `form:"item_number"`
	SerialNumber string        `form:"serial_number"`
}

// ActivityLog records what happened to a request and who did it.
type ActivityLog struct {
	ID                  int64     `json:"id" db:"id"`
	RequestID           int64     `json:"request_id" db:"request_id"`
	ActivityType        string    `json:"activity_type" db:"activity_type"`
	ActivityDescription string    `json:"activity_description" db:"activity_description"`
	PerformedBy         string    `json:"performed_by" db:"performed_by"`
	PerformedDate       time.Time `json:"performed_date" db:"performed_date"`
}

const (
	ActivityCreated       = "Created"
	ActivityStatusChanged = "StatusChanged"
	ActivityAttachment    = "AttachmentAdded"
)
