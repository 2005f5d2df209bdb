// Package types exposes the wire types of the service request API to SDK
// consumers.
package types

import "github.com/procare-io/srportal/internal/models"

type (
	Profile              = models.Profile
	LoginRequest         = models.LoginRequest
	LoginResponse        = models.LoginResponse
	Country              = models.Country
	Language             = models.Language
	LegalDocument        = models.LegalDocument
	LookupItem           = models.LookupItem
	CustomerMatch        = models.CustomerMatch
	ReasonTaxonomy       = models.ReasonTaxonomy
	ItemValidation       = models.ItemValidation
	ItemValidationReq    = models.ItemValidationRequest
	CustomerValidation   = models.CustomerValidation
	IntakeSubmission     = models.IntakeSubmission
	SubmitResponse       = models.SubmitResponse
	ServiceRequest       = models.ServiceRequest
	RequestFilter        = models.RequestFilter
	RequestStatus        = models.RequestStatus
	StatusUpdateResponse = models.StatusUpdateResponse
	RepairabilityStatus  = models.RepairabilityStatus
	PickupWindow         = models.PickupWindow
	Attachment           = models.Attachment
	UploadResult         = models.UploadResult
	DownloadLink         = models.DownloadLink
	ActivityLog          = models.ActivityLog
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version"`
}
