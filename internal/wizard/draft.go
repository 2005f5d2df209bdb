package wizard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/procare-io/srportal/internal/models"
)

// DateLayout is the format of every date field on the draft.
const DateLayout = "2006-01-02"

// Draft is the in-progress request assembled across the wizard steps.
// It is never persisted; a successful submission hands it to the API.
type Draft struct {
	RequestType  models.RequestType
	CountryCode  string
	LanguageCode string

	CustomerNumber string
	CustomerName   string
	Territory      string
	SiteAddress    string

	SerialNumber    string
	ItemNumber      string
	LotNumber       string
	ItemDescription string
	ProductFamily   string

	MainReason            string
	SubReason             string
	IssueDescription      string
	SafetyPatientInvolved bool

	ContactName      string
	ContactEmail     string
	ContactPhone     string
	PreferredContact string

	UrgencyLevel         models.Urgency
	LoanerRequired       bool
	LoanerDetails        string
	QuoteRequired        bool
	RequestedServiceDate string
	PickupDate           string
	PickupTime           string
	POReferenceNumber    string
	CustomerIdentCode    string
	CustomerNotes        string

	// Attachments are local file paths uploaded once the request exists.
	Attachments []string
}

// NewDraft returns the empty draft a wizard starts from, prefilled with the
// actor's contact and account details.
func NewDraft(actor Actor) Draft {
	d := Draft{
		RequestType:  models.RequestTypeSerial,
		CountryCode:  actor.CountryCode,
		LanguageCode: actor.LanguageCode,
		ContactName:  actor.Name,
		ContactEmail: actor.Email,
		UrgencyLevel: models.UrgencyNormal,
	}
	if d.LanguageCode == "" {
		d.LanguageCode = "en"
	}
	if actor.Role == models.RoleCustomer {
		d.CustomerNumber = actor.CustomerNumber
		d.CustomerName = actor.CustomerName
	}
	return d
}

// Clone returns a deep copy.
func (d Draft) Clone() Draft {
	if d.Attachments != nil {
		d.Attachments = append([]string(nil), d.Attachments...)
	}
	return d
}

// Get returns the textual value of f.
func (d *Draft) Get(f Field) (string, error) {
	if p := d.stringField(f); p != nil {
		return *p, nil
	}
	if p := d.boolField(f); p != nil {
		return strconv.FormatBool(*p), nil
	}
	switch f {
	case FieldRequestType:
		return string(d.RequestType), nil
	case FieldUrgencyLevel:
		return string(d.UrgencyLevel), nil
	case FieldAttachments:
		return strings.Join(d.Attachments, ","), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownField, f)
}

// set assigns a plain field. Fields with cross-field effects are routed
// through the Wizard instead.
func (d *Draft) set(f Field, value string) error {
	if p := d.stringField(f); p != nil {
		*p = value
		return nil
	}
	if p := d.boolField(f); p != nil {
		if value == "" {
			*p = false
			return nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		*p = b
		return nil
	}
	switch f {
	case FieldUrgencyLevel:
		u := models.Urgency(value)
		if !u.Valid() {
			return fmt.Errorf("%w: urgency %q", ErrInvalidValue, value)
		}
		d.UrgencyLevel = u
		return nil
	case FieldAttachments:
		d.Attachments = nil
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				d.Attachments = append(d.Attachments, p)
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownField, f)
}

func (d *Draft) stringField(f Field) *string {
	switch f {
	case FieldCountryCode:
		return &d.CountryCode
	case FieldLanguageCode:
		return &d.LanguageCode
	case FieldCustomerNumber:
		return &d.CustomerNumber
	case FieldCustomerName:
		return &d.CustomerName
	case FieldTerritory:
		return &d.Territory
	case FieldSiteAddress:
		return &d.SiteAddress
	case FieldSerialNumber:
		return &d.SerialNumber
	case FieldItemNumber:
		return &d.ItemNumber
	case FieldLotNumber:
		return &d.LotNumber
	case FieldItemDescription:
		return &d.ItemDescription
	case FieldProductFamily:
		return &d.ProductFamily
	case FieldMainReason:
		return &d.MainReason
	case FieldSubReason:
		return &d.SubReason
	case FieldIssueDescription:
		return &d.IssueDescription
	case FieldContactName:
		return &d.ContactName
	case FieldContactEmail:
		return &d.ContactEmail
	case FieldContactPhone:
		return &d.ContactPhone
	case FieldPreferredContact:
		return &d.PreferredContact
	case FieldLoanerDetails:
		return &d.LoanerDetails
	case FieldRequestedServiceDate:
		return &d.RequestedServiceDate
	case FieldPickupDate:
		return &d.PickupDate
	case FieldPickupTime:
		return &d.PickupTime
	case FieldPOReferenceNumber:
		return &d.POReferenceNumber
	case FieldCustomerIdentCode:
		return &d.CustomerIdentCode
	case FieldCustomerNotes:
		return &d.CustomerNotes
	}
	return nil
}

func (d *Draft) boolField(f Field) *bool {
	switch f {
	case FieldSafetyPatientInvolved:
		return &d.SafetyPatientInvolved
	case FieldLoanerRequired:
		return &d.LoanerRequired
	case FieldQuoteRequired:
		return &d.QuoteRequired
	}
	return nil
}

// clearIdentity empties the fields that describe which item is affected.
func (d *Draft) clearIdentity() {
	d.SerialNumber = ""
	d.ItemNumber = ""
	d.LotNumber = ""
	d.ItemDescription = ""
	d.ProductFamily = ""
}

// identityType is the request type the payload is sent as. Flows without a
// request type selector derive it from what was entered.
func (d *Draft) identityType() models.RequestType {
	if d.RequestType.Valid() {
		return d.RequestType
	}
	if strings.TrimSpace(d.SerialNumber) != "" {
		return models.RequestTypeSerial
	}
	if strings.TrimSpace(d.ItemNumber) != "" {
		return models.RequestTypeItem
	}
	return models.RequestTypeGeneral
}

// Submission builds the API payload. Only the identity fields of the active
// request type are carried.
func (d *Draft) Submission() (models.IntakeSubmission, error) {
	t := strings.TrimSpace
	s := models.IntakeSubmission{
		RequestType:           d.identityType(),
		CountryCode:           t(d.CountryCode),
		ContactEmail:          t(d.ContactEmail),
		ContactName:           t(d.ContactName),
		ContactPhone:          t(d.ContactPhone),
		PreferredContact:      t(d.PreferredContact),
		MainReason:            t(d.MainReason),
		SubReason:             t(d.SubReason),
		CustomerNumber:        t(d.CustomerNumber),
		CustomerName:          t(d.CustomerName),
		SiteAddress:           t(d.SiteAddress),
		IssueDescription:      t(d.IssueDescription),
		UrgencyLevel:          d.UrgencyLevel,
		LoanerRequired:        d.LoanerRequired,
		QuoteRequired:         d.QuoteRequired,
		PickupDate:            t(d.PickupDate),
		PickupTime:            t(d.PickupTime),
		POReferenceNumber:     t(d.POReferenceNumber),
		CustomerIdentCode:     t(d.CustomerIdentCode),
		LanguageCode:          t(d.LanguageCode),
		CustomerNotes:         t(d.CustomerNotes),
		SafetyPatientInvolved: d.SafetyPatientInvolved,
	}
	if d.LoanerRequired {
		s.LoanerDetails = t(d.LoanerDetails)
	}
	if s.UrgencyLevel == "" {
		s.UrgencyLevel = models.UrgencyNormal
	}
	if v := t(d.RequestedServiceDate); v != "" {
		when, err := time.Parse(DateLayout, v)
		if err != nil {
			return s, fmt.Errorf("%w: requested service date %q", ErrInvalidValue, v)
		}
		s.RequestedServiceDate = &when
	}

	switch s.RequestType {
	case models.RequestTypeSerial:
		s.SerialNumber = t(d.SerialNumber)
		s.ItemNumber = t(d.ItemNumber)
		s.LotNumber = t(d.LotNumber)
		s.ItemDescription = t(d.ItemDescription)
		s.ProductFamily = t(d.ProductFamily)
	case models.RequestTypeItem:
		s.ItemNumber = t(d.ItemNumber)
		s.LotNumber = t(d.LotNumber)
		s.ItemDescription = t(d.ItemDescription)
		s.ProductFamily = t(d.ProductFamily)
	case models.RequestTypeGeneral:
		s.ItemDescription = t(d.ItemDescription)
	}
	return s, nil
}
