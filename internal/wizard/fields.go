package wizard

// Field names a draft attribute. Names match the JSON keys of the
// submission payload so flow files read like the API contract.
type Field string

const (
	FieldRequestType           Field = "request_type"
	FieldCountryCode           Field = "country_code"
	FieldLanguageCode          Field = "language_code"
	FieldCustomerNumber        Field = "customer_number"
	FieldCustomerName          Field = "customer_name"
	FieldTerritory             Field = "territory"
	FieldSiteAddress           Field = "site_address"
	FieldSerialNumber          Field = "serial_number"
	FieldItemNumber            Field = "item_number"
	FieldLotNumber             Field = "lot_number"
	FieldItemDescription       Field = "item_description"
	FieldProductFamily         Field = "product_family"
	FieldMainReason            Field = "main_reason"
	FieldSubReason             Field = "sub_reason"
	FieldIssueDescription      Field = "issue_description"
	FieldSafetyPatientInvolved Field = "safety_patient_involved"
	FieldContactName           Field = "contact_name"
	FieldContactEmail          Field = "contact_email"
	FieldContactPhone          Field = "contact_phone"
	FieldPreferredContact      Field = "preferred_contact_method"
	FieldUrgencyLevel          Field = "urgency_level"
	FieldLoanerRequired        Field = "loaner_required"
	FieldLoanerDetails         Field = "loaner_details"
	FieldQuoteRequired         Field = "quote_required"
	FieldRequestedServiceDate  Field = "requested_service_date"
	FieldPickupDate            Field = "pickup_date"
	FieldPickupTime            Field = "pickup_time"
	FieldPOReferenceNumber     Field = "po_reference_number"
	FieldCustomerIdentCode     Field = "customer_ident_code"
	FieldCustomerNotes         Field = "customer_notes"
	FieldAttachments           Field = "attachments"
)

// FieldKind tells a front end which editor to render.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextArea FieldKind = "textarea"
	KindChoice   FieldKind = "choice"
	KindToggle   FieldKind = "toggle"
	KindSearch   FieldKind = "search"
	KindDate     FieldKind = "date"
	KindFiles    FieldKind = "files"
)

// Option sources for choice and search fields.
const (
	SourceRequestTypes = "request_types"
	SourceMainReasons  = "main_reasons"
	SourceSubReasons   = "sub_reasons"
	SourceUrgency      = "urgency"
	SourceContact      = "contact_methods"
	SourceCountries    = "countries"
	SourceItems        = "items"
	SourceSerials      = "serials"
	SourceCustomers    = "customers"
)

// ContactMethods are the choices of the preferred contact field.
var ContactMethods = []string{"Email", "Phone"}
