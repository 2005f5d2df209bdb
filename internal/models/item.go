package models

// Install base statuses that make an item ineligible for service.
var IneligibleInstallBaseStatuses = []string{"DECOMMISSIONED", "SCRAPPED", "SOLD"}

// Item is a serviceable product, optionally a single serialized unit.
type Item struct {
	ItemNumber           string   `json:"item_number" db:"item_number"`
	ItemDescription      string   `json:"item_description" db:"item_description"`
	SerialNumber         string   `json:"serial_number,omitempty" db:"serial_number"`
	LotNumber            string   `json:"lot_number,omitempty" db:"lot_number"`
	ProductFamily        string   `json:"product_family,omitempty" db:"product_family"`
	ProductLine          string   `json:"product_line,omitempty" db:"product_line"`
	IsServiceable        bool     `json:"is_serviceable" db:"is_serviceable"`
	RepairabilityStatus  string   `json:"repairability_status,omitempty" db:"repairability_status"`
	InstallBaseStatus    string   `json:"install_base_status,omitempty" db:"install_base_status"`
	EligibilityCountries []string `json:"eligibility_countries,omitempty" db:"-"`
}

// LookupItem is one row of an item, serial or lot search.
type LookupItem struct {
	ItemNumber      string `json:"item_number" db:"item_number"`
	ItemDescription string `json:"item_description" db:"item_description"`
	SerialNumber    string `json:"serial_number,omitempty" db:"serial_number"`
	LotNumber       string `json:"lot_number,omitempty" db:"lot_number"`
	ProductFamily   string `json:"product_family,omitempty" db:"product_family"`
	InstanceCount   int    `json:"instance_count,omitempty" db:"instance_count"`
}

// CustomerMatch is one row of a customer search.
type CustomerMatch struct {
	CustomerNumber string `json:"customer_number" db:"customer_number"`
	CustomerName   string `json:"customer_name" db:"customer_name"`
	Territory      string `json:"territory,omitempty" db:"territory"`
	CountryCode    string `json:"country_code,omitempty" db:"country_code"`
}

// Customer is a portal contact with account details used for autofill.
type Customer struct {
	Email              string `json:"email" db:"email"`
	CustomerNumber     string `json:"customer_number" db:"customer_number"`
	CustomerName       string `json:"customer_name" db:"customer_name"`
	FirstName          string `json:"first_name,omitempty" db:"first_name"`
	LastName           string `json:"last_name,omitempty" db:"last_name"`
	Phone              string `json:"phone,omitempty" db:"phone"`
	CountryCode        string `json:"country_code" db:"country_code"`
	BillToAddress      string `json:"bill_to_address,omitempty" db:"bill_to_address"`
	ShipToAddress      string `json:"ship_to_address,omitempty" db:"ship_to_address"`
	HasProCareContract bool   `json:"has_procare_contract" db:"has_procare_contract"`
}

// ItemValidationRequest is the body of POST /api/validate/item.
type ItemValidationRequest struct {
	SerialNumber string `json:"serial_number,omitempty"`
	ItemNumber   string `json:"item_number,omitempty"`
	CountryCode  string `json:"country_code" binding:"required"`
}

// ItemValidation is the outcome of an eligibility check.
type ItemValidation struct {
	Valid   bool   `json:"valid"`
	Item    *Item  `json:"item,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// CustomerValidation is the outcome of GET /api/validate/customer.
type CustomerValidation struct {
	Found    bool      `json:"found"`
	Customer *Customer `json:"customer,omitempty"`
	Message  string    `json:"message,omitempty"`
}
