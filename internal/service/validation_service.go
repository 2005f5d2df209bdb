package service

import (
	"context"
	"errors"
	"strings"

	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository"
)

// excludedInstallBase lists install-base statuses that cannot be serviced.
var excludedInstallBase = map[string]bool{
	"DECOMMISSIONED": true,
	"SCRAPPED":       true,
	"SOLD":           true,
}

// ValidationService checks item eligibility and looks up customers for
// wizard autofill.
type ValidationService struct {
	items     repository.ItemRepository
	customers repository.CustomerRepository
}

func NewValidationService(items repository.ItemRepository, customers repository.CustomerRepository) *ValidationService {
	return &ValidationService{items: items, customers: customers}
}

// ValidateItem resolves the item by serial number first, then item number,
// and checks serviceability, country eligibility and install-base status in
// that order.
func (s *ValidationService) ValidateItem(ctx context.Context, req models.ItemValidationRequest) (*models.ItemValidation, error) {
	serial := strings.TrimSpace(req.SerialNumber)
	itemNumber := strings.TrimSpace(req.ItemNumber)
	country := strings.ToUpper(strings.TrimSpace(req.CountryCode))

	var (
		item *models.Item
		err  error
	)
	switch {
	case serial != "":
		item, err = s.items.GetBySerial(ctx, serial)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Serial number not found in system")
		}
	case itemNumber != "":
		item, err = s.items.GetByItemNumber(ctx, itemNumber)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Item number not found in system")
		}
	default:
		return nil, Invalid("Either serial_number or item_number is required")
	}
	if err != nil {
		return nil, err
	}

	if !item.IsServiceable {
		return nil, Forbidden("Item is not serviceable")
	}
	if !containsFold(item.EligibilityCountries, country) {
		return nil, Forbidden("Item is not eligible for service in %s", country)
	}
	if excludedInstallBase[strings.ToUpper(item.InstallBaseStatus)] {
		return nil, Forbidden("Item with status '%s' is not eligible for service", item.InstallBaseStatus)
	}

	return &models.ItemValidation{
		Valid:   true,
		Item:    item,
		Message: "Item is eligible for service request",
	}, nil
}

// ValidateCustomer finds the customer contact registered under email. An
// unknown email is not an error: the wizard falls back to manual entry.
func (s *ValidationService) ValidateCustomer(ctx context.Context, email, countryCode string) (*models.CustomerValidation, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, Invalid("email is required")
	}
	country := strings.ToUpper(strings.TrimSpace(countryCode))

	customer, err := s.customers.GetContact(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.CustomerValidation{
			Found:   false,
			Message: "Customer not found in system. Please enter details manually.",
		}, nil
	}
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(customer.CountryCode, country) {
		return nil, Forbidden("Customer is registered in %s, not %s", customer.CountryCode, country)
	}
	return &models.CustomerValidation{
		Found:    true,
		Customer: customer,
		Message:  "Customer found. Form will be auto-filled.",
	}, nil
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
