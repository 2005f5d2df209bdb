package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/procare-io/srportal/sdk/go/types"
)

// AuthService handles authentication operations
type AuthService struct {
	client *Client
}

// Login exchanges credentials for a bearer token. The caller decides where
// the token is kept; see SetAuth.
func (s *AuthService) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	var result types.LoginResponse
	err := s.client.Post(ctx, "/api/login", types.LoginRequest{Email: email, Password: password}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Me returns the profile of the current token.
func (s *AuthService) Me(ctx context.Context) (*types.Profile, error) {
	var result types.Profile
	if err := s.client.Get(ctx, "/api/auth/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReferenceService reads the static catalogues shown by the wizard.
type ReferenceService struct {
	client *Client
}

func (s *ReferenceService) Countries(ctx context.Context) ([]types.Country, error) {
	var result []types.Country
	err := s.client.Get(ctx, "/api/countries", nil, &result)
	return result, err
}

func (s *ReferenceService) Languages(ctx context.Context, countryCode string) ([]types.Language, error) {
	var result []types.Language
	err := s.client.Get(ctx, fmt.Sprintf("/api/countries/%s/languages", url.PathEscape(countryCode)), nil, &result)
	return result, err
}

// Legal returns the legal notices for a country in the given language.
func (s *ReferenceService) Legal(ctx context.Context, countryCode, languageCode string) ([]types.LegalDocument, error) {
	var result []types.LegalDocument
	query := map[string]string{}
	if languageCode != "" {
		query["language_code"] = languageCode
	}
	err := s.client.Get(ctx, fmt.Sprintf("/api/countries/%s/legal", url.PathEscape(countryCode)), query, &result)
	return result, err
}

// IssueReasons returns the reason taxonomy in display order.
func (s *ReferenceService) IssueReasons(ctx context.Context, languageCode string) (*types.ReasonTaxonomy, error) {
	var result types.ReasonTaxonomy
	query := map[string]string{}
	if languageCode != "" {
		query["language_code"] = languageCode
	}
	if err := s.client.Get(ctx, "/api/intake/issue-reasons", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *ReferenceService) RepairabilityStatuses(ctx context.Context) ([]types.RepairabilityStatus, error) {
	var result []types.RepairabilityStatus
	err := s.client.Get(ctx, "/api/intake/repairability-statuses", nil, &result)
	return result, err
}

// PickupWindow returns the next business days a courier can collect from.
func (s *ReferenceService) PickupWindow(ctx context.Context, countryCode string) (*types.PickupWindow, error) {
	var result types.PickupWindow
	err := s.client.Get(ctx, "/api/intake/pickup-window", map[string]string{"country_code": countryCode}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// LookupsService backs the search-as-you-type fields.
type LookupsService struct {
	client *Client
}

func (s *LookupsService) search(ctx context.Context, kind, term string) ([]types.LookupItem, error) {
	var result []types.LookupItem
	err := s.client.Get(ctx, "/api/lookups/"+kind, map[string]string{"q": term}, &result)
	return result, err
}

// Items matches item numbers and descriptions.
func (s *LookupsService) Items(ctx context.Context, term string) ([]types.LookupItem, error) {
	return s.search(ctx, "item", term)
}

func (s *LookupsService) Serials(ctx context.Context, term string) ([]types.LookupItem, error) {
	return s.search(ctx, "serial", term)
}

func (s *LookupsService) Lots(ctx context.Context, term string) ([]types.LookupItem, error) {
	return s.search(ctx, "lot", term)
}

// Customers matches customer numbers and names within the caller's scope.
func (s *LookupsService) Customers(ctx context.Context, term string) ([]types.CustomerMatch, error) {
	var result []types.CustomerMatch
	err := s.client.Get(ctx, "/api/lookups/customers", map[string]string{"q": term}, &result)
	return result, err
}

// IntakeService submits requests and runs the pre-submit checks.
type IntakeService struct {
	client *Client
}

// SubmitRequest stores a new service request.
func (s *IntakeService) SubmitRequest(ctx context.Context, submission types.IntakeSubmission) (*types.SubmitResponse, error) {
	var result types.SubmitResponse
	if err := s.client.Post(ctx, "/api/intake/submit", submission, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateItem checks an item's eligibility for service in a country.
func (s *IntakeService) ValidateItem(ctx context.Context, req types.ItemValidationReq) (*types.ItemValidation, error) {
	var result types.ItemValidation
	if err := s.client.Post(ctx, "/api/validate/item", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateCustomer looks up a contact by email for autofill.
func (s *IntakeService) ValidateCustomer(ctx context.Context, email, countryCode string) (*types.CustomerValidation, error) {
	var result types.CustomerValidation
	query := map[string]string{"email": email, "country_code": countryCode}
	if err := s.client.Get(ctx, "/api/validate/customer", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
