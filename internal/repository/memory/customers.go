package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/procare-io/srportal/internal/demo"
	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository"
)

type CustomerRepository struct {
	customers []demo.CustomerSeed
	contacts  map[string]models.Customer
}

func NewCustomerRepository(customers []demo.CustomerSeed, contacts []models.Customer) *CustomerRepository {
	r := &CustomerRepository{
		customers: append([]demo.CustomerSeed{}, customers...),
		contacts:  make(map[string]models.Customer, len(contacts)),
	}
	for _, c := range contacts {
		r.contacts[strings.ToLower(c.Email)] = c
	}
	return r
}

func (r *CustomerRepository) Search(_ context.Context, term string, territories []string, limit int) ([]models.CustomerMatch, error) {
	out := []models.CustomerMatch{}
	for _, c := range r.customers {
		if !contains(c.CustomerNumber, term) && !contains(c.CustomerName, term) {
			continue
		}
		if territories != nil && !hasString(territories, c.Territory) {
			continue
		}
		out = append(out, models.CustomerMatch{
			CustomerNumber: c.CustomerNumber,
			CustomerName:   c.CustomerName,
			Territory:      c.Territory,
			CountryCode:    c.CountryCode,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerName < out[j].CustomerName })
	return limitTo(out, limit), nil
}

func (r *CustomerRepository) GetContact(_ context.Context, email string) (*models.Customer, error) {
	c, ok := r.contacts[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, cust := range r.customers {
		if cust.CustomerNumber == c.CustomerNumber {
			c.CustomerName = cust.CustomerName
			c.CountryCode = cust.CountryCode
		}
	}
	return &c, nil
}

func (r *CustomerRepository) Territory(_ context.Context, customerNumber string) (string, error) {
	for _, c := range r.customers {
		if c.CustomerNumber == customerNumber {
			return c.Territory, nil
		}
	}
	return "", repository.ErrNotFound
}

func hasString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
