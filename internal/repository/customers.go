package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/procare-io/srportal/internal/database"
	"github.com/procare-io/srportal/internal/models"
)

type SQLCustomerRepository struct {
	qb *database.QueryBuilder
}

func NewSQLCustomerRepository(qb *database.QueryBuilder) *SQLCustomerRepository {
	return &SQLCustomerRepository{qb: qb}
}

func (r *SQLCustomerRepository) Search(ctx context.Context, term string, territories []string, limit int) ([]models.CustomerMatch, error) {
	out := []models.CustomerMatch{}
	if territories != nil && len(territories) == 0 {
		return out, nil
	}

	sb := r.qb.NewSelect("customer_number", "customer_name", "territory", "country_code").
		From("customers").
		WhereLike(term, "customer_number", "customer_name")
	if territories != nil {
		sb.WhereIn("territory", territories)
	}
	if err := sb.OrderBy("customer_name").Limit(limit).SelectContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return out, nil
}

func (r *SQLCustomerRepository) GetContact(ctx context.Context, email string) (*models.Customer, error) {
	var c models.Customer
	err := r.qb.GetContext(ctx, &c, `
		SELECT cc.email, cc.customer_number, c.customer_name, cc.first_name, cc.last_name,
		       cc.phone, c.country_code, cc.bill_to_address, cc.ship_to_address, cc.has_procare_contract
		FROM customer_contacts cc
		JOIN customers c ON c.customer_number = cc.customer_number
		WHERE LOWER(cc.email) = LOWER(?)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer contact: %w", err)
	}
	return &c, nil
}

func (r *SQLCustomerRepository) Territory(ctx context.Context, customerNumber string) (string, error) {
	var territory string
	err := r.qb.GetContext(ctx, &territory,
		"SELECT territory FROM customers WHERE customer_number = ?", customerNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get customer territory: %w", err)
	}
	return territory, nil
}
