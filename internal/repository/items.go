package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/procare-io/srportal/internal/database"
	"github.com/procare-io/srportal/internal/models"
)

// SQLItemRepository searches the install base in the items table.
type SQLItemRepository struct {
	qb *database.QueryBuilder
}

func NewSQLItemRepository(qb *database.QueryBuilder) *SQLItemRepository {
	return &SQLItemRepository{qb: qb}
}

func (r *SQLItemRepository) SearchSerials(ctx context.Context, term string, limit int) ([]models.LookupItem, error) {
	out := []models.LookupItem{}
	err := r.qb.NewSelect("serial_number", "item_number", "item_description", "lot_number", "product_family").
		From("items").
		WhereLike(term, "serial_number").
		OrderBy("serial_number").
		Limit(limit).
		SelectContext(ctx, &out)
	if err != nil {
		return nil, fmt.Errorf("search serials: %w", err)
	}
	return out, nil
}

func (r *SQLItemRepository) SearchLots(ctx context.Context, term string, limit int) ([]models.LookupItem, error) {
	out := []models.LookupItem{}
	err := r.qb.NewSelect("lot_number", "item_number", "item_description", "COUNT(*) AS instance_count").
		From("items").
		Where("lot_number <> ''").
		WhereLike(term, "lot_number").
		GroupBy("lot_number", "item_number", "item_description").
		OrderBy("lot_number").
		Limit(limit).
		SelectContext(ctx, &out)
	if err != nil {
		return nil, fmt.Errorf("search lots: %w", err)
	}
	return out, nil
}

func (r *SQLItemRepository) SearchItems(ctx context.Context, term string, limit int) ([]models.LookupItem, error) {
	out := []models.LookupItem{}
	err := r.qb.NewSelect("item_number", "item_description", "MIN(product_family) AS product_family", "COUNT(*) AS instance_count").
		From("items").
		WhereLike(term, "item_number", "item_description").
		GroupBy("item_number", "item_description").
		OrderBy("item_number").
		Limit(limit).
		SelectContext(ctx, &out)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return out, nil
}

const itemColumns = `item_number, item_description, COALESCE(serial_number, '') AS serial_number,
	lot_number, product_family, product_line, is_serviceable, repairability_status, install_base_status`

func (r *SQLItemRepository) GetBySerial(ctx context.Context, serial string) (*models.Item, error) {
	return r.getItem(ctx, "SELECT "+itemColumns+" FROM items WHERE serial_number = ?", serial)
}

// GetByItemNumber returns the first catalogue row for the item number.
func (r *SQLItemRepository) GetByItemNumber(ctx context.Context, itemNumber string) (*models.Item, error) {
	return r.getItem(ctx, "SELECT "+itemColumns+" FROM items WHERE item_number = ? ORDER BY id LIMIT 1", itemNumber)
}

func (r *SQLItemRepository) getItem(ctx context.Context, query string, key string) (*models.Item, error) {
	var item models.Item
	err := r.qb.GetContext(ctx, &item, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", key, err)
	}

	countries := []string{}
	if err := r.qb.SelectContext(ctx, &countries,
		"SELECT country_code FROM item_eligibility WHERE item_number = ? ORDER BY country_code", item.ItemNumber); err != nil {
		return nil, fmt.Errorf("get item eligibility: %w", err)
	}
	item.EligibilityCountries = countries
	return &item, nil
}
