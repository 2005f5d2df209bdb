package memory

import (
	"context"
	"sort"

	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository"
)

// ItemRepository is a read-only install base.
type ItemRepository struct {
	items []models.Item
}

func NewItemRepository(items []models.Item) *ItemRepository {
	return &ItemRepository{items: append([]models.Item{}, items...)}
}

func (r *ItemRepository) SearchSerials(_ context.Context, term string, limit int) ([]models.LookupItem, error) {
	out := []models.LookupItem{}
	for _, it := range r.items {
		if it.SerialNumber != "" && contains(it.SerialNumber, term) {
			out = append(out, models.LookupItem{
				SerialNumber:    it.SerialNumber,
				ItemNumber:      it.ItemNumber,
				ItemDescription: it.ItemDescription,
				LotNumber:       it.LotNumber,
				ProductFamily:   it.ProductFamily,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNumber < out[j].SerialNumber })
	return limitTo(out, limit), nil
}

func (r *ItemRepository) SearchLots(_ context.Context, term string, limit int) ([]models.LookupItem, error) {
	type key struct{ lot, item, desc string }
	counts := make(map[key]int)
	var order []key
	for _, it := range r.items {
		if it.LotNumber == "" || !contains(it.LotNumber, term) {
			continue
		}
		k := key{it.LotNumber, it.ItemNumber, it.ItemDescription}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	out := make([]models.LookupItem, 0, len(order))
	for _, k := range order {
		out = append(out, models.LookupItem{LotNumber: k.lot, ItemNumber: k.item, ItemDescription: k.desc, InstanceCount: counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LotNumber < out[j].LotNumber })
	return limitTo(out, limit), nil
}

func (r *ItemRepository) SearchItems(_ context.Context, term string, limit int) ([]models.LookupItem, error) {
	index := make(map[string]int)
	out := []models.LookupItem{}
	for _, it := range r.items {
		if !contains(it.ItemNumber, term) && !contains(it.ItemDescription, term) {
			continue
		}
		if i, ok := index[it.ItemNumber]; ok {
			out[i].InstanceCount++
			continue
		}
		index[it.ItemNumber] = len(out)
		out = append(out, models.LookupItem{
			ItemNumber:      it.ItemNumber,
			ItemDescription: it.ItemDescription,
			ProductFamily:   it.ProductFamily,
			InstanceCount:   1,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemNumber < out[j].ItemNumber })
	return limitTo(out, limit), nil
}

func (r *ItemRepository) GetBySerial(_ context.Context, serial string) (*models.Item, error) {
	for _, it := range r.items {
		if it.SerialNumber != "" && it.SerialNumber == serial {
			return copyItem(it), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ItemRepository) GetByItemNumber(_ context.Context, itemNumber string) (*models.Item, error) {
	for _, it := range r.items {
		if it.ItemNumber == itemNumber {
			return copyItem(it), nil
		}
	}
	return nil, repository.ErrNotFound
}

func copyItem(it models.Item) *models.Item {
	it.EligibilityCountries = append([]string{}, it.EligibilityCountries...)
	return &it
}
