package memory

import (
	"context"
	"sort"

	"github.com/procare-io/srportal/internal/demo"
	"github.com/procare-io/srportal/internal/models"
)

// ReferenceRepository serves the static reference tables of a dataset.
type ReferenceRepository struct {
	data *demo.Dataset
}

func NewReferenceRepository(data *demo.Dataset) *ReferenceRepository {
	return &ReferenceRepository{data: data}
}

func (r *ReferenceRepository) Countries(context.Context) ([]models.Country, error) {
	out := make([]models.Country, len(r.data.Countries))
	for i, c := range r.data.Countries {
		c.SupportedLanguages = append([]string{}, c.SupportedLanguages...)
		out[i] = c
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CountryName < out[j].CountryName })
	return out, nil
}

func (r *ReferenceRepository) Languages(_ context.Context, countryCode string) ([]models.Language, error) {
	supported := map[string]bool{}
	for _, c := range r.data.Countries {
		if c.CountryCode == countryCode {
			for _, l := range c.SupportedLanguages {
				supported[l] = true
			}
		}
	}
	out := []models.Language{}
	for _, l := range r.data.Languages {
		if supported[l.LanguageCode] {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LanguageName < out[j].LanguageName })
	return out, nil
}

func (r *ReferenceRepository) LegalDocuments(_ context.Context, countryCode, languageCode string) ([]models.LegalDocument, error) {
	out := []models.LegalDocument{}
	for _, d := range r.data.LegalDocuments {
		if d.CountryCode == countryCode && d.LanguageCode == languageCode {
			out = append(out, d.LegalDocument)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentType < out[j].DocumentType })
	return out, nil
}

func (r *ReferenceRepository) IssueReasons(_ context.Context, languageCode string) ([]models.IssueReason, error) {
	out := []models.IssueReason{}
	for _, reason := range r.data.Reasons {
		if reason.LanguageCode == languageCode {
			out = append(out, reason.IssueReason)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		if out[i].MainReason != out[j].MainReason {
			return out[i].MainReason < out[j].MainReason
		}
		return out[i].SubReason < out[j].SubReason
	})
	return out, nil
}

func (r *ReferenceRepository) RepairabilityStatuses(context.Context) ([]models.RepairabilityStatus, error) {
	out := append([]models.RepairabilityStatus{}, r.data.RepairabilityStatuses...)
	sort.Slice(out, func(i, j int) bool { return out[i].StatusName < out[j].StatusName })
	return out, nil
}
