package repository

import (
	"context"
	"fmt"

	"github.com/procare-io/srportal/internal/database"
	"github.com/procare-io/srportal/internal/models"
)

// SQLReferenceRepository serves the country, language, legal and reason tables.
type SQLReferenceRepository struct {
	qb *database.QueryBuilder
}

func NewSQLReferenceRepository(qb *database.QueryBuilder) *SQLReferenceRepository {
	return &SQLReferenceRepository{qb: qb}
}

func (r *SQLReferenceRepository) Countries(ctx context.Context) ([]models.Country, error) {
	countries := []models.Country{}
	if err := r.qb.SelectContext(ctx, &countries,
		"SELECT country_code, country_name, default_language FROM countries WHERE is_active = ? ORDER BY country_name",
		true); err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}

	var links []struct {
		CountryCode  string `db:"country_code"`
		LanguageCode string `db:"language_code"`
	}
	if err := r.qb.SelectContext(ctx, &links,
		"SELECT country_code, language_code FROM country_languages ORDER BY country_code, language_code"); err != nil {
		return nil, fmt.Errorf("list country languages: %w", err)
	}
	byCountry := make(map[string][]string)
	for _, l := range links {
		byCountry[l.CountryCode] = append(byCountry[l.CountryCode], l.LanguageCode)
	}
	for i := range countries {
		countries[i].SupportedLanguages = byCountry[countries[i].CountryCode]
		if countries[i].SupportedLanguages == nil {
			countries[i].SupportedLanguages = []string{}
		}
	}
	return countries, nil
}

func (r *SQLReferenceRepository) Languages(ctx context.Context, countryCode string) ([]models.Language, error) {
	out := []models.Language{}
	if err := r.qb.SelectContext(ctx, &out, `
		SELECT l.language_code, l.language_name
		FROM languages l
		JOIN country_languages cl ON cl.language_code = l.language_code
		WHERE cl.country_code = ?
		ORDER BY l.language_name`, countryCode); err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	return out, nil
}

func (r *SQLReferenceRepository) LegalDocuments(ctx context.Context, countryCode, languageCode string) ([]models.LegalDocument, error) {
	out := []models.LegalDocument{}
	if err := r.qb.SelectContext(ctx, &out, `
		SELECT document_type, document_url, document_content, version, effective_date
		FROM legal_documents
		WHERE country_code = ? AND language_code = ? AND is_active = ?
		ORDER BY document_type`, countryCode, languageCode, true); err != nil {
		return nil, fmt.Errorf("list legal documents: %w", err)
	}
	return out, nil
}

func (r *SQLReferenceRepository) IssueReasons(ctx context.Context, languageCode string) ([]models.IssueReason, error) {
	out := []models.IssueReason{}
	if err := r.qb.SelectContext(ctx, &out, `
		SELECT main_reason, sub_reason, display_order
		FROM issue_reasons
		WHERE language_code = ? AND is_active = ?
		ORDER BY display_order, main_reason, sub_reason`, languageCode, true); err != nil {
		return nil, fmt.Errorf("list issue reasons: %w", err)
	}
	return out, nil
}

func (r *SQLReferenceRepository) RepairabilityStatuses(ctx context.Context) ([]models.RepairabilityStatus, error) {
	out := []models.RepairabilityStatus{}
	if err := r.qb.SelectContext(ctx, &out,
		"SELECT status_code, status_name, description, repair_location FROM repairability_statuses ORDER BY status_name"); err != nil {
		return nil, fmt.Errorf("list repairability statuses: %w", err)
	}
	return out, nil
}
