package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/procare-io/srportal/internal/auth"
	"github.com/procare-io/srportal/internal/cache"
	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository"
)

const (
	// MinSearchLength is the shortest term the search endpoints accept.
	MinSearchLength = 2
	searchLimit     = 10

	defaultLanguage   = "en"
	defaultPickupDays = 5
	maxPickupDays     = 30
)

// LookupService answers search-as-you-type queries and serves the
// reference data the wizard needs.
type LookupService struct {
	items     repository.ItemRepository
	customers repository.CustomerRepository
	reference repository.ReferenceRepository
	rbac      *auth.RBAC
	cache     cache.Cache
	ttl       time.Duration
	markdown  goldmark.Markdown
	calendars *Calendars
	logger    *zap.Logger
	now       func() time.Time
}

// NewLookupService builds the service. A nil cache disables caching.
func NewLookupService(store *repository.Store, rbac *auth.RBAC, c cache.Cache, ttl time.Duration, logger *zap.Logger) *LookupService {
	if rbac == nil {
		rbac = auth.NewRBAC()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LookupService{
		items:     store.Items,
		customers: store.Customers,
		reference: store.Reference,
		rbac:      rbac,
		cache:     c,
		ttl:       ttl,
		markdown:  goldmark.New(),
		calendars: NewCalendars(),
		logger:    logger,
		now:       time.Now,
	}
}

func searchTerm(q string) (string, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinSearchLength {
		return "", Invalid("Search term must be at least %d characters", MinSearchLength)
	}
	return q, nil
}

func (s *LookupService) SearchSerials(ctx context.Context, q string) ([]models.LookupItem, error) {
	term, err := searchTerm(q)
	if err != nil {
		return nil, err
	}
	return s.items.SearchSerials(ctx, term, searchLimit)
}

func (s *LookupService) SearchLots(ctx context.Context, q string) ([]models.LookupItem, error) {
	term, err := searchTerm(q)
	if err != nil {
		return nil, err
	}
	return s.items.SearchLots(ctx, term, searchLimit)
}

func (s *LookupService) SearchItems(ctx context.Context, q string) ([]models.LookupItem, error) {
	term, err := searchTerm(q)
	if err != nil {
		return nil, err
	}
	return s.items.SearchItems(ctx, term, searchLimit)
}

// SearchCustomers is staff only. A SalesTech sees customers of its own
// territories, an Admin sees everyone.
func (s *LookupService) SearchCustomers(ctx context.Context, claims *auth.Claims, q string) ([]models.CustomerMatch, error) {
	if claims == nil || !s.rbac.HasPermission(claims.Role, auth.PermissionCustomerLookup) {
		return nil, Forbidden("Insufficient permissions")
	}
	term, err := searchTerm(q)
	if err != nil {
		return nil, err
	}
	var territories []string
	if claims.Role != models.RoleAdmin {
		territories = append([]string{}, claims.Territories...)
	}
	return s.customers.Search(ctx, term, territories, searchLimit)
}

// IssueReasons returns the reason taxonomy for lang, falling back to
// English when the language has no reasons of its own.
func (s *LookupService) IssueReasons(ctx context.Context, lang string) (*models.ReasonTaxonomy, error) {
	lang = normalizeLanguage(lang)
	taxonomy, err := s.reasons(ctx, lang)
	if err != nil {
		return nil, err
	}
	if taxonomy.Len() == 0 && lang != defaultLanguage {
		return s.reasons(ctx, defaultLanguage)
	}
	return taxonomy, nil
}

func (s *LookupService) reasons(ctx context.Context, lang string) (*models.ReasonTaxonomy, error) {
	return cache.Remember(ctx, s.cache, "issue_reasons:"+lang, s.ttl, func(ctx context.Context) (*models.ReasonTaxonomy, error) {
		rows, err := s.reference.IssueReasons(ctx, lang)
		if err != nil {
			return nil, fmt.Errorf("load issue reasons: %w", err)
		}
		return models.NewReasonTaxonomy(rows), nil
	})
}

func (s *LookupService) Countries(ctx context.Context) ([]models.Country, error) {
	return cache.Remember(ctx, s.cache, "countries", s.ttl, func(ctx context.Context) ([]models.Country, error) {
		countries, err := s.reference.Countries(ctx)
		if err != nil {
			return nil, fmt.Errorf("load countries: %w", err)
		}
		return countries, nil
	})
}

func (s *LookupService) Languages(ctx context.Context, countryCode string) ([]models.Language, error) {
	return s.reference.Languages(ctx, strings.ToUpper(strings.TrimSpace(countryCode)))
}

// LegalDocuments returns the notices for a country in lang, or in English
// when none exist for lang. With renderHTML set, ContentHTML carries the
// markdown body rendered to HTML.
func (s *LookupService) LegalDocuments(ctx context.Context, countryCode, lang string, renderHTML bool) ([]models.LegalDocument, error) {
	country := strings.ToUpper(strings.TrimSpace(countryCode))
	lang = normalizeLanguage(lang)

	docs, err := s.reference.LegalDocuments(ctx, country, lang)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 && lang != defaultLanguage {
		if docs, err = s.reference.LegalDocuments(ctx, country, defaultLanguage); err != nil {
			return nil, err
		}
	}
	if !renderHTML {
		return docs, nil
	}
	for i := range docs {
		var buf bytes.Buffer
		if err := s.markdown.Convert([]byte(docs[i].DocumentContent), &buf); err != nil {
			s.logger.Warn("render legal document", zap.String("type", docs[i].DocumentType), zap.Error(err))
			continue
		}
		docs[i].ContentHTML = buf.String()
	}
	return docs, nil
}

func (s *LookupService) RepairabilityStatuses(ctx context.Context) ([]models.RepairabilityStatus, error) {
	return cache.Remember(ctx, s.cache, "repairability_statuses", s.ttl, func(ctx context.Context) ([]models.RepairabilityStatus, error) {
		return s.reference.RepairabilityStatuses(ctx)
	})
}

// PickupWindow lists the next days business days in the country, starting
// tomorrow.
func (s *LookupService) PickupWindow(countryCode string, days int) (*models.PickupWindow, error) {
	country := strings.ToUpper(strings.TrimSpace(countryCode))
	if len(country) != 2 {
		return nil, Invalid("country_code must be a two-letter code")
	}
	if days <= 0 {
		days = defaultPickupDays
	}
	if days > maxPickupDays {
		return nil, Invalid("days must not exceed %d", maxPickupDays)
	}

	dates := s.calendars.NextWorkdays(country, s.now(), days)
	out := &models.PickupWindow{CountryCode: country, Dates: make([]string, len(dates))}
	for i, d := range dates {
		out.Dates[i] = d.Format("2006-01-02")
	}
	return out, nil
}

// WarmCache loads the cached reference data for each language.
func (s *LookupService) WarmCache(ctx context.Context, languages ...string) error {
	if _, err := s.Countries(ctx); err != nil {
		return err
	}
	if _, err := s.RepairabilityStatuses(ctx); err != nil {
		return err
	}
	for _, lang := range languages {
		if _, err := s.reasons(ctx, normalizeLanguage(lang)); err != nil {
			return err
		}
	}
	return nil
}

func normalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if lang == "" {
		return defaultLanguage
	}
	return lang
}
