package tui

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/wizard"
	"github.com/procare-io/srportal/sdk/go/client"
)

// Backend is everything the wizard screen asks of the API.
type Backend interface {
	wizard.Submitter
	wizard.ItemValidator
	Countries(ctx context.Context) ([]models.Country, error)
	IssueReasons(ctx context.Context, languageCode string) (*models.ReasonTaxonomy, error)
	SearchItems(ctx context.Context, term string) ([]models.LookupItem, error)
	SearchSerials(ctx context.Context, term string) ([]models.LookupItem, error)
	SearchCustomers(ctx context.Context, term string) ([]models.CustomerMatch, error)
	Upload(ctx context.Context, requestID int64, paths ...string) (*models.UploadResult, error)
}

type clientBackend struct {
	c *client.Client
}

// NewClientBackend adapts the SDK client.
func NewClientBackend(c *client.Client) Backend {
	return &clientBackend{c: c}
}

func (b *clientBackend) SubmitRequest(ctx context.Context, req models.IntakeSubmission) (*models.SubmitResponse, error) {
	return b.c.Intake.SubmitRequest(ctx, req)
}

func (b *clientBackend) ValidateItem(ctx context.Context, req models.ItemValidationRequest) (*models.ItemValidation, error) {
	return b.c.Intake.ValidateItem(ctx, req)
}

func (b *clientBackend) Countries(ctx context.Context) ([]models.Country, error) {
	return b.c.Reference.Countries(ctx)
}

func (b *clientBackend) IssueReasons(ctx context.Context, languageCode string) (*models.ReasonTaxonomy, error) {
	return b.c.Reference.IssueReasons(ctx, languageCode)
}

func (b *clientBackend) SearchItems(ctx context.Context, term string) ([]models.LookupItem, error) {
	return b.c.Lookups.Items(ctx, term)
}

func (b *clientBackend) SearchSerials(ctx context.Context, term string) ([]models.LookupItem, error) {
	return b.c.Lookups.Serials(ctx, term)
}

func (b *clientBackend) SearchCustomers(ctx context.Context, term string) ([]models.CustomerMatch, error) {
	return b.c.Lookups.Customers(ctx, term)
}

func (b *clientBackend) Upload(ctx context.Context, requestID int64, paths ...string) (*models.UploadResult, error) {
	return b.c.Files.Upload(ctx, requestID, paths...)
}

// Reference is the data the wizard needs before the first step renders.
type Reference struct {
	Countries []models.Country
	Reasons   *models.ReasonTaxonomy
}

// LoadReference fetches countries and the reason taxonomy concurrently.
func LoadReference(ctx context.Context, b Backend, languageCode string) (*Reference, error) {
	ref := &Reference{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		countries, err := b.Countries(gctx)
		if err != nil {
			return fmt.Errorf("load countries: %w", err)
		}
		ref.Countries = countries
		return nil
	})
	g.Go(func() error {
		reasons, err := b.IssueReasons(gctx, languageCode)
		if err != nil {
			return fmt.Errorf("load issue reasons: %w", err)
		}
		ref.Reasons = reasons
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ref, nil
}
