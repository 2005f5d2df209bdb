// Package requestcode issues the unique, human-readable code stored on each
// service request (SR-1001, SR-US-20261019-00001).
package requestcode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	FormatSequential  = "sequential"
	FormatCountryDate = "country-date"
)

// Generator defines contract for request code generators.
type Generator interface {
	Name() string
	Next(ctx context.Context, countryCode string) (string, error)
}

// CounterStore increments named counters atomically.
type CounterStore interface {
	// Next returns start for a new key, then start+1, start+2, ...
	Next(ctx context.Context, key string, start int64) (int64, error)
}

// Sequential issues PREFIX-N from a single global counter.
type Sequential struct {
	prefix string
	start  int64
	store  CounterStore
}

func NewSequential(prefix string, start int64, store CounterStore) *Sequential {
	if start < 1 {
		start = 1
	}
	return &Sequential{prefix: prefix, start: start, store: store}
}

func (g *Sequential) Name() string { return FormatSequential }

func (g *Sequential) Next(ctx context.Context, _ string) (string, error) {
	n, err := g.store.Next(ctx, g.prefix, g.start)
	if err != nil {
		return "", fmt.Errorf("request code counter: %w", err)
	}
	return fmt.Sprintf("%s-%d", g.prefix, n), nil
}

// CountryDate issues PREFIX-CC-YYYYMMDD-NNNNN with a daily counter per country.
type CountryDate struct {
	prefix string
	store  CounterStore
	clock  func() time.Time
}

func NewCountryDate(prefix string, store CounterStore, clock func() time.Time) *CountryDate {
	if clock == nil {
		clock = time.Now
	}
	return &CountryDate{prefix: prefix, store: store, clock: clock}
}

func (g *CountryDate) Name() string { return FormatCountryDate }

func (g *CountryDate) Next(ctx context.Context, countryCode string) (string, error) {
	cc := strings.ToUpper(strings.TrimSpace(countryCode))
	if len(cc) != 2 {
		return "", fmt.Errorf("invalid country code %q", countryCode)
	}
	day := g.clock().UTC().Format("20060102")
	key := fmt.Sprintf("%s-%s-%s", g.prefix, cc, day)

	n, err := g.store.Next(ctx, key, 1)
	if err != nil {
		return "", fmt.Errorf("request code counter: %w", err)
	}
	return fmt.Sprintf("%s-%05d", key, n), nil
}

// Resolve maps the configured format name to a Generator.
func Resolve(format, prefix string, start int64, store CounterStore) (Generator, error) {
	if prefix == "" {
		prefix = "SR"
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatSequential, "":
		return NewSequential(prefix, start, store), nil
	case FormatCountryDate:
		return NewCountryDate(prefix, store, nil), nil
	default:
		return nil, errors.New("unknown request code format: " + format)
	}
}
