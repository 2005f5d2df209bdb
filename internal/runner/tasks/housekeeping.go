// Package tasks holds the scheduled jobs the API server registers.
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/procare-io/srportal/internal/runner"
)

// CacheWarmer preloads reference data. LookupService satisfies it.
type CacheWarmer interface {
	WarmCache(ctx context.Context, languages ...string) error
}

// CacheWarmTask refreshes countries, statuses and issue reasons so the
// wizard's first lookups are served from cache.
type CacheWarmTask struct {
	warmer    CacheWarmer
	languages []string
	schedule  string
}

func NewCacheWarmTask(warmer CacheWarmer, schedule string, languages ...string) runner.Task {
	return &CacheWarmTask{warmer: warmer, languages: languages, schedule: schedule}
}

func (t *CacheWarmTask) Name() string           { return "cache-warm" }
func (t *CacheWarmTask) Schedule() string       { return t.schedule }
func (t *CacheWarmTask) Timeout() time.Duration { return 30 * time.Second }

func (t *CacheWarmTask) Run(ctx context.Context) error {
	return t.warmer.WarmCache(ctx, t.languages...)
}

// PruneTask drops idle entries from an in-memory limiter.
type PruneTask struct {
	name     string
	schedule string
	prune    func() int
	logger   *zap.Logger
}

// NewPruneTask wraps prune, which returns how many entries it removed.
// LoginRateLimiter.Cleanup and RateLimiter.Prune both fit.
func NewPruneTask(name, schedule string, prune func() int, logger *zap.Logger) runner.Task {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PruneTask{name: name, schedule: schedule, prune: prune, logger: logger}
}

func (t *PruneTask) Name() string           { return t.name }
func (t *PruneTask) Schedule() string       { return t.schedule }
func (t *PruneTask) Timeout() time.Duration { return 10 * time.Second }

func (t *PruneTask) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n := t.prune(); n > 0 {
		t.logger.Debug("pruned idle entries", zap.String("task", t.name), zap.Int("removed", n))
	}
	return nil
}
