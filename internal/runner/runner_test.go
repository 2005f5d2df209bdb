package runner_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procare-io/srportal/internal/runner"
	"github.com/procare-io/srportal/internal/runner/tasks"
)

type fakeWarmer struct {
	calls     atomic.Int32
	languages []string
	err       error
}

func (f *fakeWarmer) WarmCache(_ context.Context, languages ...string) error {
	f.calls.Add(1)
	f.languages = languages
	return f.err
}

func TestRunNow(t *testing.T) {
	warmer := &fakeWarmer{}
	var pruned atomic.Int32

	registry := runner.NewTaskRegistry()
	registry.Register(tasks.NewCacheWarmTask(warmer, "*/15 * * * *", "en", "de"))
	registry.Register(tasks.NewPruneTask("login-limiter-cleanup", "@every 1m", func() int {
		pruned.Add(1)
		return 2
	}, nil))

	r := runner.NewRunner(registry, nil)
	ctx := context.Background()

	require.NoError(t, r.RunNow(ctx, "cache-warm"))
	assert.Equal(t, int32(1), warmer.calls.Load())
	assert.Equal(t, []string{"en", "de"}, warmer.languages)

	require.NoError(t, r.RunNow(ctx, "login-limiter-cleanup"))
	assert.Equal(t, int32(1), pruned.Load())

	assert.Error(t, r.RunNow(ctx, "missing"))

	warmer.err = errors.New("redis down")
	assert.EqualError(t, r.RunNow(ctx, "cache-warm"), "redis down")
}

func TestStartRejectsBadSchedule(t *testing.T) {
	registry := runner.NewTaskRegistry()
	registry.Register(tasks.NewCacheWarmTask(&fakeWarmer{}, "not a schedule"))

	r := runner.NewRunner(registry, nil)
	err := r.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache-warm")
}

func TestStartAndStop(t *testing.T) {
	registry := runner.NewTaskRegistry()
	registry.Register(tasks.NewCacheWarmTask(&fakeWarmer{}, ""))
	registry.Register(tasks.NewPruneTask("rate-limiter-prune", "@every 1h", func() int { return 0 }, nil))

	r := runner.NewRunner(registry, nil)
	require.NoError(t, r.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(ctx)
	assert.NoError(t, ctx.Err())
}

func TestTaskRegistry(t *testing.T) {
	registry := runner.NewTaskRegistry()
	registry.Register(tasks.NewPruneTask("rate-limiter-prune", "@every 1h", func() int { return 0 }, nil))
	registry.Register(tasks.NewCacheWarmTask(&fakeWarmer{}, "@hourly"))
	registry.Register(tasks.NewPruneTask("login-limiter-cleanup", "@every 1m", func() int { return 0 }, nil))

	assert.Equal(t, []string{"cache-warm", "login-limiter-cleanup", "rate-limiter-prune"}, registry.Names())

	task, ok := registry.Lookup("cache-warm")
	require.True(t, ok)
	assert.Equal(t, "@hourly", task.Schedule())

	_, ok = registry.Lookup("missing")
	assert.False(t, ok)
}
