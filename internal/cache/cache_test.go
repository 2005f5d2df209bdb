package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procare-io/srportal/internal/config"
	"github.com/procare-io/srportal/internal/models"
)

func TestLocalCache(t *testing.T) {
	ctx := context.Background()
	metrics := NewMetrics(prometheus.NewRegistry())
	lc := NewLocalCache(2, time.Minute, metrics)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	lc.now = func() time.Time { return now }

	t.Run("round trip copies values", func(t *testing.T) {
		in := []models.Country{{CountryCode: "US", SupportedLanguages: []string{"en"}}}
		require.NoError(t, lc.SetObject(ctx, "countries", in, 0))
		in[0].SupportedLanguages[0] = "xx"

		var out []models.Country
		ok, err := lc.GetObject(ctx, "countries", &out)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"en"}, out[0].SupportedLanguages)
	})

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, lc.SetObject(ctx, "short", "v", time.Second))
		now = now.Add(2 * time.Second)
		var s string
		ok, err := lc.GetObject(ctx, "short", &s)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		require.NoError(t, lc.Delete(ctx, "countries"))
		require.NoError(t, lc.SetObject(ctx, "a", 1, 0))
		now = now.Add(time.Second)
		require.NoError(t, lc.SetObject(ctx, "b", 2, 0))
		now = now.Add(time.Second)
		var v int
		_, _ = lc.GetObject(ctx, "a", &v)
		now = now.Add(time.Second)
		require.NoError(t, lc.SetObject(ctx, "c", 3, 0))

		assert.Equal(t, 2, lc.Len())
		ok, _ := lc.GetObject(ctx, "b", &v)
		assert.False(t, ok, "b was the least recently used")
		ok, _ = lc.GetObject(ctx, "a", &v)
		assert.True(t, ok)
	})

	assert.Greater(t, testutil.ToFloat64(metrics.requests.WithLabelValues("local", "hit")), 0.0)
	assert.Greater(t, testutil.ToFloat64(metrics.requests.WithLabelValues("local", "miss")), 0.0)
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	lc := NewLocalCache(10, time.Minute, nil)

	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"en", "de"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Remember(ctx, lc, "langs", 0, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"en", "de"}, got)
	}
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err := Remember(ctx, lc, "other", 0, func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	got, err := Remember[int](ctx, nil, "nocache", 0, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestRedisCache(t *testing.T) {
	host := os.Getenv("SRPORTAL_TEST_REDIS_HOST")
	if host == "" {
		t.Skip("SRPORTAL_TEST_REDIS_HOST not set")
	}
	ctx := context.Background()

	cfg := config.RedisConfig{Host: host, Port: 6379}
	client, err := NewRedisClient(ctx, cfg)
	require.NoError(t, err)

	rc := NewRedisCache(client, "srportal-test:", time.Minute, NewMetrics(nil))
	defer rc.Close()

	require.NoError(t, rc.SetObject(ctx, "k", map[string]int{"a": 1}, 0))
	var out map[string]int
	ok, err := rc.GetObject(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, out["a"])

	require.NoError(t, rc.Delete(ctx, "k"))
	ok, err = rc.GetObject(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}
