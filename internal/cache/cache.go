// Package cache stores JSON-encoded reference data in Redis or in process.
package cache

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache is implemented by RedisCache and LocalCache.
type Cache interface {
	// GetObject decodes the cached value into dest and reports whether the
	// key was present.
	GetObject(ctx context.Context, key string, dest interface{}) (bool, error)
	SetObject(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Metrics counts cache lookups by backend and result.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics registers the cache collectors with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "srportal",
			Name:      "cache_requests_total",
			Help:      "Cache lookups by backend and result (hit, miss, error).",
		}, []string{"backend", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "srportal",
			Name:      "cache_operation_duration_seconds",
			Help:      "Cache operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.latency)
	}
	return m
}

func (m *Metrics) observe(backend, result string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(backend, result).Inc()
}

func (m *Metrics) timer(backend, op string) *prometheus.Timer {
	if m == nil {
		return prometheus.NewTimer(prometheus.ObserverFunc(func(float64) {}))
	}
	return prometheus.NewTimer(m.latency.WithLabelValues(backend, op))
}

// Remember returns the cached value for key or calls load, caching its
// result for ttl. Cache failures fall through to load.
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if c != nil {
		if ok, err := c.GetObject(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if c != nil {
		_ = c.SetObject(ctx, key, value, ttl)
	}
	return value, nil
}
