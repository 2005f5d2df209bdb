package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/language"

	"github.com/procare-io/srportal/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(router, http.MethodGet, "/", nil)
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))

	w = serve(router, http.MethodGet, "/", map[string]string{"X-Request-ID": "abc-123"})
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestLoggerAndRecovery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	router := gin.New()
	router.Use(RequestID(), Logger(logger, "/health"), Recovery(logger))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { AbortWithError(c, http.StatusNotFound, "Request not found") })
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	serve(router, http.MethodGet, "/health", nil)
	assert.Equal(t, 0, logs.Len(), "skipped path")

	w := serve(router, http.MethodGet, "/missing", nil)
	assert.JSONEq(t, `{"detail":"Request not found","error":"Request not found"}`, w.Body.String())
	entries := logs.FilterMessage("http request").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zap.WarnLevel, entries[0].Level)
		assert.Equal(t, int64(404), entries[0].ContextMap()["status"])
	}

	w = serve(router, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	router := gin.New()
	router.Use(m.Handler())
	router.GET("/api/requests/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, http.MethodGet, "/api/requests/1", nil)
	serve(router, http.MethodGet, "/api/requests/2", nil)
	serve(router, http.MethodGet, "/nope", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/requests/:id", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitingConfig{RequestsPerMinute: 60, Burst: 2, ExcludePaths: []string{"/health"}})
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	router := gin.New()
	router.Use(rl.Handler())
	router.GET("/api/countries", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/countries", nil).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/countries", nil).Code)
	w := serve(router, http.MethodGet, "/api/countries", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", nil).Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/countries", nil).Code)

	now = now.Add(time.Hour)
	assert.Equal(t, 1, rl.Prune())
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS(config.CORSConfig{
		Origins: []string{"http://localhost:3000"},
		Methods: []string{"GET", "POST"},
		Headers: []string{"Authorization"},
	}))
	router.GET("/api/countries", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodOptions, "/api/countries", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))

	w = serve(router, http.MethodGet, "/api/countries", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(router, http.MethodGet, "/api/countries", map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(router, http.MethodOptions, "/api/countries", map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMatchLanguage(t *testing.T) {
	matcher := language.NewMatcher([]language.Tag{language.English, language.Spanish, language.German, language.French})

	tests := []struct {
		name  string
		prefs []string
		want  string
	}{
		{"empty", nil, "en"},
		{"query", []string{"de"}, "de"},
		{"regional", []string{"fr-CA"}, "fr"},
		{"accept header weights", []string{"", "it;q=0.9, es;q=0.8"}, "es"},
		{"unsupported", []string{"ja"}, "en"},
		{"garbage", []string{"!!"}, "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchLanguage(matcher, tt.prefs...))
		})
	}

	router := gin.New()
	router.Use(Language("en", "de"))
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetLanguage(c)) })
	w := serve(router, http.MethodGet, "/?language_code=de", nil)
	assert.Equal(t, "de", w.Body.String())
	assert.Equal(t, "de", w.Header().Get("Content-Language"))
}
