package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/procare-io/srportal/internal/auth"
	"github.com/procare-io/srportal/internal/config"
	"github.com/procare-io/srportal/internal/demo"
	"github.com/procare-io/srportal/internal/middleware"
	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository/memory"
	"github.com/procare-io/srportal/internal/requestcode"
	"github.com/procare-io/srportal/internal/service"
	"github.com/procare-io/srportal/internal/storage"
)

const testBaseURL = "http://portal.test"

type testServer struct {
	router *gin.Engine
	t      *testing.T
	tokens map[string]string
}

func newTestServer(t *testing.T, dbCheck HealthCheck) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Defaults()
	require.NoError(t, err)
	cfg.RateLimiting.Enabled = false

	store, err := memory.NewStore(demo.Default(), bcrypt.MinCost)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	rbac := auth.NewRBAC()
	jwt := auth.NewJWTManager("api-test-secret", "srportal", time.Hour)
	limiter := auth.NewLoginRateLimiter(3, time.Minute, time.Minute, time.Hour)
	metrics := service.NewMetrics(reg)
	backend := storage.NewMemoryBackend()
	attachments := service.NewAttachmentService(store, backend, jwt, rbac, service.AttachmentOptions{
		BaseURL: testBaseURL,
		Metrics: metrics,
	})

	router := NewRouter(Deps{
		Config:      cfg,
		Auth:        auth.NewAuthService(store.Users, jwt, limiter, nil),
		RBAC:        rbac,
		Intake:      service.NewIntakeService(store, requestcode.NewSequential("SR", 1001, requestcode.NewMemoryStore()), nil, metrics, nil),
		Validation:  service.NewValidationService(store.Items, store.Customers),
		Requests:    service.NewRequestService(store, rbac, nil, metrics, nil),
		Lookups:     service.NewLookupService(store, rbac, nil, 0, nil),
		Attachments: attachments,
		HTTPMetrics: middleware.NewHTTPMetrics(reg),
		Gatherer:    reg,
		DBCheck:     dbCheck,
		BlobCheck:   backend.HealthCheck,
		Languages:   []string{"en", "de", "fr", "es"},
	})
	return &testServer{router: router, t: t, tokens: map[string]string{}}
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) json(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	if body == nil {
		return s.do(method, path, token, nil, "")
	}
	raw, err := json.Marshal(body)
	require.NoError(s.t, err)
	return s.do(method, path, token, bytes.NewReader(raw), "application/json")
}

// login signs in a demo account and caches its token.
func (s *testServer) login(email string) string {
	if tok, ok := s.tokens[email]; ok {
		return tok
	}
	w := s.json(http.MethodPost, "/api/login", "", models.LoginRequest{Email: email, Password: demo.Password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp models.LoginResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	s.tokens[email] = resp.AccessToken
	return resp.AccessToken
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[map[string]string](t, w)
	assert.Equal(t, body["detail"], body["error"])
	return body["detail"]
}

const (
	customerEmail = "customer@stmarys.example"
	germanEmail   = "einkauf@klinikum.example"
	techEmail     = "tech@procare.example"
	adminEmail    = "admin@procare.example"
)

func (s *testServer) submit(email string, sub models.IntakeSubmission) models.SubmitResponse {
	w := s.json(http.MethodPost, "/api/intake/submit", s.login(email), sub)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return decode[models.SubmitResponse](s.t, w)
}

func serialSubmission(serial, country string) models.IntakeSubmission {
	return models.IntakeSubmission{
		RequestType:  models.RequestTypeSerial,
		CountryCode:  country,
		ContactEmail: "jane@stmarys.example",
		ContactName:  "Jane Miller",
		ContactPhone: "+1 555 0100",
		MainReason:   "Equipment Malfunction",
		SerialNumber: serial,
	}
}

func TestRootAndHealth(t *testing.T) {
	s := newTestServer(t, func(context.Context) error { return errors.New("connection refused") })

	w := s.do(http.MethodGet, "/", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	root := decode[map[string]string](t, w)
	assert.Equal(t, "ok", root["status"])
	assert.Equal(t, "Service Request Portal API", root["service"])

	w = s.do(http.MethodGet, "/health", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	want := map[string]string{
		"status":       "degraded",
		"api":          "ok",
		"database":     "error: connection refused",
		"blob_storage": "ok",
		"version":      "1.0.0",
	}
	if diff := cmp.Diff(want, decode[map[string]string](t, w)); diff != "" {
		t.Errorf("health mismatch (-want +got):\n%s", diff)
	}
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(http.MethodGet, "/api/nope", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", detail(t, w))
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{"malformed", `{"email":`, http.StatusBadRequest, "Invalid request format"},
		{"missing password", `{"email":"customer@stmarys.example"}`, http.StatusBadRequest, "Invalid request format"},
		{"wrong password", `{"email":"customer@stmarys.example","password":"nope"}`, http.StatusUnauthorized, "Invalid email or password"},
		{"unknown user", `{"email":"ghost@example.com","password":"demo1234"}`, http.StatusUnauthorized, "Invalid email or password"},
		{"inactive", `{"email":"former@stmarys.example","password":"demo1234"}`, http.StatusForbidden, "Account is inactive. Please contact support."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/login", "", strings.NewReader(tt.body), "application/json")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, detail(t, w))
		})
	}

	t.Run("success", func(t *testing.T) {
		w := s.json(http.MethodPost, "/api/login", "", models.LoginRequest{Email: " Tech@ProCare.example ", Password: demo.Password})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[models.LoginResponse](t, w)
		assert.Equal(t, "bearer", resp.TokenType)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, models.RoleSalesTech, resp.Role)
		assert.Equal(t, []string{"US-EAST", "US-WEST"}, resp.Territories)
	})

	t.Run("locks out after repeated failures", func(t *testing.T) {
		bad := models.LoginRequest{Email: adminEmail, Password: "wrong"}
		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusUnauthorized, s.json(http.MethodPost, "/api/login", "", bad).Code)
		}
		w := s.json(http.MethodPost, "/api/login", "", models.LoginRequest{Email: adminEmail, Password: demo.Password})
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Contains(t, detail(t, w), "Too many failed login attempts")
	})
}

func TestMe(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/api/auth/me", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/auth/me", "garbage", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Could not validate credentials", detail(t, w))

	w = s.do(http.MethodGet, "/api/auth/me", s.login(customerEmail), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[models.Profile](t, w)
	assert.Equal(t, customerEmail, p.Email)
	assert.Equal(t, "CUST-001", p.CustomerNumber)
}

func TestIntakeSubmit(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.submit(customerEmail, serialSubmission("SN-X200-0001", "US"))
	assert.True(t, resp.Success)
	assert.Equal(t, "SR-1001", resp.RequestCode)

	t.Run("binding errors", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/intake/submit", s.login(customerEmail), strings.NewReader(`{"request_type":"Serial"}`), "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.True(t, strings.HasPrefix(detail(t, w), "Invalid request: "))
	})

	t.Run("service validation", func(t *testing.T) {
		w := s.json(http.MethodPost, "/api/intake/submit", s.login(customerEmail), serialSubmission("", "US"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Serial number is required for Serial request type", detail(t, w))
	})

	t.Run("language comes from the request", func(t *testing.T) {
		raw, err := json.Marshal(serialSubmission("SN-X200-0002", "DE"))
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/intake/submit", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
		req.Header.Set("Authorization", "Bearer "+s.login(germanEmail))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "de", w.Header().Get("Content-Language"))

		got := decode[models.SubmitResponse](t, w)
		detailResp := s.do(http.MethodGet, "/api/requests/"+itoa(got.RequestID), s.login(germanEmail), nil, "")
		require.Equal(t, http.StatusOK, detailResp.Code)
		assert.Equal(t, "de", decode[models.ServiceRequest](t, detailResp).LanguageCode)
	})
}

func TestValidateEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(customerEmail)

	tests := []struct {
		name   string
		body   models.ItemValidationRequest
		status int
		msg    string
	}{
		{"eligible", models.ItemValidationRequest{SerialNumber: "SN-X200-0001", CountryCode: "US"}, http.StatusOK, "Item is eligible for service request"},
		{"unknown serial", models.ItemValidationRequest{SerialNumber: "SN-NOPE", CountryCode: "US"}, http.StatusNotFound, "Serial number not found in system"},
		{"decommissioned", models.ItemValidationRequest{SerialNumber: "SN-X200-0099", CountryCode: "US"}, http.StatusForbidden, "Item with status 'DECOMMISSIONED' is not eligible for service"},
		{"no identity", models.ItemValidationRequest{CountryCode: "US"}, http.StatusBadRequest, "Either serial_number or item_number is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.json(http.MethodPost, "/api/validate/item", token, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusOK {
				got := decode[models.ItemValidation](t, w)
				assert.True(t, got.Valid)
				assert.Equal(t, tt.msg, got.Message)
				return
			}
			assert.Equal(t, tt.msg, detail(t, w))
		})
	}

	w := s.do(http.MethodGet, "/api/validate/customer?email=nobody@example.com&country_code=US", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.CustomerValidation](t, w).Found)
}

func TestRequestEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	own := s.submit(customerEmail, serialSubmission("SN-X200-0001", "US"))
	german := s.submit(germanEmail, serialSubmission("SN-X200-0002", "DE"))

	t.Run("list is scoped", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/requests", s.login(customerEmail), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[[]models.ServiceRequest](t, w)
		require.Len(t, list, 1)
		assert.Equal(t, own.RequestCode, list[0].RequestCode)

		w = s.do(http.MethodGet, "/api/requests?status=Submitted", s.login(adminEmail), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]models.ServiceRequest](t, w), 2)
	})

	t.Run("list rejects bad filters", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/requests?from_date=yesterday", s.login(adminEmail), nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(http.MethodGet, "/api/requests?status=Lost", s.login(adminEmail), nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid status filter: Lost", detail(t, w))
	})

	t.Run("detail outside scope", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/requests/"+itoa(german.RequestID), s.login(customerEmail), nil, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Access denied", detail(t, w))

		w = s.do(http.MethodGet, "/api/requests/abc", s.login(customerEmail), nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(http.MethodGet, "/api/requests/9999", s.login(adminEmail), nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("status update", func(t *testing.T) {
		path := "/api/requests/" + itoa(own.RequestID) + "/status"

		w := s.json(http.MethodPatch, path, s.login(customerEmail), models.StatusUpdate{Status: models.StatusClosed})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Insufficient permissions", detail(t, w))

		w = s.json(http.MethodPatch, path, s.login(techEmail), models.StatusUpdate{Status: "Archived"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(http.MethodPatch, path, s.login(techEmail), nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "status is required", detail(t, w))

		w = s.json(http.MethodPatch, path, s.login(techEmail), models.StatusUpdate{Status: models.StatusInProgress})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, models.StatusUpdateResponse{Message: "Status updated", NewStatus: models.StatusInProgress},
			decode[models.StatusUpdateResponse](t, w))

		w = s.do(http.MethodPatch, path+"?new_status=Resolved", s.login(adminEmail), nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = s.do(http.MethodGet, "/api/requests/"+itoa(own.RequestID)+"/activity", s.login(customerEmail), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		log := decode[[]models.ActivityLog](t, w)
		require.Len(t, log, 3)
		assert.Equal(t, "Status changed from In Progress to Resolved", log[2].ActivityDescription)
	})

	t.Run("export", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/requests/export.xlsx", s.login(customerEmail), nil, "")
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(http.MethodGet, "/api/requests/export.xlsx", s.login(techEmail), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"service-requests-")
		assert.Equal(t, "1", w.Header().Get("X-Total-Count"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip container")
	})
}

func TestLookupEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(customerEmail)

	w := s.do(http.MethodGet, "/api/lookups/serial?q=S", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/lookups/serial?q=SN-X200", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.LookupItem](t, w), 3)

	w = s.do(http.MethodGet, "/api/lookups/customers?q=cust", token, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/lookups/customers?q=cust", s.login(techEmail), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.CustomerMatch](t, w), 3)

	w = s.do(http.MethodGet, "/api/intake/issue-reasons?language_code=de", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	reasons := decode[models.ReasonTaxonomy](t, w)
	assert.Equal(t, "Gerätestörung", reasons.MainReasons()[0])

	w = s.do(http.MethodGet, "/api/lookups/reasons", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Equipment Malfunction", decode[models.ReasonTaxonomy](t, w).MainReasons()[0])

	w = s.do(http.MethodGet, "/api/countries", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Country](t, w), 4)

	w = s.do(http.MethodGet, "/api/countries/DE/languages", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Language](t, w), 2)

	w = s.do(http.MethodGet, "/api/countries/US/legal?language_code=en&format=html", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	docs := decode[[]models.LegalDocument](t, w)
	require.NotEmpty(t, docs)
	assert.NotEmpty(t, docs[0].ContentHTML)

	w = s.do(http.MethodGet, "/api/intake/repairability-statuses", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.RepairabilityStatus](t, w), 4)

	w = s.do(http.MethodGet, "/api/intake/pickup-window?country_code=US&days=3", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[models.PickupWindow](t, w).Dates, 3)

	w = s.do(http.MethodGet, "/api/intake/pickup-window?country_code=US&days=soon", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartUpload(t *testing.T, requestID string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if requestID != "" {
		require.NoError(t, mw.WriteField("request_id", requestID))
	}
	for name, body := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadAndDownload(t *testing.T) {
	s := newTestServer(t, nil)
	own := s.submit(customerEmail, serialSubmission("SN-X200-0001", "US"))
	id := itoa(own.RequestID)
	token := s.login(customerEmail)

	body, ct := multipartUpload(t, "", map[string]string{"scan.pdf": "%PDF"})
	w := s.do(http.MethodPost, "/api/upload", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "request_id is required", detail(t, w))

	w = s.do(http.MethodPost, "/api/upload", token, strings.NewReader("{}"), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, ct = multipartUpload(t, id, map[string]string{"run.exe": "MZ"})
	w = s.do(http.MethodPost, "/api/upload", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File type .exe not allowed", detail(t, w))

	body, ct = multipartUpload(t, id, map[string]string{"scan.pdf": "%PDF-1.7 body"})
	w = s.do(http.MethodPost, "/api/upload", s.login(germanEmail), body, ct)
	assert.Equal(t, http.StatusForbidden, w.Code)

	body, ct = multipartUpload(t, id, map[string]string{"scan.pdf": "%PDF-1.7 body"})
	w = s.do(http.MethodPost, "/api/upload", token, body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[models.UploadResult](t, w)
	assert.Equal(t, "Uploaded 1 files", result.Message)
	require.Len(t, result.Files, 1)
	blobFile := strings.TrimPrefix(result.Files[0].BlobPath, id+"/")

	w = s.do(http.MethodGet, "/api/download/"+id+"/"+blobFile, s.login(germanEmail), nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/download/"+id+"/"+blobFile, token, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	link := decode[models.DownloadLink](t, w)
	require.True(t, strings.HasPrefix(link.DownloadURL, testBaseURL+"/api/files/"))

	w = s.do(http.MethodGet, strings.TrimPrefix(link.DownloadURL, testBaseURL), "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.7 body", w.Body.String())
	assert.Equal(t, `inline; filename="scan.pdf"`, w.Header().Get("Content-Disposition"))

	w = s.do(http.MethodGet, "/api/files/forged", "", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid or expired download link", detail(t, w))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(http.MethodGet, "/health", "", nil, "")

	w := s.do(http.MethodGet, "/metrics", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `srportal_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid", service.Invalid("bad %s", "input"), http.StatusBadRequest, "bad input"},
		{"forbidden", service.Forbidden("Access denied"), http.StatusForbidden, "Access denied"},
		{"not found", service.NotFound("Request not found"), http.StatusNotFound, "Request not found"},
		{"unclassified", errors.New("boom: secret detail"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			respondError(c, nil, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, detail(t, w))
		})
	}
}
