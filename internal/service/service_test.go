package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/procare-io/srportal/internal/auth"
	"github.com/procare-io/srportal/internal/demo"
	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository"
	"github.com/procare-io/srportal/internal/repository/memory"
)

var (
	customerClaims = &auth.Claims{
		Email: "customer@stmarys.example", Name: "Jane Miller", Role: models.RoleCustomer,
		CustomerNumber: "CUST-001", CustomerName: "St. Mary's Medical Center", CountryCode: "US",
		Territories: []string{"US-EAST"},
	}
	germanCustomerClaims = &auth.Claims{
		Email:          "einkauf@klinikum.example", Name: "Lukas Weber", Role: models.RoleCustomer,
		CustomerNumber: "CUST-002", CustomerName: "Klinikum Süd", CountryCode: "DE",
		Territories:    []string{"DE-SOUTH"},
	}
	techClaims = &auth.Claims{
		Email:       "tech@procare.example", Name: "Sam Ortiz", Role: models.RoleSalesTech,
		CountryCode: "US", Territories: []string{"US-EAST", "US-WEST"},
	}
	adminClaims = &auth.Claims{
		Email: "admin@procare.example", Name: "Alex Admin", Role: models.RoleAdmin,
	}
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	store, err := memory.NewStore(demo.Default(), bcrypt.MinCost)
	require.NoError(t, err)
	return store
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		msg  string
	}{
		{"invalid", Invalid("bad %s", "input"), KindInvalid, "bad input"},
		{"forbidden", Forbidden("Access denied"), KindForbidden, "Access denied"},
		{"not found", NotFound("Request not found"), KindNotFound, "Request not found"},
		{"wrapped", fmt.Errorf("handler: %w", NotFound("gone")), KindNotFound, "gone"},
		{"plain", errors.New("boom"), 0, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.msg, MessageOf(tt.err))
		})
	}

	cause := errors.New("disk full")
	err   := &Error{Kind: KindUnavailable, Message: "Upload failed", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Upload failed: disk full", err.Error())
}

func TestSanitizer(t *testing.T) {
	s := newSanitizer()
	tests := map[string]string{
		"":                     "",
		"plain text":           "plain text",
		"  <b>Arm</b> stuck  ": "Arm stuck",
		"Tom & Jerry":          "Tom & Jerry",
		`<a href="http://x">link</a>`: "link",
		"5 < 6":                                        "5 < 6",
		"<script>alert(1)</script>":                    "",
		"&lt;script&gt;alert(1)&lt;/script&gt;":        "",
		"&lt;img src=x onerror=alert(1)&gt;Broken arm": "Broken arm",
		"&amp;lt;b&amp;gt;Arm&amp;lt;/b&amp;gt;":       "Arm",
	}
	for in, want := range tests {
		assert.Equal(t, want, s.Text(in), "input %q", in)
	}
}

func TestMetricsRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.submissions.WithLabelValues("Serial", "US").Inc()
	m.uploads.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("Serial", "US")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads))
	assert.Panics(t, func() { NewMetrics(reg) }, "duplicate registration")
}
