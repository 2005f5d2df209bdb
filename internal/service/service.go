// Package service holds the portal's business rules. Handlers in
// internal/api translate its errors into HTTP responses.
package service

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
)

// Kind classifies service errors for transport mapping.
type Kind int

const (
	KindInvalid Kind = iota + 1
	KindForbidden
	KindNotFound
	KindConflict
	KindUnavailable
)

// Error is a user-facing failure with a classification.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Invalid(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a service error, or 0 for anything else.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// MessageOf returns the user-facing message of a service error.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

// Metrics counts business events.
type Metrics struct {
	submissions   *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
	uploads       prometheus.Counter
}

// NewMetrics registers the counters on reg; nil leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "srportal",
			Name:      "requests_submitted_total",
			Help:      "Service requests submitted by request type and country.",
		}, []string{"request_type", "country"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "srportal",
			Name:      "request_status_changes_total",
			Help:      "Status changes by new status.",
		}, []string{"status"}),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "srportal",
			Name:      "attachments_uploaded_total",
			Help:      "Attachments stored.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.submissions, m.statusChanges, m.uploads)
	}
	return m
}

// sanitizer strips markup from free-text fields.
type sanitizer struct {
	policy *bluemonday.Policy
}

func newSanitizer() *sanitizer {
	return &sanitizer{policy: bluemonday.StrictPolicy()}
}

// maxSanitizePasses bounds how many layers of entity encoding are peeled.
const maxSanitizePasses = 4

// Text returns in as plain text without HTML tags. Entities are decoded and
// the result is sanitized again until it no longer changes, so encoded
// markup cannot come back as live tags. Input that does not settle keeps its
// escaped form.
func (s *sanitizer) Text(in string) string {
	out := strings.TrimSpace(in)
	for i := 0; i < maxSanitizePasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(out)))
		if next == out {
			return out
		}
		out = next
	}
	return strings.TrimSpace(s.policy.Sanitize(out))
}
