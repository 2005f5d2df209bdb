// Package events publishes service request lifecycle events.
package events

import (
	"context"
	"sync"
	"time"
)

const (
	TypeRequestSubmitted     = "intake.request.submitted"
	TypeRequestStatusChanged = "intake.request.status_changed"
	TypeAttachmentAdded      = "intake.request.attachment_added"
)

// Event is the JSON payload sent for each lifecycle change.
type Event struct {
	Type           string    `json:"type"`
	RequestID      int64     `json:"request_id"`
	RequestCode    string    `json:"request_code"`
	CustomerNumber string    `json:"customer_number,omitempty"`
	Territory      string    `json:"territory,omitempty"`
	CountryCode    string    `json:"country_code,omitempty"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	FileName       string    `json:"file_name,omitempty"`
	Actor          string    `json:"actor"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
