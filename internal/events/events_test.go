package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/procare-io/srportal/internal/config"
)

func TestNatsHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*natsHeaderCarrier)(msg)

	assert.Empty(t, carrier.Get("missing"))
	assert.Nil(t, carrier.Keys())

	carrier.Set("traceparent", "00-abc-def-01")
	assert.Equal(t, "00-abc-def-01", carrier.Get("traceparent"))
	assert.Len(t, carrier.Keys(), 1)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "srportal.requests.submitted", Subject("srportal.requests", TypeRequestSubmitted))
	assert.Equal(t, "srportal.requests.status_changed", Subject("srportal.requests.", TypeRequestStatusChanged))
	assert.Equal(t, TypeAttachmentAdded, Subject("", TypeAttachmentAdded))
}

func TestNewMessageCarriesTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	e := Event{Type: TypeRequestSubmitted, RequestID: 7, RequestCode: "SR-1007", Actor: "customer@stmarys.example"}
	msg, err := newMessage(ctx, "srportal.requests", e)
	require.NoError(t, err)

	assert.Equal(t, "srportal.requests.submitted", msg.Subject)
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", msg.Header.Get("traceparent"))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, "SR-1007", decoded.RequestCode)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), Event{Type: TypeRequestSubmitted}))
	events := r.Events()
	require.Len(t, events, 1)
	events[0].Type = "changed"
	assert.Equal(t, TypeRequestSubmitted, r.Events()[0].Type)
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{}))
}

func TestNATSPublisherIntegration(t *testing.T) {
	url := os.Getenv("SRPORTAL_TEST_NATS_URL")
	if url == "" {
		t.Skip("SRPORTAL_TEST_NATS_URL not set")
	}
	cfg := config.EventsConfig{URL: url, SubjectPrefix: "srportal.test"}
	pub, err := NewNATSPublisher(cfg, nil)
	require.NoError(t, err)
	defer pub.Close()

	sub, err := pub.nc.SubscribeSync("srportal.test.>")
	require.NoError(t, err)

	require.NoError(t, pub.Publish(context.Background(), Event{Type: TypeRequestSubmitted, RequestCode: "SR-1"}))
	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "srportal.test.submitted", msg.Subject)
}
