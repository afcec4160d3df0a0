package server

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	apimetric "go.opentelemetry.io/otel/metric"
)

// serverMetrics holds the bridge's otel counters. A nil receiver or nil
// counter records nothing, so metric wiring stays optional.
type serverMetrics struct {
	requests  apimetric.Int64Counter
	logEvents apimetric.Int64Counter
	deferred  apimetric.Int64Counter
}

func newServerMetrics(meter apimetric.Meter) *serverMetrics {
	if meter == nil {
		return nil
	}
	m := new(serverMetrics)
	m.requests, _ = meter.Int64Counter("bridge.http.requests")
	m.logEvents, _ = meter.Int64Counter("bridge.log.events")
	m.deferred, _ = meter.Int64Counter("bridge.deferred.calls")
	return m
}

func (m *serverMetrics) recordRequest(ctx context.Context, path string, status int) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.Add(ctx, 1, apimetric.WithAttributes(
		attribute.String("path", path),
		attribute.String("status", strconv.Itoa(status)),
	))
}

func (m *serverMetrics) recordLogEvent(ctx context.Context, severity string) {
	if m == nil || m.logEvents == nil {
		return
	}
	m.logEvents.Add(ctx, 1, apimetric.WithAttributes(attribute.String("severity", severity)))
}

func (m *serverMetrics) recordDeferred(ctx context.Context, action string) {
	if m == nil || m.deferred == nil {
		return
	}
	m.deferred.Add(ctx, 1, apimetric.WithAttributes(attribute.String("action", action)))
}
