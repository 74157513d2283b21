package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ajitpratap0/tagpool/pkg/errors"
	"github.com/ajitpratap0/tagpool/pkg/pool"
)

// MeterHooks records registry events as OpenTelemetry instruments.
type MeterHooks struct {
	pools       metric.Int64Counter
	spawns      metric.Int64Counter
	releases    metric.Int64Counter
	growths     metric.Int64Counter
	diagnostics metric.Int64Counter
	available   metric.Int64Gauge
}

var _ pool.Hooks = (*MeterHooks)(nil)

// NewMeterHooks creates the instruments on meter.
func NewMeterHooks(meter metric.Meter) (*MeterHooks, error) {
	var (
		h   MeterHooks
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&h.pools, "tagpool.pools", "Pools created"},
		{&h.spawns, "tagpool.spawns", "Objects checked out"},
		{&h.releases, "tagpool.releases", "Objects returned"},
		{&h.growths, "tagpool.growths", "Instances manufactured because a pool was empty on spawn"},
		{&h.diagnostics, "tagpool.diagnostics", "Reported failures"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", c.name, err)
		}
	}

	h.available, err = meter.Int64Gauge("tagpool.available", metric.WithDescription("Idle objects currently queued"))
	if err != nil {
		return nil, fmt.Errorf("create gauge tagpool.available: %w", err)
	}
	return &h, nil
}

func tagAttr(tag string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("tag", tag))
}

// PoolCreated implements pool.Hooks.
func (h *MeterHooks) PoolCreated(tag string) {
	h.pools.Add(context.Background(), 1, tagAttr(tag))
}

// Spawned implements pool.Hooks.
func (h *MeterHooks) Spawned(tag string) {
	h.spawns.Add(context.Background(), 1, tagAttr(tag))
}

// Released implements pool.Hooks.
func (h *MeterHooks) Released(tag string) {
	h.releases.Add(context.Background(), 1, tagAttr(tag))
}

// Grew implements pool.Hooks.
func (h *MeterHooks) Grew(tag string) {
	h.growths.Add(context.Background(), 1, tagAttr(tag))
}

// Depth implements pool.Hooks.
func (h *MeterHooks) Depth(tag string, available int) {
	h.available.Record(context.Background(), int64(available), tagAttr(tag))
}

// Diagnostic implements pool.Hooks.
func (h *MeterHooks) Diagnostic(tag string, kind errors.ErrorType) {
	h.diagnostics.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("tag", tag),
		attribute.String("kind", string(kind)),
	))
}
