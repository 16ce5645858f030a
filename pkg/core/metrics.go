package core

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/oceanbase/tiermem-go/pkg/core"

// engineMetrics holds the OpenTelemetry instruments of an Engine.
type engineMetrics struct {
	stores           metric.Int64Counter
	retrievals       metric.Int64Counter
	evictions        metric.Int64Counter
	promotions       metric.Int64Counter
	capacityRejected metric.Int64Counter
}

// newEngineMetrics creates the engine instruments from provider, falling back
// to the global meter provider when provider is nil.
func newEngineMetrics(provider metric.MeterProvider) (*engineMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(meterName)

	var (
		m   engineMetrics
		err error
	)
	if m.stores, err = meter.Int64Counter("tiermem.store.count",
		metric.WithDescription("Number of memories stored"),
		metric.WithUnit("{memory}")); err != nil {
		return nil, err
	}
	if m.retrievals, err = meter.Int64Counter("tiermem.retrieve.count",
		metric.WithDescription("Number of memories returned by retrieval"),
		metric.WithUnit("{memory}")); err != nil {
		return nil, err
	}
	if m.evictions, err = meter.Int64Counter("tiermem.eviction.count",
		metric.WithDescription("Number of memories evicted"),
		metric.WithUnit("{memory}")); err != nil {
		return nil, err
	}
	if m.promotions, err = meter.Int64Counter("tiermem.promotion.count",
		metric.WithDescription("Number of memories promoted to long-term"),
		metric.WithUnit("{memory}")); err != nil {
		return nil, err
	}
	if m.capacityRejected, err = meter.Int64Counter("tiermem.capacity_rejected.count",
		metric.WithDescription("Number of inserts rejected for lack of capacity"),
		metric.WithUnit("{memory}")); err != nil {
		return nil, err
	}
	return &m, nil
}

func tierAttr(t Tier) metric.AddOption {
	return metric.WithAttributes(attribute.String("tier", string(t)))
}

func (m *engineMetrics) stored(t Tier) {
	m.stores.Add(context.Background(), 1, tierAttr(t))
}

func (m *engineMetrics) retrieved(n int) {
	if n > 0 {
		m.retrievals.Add(context.Background(), int64(n))
	}
}

func (m *engineMetrics) evicted(t Tier, n int) {
	if n > 0 {
		m.evictions.Add(context.Background(), int64(n), tierAttr(t))
	}
}

func (m *engineMetrics) promoted() {
	m.promotions.Add(context.Background(), 1)
}

func (m *engineMetrics) rejected(t Tier) {
	m.capacityRejected.Add(context.Background(), 1, tierAttr(t))
}
