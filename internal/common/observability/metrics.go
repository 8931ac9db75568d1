// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// Observability owns the OpenTelemetry meter used for dispatch batches. The
// instruments are exported through the default Prometheus registry.
type Observability struct {
	meterProvider  *metric.MeterProvider
	batchCounter   otelmetric.Int64Counter
	batchDuration  otelmetric.Float64Histogram
	recipientCount otelmetric.Int64Histogram
}

func New(serviceName string, log *zap.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create otel prometheus exporter", zap.Error(err))
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	batchCounter, _ := meter.Int64Counter(
		"dispatch.batches",
		otelmetric.WithDescription("Number of SMS batches processed"),
	)
	batchDuration, _ := meter.Float64Histogram(
		"dispatch.batch.duration",
		otelmetric.WithDescription("SMS batch processing duration"),
		otelmetric.WithUnit("ms"),
	)
	recipientCount, _ := meter.Int64Histogram(
		"dispatch.batch.recipients",
		otelmetric.WithDescription("Recipients per SMS batch"),
	)

	return &Observability{
		meterProvider:  provider,
		batchCounter:   batchCounter,
		batchDuration:  batchDuration,
		recipientCount: recipientCount,
	}
}

// RecordBatch implements the dispatch workflow's observer hook.
func (o *Observability) RecordBatch(ctx context.Context, kind string, recipients, failed int, duration time.Duration) {
	status := "ok"
	switch {
	case failed == recipients && recipients > 0:
		status = "failed"
	case failed > 0:
		status = "partial"
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	)

	if o.batchCounter != nil {
		o.batchCounter.Add(ctx, 1, attrs)
	}
	if o.batchDuration != nil {
		o.batchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
	if o.recipientCount != nil {
		o.recipientCount.Record(ctx, int64(recipients), otelmetric.WithAttributes(attribute.String("kind", kind)))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
