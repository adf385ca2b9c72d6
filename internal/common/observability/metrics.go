// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider     *metric.MeterProvider
	meter             otelmetric.Meter
	transitionCounter otelmetric.Int64Counter
	scoreDuration     otelmetric.Float64Histogram
	presentationsSent otelmetric.Int64Counter
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	transitionCounter, _ := meter.Int64Counter(
		"workflow.transitions",
		otelmetric.WithDescription("Number of workflow transitions committed"),
	)

	scoreDuration, _ := meter.Float64Histogram(
		"matching.score.duration",
		otelmetric.WithDescription("Match score computation duration"),
		otelmetric.WithUnit("ms"),
	)

	presentationsSent, _ := meter.Int64Counter(
		"presentations.sent",
		otelmetric.WithDescription("Number of candidate presentations delivered"),
	)

	return &Observability{
		meterProvider:     provider,
		meter:             meter,
		transitionCounter: transitionCounter,
		scoreDuration:     scoreDuration,
		presentationsSent: presentationsSent,
	}
}

func (o *Observability) RecordTransition(ctx context.Context, aggregate, toStatus string) {
	if o.transitionCounter != nil {
		o.transitionCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("aggregate", aggregate),
			attribute.String("to", toStatus),
		))
	}
}

func (o *Observability) RecordScoreDuration(ctx context.Context, duration time.Duration) {
	if o.scoreDuration != nil {
		o.scoreDuration.Record(ctx, float64(duration.Microseconds())/1000.0)
	}
}

func (o *Observability) RecordPresentationSent(ctx context.Context) {
	if o.presentationsSent != nil {
		o.presentationsSent.Add(ctx, 1)
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
