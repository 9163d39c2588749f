package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the metric instruments for the transcription service.
// Instruments created against the no-op global provider record nothing,
// so callers never need to check whether export is enabled.
type Metrics struct {
	transcriptionTotal    metric.Int64Counter
	transcriptionDuration metric.Float64Histogram
	transcriptionActive   metric.Int64UpDownCounter
	modelLoadTotal        metric.Int64Counter
}

// NewMetrics creates the instruments on the global meter.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	transcriptionTotal, err := meter.Int64Counter("transcription.total",
		metric.WithDescription("Total number of transcription requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.total counter: %w", err)
	}

	transcriptionDuration, err := meter.Float64Histogram("transcription.duration",
		metric.WithDescription("Duration of transcription requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.duration histogram: %w", err)
	}

	transcriptionActive, err := meter.Int64UpDownCounter("transcription.active",
		metric.WithDescription("Number of transcriptions currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.active gauge: %w", err)
	}

	modelLoadTotal, err := meter.Int64Counter("model.load.total",
		metric.WithDescription("Total number of model loads"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating model.load.total counter: %w", err)
	}

	return &Metrics{
		transcriptionTotal:    transcriptionTotal,
		transcriptionDuration: transcriptionDuration,
		transcriptionActive:   transcriptionActive,
		modelLoadTotal:        modelLoadTotal,
	}, nil
}

// RecordTranscriptionStart increments the in-flight count.
func (m *Metrics) RecordTranscriptionStart(ctx context.Context) {
	m.transcriptionActive.Add(ctx, 1)
}

// RecordTranscription records a completed transcription.
func (m *Metrics) RecordTranscription(ctx context.Context, model, task string, duration time.Duration, err error) {
	m.transcriptionActive.Add(ctx, -1)

	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("task", task),
		attribute.Bool("error", err != nil),
	)
	m.transcriptionTotal.Add(ctx, 1, attrs)
	m.transcriptionDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordModelLoad records a model load attempt.
func (m *Metrics) RecordModelLoad(ctx context.Context, model string, err error) {
	m.modelLoadTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.Bool("error", err != nil),
	))
}
