package service

import (
	"context"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

func newOperationsCounter(meter metric.Meter) metric.Int64Counter {
	counter, _ := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)
	return counter
}

// recordOperation counts one operation, labelled with its outcome
func recordOperation(ctx context.Context, counter metric.Int64Counter, operation string, err error) {
	counter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", resultOf(err)),
		),
	)
}

func resultOf(err error) string {
	if err == nil {
		return "success"
	}
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return "invalid"
	case domain.KindNotFound:
		return "not_found"
	case domain.KindConflict:
		return "conflict"
	default:
		return "failure"
	}
}

func failSpan(span trace.Span, err error, description string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, description)
}
