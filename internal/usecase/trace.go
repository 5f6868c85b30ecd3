package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "espn-extractor/internal/usecase"

var usecaseNoopSpan = trace.SpanFromContext(context.Background())

func usecaseTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// startRunSpan opens the root span for an extraction run. Unlike
// startUsecaseSpan it never no-ops: the run entry point is where the
// trace begins, so child spans and trace-aware log fields have
// something to attach to.
func startRunSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return usecaseTracer().Start(ctx, name)
}

func startUsecaseSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, usecaseNoopSpan
	}
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	return usecaseTracer().Start(ctx, name)
}
