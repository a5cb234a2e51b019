package redactkit

import (
	"context"

	"github.com/froppa/sanitary/kits/sanitizer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/froppa/sanitary/kits/redactkit"

// Sanitize runs s over v inside a "redact.sanitize" span on the global
// tracer. A failed replacement or mapping view is recorded on the span and
// returned unchanged.
func Sanitize(ctx context.Context, s *sanitizer.Sanitizer, v sanitizer.Value) (sanitizer.Value, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "redact.sanitize",
		trace.WithAttributes(
			attribute.String("redact.input.kind", v.Kind().String()),
			attribute.Int("redact.keys", len(s.Keys())),
			attribute.Int("redact.patterns", len(s.Patterns())),
		),
	)
	defer span.End()

	out, err := s.Sanitize(v)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sanitize failed")
		return sanitizer.Value{}, err
	}
	span.SetAttributes(attribute.String("redact.output.kind", out.Kind().String()))
	return out, nil
}
