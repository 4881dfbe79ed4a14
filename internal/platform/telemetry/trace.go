package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan creates a span on the global tracer provider. Without an installed
// provider the span is a no-op.
//
//	ctx, span := telemetry.StartSpan(ctx, "volunteermatch/volunteer", "volunteer.FindMatches",
//	    attribute.String(telemetry.AttrLocation, location),
//	)
//	defer span.End()
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError records err on the span and marks it failed.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// AddEvent adds a named event to the span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Attribute keys.
const (
	AttrVolunteerID  = "volunteer.id"
	AttrLocation     = "volunteer.location"
	AttrAvailability = "volunteer.availability"
	AttrSkill        = "match.skill"
	AttrMatchCount   = "match.count"
	AttrCandidates   = "match.candidates"
	AttrGroup        = "auth.required_group"
)
