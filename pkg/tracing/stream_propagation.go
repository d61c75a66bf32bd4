package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const TraceparentKey = "traceparent"

// InjectFieldMap copies the active trace context into a stream record's
// field map so downstream consumers can continue the trace.
func InjectFieldMap(ctx context.Context, fields map[string]any) map[string]any {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	for k, v := range carrier {
		fields[k] = v
	}
	return fields
}

// ExtractFieldMap restores trace context from a consumed stream record.
func ExtractFieldMap(ctx context.Context, fields map[string]any) context.Context {
	carrier := propagation.MapCarrier{}
	for k, v := range fields {
		if s, ok := v.(string); ok {
			carrier[k] = s
		}
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
