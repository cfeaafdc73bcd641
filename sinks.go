package shroud

import (
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SlogSafe marks values that are already redacted for structured logging.
// It is implemented only by RedactedOutput, the reference types returned
// by Redacted and RedactedJSON, Sensitive, NotSensitive and Escaped. Raw
// strings and structs never satisfy it, so SlogAttr cannot be handed one.
type SlogSafe interface {
	slog.LogValuer
	slogSafe()
}

// TraceSafe marks values that are already redacted for span attributes.
type TraceSafe interface {
	ToRedactedOutput
	traceSafe()
}

// SlogAttr builds a slog attribute from a redacted value.
//
//	logger.Info("login failed", shroud.SlogAttr("event", shroud.Redacted(evt)))
func SlogAttr[V SlogSafe](key string, v V) slog.Attr {
	return slog.Attr{Key: key, Value: v.LogValue()}
}

// TraceAttr builds an OpenTelemetry attribute from a redacted value.
// Structured output is encoded as compact JSON text.
func TraceAttr[V TraceSafe](key string, v V) attribute.KeyValue {
	return attribute.String(key, v.ToRedactedOutput().Text())
}

// AnnotateSpan records redacted values as attributes on span.
func AnnotateSpan[V TraceSafe](span trace.Span, key string, values ...V) {
	if !span.IsRecording() {
		return
	}
	switch len(values) {
	case 0:
		return
	case 1:
		span.SetAttributes(TraceAttr(key, values[0]))
	default:
		texts := make([]string, len(values))
		for i, v := range values {
			texts[i] = v.ToRedactedOutput().Text()
		}
		span.SetAttributes(attribute.StringSlice(key, texts))
	}
}
