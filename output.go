package shroud

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/cockroachdb/redact"
)

// OutputKind identifies the variant held by a RedactedOutput.
type OutputKind int

const (
	// OutputText holds a redacted string.
	OutputText OutputKind = iota

	// OutputStructured holds a redacted JSON-like value: nil, bool,
	// float64, string, []any or map[string]any.
	OutputStructured
)

// Representation selects the output variant a caller wants.
type Representation int

const (
	// RepresentationText asks for formatted text.
	RepresentationText Representation = iota

	// RepresentationStructured asks for a JSON-like value.
	RepresentationStructured
)

// RedactedOutput is the sink-facing result of a completed redaction.
type RedactedOutput struct {
	kind  OutputKind
	text  string
	value any
}

// TextOutput wraps already redacted text.
func TextOutput(text string) RedactedOutput {
	return RedactedOutput{kind: OutputText, text: text}
}

// StructuredOutput wraps an already redacted JSON-like value.
func StructuredOutput(value any) RedactedOutput {
	return RedactedOutput{kind: OutputStructured, value: value}
}

// Kind reports which variant o holds.
func (o RedactedOutput) Kind() OutputKind {
	return o.kind
}

// Text returns the text variant, or the compact JSON encoding of the
// structured variant.
func (o RedactedOutput) Text() string {
	if o.kind == OutputText {
		return o.text
	}
	data, err := json.Marshal(o.value)
	if err != nil {
		return fmt.Sprintf("failed to encode redacted value: %v", err)
	}
	return string(data)
}

// Structured returns the structured variant, or the text as a string value.
func (o RedactedOutput) Structured() any {
	if o.kind == OutputStructured {
		return o.value
	}
	return o.text
}

// String implements fmt.Stringer.
func (o RedactedOutput) String() string {
	return o.Text()
}

// MarshalJSON encodes text as a JSON string and structured values as-is.
func (o RedactedOutput) MarshalJSON() ([]byte, error) {
	if o.kind == OutputText {
		return json.Marshal(o.text)
	}
	return json.Marshal(o.value)
}

// Encode marshals the output with c. Text is encoded as a plain string.
func (o RedactedOutput) Encode(c Codec) ([]byte, error) {
	data, err := c.Marshal(o.Structured())
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return data, nil
}

// LogValue implements slog.LogValuer. Structured values become groups so
// JSON handlers keep their shape.
func (o RedactedOutput) LogValue() slog.Value {
	if o.kind == OutputText {
		return slog.StringValue(o.text)
	}
	return structuredLogValue(o.value)
}

// SafeFormat implements redact.SafeFormatter; the contents are already
// redacted and therefore safe.
func (o RedactedOutput) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString(redact.SafeString(o.Text()))
}

// ToRedactedOutput implements ToRedactedOutput.
func (o RedactedOutput) ToRedactedOutput() RedactedOutput {
	return o
}

func (o RedactedOutput) slogSafe()  {}
func (o RedactedOutput) traceSafe() {}

// ToRedactedOutput is the single boundary sink adapters consume.
type ToRedactedOutput interface {
	ToRedactedOutput() RedactedOutput
}

// Output redacts v and renders it in the requested representation using
// the Default engine.
func Output(v any, r Representation) RedactedOutput {
	return Default.Output(v, r)
}

// Output redacts v and renders it in the requested representation.
// Values that already implement ToRedactedOutput are returned as they
// render themselves.
func (e *Engine) Output(v any, r Representation) RedactedOutput {
	if o, ok := v.(ToRedactedOutput); ok {
		return o.ToRedactedOutput()
	}
	if r == RepresentationText {
		return TextOutput(e.Format(v))
	}
	return e.structured(v)
}

// structured converts the redacted copy of v to a JSON-like value.
func (e *Engine) structured(v any) RedactedOutput {
	redacted, _ := e.redactValue(reflect.ValueOf(v))
	var src any
	if redacted.IsValid() {
		src = redacted.Interface()
	}
	value, err := toJSONValue(src)
	if err != nil {
		return TextOutput(fmt.Sprintf("failed to serialize redacted value: %v", err))
	}
	return StructuredOutput(value)
}

// toJSONValue round-trips v through encoding/json.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func structuredLogValue(v any) slog.Value {
	m, ok := v.(map[string]any)
	if !ok {
		return slog.AnyValue(v)
	}
	attrs := make([]slog.Attr, 0, len(m))
	for k, val := range m {
		attrs = append(attrs, slog.Attr{Key: k, Value: structuredLogValue(val)})
	}
	return slog.GroupValue(attrs...)
}

// RedactedRef renders a value lazily through an engine's Format.
type RedactedRef struct {
	e *Engine
	v any
}

// Redacted returns a lazy text reference to v on the Default engine.
func Redacted(v any) RedactedRef {
	return Default.Redacted(v)
}

// Redacted returns a lazy text reference to v.
func (e *Engine) Redacted(v any) RedactedRef {
	return RedactedRef{e: e, v: v}
}

// ToRedactedOutput implements ToRedactedOutput.
func (r RedactedRef) ToRedactedOutput() RedactedOutput {
	return TextOutput(r.e.Format(r.v))
}

// String implements fmt.Stringer.
func (r RedactedRef) String() string {
	return r.e.Format(r.v)
}

// LogValue implements slog.LogValuer.
func (r RedactedRef) LogValue() slog.Value {
	return slog.StringValue(r.e.Format(r.v))
}

// SafeFormat implements redact.SafeFormatter.
func (r RedactedRef) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString(redact.SafeString(r.e.Format(r.v)))
}

func (r RedactedRef) slogSafe()  {}
func (r RedactedRef) traceSafe() {}

// RedactedJSONRef renders a value lazily as a structured redacted copy.
type RedactedJSONRef struct {
	e *Engine
	v any
}

// RedactedJSON returns a lazy structured reference to v on the Default
// engine.
func RedactedJSON(v any) RedactedJSONRef {
	return Default.RedactedJSON(v)
}

// RedactedJSON returns a lazy structured reference to v.
func (e *Engine) RedactedJSON(v any) RedactedJSONRef {
	return RedactedJSONRef{e: e, v: v}
}

// ToRedactedOutput implements ToRedactedOutput.
func (r RedactedJSONRef) ToRedactedOutput() RedactedOutput {
	return r.e.structured(r.v)
}

// String implements fmt.Stringer.
func (r RedactedJSONRef) String() string {
	return r.ToRedactedOutput().Text()
}

// LogValue implements slog.LogValuer.
func (r RedactedJSONRef) LogValue() slog.Value {
	return r.ToRedactedOutput().LogValue()
}

// SafeFormat implements redact.SafeFormatter.
func (r RedactedJSONRef) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString(redact.SafeString(r.ToRedactedOutput().Text()))
}

func (r RedactedJSONRef) slogSafe()  {}
func (r RedactedJSONRef) traceSafe() {}
