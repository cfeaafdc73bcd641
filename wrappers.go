package shroud

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"

	"github.com/cockroachdb/redact"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// wrapperKind distinguishes the two wrapper families.
type wrapperKind int

const (
	kindSensitive wrapperKind = iota + 1
	kindNotSensitive
)

// wrapper is implemented only by Sensitive and NotSensitive. Traversal and
// formatting delegate to it instead of inspecting the wrapped value.
type wrapper interface {
	wrapperKind() wrapperKind
	redactWith(e *Engine) any
	formatWith(e *Engine, debug bool) string
}

// Sensitive owns a raw value of a type the classifier cannot inspect and
// pairs it with the policy of marker P. The raw value is only reachable
// through Expose. Every formatting path (fmt verbs, slog, JSON of a
// redacted copy) yields the policy-applied text.
//
// A wrapper formatted on its own (String, fmt verbs, LogValue, SafeFormat)
// uses the Default engine's placeholder and mask rune. Inside a value
// passed to an Engine's Redact or Format it uses that engine; RedactedWith
// does the same for a standalone wrapper.
//
//	key := shroud.NewSensitive[shroud.Token]("sk_live_abcd1234")
//	fmt.Println(key)          // ************1234
//	client.Auth(key.Expose()) // raw value, greppable in review
type Sensitive[T any, P PolicyMarker] struct {
	raw      T
	extract  func(T) string
	redacted bool
	text     string
}

// NewSensitive wraps raw. String kinds and byte slices are extracted
// directly; other types are fully redacted unless NewSensitiveFunc
// supplies an extraction.
func NewSensitive[P PolicyMarker, T any](raw T) Sensitive[T, P] {
	return Sensitive[T, P]{raw: raw}
}

// NewSensitiveFunc wraps raw with an extraction that reduces T to the text
// the policy is applied to.
func NewSensitiveFunc[P PolicyMarker, T any](raw T, extract func(T) string) Sensitive[T, P] {
	return Sensitive[T, P]{raw: raw, extract: extract}
}

// Expose returns the raw value. For a redacted copy this is the redacted
// value when T is a string kind, and the zero value otherwise.
func (s Sensitive[T, P]) Expose() T {
	return s.raw
}

// Redacted returns the policy-applied text.
func (s Sensitive[T, P]) Redacted() string {
	if s.redacted {
		return s.text
	}
	return s.apply(Default)
}

// RedactedWith returns the policy-applied text using e's placeholder and
// mask rune. A redacted copy returns the text it was redacted to.
func (s Sensitive[T, P]) RedactedWith(e *Engine) string {
	if s.redacted {
		return s.text
	}
	return s.apply(e)
}

// IsRedacted reports whether s is a redacted copy.
func (s Sensitive[T, P]) IsRedacted() bool {
	return s.redacted
}

// Policy returns the policy of marker P.
func (s Sensitive[T, P]) Policy() TextPolicy {
	var marker P
	return marker.Policy()
}

func (s Sensitive[T, P]) apply(e *Engine) string {
	p := s.Policy()
	if e != nil {
		p = e.adjust(p)
	}
	text, ok := s.extractText()
	if !ok {
		return Full().withPlaceholder(p.placeholder).Apply("")
	}
	return p.Apply(text)
}

// extractText reduces the raw value to text.
func (s Sensitive[T, P]) extractText() (string, bool) {
	if s.extract != nil {
		return s.extract(s.raw), true
	}
	rv := reflect.ValueOf(&s.raw).Elem()
	switch {
	case rv.Kind() == reflect.String:
		return rv.String(), true
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		return string(rv.Bytes()), true
	default:
		return "", false
	}
}

func (s Sensitive[T, P]) wrapperKind() wrapperKind { return kindSensitive }

// redactWith returns a redacted copy. String-kind raw values are replaced
// by the redacted text; others are replaced by their zero value.
func (s Sensitive[T, P]) redactWith(e *Engine) any {
	if s.redacted {
		return s
	}
	text := s.apply(e)
	out := Sensitive[T, P]{redacted: true, text: text}
	rv := reflect.ValueOf(&out.raw).Elem()
	switch {
	case rv.Kind() == reflect.String:
		rv.SetString(text)
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		rv.SetBytes([]byte(text))
	}
	return out
}

func (s Sensitive[T, P]) formatWith(e *Engine, debug bool) string {
	var text string
	switch {
	case e != nil && e.Mode() == ModeUnredacted:
		return renderRaw(reflect.ValueOf(&s.raw).Elem(), debug)
	case s.redacted:
		text = s.text
	default:
		text = s.apply(e)
	}
	if debug {
		return strconv.Quote(text)
	}
	return text
}

// String implements fmt.Stringer with the redacted text.
func (s Sensitive[T, P]) String() string {
	return s.Redacted()
}

// GoString implements fmt.GoStringer with the redacted text.
func (s Sensitive[T, P]) GoString() string {
	return strconv.Quote(s.Redacted())
}

// Format implements fmt.Formatter so that no verb prints the raw value.
func (s Sensitive[T, P]) Format(f fmt.State, verb rune) {
	switch verb {
	case 'q':
		fmt.Fprint(f, strconv.Quote(s.Redacted()))
	default:
		fmt.Fprint(f, s.Redacted())
	}
}

// LogValue implements slog.LogValuer.
func (s Sensitive[T, P]) LogValue() slog.Value {
	return slog.StringValue(s.Redacted())
}

// SafeFormat implements redact.SafeFormatter; the redacted text is safe.
func (s Sensitive[T, P]) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString(redact.SafeString(s.Redacted()))
}

// MarshalJSON encodes the redacted text for a redacted copy. An unredacted
// wrapper encodes the raw value: serialization for persistence and APIs is
// not a redaction boundary.
func (s Sensitive[T, P]) MarshalJSON() ([]byte, error) {
	if s.redacted {
		return json.Marshal(s.text)
	}
	return json.Marshal(s.raw)
}

// UnmarshalJSON decodes a raw value.
func (s *Sensitive[T, P]) UnmarshalJSON(data []byte) error {
	var raw T
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Sensitive[T, P]{raw: raw, extract: s.extract}
	return nil
}

// MarshalYAML follows MarshalJSON.
func (s Sensitive[T, P]) MarshalYAML() (any, error) {
	if s.redacted {
		return s.text, nil
	}
	return s.raw, nil
}

// MarshalMsgpack follows MarshalJSON.
func (s Sensitive[T, P]) MarshalMsgpack() ([]byte, error) {
	if s.redacted {
		return msgpack.Marshal(s.text)
	}
	return msgpack.Marshal(s.raw)
}

// MarshalBSONValue follows MarshalJSON.
func (s Sensitive[T, P]) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if s.redacted {
		return bson.MarshalValue(s.text)
	}
	return bson.MarshalValue(s.raw)
}

// MarshalText encodes the redacted text. Used by text-oriented encoders
// such as encoding/xml.
func (s Sensitive[T, P]) MarshalText() ([]byte, error) {
	return []byte(s.Redacted()), nil
}

// ToRedactedOutput implements ToRedactedOutput.
func (s Sensitive[T, P]) ToRedactedOutput() RedactedOutput {
	return TextOutput(s.Redacted())
}

func (s Sensitive[T, P]) slogSafe()  {}
func (s Sensitive[T, P]) traceSafe() {}

// NotSensitive asserts that a value of a foreign type needs no redaction.
// It is a container that always passes through unchanged.
type NotSensitive[T any] struct {
	inner T
}

// NewNotSensitive wraps v.
func NewNotSensitive[T any](v T) NotSensitive[T] {
	return NotSensitive[T]{inner: v}
}

// Inner returns the wrapped value.
func (n NotSensitive[T]) Inner() T {
	return n.inner
}

func (n NotSensitive[T]) wrapperKind() wrapperKind { return kindNotSensitive }

func (n NotSensitive[T]) redactWith(*Engine) any { return n }

func (n NotSensitive[T]) formatWith(_ *Engine, debug bool) string {
	return renderRaw(reflect.ValueOf(&n.inner).Elem(), debug)
}

// String implements fmt.Stringer.
func (n NotSensitive[T]) String() string {
	return fmt.Sprint(n.inner)
}

// LogValue implements slog.LogValuer.
func (n NotSensitive[T]) LogValue() slog.Value {
	return slog.AnyValue(n.inner)
}

// SafeFormat implements redact.SafeFormatter.
func (n NotSensitive[T]) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString(redact.SafeString(fmt.Sprint(n.inner)))
}

// MarshalJSON encodes the wrapped value.
func (n NotSensitive[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.inner)
}

// UnmarshalJSON decodes the wrapped value.
func (n *NotSensitive[T]) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &n.inner)
}

// MarshalYAML encodes the wrapped value.
func (n NotSensitive[T]) MarshalYAML() (any, error) {
	return n.inner, nil
}

// MarshalMsgpack encodes the wrapped value.
func (n NotSensitive[T]) MarshalMsgpack() ([]byte, error) {
	return msgpack.Marshal(n.inner)
}

// MarshalBSONValue encodes the wrapped value.
func (n NotSensitive[T]) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(n.inner)
}

// MarshalText encodes the wrapped value with fmt.
func (n NotSensitive[T]) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprint(n.inner)), nil
}

// ToRedactedOutput implements ToRedactedOutput.
func (n NotSensitive[T]) ToRedactedOutput() RedactedOutput {
	return TextOutput(fmt.Sprint(n.inner))
}

func (n NotSensitive[T]) slogSafe()  {}
func (n NotSensitive[T]) traceSafe() {}

// isSensitive reports whether t is an instantiation of Sensitive.
func isSensitive(t reflect.Type) bool {
	return wrapperKindOf(t) == kindSensitive
}

// isNotSensitive reports whether t is an instantiation of NotSensitive.
func isNotSensitive(t reflect.Type) bool {
	return wrapperKindOf(t) == kindNotSensitive
}

func wrapperKindOf(t reflect.Type) wrapperKind {
	if t.Kind() != reflect.Struct || !t.Implements(wrapperType) {
		return 0
	}
	return reflect.Zero(t).Interface().(wrapper).wrapperKind()
}
