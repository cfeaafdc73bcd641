// Package shroud redacts sensitive values in structured data before it
// reaches a log, trace or display surface.
//
// Redaction is opt-in per field and declared with struct tags. Every type
// is classified once; the resulting plan is cached and reused.
//
// # Tag Syntax
//
//	redact:"<policy>"   - apply a named policy to this leaf
//	redact:"-"          - copy this field unchanged
//
// Untagged string and scalar fields pass through. Untagged struct fields
// are recursed into. Fields of type any and json.RawMessage are always
// replaced by the placeholder.
//
// # Basic Usage
//
//	type User struct {
//	    Name     string
//	    Password string            `redact:"secret"`
//	    Card     string            `redact:"card"`
//	    Meta     map[string]string `redact:"keep_first:2"`
//	}
//
//	shroud.MustRegister[User]()           // surface declaration errors at startup
//	safe := shroud.Redact(user)           // redacted copy, same shape
//	line := shroud.Format(user)           // redacted text
//
// # Templates
//
// A type can carry a display template, either by implementing Templated or
// through RegisterTemplate. Only the fields a template references are read.
//
//	func (LoginFailed) RedactTemplate() string {
//	    return "login failed for {user} with {password}"
//	}
//
// Placeholders name a field ({user}), a position ({0}) or take the next
// position ({}). A ":?" suffix quotes strings. "{{" and "}}" are literal
// braces.
//
// # Policies
//
// Named policies:
//
//   - secret: [REDACTED]
//   - token, card, phone, ip: keep the last 4
//   - pii: keep the last 2
//   - blockchain: keep the last 6
//   - email: keep 2 characters of the local part and the domain
//   - ssn, uuid, iban, name: format-aware masks
//   - sha256, blake2b: short deterministic fingerprints
//   - keep_first:N, keep_last:N, mask_first:N, mask_last:N, email:N
//
// # Wrappers
//
// Sensitive pairs a foreign value with a policy marker; NotSensitive marks a
// foreign value as safe. Both satisfy the sink markers SlogSafe and
// TraceSafe, which raw values never do.
//
// # Codec Providers
//
// The following codec implementations are available as subpackages for
// use with Processor:
//
//   - json - JSON encoding (application/json)
//   - xml - XML encoding (application/xml)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
package shroud

import (
	"reflect"

	"github.com/zoobzio/sentinel"
)

// Redactable bypasses reflection for types that redact themselves.
// Redact is called on a shallow copy of the value; implementations must
// replace, not mutate, any slices, maps or pointers they change.
//
//	func (c *Credentials) Redact() {
//	    c.Secret = shroud.Placeholder
//	}
type Redactable interface {
	Redact()
}

// Redact returns a redacted copy of v using the Default engine.
// It panics with *DeclarationError if v's type is misdeclared; call
// Register at startup to surface those errors as values.
func Redact[T any](v T) T {
	return RedactWith(Default, v)
}

// RedactWith returns a redacted copy of v using engine e.
func RedactWith[T any](e *Engine, v T) T {
	out, _ := e.redactValue(reflect.ValueOf(&v).Elem())
	var res T
	reflect.ValueOf(&res).Elem().Set(out)
	return res
}

// Redact returns a redacted copy of v. The result has v's dynamic type.
func (e *Engine) Redact(v any) any {
	if v == nil {
		return nil
	}
	out, _ := e.redactValue(reflect.ValueOf(v))
	return out.Interface()
}

// Format returns v as redacted text using the Default engine.
func Format(v any) string {
	return Default.Format(v)
}

// Format returns v as redacted text: through its template when it has
// one, otherwise as a rendering of its redacted copy.
func (e *Engine) Format(v any) string {
	return e.formatValue(reflect.ValueOf(v), false)
}

// FormatDebug is Format with quoted strings and type names.
func (e *Engine) FormatDebug(v any) string {
	return e.formatValue(reflect.ValueOf(v), true)
}

// Register validates T with the Default engine and caches its plans.
func Register[T any]() error {
	return RegisterWith[T](Default)
}

// RegisterWith validates T with engine e and caches its plans. Struct
// types are scanned with sentinel first, along with the types they
// reference, so their metadata is shared with other sentinel consumers.
func RegisterWith[T any](e *Engine) error {
	_, _ = sentinel.TryScan[T]()
	return e.validateType(reflect.TypeFor[T]())
}

// MustRegister is Register that panics on declaration errors. Intended for
// package init.
func MustRegister[T any]() {
	if err := Register[T](); err != nil {
		panic(err)
	}
}

// RegisterTemplate binds a template to the type of sample on the Default
// engine.
func RegisterTemplate(sample any, template string) error {
	return Default.RegisterTemplate(sample, template)
}

// Validate checks the declarations of sample's type with the Default engine.
func Validate(sample any) error {
	return Default.Validate(sample)
}

// Validate checks the declarations of sample's type: its structured plan
// and, when it has one, its template.
func (e *Engine) Validate(sample any) error {
	t := reflect.TypeOf(sample)
	if t == nil {
		return nil
	}
	return e.validateType(t)
}

func (e *Engine) validateType(t reflect.Type) error {
	inner, c := e.innermost(t)
	switch c {
	case CapabilityUnknown:
		return newDeclarationError(ErrUnknownCapability, inner.String(), "", "")
	case CapabilityContainer:
		if !isPlainStruct(inner) {
			return nil
		}
		if _, err := e.planFor(inner); err != nil {
			return err
		}
		_, err := e.displayFor(inner)
		return err
	default:
		return nil
	}
}

// Classify returns the capability of the type of sample.
func (e *Engine) Classify(sample any) Capability {
	t := reflect.TypeOf(sample)
	if t == nil {
		return CapabilityOpaque
	}
	return e.classify(t)
}

// FieldTreatments returns the treatment of every exported field of the
// struct type of sample, keyed by field name.
func (e *Engine) FieldTreatments(sample any) (map[string]Treatment, error) {
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || !isPlainStruct(t) {
		return nil, newDeclarationError(ErrNotContainer, typeString(t), "", "")
	}
	plan, err := e.planFor(t)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Treatment, len(plan.fields))
	for _, f := range plan.fields {
		out[f.name] = f.treatment
	}
	return out, nil
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}
