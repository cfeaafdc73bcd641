package shroud

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrUnknownPolicy indicates a `redact` tag names no registered policy.
	ErrUnknownPolicy = errors.New("unknown policy")

	// ErrMissingPolicy indicates a `redact` tag is present but empty.
	ErrMissingPolicy = errors.New("missing policy")

	// ErrPolicyOnContainer indicates a policy tag on a field that is not a leaf.
	ErrPolicyOnContainer = errors.New("policy on non-leaf field")

	// ErrScalarPolicy indicates a partial policy on a scalar leaf.
	ErrScalarPolicy = errors.New("scalar fields accept only full redaction")

	// ErrUnknownCapability indicates a type the classifier cannot inspect.
	ErrUnknownCapability = errors.New("unknown capability")

	// ErrOpaquePassthrough indicates `redact:"-"` on an opaque field.
	ErrOpaquePassthrough = errors.New("opaque values cannot be passed through")

	// ErrRedundantPassthrough indicates `redact:"-"` on a NotSensitive field.
	ErrRedundantPassthrough = errors.New("field is already not sensitive")

	// ErrRawSensitive indicates `redact:"-"` on a Sensitive field.
	ErrRawSensitive = errors.New("sensitive wrapper cannot be passed through")

	// ErrUnexportedField indicates a `redact` tag on an unexported field.
	ErrUnexportedField = errors.New("tag on unexported field")

	// ErrTemplate indicates malformed template syntax.
	ErrTemplate = errors.New("malformed template")

	// ErrUnknownPlaceholder indicates a template placeholder naming no field.
	ErrUnknownPlaceholder = errors.New("unknown placeholder")

	// ErrNotContainer indicates a template registered for a non-struct type.
	ErrNotContainer = errors.New("not a container type")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")
)

// DeclarationError reports an invalid combination of field type, tag and
// template. Declaration errors are detected when a type is registered or
// first used, never while walking a value.
type DeclarationError struct {
	Err    error  // Underlying sentinel error (ErrUnknownPolicy, etc.)
	Type   string // Type that declared the field
	Field  string // Field name, empty for type-level errors
	Detail string // Offending tag, placeholder or type
}

func (e *DeclarationError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Detail)
	}
	switch {
	case e.Type != "" && e.Field != "":
		return fmt.Sprintf("%s (field %s.%s)", msg, e.Type, e.Field)
	case e.Type != "":
		return fmt.Sprintf("%s (type %s)", msg, e.Type)
	default:
		return msg
	}
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}

// CodecError represents a marshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// newDeclarationError creates a DeclarationError for a field or type.
func newDeclarationError(sentinel error, typeName, field, detail string) *DeclarationError {
	return &DeclarationError{
		Err:    sentinel,
		Type:   typeName,
		Field:  field,
		Detail: detail,
	}
}

// newCodecError creates a CodecError for marshal failures.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
