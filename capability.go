package shroud

import (
	"encoding/json"
	"net/netip"
	"reflect"
	"time"
)

// Capability classifies a type, not an instance, by how redaction treats it.
type Capability int

const (
	// CapabilityUnknown marks types the classifier cannot inspect: channels,
	// functions and structs without exported fields. Using one in a field
	// without `redact:"-"` is a declaration error.
	CapabilityUnknown Capability = iota

	// CapabilityContainer values are walked field by field.
	CapabilityContainer

	// CapabilityScalarLeaf values can only be replaced by their zero value.
	CapabilityScalarLeaf

	// CapabilityStringLeaf values accept any text policy.
	CapabilityStringLeaf

	// CapabilityOpaque values are always fully redacted.
	CapabilityOpaque

	// CapabilityDelegating values wrap other values and forward treatment
	// to them: pointers, slices, arrays, maps and sets.
	CapabilityDelegating

	// CapabilityDynamic values are non-empty interfaces, classified by
	// their concrete type while walking.
	CapabilityDynamic
)

func (c Capability) String() string {
	switch c {
	case CapabilityContainer:
		return "container"
	case CapabilityScalarLeaf:
		return "scalar"
	case CapabilityStringLeaf:
		return "string"
	case CapabilityOpaque:
		return "opaque"
	case CapabilityDelegating:
		return "delegating"
	case CapabilityDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Treatment is the per-field decision derived from a field's capability and
// its `redact` tag. It is fixed once the type's plan is built.
type Treatment int

const (
	// TreatRecurse walks the field's value.
	TreatRecurse Treatment = iota

	// TreatPassthrough copies an untagged leaf unchanged.
	TreatPassthrough

	// TreatPolicy applies the field's policy to every contained leaf.
	TreatPolicy

	// TreatExplicitPassthrough copies a `redact:"-"` field unchanged.
	TreatExplicitPassthrough
)

func (t Treatment) String() string {
	switch t {
	case TreatRecurse:
		return "recurse"
	case TreatPassthrough:
		return "passthrough"
	case TreatPolicy:
		return "policy"
	case TreatExplicitPassthrough:
		return "explicit-passthrough"
	default:
		return "unknown"
	}
}

var (
	rawMessageType = reflect.TypeFor[json.RawMessage]()
	emptyStruct    = reflect.TypeFor[struct{}]()
	redactableType = reflect.TypeFor[Redactable]()
	wrapperType    = reflect.TypeFor[wrapper]()
)

// builtinScalars are struct types without exported fields that carry no
// nested values and are safe to treat as scalar leaves.
var builtinScalars = []reflect.Type{
	reflect.TypeFor[time.Time](),
	reflect.TypeFor[time.Location](),
	reflect.TypeFor[netip.Addr](),
	reflect.TypeFor[netip.Prefix](),
	reflect.TypeFor[netip.AddrPort](),
}

// classify returns the capability of t. It is pure: the result depends only
// on t and the engine's registered scalar types.
func (e *Engine) classify(t reflect.Type) Capability {
	if e.isScalarType(t) {
		return CapabilityScalarLeaf
	}
	if t == rawMessageType {
		return CapabilityOpaque
	}
	if k := t.Kind(); k != reflect.Pointer && k != reflect.Interface {
		if t.Implements(wrapperType) || reflect.PointerTo(t).Implements(redactableType) {
			return CapabilityContainer
		}
	}

	switch t.Kind() {
	case reflect.String:
		return CapabilityStringLeaf
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return CapabilityScalarLeaf
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return CapabilityStringLeaf
		}
		return CapabilityDelegating
	case reflect.Pointer, reflect.Array, reflect.Map:
		return CapabilityDelegating
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return CapabilityOpaque
		}
		return CapabilityDynamic
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).IsExported() {
				return CapabilityContainer
			}
		}
		return CapabilityUnknown
	default:
		return CapabilityUnknown
	}
}

// isSet reports whether t is a map used as a set (map[K]struct{}).
func isSet(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Elem() == emptyStruct
}

// delegate returns the type a delegating container forwards treatment to.
// Sets forward to their keys, maps to their values.
func delegate(t reflect.Type) reflect.Type {
	if isSet(t) {
		return t.Key()
	}
	return t.Elem()
}

// innermost unwraps delegating containers until a non-delegating type is
// reached and returns its capability. A delegating type that contains
// itself with no struct in between, such as `type L []L`, has no leaf and
// is reported as CapabilityUnknown.
func (e *Engine) innermost(t reflect.Type) (reflect.Type, Capability) {
	var seen map[reflect.Type]bool
	for {
		c := e.classify(t)
		if c != CapabilityDelegating {
			return t, c
		}
		if seen == nil {
			seen = make(map[reflect.Type]bool)
		}
		if seen[t] {
			return t, CapabilityUnknown
		}
		seen[t] = true
		t = delegate(t)
	}
}

// isScalarType reports whether t was registered as an opaque-safe scalar.
func (e *Engine) isScalarType(t reflect.Type) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scalars[t]
}
