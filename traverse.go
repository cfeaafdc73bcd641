package shroud

import (
	"encoding/json"
	"reflect"
	"strconv"
)

// visitKey identifies a pointer already copied during one traversal.
type visitKey struct {
	ptr uintptr
	typ reflect.Type
}

// walker produces a redacted copy of one value. It is not shared between
// calls.
type walker struct {
	e        *Engine
	seen     map[visitKey]reflect.Value
	redacted int
}

// redactValue returns a redacted copy of v and the number of leaves that
// were transformed. Declaration errors panic with *DeclarationError.
func (e *Engine) redactValue(v reflect.Value) (reflect.Value, int) {
	if !v.IsValid() || e.Mode() == ModeUnredacted {
		return v, 0
	}
	w := &walker{e: e, seen: make(map[visitKey]reflect.Value)}
	return w.walk(v), w.redacted
}

func (w *walker) walk(v reflect.Value) reflect.Value {
	switch w.e.classify(v.Type()) {
	case CapabilityOpaque:
		return w.opaque(v)
	case CapabilityContainer:
		return w.walkContainer(v)
	case CapabilityDelegating:
		return w.walkDelegating(v)
	case CapabilityDynamic:
		return w.walkDynamic(v)
	default:
		return v
	}
}

// opaque replaces a schema-less value with the placeholder. Nil interfaces
// carry nothing and stay nil.
func (w *walker) opaque(v reflect.Value) reflect.Value {
	t := v.Type()
	placeholder := w.e.Placeholder()
	if t == rawMessageType {
		if v.IsNil() {
			return v
		}
		w.redacted++
		return reflect.ValueOf(json.RawMessage(strconv.Quote(placeholder)))
	}
	if v.IsNil() {
		return v
	}
	w.redacted++
	out := reflect.New(t).Elem()
	out.Set(reflect.ValueOf(placeholder))
	return out
}

func (w *walker) walkContainer(v reflect.Value) reflect.Value {
	t := v.Type()
	if wr, ok := v.Interface().(wrapper); ok {
		if wr.wrapperKind() == kindSensitive {
			w.redacted++
		}
		out := reflect.New(t).Elem()
		out.Set(reflect.ValueOf(wr.redactWith(w.e)))
		return out
	}
	if reflect.PointerTo(t).Implements(redactableType) {
		cp := reflect.New(t)
		cp.Elem().Set(v)
		cp.Interface().(Redactable).Redact()
		w.redacted++
		return cp.Elem()
	}

	plan, err := w.e.planFor(t)
	if err != nil {
		panic(err)
	}

	out := reflect.New(t).Elem()
	out.Set(v)
	for _, f := range plan.fields {
		src := v.FieldByIndex(f.index)
		switch f.treatment {
		case TreatRecurse:
			out.FieldByIndex(f.index).Set(w.walk(src))
		case TreatPassthrough:
			if f.walk {
				out.FieldByIndex(f.index).Set(w.walk(src))
			}
		case TreatPolicy:
			out.FieldByIndex(f.index).Set(w.applyPolicy(src, f.policy))
		}
	}
	return out
}

func (w *walker) walkDelegating(v reflect.Value) reflect.Value {
	t := v.Type()
	switch t.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		key := visitKey{ptr: v.Pointer(), typ: t}
		if p, ok := w.seen[key]; ok {
			return p
		}
		np := reflect.New(t.Elem())
		w.seen[key] = np
		np.Elem().Set(w.walk(v.Elem()))
		return np

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		ns := reflect.MakeSlice(t, v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			ns.Index(i).Set(w.walk(v.Index(i)))
		}
		return ns

	case reflect.Array:
		na := reflect.New(t).Elem()
		for i := 0; i < v.Len(); i++ {
			na.Index(i).Set(w.walk(v.Index(i)))
		}
		return na

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		set := isSet(t)
		nm := reflect.MakeMapWithSize(t, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			if set {
				nm.SetMapIndex(w.walk(iter.Key()), iter.Value())
			} else {
				nm.SetMapIndex(iter.Key(), w.walk(iter.Value()))
			}
		}
		return nm
	}
	return v
}

// walkDynamic dispatches on the concrete type behind a non-empty interface.
// Walkable containers are recursed; anything else is dropped to nil.
func (w *walker) walkDynamic(v reflect.Value) reflect.Value {
	if v.IsNil() {
		return v
	}
	concrete := v.Elem()
	out := reflect.New(v.Type()).Elem()
	if !w.e.walkable(concrete.Type()) {
		w.redacted++
		return out
	}
	out.Set(w.walk(concrete))
	return out
}

// applyPolicy applies p to every leaf under v, preserving the shape of any
// delegating containers. Sets may lose elements when two leaves redact to
// the same text.
func (w *walker) applyPolicy(v reflect.Value, p TextPolicy) reflect.Value {
	t := v.Type()
	switch w.e.classify(t) {
	case CapabilityStringLeaf:
		out := reflect.New(t).Elem()
		if t.Kind() == reflect.String {
			w.redacted++
			out.SetString(p.Apply(v.String()))
			return out
		}
		if v.IsNil() {
			return v
		}
		w.redacted++
		out.SetBytes([]byte(p.Apply(string(v.Bytes()))))
		return out

	case CapabilityScalarLeaf:
		w.redacted++
		return reflect.Zero(t)

	case CapabilityDelegating:
		switch t.Kind() {
		case reflect.Pointer:
			if v.IsNil() {
				return v
			}
			np := reflect.New(t.Elem())
			np.Elem().Set(w.applyPolicy(v.Elem(), p))
			return np

		case reflect.Slice:
			if v.IsNil() {
				return v
			}
			ns := reflect.MakeSlice(t, v.Len(), v.Len())
			for i := 0; i < v.Len(); i++ {
				ns.Index(i).Set(w.applyPolicy(v.Index(i), p))
			}
			return ns

		case reflect.Array:
			na := reflect.New(t).Elem()
			for i := 0; i < v.Len(); i++ {
				na.Index(i).Set(w.applyPolicy(v.Index(i), p))
			}
			return na

		case reflect.Map:
			if v.IsNil() {
				return v
			}
			set := isSet(t)
			nm := reflect.MakeMapWithSize(t, v.Len())
			iter := v.MapRange()
			for iter.Next() {
				if set {
					nm.SetMapIndex(w.applyPolicy(iter.Key(), p), iter.Value())
				} else {
					nm.SetMapIndex(iter.Key(), w.applyPolicy(iter.Value(), p))
				}
			}
			return nm
		}
	}
	return v
}

// walkable reports whether a concrete type behind an interface can be
// recursed into without a declaration error.
func (e *Engine) walkable(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		return e.walkable(t.Elem())
	}
	if e.classify(t) != CapabilityContainer {
		return false
	}
	if !isPlainStruct(t) {
		return true
	}
	_, err := e.planFor(t)
	return err == nil
}
