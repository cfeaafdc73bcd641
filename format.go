package shroud

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// formatValue is the redacted formatting entry point for any value. Structs
// with a template are formatted through it; everything else is rendered
// from its redacted copy.
func (e *Engine) formatValue(v reflect.Value, debug bool) string {
	f := &formatter{e: e, seen: make(map[visitKey]bool)}
	return f.format(v, debug)
}

// formatter tracks pointers already entered so cyclic values terminate.
type formatter struct {
	e    *Engine
	seen map[visitKey]bool
}

func (f *formatter) format(v reflect.Value, debug bool) string {
	if !v.IsValid() {
		return "<nil>"
	}
	t := v.Type()

	switch t.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return "<nil>"
		}
		key := visitKey{ptr: v.Pointer(), typ: t}
		if f.seen[key] {
			return "<cycle>"
		}
		f.seen[key] = true
		defer delete(f.seen, key)
		return f.format(v.Elem(), debug)
	case reflect.Interface:
		if v.IsNil() {
			return "<nil>"
		}
		if f.e.classify(t) == CapabilityDynamic && !f.e.walkable(v.Elem().Type()) && f.e.Mode() == ModeRedacted {
			return f.e.Placeholder()
		}
		return f.format(v.Elem(), debug)
	}

	if wr, ok := v.Interface().(wrapper); ok {
		return wr.formatWith(f.e, debug)
	}
	if isPlainStruct(t) {
		dp, err := f.e.displayFor(t)
		if err != nil {
			panic(err)
		}
		if dp != nil {
			return f.display(v, dp)
		}
	}

	if f.perElement(t) {
		return f.elements(v, debug)
	}

	redacted, _ := f.e.redactValue(v)
	return render(redacted, debug)
}

// perElement reports whether t is a slice, array or map whose elements must
// be formatted one at a time: templated structs and dynamic values go
// through their own entry point rather than the redacted copy.
func (f *formatter) perElement(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return false
		}
	case reflect.Array, reflect.Map:
	default:
		return false
	}
	inner, c := f.e.innermost(t)
	switch c {
	case CapabilityDynamic:
		return true
	case CapabilityContainer:
		if !isPlainStruct(inner) {
			return false
		}
		_, ok := f.e.templateFor(inner)
		return ok
	default:
		return false
	}
}

// elements formats each element with format. Map keys are printed as-is
// unless the map is a set, whose keys are its elements.
func (f *formatter) elements(v reflect.Value, debug bool) string {
	sep := " "
	if debug {
		sep = ", "
	}

	if v.Kind() != reflect.Map {
		if v.Kind() == reflect.Slice && v.IsNil() {
			return "[]"
		}
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = f.format(v.Index(i), debug)
		}
		return "[" + strings.Join(parts, sep) + "]"
	}

	set := isSet(v.Type())
	parts := make([]string, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		if set {
			parts = append(parts, f.format(iter.Key(), debug))
			continue
		}
		parts = append(parts, render(iter.Key(), debug)+":"+f.format(iter.Value(), debug))
	}
	sort.Strings(parts)
	return "map[" + strings.Join(parts, sep) + "]"
}

// display writes literals verbatim and formats each referenced field.
// Fields the template does not reference are never read.
func (f *formatter) display(v reflect.Value, dp *displayPlan) string {
	var b strings.Builder
	for _, seg := range dp.segments {
		if seg.field == nil {
			b.WriteString(seg.literal)
			continue
		}
		b.WriteString(f.field(v.FieldByIndex(seg.field.index), seg.field, seg.debug))
	}
	return b.String()
}

func (f *formatter) field(v reflect.Value, fp *fieldPlan, debug bool) string {
	if f.e.Mode() == ModeUnredacted {
		return renderRaw(v, debug)
	}
	switch fp.treatment {
	case TreatPolicy:
		w := &walker{e: f.e, seen: make(map[visitKey]reflect.Value)}
		return render(w.applyPolicy(v, fp.policy), debug)
	case TreatRecurse:
		return f.format(v, debug)
	case TreatPassthrough:
		if fp.walk {
			redacted, _ := f.e.redactValue(v)
			return render(redacted, debug)
		}
		return render(v, debug)
	default:
		return renderRaw(v, debug)
	}
}

// renderRaw formats v with its own formatting methods. Used only for
// explicit passthrough fields and unredacted mode.
func renderRaw(v reflect.Value, debug bool) string {
	if !v.IsValid() {
		return "<nil>"
	}
	if debug {
		if v.Kind() == reflect.String {
			return strconv.Quote(v.String())
		}
		return fmt.Sprintf("%+v", v)
	}
	return fmt.Sprintf("%v", v)
}

// render prints an already redacted value. Struct fields are printed by
// name and unexported fields are skipped, since traversal copies them
// unchanged. Wrappers and registered scalars use their own formatting.
func render(v reflect.Value, debug bool) string {
	r := &renderer{debug: debug, seen: make(map[visitKey]bool)}
	r.value(v)
	return r.b.String()
}

type renderer struct {
	b     strings.Builder
	debug bool
	seen  map[visitKey]bool
}

func (r *renderer) value(v reflect.Value) {
	if !v.IsValid() {
		r.b.WriteString("<nil>")
		return
	}
	t := v.Type()

	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case wrapper:
			r.b.WriteString(x.formatWith(nil, r.debug))
			return
		case RedactedOutput:
			r.text(x.Text())
			return
		}
	}

	switch t.Kind() {
	case reflect.String:
		r.text(v.String())

	case reflect.Struct:
		if !hasExportedFields(t) {
			fmt.Fprintf(&r.b, "%v", v)
			return
		}
		if r.debug {
			r.b.WriteString(t.Name())
		}
		r.b.WriteByte('{')
		first := true
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			if !first {
				r.sep()
			}
			first = false
			r.b.WriteString(sf.Name)
			r.b.WriteByte(':')
			r.value(v.Field(i))
		}
		r.b.WriteByte('}')

	case reflect.Pointer:
		if v.IsNil() {
			r.b.WriteString("<nil>")
			return
		}
		key := visitKey{ptr: v.Pointer(), typ: t}
		if r.seen[key] {
			r.b.WriteString("<cycle>")
			return
		}
		r.seen[key] = true
		r.b.WriteByte('&')
		r.value(v.Elem())
		delete(r.seen, key)

	case reflect.Interface:
		if v.IsNil() {
			r.b.WriteString("<nil>")
			return
		}
		r.value(v.Elem())

	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			r.text(string(v.Bytes()))
			return
		}
		r.b.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				r.sep()
			}
			r.value(v.Index(i))
		}
		r.b.WriteByte(']')

	case reflect.Map:
		r.mapValue(v)

	default:
		fmt.Fprintf(&r.b, "%v", v)
	}
}

// mapValue prints entries sorted by their rendered key, like fmt does.
func (r *renderer) mapValue(v reflect.Value) {
	type entry struct{ key, val string }
	entries := make([]entry, 0, v.Len())
	set := isSet(v.Type())
	iter := v.MapRange()
	for iter.Next() {
		kr := &renderer{debug: r.debug, seen: r.seen}
		kr.value(iter.Key())
		e := entry{key: kr.b.String()}
		if !set {
			vr := &renderer{debug: r.debug, seen: r.seen}
			vr.value(iter.Value())
			e.val = vr.b.String()
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	r.b.WriteString("map[")
	for i, e := range entries {
		if i > 0 {
			r.sep()
		}
		r.b.WriteString(e.key)
		if !set {
			r.b.WriteByte(':')
			r.b.WriteString(e.val)
		}
	}
	r.b.WriteByte(']')
}

func (r *renderer) text(s string) {
	if r.debug {
		r.b.WriteString(strconv.Quote(s))
		return
	}
	r.b.WriteString(s)
}

func (r *renderer) sep() {
	if r.debug {
		r.b.WriteString(", ")
		return
	}
	r.b.WriteByte(' ')
}

func hasExportedFields(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}
