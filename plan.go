package shroud

import (
	"context"
	"reflect"
	"strings"

	"github.com/zoobzio/sentinel"
)

// tagKey is the struct tag that declares field treatment.
const tagKey = "redact"

// passthroughTag marks a field as explicitly not redacted.
const passthroughTag = "-"

func init() {
	sentinel.Tag(tagKey)
}

// typePlan is the static field table of a container type.
type typePlan struct {
	typ      reflect.Type
	typeName string
	fields   []fieldPlan
	policies int
	err      error
}

// fieldPlan describes how to treat a single exported field.
type fieldPlan struct {
	index     []int        // reflect.Value.FieldByIndex access path
	name      string       // Go field name
	jsonName  string       // name from the json tag, if any
	typ       reflect.Type // declared field type
	treatment Treatment
	policy    TextPolicy
	walk      bool // contents need walking even though the field is not a container
}

// planFor returns the cached plan for struct type t, building it and the
// plans of every container it reaches on first use.
func (e *Engine) planFor(t reflect.Type) (*typePlan, error) {
	// Fast path: read-lock cache check
	e.planMu.RLock()
	if cached, ok := e.plans[t]; ok {
		e.planMu.RUnlock()
		return cached, cached.err
	}
	e.planMu.RUnlock()

	// Slow path: build and cache with write-lock
	e.planMu.Lock()
	defer e.planMu.Unlock()

	// Double-check pattern
	if cached, ok := e.plans[t]; ok {
		return cached, cached.err
	}

	building := make(map[reflect.Type]*typePlan)
	plan, err := e.buildPlan(t, building)
	if err != nil {
		emitPlanRejected(context.Background(), t.String(), err)
		e.plans[t] = &typePlan{typ: t, typeName: t.String(), err: err}
		return nil, err
	}

	for bt, bp := range building {
		if _, ok := e.plans[bt]; ok {
			continue
		}
		e.plans[bt] = bp
		emitPlanRegistered(context.Background(), bp.typeName, len(bp.fields), bp.policies)
	}
	return plan, nil
}

// buildPlan classifies every field of t. Plans under construction are kept
// in building so self-referencing types terminate.
func (e *Engine) buildPlan(t reflect.Type, building map[reflect.Type]*typePlan) (*typePlan, error) {
	if p, ok := building[t]; ok {
		return p, nil
	}
	if p, ok := e.plans[t]; ok {
		return p, p.err
	}

	meta := scanType(t)
	plan := &typePlan{
		typ:      t,
		typeName: t.String(),
		fields:   make([]fieldPlan, 0, len(meta.Fields)),
	}
	building[t] = plan

	if err := checkUnexported(t, plan.typeName); err != nil {
		delete(building, t)
		return nil, err
	}

	for _, field := range meta.Fields {
		fp, err := e.treat(plan.typeName, field)
		if err != nil {
			delete(building, t)
			return nil, err
		}
		if fp.treatment == TreatPolicy {
			plan.policies++
		}
		if fp.treatment == TreatRecurse {
			if err := e.planNested(fp.typ, building); err != nil {
				delete(building, t)
				return nil, err
			}
		}
		plan.fields = append(plan.fields, fp)
	}

	return plan, nil
}

// planNested builds plans for the struct containers reachable through a
// recursed field's type.
func (e *Engine) planNested(t reflect.Type, building map[reflect.Type]*typePlan) error {
	inner, c := e.innermost(t)
	if c != CapabilityContainer || !isPlainStruct(inner) {
		return nil
	}
	_, err := e.buildPlan(inner, building)
	return err
}

// treat derives a field's Treatment from its type capability and tag.
// The first matching rule wins: explicit passthrough, then policy, then
// the default for the field's capability.
func (e *Engine) treat(typeName string, field sentinel.FieldMetadata) (fieldPlan, error) {
	fp := fieldPlan{
		index:    field.Index,
		name:     field.Name,
		jsonName: jsonName(field.Tags["json"]),
		typ:      field.ReflectType,
	}

	inner, c := e.innermost(field.ReflectType)
	tag, tagged := field.Tags[tagKey]

	switch {
	case tagged && tag == passthroughTag:
		switch {
		case c == CapabilityOpaque:
			return fp, newDeclarationError(ErrOpaquePassthrough, typeName, field.Name, inner.String())
		case isNotSensitive(inner):
			return fp, newDeclarationError(ErrRedundantPassthrough, typeName, field.Name, inner.String())
		case isSensitive(inner):
			return fp, newDeclarationError(ErrRawSensitive, typeName, field.Name, inner.String())
		}
		fp.treatment = TreatExplicitPassthrough

	case tagged && strings.TrimSpace(tag) == "":
		return fp, newDeclarationError(ErrMissingPolicy, typeName, field.Name, "")

	case tagged:
		policy, ok := e.resolvePolicy(tag)
		if !ok {
			return fp, newDeclarationError(ErrUnknownPolicy, typeName, field.Name, `"`+tag+`"`)
		}
		switch c {
		case CapabilityStringLeaf:
		case CapabilityScalarLeaf:
			if !policy.IsFull() {
				return fp, newDeclarationError(ErrScalarPolicy, typeName, field.Name, policy.String()+" on "+inner.String())
			}
		case CapabilityUnknown:
			return fp, newDeclarationError(ErrUnknownCapability, typeName, field.Name, inner.String())
		default:
			return fp, newDeclarationError(ErrPolicyOnContainer, typeName, field.Name, c.String()+" "+inner.String())
		}
		fp.treatment = TreatPolicy
		fp.policy = policy

	default:
		switch c {
		case CapabilityUnknown:
			return fp, newDeclarationError(ErrUnknownCapability, typeName, field.Name, inner.String())
		case CapabilityContainer, CapabilityDynamic:
			fp.treatment = TreatRecurse
			fp.walk = true
		case CapabilityOpaque:
			fp.treatment = TreatPassthrough
			fp.walk = true
		default:
			fp.treatment = TreatPassthrough
		}
	}

	return fp, nil
}

// checkUnexported rejects `redact` tags on unexported fields and embedded
// unexported containers. Unexported fields are copied as-is and never
// rendered, so neither can be honored.
func checkUnexported(t reflect.Type, typeName string) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.IsExported() {
			continue
		}
		if _, ok := sf.Tag.Lookup(tagKey); ok {
			return newDeclarationError(ErrUnexportedField, typeName, sf.Name, "")
		}
		if sf.Anonymous && promotesFields(sf.Type) {
			return newDeclarationError(ErrUnexportedField, typeName, sf.Name, "embedded container")
		}
	}
	return nil
}

// promotesFields reports whether an embedded type exposes exported fields.
func promotesFields(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

// scanType returns field metadata for a struct type, taken from sentinel's
// cache when RegisterWith has scanned the type. Only exported fields are
// included. The redact and json tags are read from the struct tag directly
// as well: sentinel drops empty tag values, and `redact:""` must be seen.
func scanType(rt reflect.Type) sentinel.Metadata {
	spec := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}
	cached, ok := sentinelFields(rt)

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		var fm sentinel.FieldMetadata
		if ok {
			fm = cached[len(spec.Fields)]
			tags := make(map[string]string, len(fm.Tags))
			for k, v := range fm.Tags {
				tags[k] = v
			}
			fm.Tags = tags
		} else {
			fm = sentinel.FieldMetadata{
				Name:        sf.Name,
				Type:        sf.Type.String(),
				ReflectType: sf.Type,
				Index:       sf.Index,
				Tags:        make(map[string]string, 2),
			}
		}
		for _, key := range []string{tagKey, "json"} {
			if val, found := sf.Tag.Lookup(key); found {
				fm.Tags[key] = val
			}
		}

		spec.Fields = append(spec.Fields, fm)
	}

	return spec
}

// sentinelFields returns sentinel's cached fields for rt. Sentinel keys its
// cache by bare type name, so the entry is used only when it describes rt's
// exported fields exactly.
func sentinelFields(rt reflect.Type) ([]sentinel.FieldMetadata, bool) {
	if rt.Name() == "" {
		return nil, false
	}
	meta, ok := sentinel.Lookup(rt.Name())
	if !ok || meta.PackageName != rt.PkgPath() {
		return nil, false
	}
	n := 0
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if n >= len(meta.Fields) {
			return nil, false
		}
		fm := meta.Fields[n]
		if fm.Name != sf.Name || fm.ReflectType != sf.Type {
			return nil, false
		}
		n++
	}
	if n != len(meta.Fields) {
		return nil, false
	}
	return meta.Fields, true
}

// jsonName extracts the field name from a json tag value.
func jsonName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

// isPlainStruct reports whether t is walked through its own plan rather
// than a wrapper or Redactable override.
func isPlainStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct &&
		!t.Implements(wrapperType) &&
		!reflect.PointerTo(t).Implements(redactableType)
}
