package shroud

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/zoobzio/sentinel"
)

// Templated is implemented by types that carry their own display template.
// Each variant of a sum type is a distinct struct with its own template.
//
//	func (LoginFailed) RedactTemplate() string {
//	    return "login failed for {user} with {password}"
//	}
type Templated interface {
	RedactTemplate() string
}

var templatedType = reflect.TypeFor[Templated]()

// token is one parsed piece of a template: literal text or a placeholder.
type token struct {
	literal     string
	placeholder bool
	name        string // field name, empty for positional references
	position    int    // positional index when name is empty
	debug       bool
}

// parseTemplate scans tpl with a two-state machine. Outside a placeholder,
// runes are copied and doubled braces are escapes; inside, the text up to
// the closing brace is a field reference with an optional ":?" modifier.
func parseTemplate(tpl string) ([]token, error) {
	var (
		tokens   []token
		literal  strings.Builder
		implicit int
	)

	flush := func() {
		if literal.Len() > 0 {
			tokens = append(tokens, token{literal: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(tpl); i++ {
		c := tpl[i]
		switch c {
		case '{':
			if i+1 < len(tpl) && tpl[i+1] == '{' {
				literal.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexAny(tpl[i+1:], "{}")
			if end < 0 || tpl[i+1+end] != '}' {
				return nil, fmt.Errorf("unmatched '{' at offset %d", i)
			}
			tok, err := parsePlaceholder(tpl[i+1:i+1+end], &implicit)
			if err != nil {
				return nil, err
			}
			flush()
			tokens = append(tokens, tok)
			i += end + 1

		case '}':
			if i+1 < len(tpl) && tpl[i+1] == '}' {
				literal.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("unmatched '}' at offset %d", i)

		default:
			literal.WriteByte(c)
		}
	}
	flush()
	return tokens, nil
}

// parsePlaceholder parses "name", "0", "" or any of those followed by a
// format spec. Only the debug spec "?" is supported.
func parsePlaceholder(body string, implicit *int) (token, error) {
	ref, spec, hasSpec := strings.Cut(body, ":")
	ref = strings.TrimSpace(ref)
	tok := token{placeholder: true}

	if hasSpec {
		switch spec {
		case "?", "#?":
			tok.debug = true
		case "":
		default:
			return tok, fmt.Errorf("unsupported format spec %q", spec)
		}
	}

	switch {
	case ref == "":
		tok.position = *implicit
		*implicit++
	case isDigits(ref):
		n, err := strconv.Atoi(ref)
		if err != nil {
			return tok, fmt.Errorf("invalid index %q", ref)
		}
		tok.position = n
	case isIdentifier(ref):
		tok.name = ref
	default:
		return tok, fmt.Errorf("invalid placeholder %q", ref)
	}
	return tok, nil
}

// segment is a resolved template token.
type segment struct {
	literal string
	field   *fieldPlan
	debug   bool
}

// displayPlan is a compiled template bound to a struct type.
type displayPlan struct {
	typ      reflect.Type
	template string
	segments []segment
}

// displayFor returns the compiled template of t, or nil when t has none.
func (e *Engine) displayFor(t reflect.Type) (*displayPlan, error) {
	e.planMu.RLock()
	cached, ok := e.displays[t]
	e.planMu.RUnlock()
	if ok {
		return cached, nil
	}

	tpl, ok := e.templateFor(t)
	if !ok {
		return nil, nil
	}
	plan, err := e.compileDisplay(t, tpl, map[reflect.Type]bool{})
	if err != nil {
		emitPlanRejected(context.Background(), t.String(), err)
		return nil, err
	}

	e.planMu.Lock()
	e.displays[t] = plan
	e.planMu.Unlock()
	return plan, nil
}

// compileDisplay parses tpl and classifies only the fields it references.
// Containers reached through referenced fields are validated too, through
// their own template or their structured plan.
func (e *Engine) compileDisplay(t reflect.Type, tpl string, visiting map[reflect.Type]bool) (*displayPlan, error) {
	typeName := t.String()
	tokens, err := parseTemplate(tpl)
	if err != nil {
		return nil, newDeclarationError(ErrTemplate, typeName, "", err.Error())
	}
	visiting[t] = true

	meta := scanType(t)
	plan := &displayPlan{typ: t, template: tpl}
	for _, tok := range tokens {
		if !tok.placeholder {
			plan.segments = append(plan.segments, segment{literal: tok.literal})
			continue
		}

		idx := -1
		if tok.name != "" {
			idx = lookupField(meta.Fields, tok.name)
		} else if tok.position < len(meta.Fields) {
			idx = tok.position
		}
		if idx < 0 {
			ref := tok.name
			if ref == "" {
				ref = strconv.Itoa(tok.position)
			}
			return nil, newDeclarationError(ErrUnknownPlaceholder, typeName, "", "{"+ref+"}")
		}

		fp, err := e.treat(typeName, meta.Fields[idx])
		if err != nil {
			return nil, err
		}
		if fp.treatment == TreatRecurse {
			if err := e.validateNested(fp.typ, visiting); err != nil {
				return nil, err
			}
		}
		plan.segments = append(plan.segments, segment{field: &fp, debug: tok.debug})
	}
	return plan, nil
}

// validateNested checks the container behind a referenced field.
func (e *Engine) validateNested(t reflect.Type, visiting map[reflect.Type]bool) error {
	inner, c := e.innermost(t)
	if c != CapabilityContainer || !isPlainStruct(inner) || visiting[inner] {
		return nil
	}
	if tpl, ok := e.templateFor(inner); ok {
		_, err := e.compileDisplay(inner, tpl, visiting)
		return err
	}
	_, err := e.planFor(inner)
	return err
}

// lookupField resolves a placeholder name against Go field names, then json
// tag names, then Go field names ignoring case.
func lookupField(fields []sentinel.FieldMetadata, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	for i, f := range fields {
		if jsonName(f.Tags["json"]) == name {
			return i
		}
	}
	for i, f := range fields {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}
