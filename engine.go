package shroud

import (
	"reflect"
	"sync"
)

// Mode selects whether formatting and traversal redact.
type Mode int

const (
	// ModeRedacted applies every declared policy. It is the default.
	ModeRedacted Mode = iota

	// ModeUnredacted returns values unchanged. Intended for tests that need
	// to compare raw output; pass it explicitly with WithMode.
	ModeUnredacted
)

// Option configures an Engine.
type Option func(*Engine)

// WithPlaceholder replaces the marker used by full redaction and opaque values.
func WithPlaceholder(placeholder string) Option {
	return func(e *Engine) {
		if placeholder != "" {
			e.placeholder = placeholder
		}
	}
}

// WithMaskChar replaces the default mask rune of named policies.
func WithMaskChar(r rune) Option {
	return func(e *Engine) {
		e.maskChar = r
	}
}

// WithMode sets the engine's redaction mode.
func WithMode(m Mode) Option {
	return func(e *Engine) {
		e.mode = m
	}
}

// WithPolicy registers or overrides a named policy.
func WithPolicy(name PolicyName, p TextPolicy) Option {
	return func(e *Engine) {
		e.policies[name] = p
	}
}

// WithScalars registers the types of samples as scalar leaves. Use it for
// foreign struct types with no exported fields and no sensitive content.
func WithScalars(samples ...any) Option {
	return func(e *Engine) {
		for _, s := range samples {
			if t := reflect.TypeOf(s); t != nil {
				e.scalars[t] = true
			}
		}
	}
}

// Engine holds named policies, registered templates and cached per-type
// plans. Engines are safe for concurrent use. Configure an engine before
// its first Redact or Format call; configuration changes discard cached
// plans.
type Engine struct {
	mu          sync.RWMutex
	placeholder string
	maskChar    rune
	mode        Mode
	policies    map[PolicyName]TextPolicy
	scalars     map[reflect.Type]bool
	templates   map[reflect.Type]string

	planMu   sync.RWMutex
	plans    map[reflect.Type]*typePlan
	displays map[reflect.Type]*displayPlan
}

// Default is the engine behind the package-level functions.
var Default = New()

// New creates an Engine with the built-in policies and scalar types.
func New(opts ...Option) *Engine {
	e := &Engine{
		placeholder: Placeholder,
		maskChar:    MaskChar,
		policies:    builtinPolicies(),
		scalars:     make(map[reflect.Type]bool, len(builtinScalars)),
		templates:   make(map[reflect.Type]string),
		plans:       make(map[reflect.Type]*typePlan),
		displays:    make(map[reflect.Type]*displayPlan),
	}
	for _, t := range builtinScalars {
		e.scalars[t] = true
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode returns the engine's redaction mode.
func (e *Engine) Mode() Mode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mode
}

// Placeholder returns the engine's full redaction marker.
func (e *Engine) Placeholder() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.placeholder
}

// SetPolicy registers a named policy. Returns the engine for chaining.
func (e *Engine) SetPolicy(name PolicyName, p TextPolicy) *Engine {
	e.mu.Lock()
	e.policies[name] = p
	e.mu.Unlock()
	e.invalidate()
	return e
}

// RegisterScalar registers the types of samples as scalar leaves.
// Returns the engine for chaining.
func (e *Engine) RegisterScalar(samples ...any) *Engine {
	e.mu.Lock()
	WithScalars(samples...)(e)
	e.mu.Unlock()
	e.invalidate()
	return e
}

// RegisterTemplate binds a display template to the type of sample and
// validates it. Only fields referenced by the template are checked.
func (e *Engine) RegisterTemplate(sample any, template string) error {
	t := reflect.TypeOf(sample)
	if t == nil {
		return newDeclarationError(ErrNotContainer, "nil", "", "")
	}
	if t.Kind() != reflect.Struct {
		return newDeclarationError(ErrNotContainer, t.String(), "", "")
	}
	if _, err := e.compileDisplay(t, template, map[reflect.Type]bool{}); err != nil {
		return err
	}

	e.mu.Lock()
	e.templates[t] = template
	e.mu.Unlock()

	e.planMu.Lock()
	delete(e.displays, t)
	e.planMu.Unlock()
	return nil
}

// Reset discards cached plans. Registered policies and templates are kept.
func (e *Engine) Reset() {
	e.invalidate()
}

// resolvePolicy looks up a tag value and applies engine-wide defaults.
func (e *Engine) resolvePolicy(tag string) (TextPolicy, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := parsePolicy(e.policies, tag)
	if !ok {
		return TextPolicy{}, false
	}
	return e.adjustLocked(p), true
}

// adjust applies the engine's placeholder and mask rune to a policy that
// still uses the package defaults.
func (e *Engine) adjust(p TextPolicy) TextPolicy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.adjustLocked(p)
}

func (e *Engine) adjustLocked(p TextPolicy) TextPolicy {
	if p.placeholder == Placeholder || p.placeholder == "" {
		p = p.withPlaceholder(e.placeholder)
	}
	if p.mask == MaskChar {
		p = p.WithMaskChar(e.maskChar)
	}
	return p
}

// templateFor returns the registered or self-declared template for t.
func (e *Engine) templateFor(t reflect.Type) (string, bool) {
	e.mu.RLock()
	tpl, ok := e.templates[t]
	e.mu.RUnlock()
	if ok {
		return tpl, true
	}
	if t.Kind() != reflect.Struct {
		return "", false
	}
	if t.Implements(templatedType) {
		return reflect.Zero(t).Interface().(Templated).RedactTemplate(), true
	}
	if reflect.PointerTo(t).Implements(templatedType) {
		return reflect.New(t).Interface().(Templated).RedactTemplate(), true
	}
	return "", false
}

func (e *Engine) invalidate() {
	e.planMu.Lock()
	defer e.planMu.Unlock()
	e.plans = make(map[reflect.Type]*typePlan)
	e.displays = make(map[reflect.Type]*displayPlan)
}
