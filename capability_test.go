package shroud

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"reflect"
	"testing"
	"time"
)

type capNested struct {
	Name string
}

type capList []capList

type capTree map[string]capTree

type capHoldsList struct {
	Items capList
}

type capNoExported struct {
	secret string //nolint:unused
}

type capSelf struct {
	Secret string
}

func (c *capSelf) Redact() {
	c.Secret = Placeholder
}

func TestClassify(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		typ  reflect.Type
		want Capability
	}{
		{"string", reflect.TypeFor[string](), CapabilityStringLeaf},
		{"named string", reflect.TypeFor[PolicyName](), CapabilityStringLeaf},
		{"bytes", reflect.TypeFor[[]byte](), CapabilityStringLeaf},
		{"int", reflect.TypeFor[int](), CapabilityScalarLeaf},
		{"bool", reflect.TypeFor[bool](), CapabilityScalarLeaf},
		{"float", reflect.TypeFor[float64](), CapabilityScalarLeaf},
		{"time", reflect.TypeFor[time.Time](), CapabilityScalarLeaf},
		{"netip addr", reflect.TypeFor[netip.Addr](), CapabilityScalarLeaf},
		{"struct", reflect.TypeFor[capNested](), CapabilityContainer},
		{"redactable", reflect.TypeFor[capSelf](), CapabilityContainer},
		{"sensitive", reflect.TypeFor[Sensitive[string, Secret]](), CapabilityContainer},
		{"not sensitive", reflect.TypeFor[NotSensitive[int]](), CapabilityContainer},
		{"pointer", reflect.TypeFor[*capNested](), CapabilityDelegating},
		{"pointer to sensitive", reflect.TypeFor[*Sensitive[string, Secret]](), CapabilityDelegating},
		{"slice", reflect.TypeFor[[]string](), CapabilityDelegating},
		{"array", reflect.TypeFor[[2]int](), CapabilityDelegating},
		{"map", reflect.TypeFor[map[string]int](), CapabilityDelegating},
		{"set", reflect.TypeFor[map[string]struct{}](), CapabilityDelegating},
		{"empty interface", reflect.TypeFor[any](), CapabilityOpaque},
		{"raw message", reflect.TypeFor[json.RawMessage](), CapabilityOpaque},
		{"stringer", reflect.TypeFor[fmt.Stringer](), CapabilityDynamic},
		{"chan", reflect.TypeFor[chan int](), CapabilityUnknown},
		{"func", reflect.TypeFor[func()](), CapabilityUnknown},
		{"no exported fields", reflect.TypeFor[capNoExported](), CapabilityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.classify(tt.typ); got != tt.want {
				t.Errorf("classify(%v) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestClassify_RegisteredScalar(t *testing.T) {
	e := New()
	if got := e.Classify(capNoExported{}); got != CapabilityUnknown {
		t.Fatalf("Classify() = %v, want %v", got, CapabilityUnknown)
	}

	e.RegisterScalar(capNoExported{})
	if got := e.Classify(capNoExported{}); got != CapabilityScalarLeaf {
		t.Errorf("Classify() after RegisterScalar = %v, want %v", got, CapabilityScalarLeaf)
	}

	other := New(WithScalars(capNoExported{}))
	if got := other.Classify(capNoExported{}); got != CapabilityScalarLeaf {
		t.Errorf("Classify() with WithScalars = %v, want %v", got, CapabilityScalarLeaf)
	}
}

func TestClassify_Nil(t *testing.T) {
	if got := New().Classify(nil); got != CapabilityOpaque {
		t.Errorf("Classify(nil) = %v, want %v", got, CapabilityOpaque)
	}
}

func TestInnermost(t *testing.T) {
	e := New()

	tests := []struct {
		name      string
		typ       reflect.Type
		wantType  reflect.Type
		wantClass Capability
	}{
		{"pointer to struct", reflect.TypeFor[*capNested](), reflect.TypeFor[capNested](), CapabilityContainer},
		{"map of slices", reflect.TypeFor[map[string][]string](), reflect.TypeFor[string](), CapabilityStringLeaf},
		{"set keys", reflect.TypeFor[map[string]struct{}](), reflect.TypeFor[string](), CapabilityStringLeaf},
		{"slice of any", reflect.TypeFor[[]any](), reflect.TypeFor[any](), CapabilityOpaque},
		{"leaf", reflect.TypeFor[int](), reflect.TypeFor[int](), CapabilityScalarLeaf},
		{"self slice", reflect.TypeFor[capList](), reflect.TypeFor[capList](), CapabilityUnknown},
		{"self map", reflect.TypeFor[capTree](), reflect.TypeFor[capTree](), CapabilityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotClass := e.innermost(tt.typ)
			if gotType != tt.wantType || gotClass != tt.wantClass {
				t.Errorf("innermost(%v) = (%v, %v), want (%v, %v)", tt.typ, gotType, gotClass, tt.wantType, tt.wantClass)
			}
		})
	}
}

func TestInnermost_SelfDelegating(t *testing.T) {
	e := New()

	if err := RegisterWith[capList](e); !errors.Is(err, ErrUnknownCapability) {
		t.Errorf("RegisterWith[capList]() error = %v, want %v", err, ErrUnknownCapability)
	}
	if err := RegisterWith[capHoldsList](e); !errors.Is(err, ErrUnknownCapability) {
		t.Errorf("RegisterWith[capHoldsList]() error = %v, want %v", err, ErrUnknownCapability)
	}

	out := RedactWith(e, capList{capList{}, nil})
	if len(out) != 2 || len(out[0]) != 0 || out[1] != nil {
		t.Errorf("RedactWith() = %#v", out)
	}
}

func TestCapabilityString(t *testing.T) {
	tests := map[Capability]string{
		CapabilityUnknown:    "unknown",
		CapabilityContainer:  "container",
		CapabilityScalarLeaf: "scalar",
		CapabilityStringLeaf: "string",
		CapabilityOpaque:     "opaque",
		CapabilityDelegating: "delegating",
		CapabilityDynamic:    "dynamic",
	}
	for c, want := range tests {
		if got := c.String(); got != want {
			t.Errorf("Capability(%d).String() = %q, want %q", int(c), got, want)
		}
	}
}

func TestTreatmentString(t *testing.T) {
	tests := map[Treatment]string{
		TreatRecurse:             "recurse",
		TreatPassthrough:         "passthrough",
		TreatPolicy:              "policy",
		TreatExplicitPassthrough: "explicit-passthrough",
	}
	for tr, want := range tests {
		if got := tr.String(); got != want {
			t.Errorf("Treatment(%d).String() = %q, want %q", int(tr), got, want)
		}
	}
}
