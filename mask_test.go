package shroud

import (
	"strings"
	"testing"
)

func TestContentPolicies(t *testing.T) {
	tests := []struct {
		name   string
		policy TextPolicy
		input  string
		want   string
	}{
		{"ssn dashed", SSNPolicy(), "123-45-6789", "***-**-6789"},
		{"ssn digits", SSNPolicy(), "123456789", "***-**-6789"},
		{"ssn short", SSNPolicy(), "12345", Placeholder},
		{"ssn empty", SSNPolicy(), "", Placeholder},
		{"uuid", UUIDPolicy(), "550e8400-e29b-41d4-a716-446655440000", "550e8400-****-****-****-************"},
		{"uuid malformed", UUIDPolicy(), "not-a-uuid", Placeholder},
		{"iban", IBANPolicy(), "GB82WEST12345698765432", "GB82**************5432"},
		{"iban short", IBANPolicy(), "GB82", Placeholder},
		{"name", PersonNamePolicy(), "John Smith", "J*** S****"},
		{"name single", PersonNamePolicy(), "Cher", "C***"},
		{"name blank", PersonNamePolicy(), "   ", Placeholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Apply(tt.input); got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractDigits(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"123-45-6789", "123456789"},
		{"(555) 123-4567", "5551234567"},
		{"abc", ""},
	}

	for _, tt := range tests {
		if got := extractDigits(tt.input); got != tt.want {
			t.Errorf("extractDigits(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

type engineMarked struct {
	SSN    string `redact:"ssn"`
	BadSSN string `redact:"ssn"`
	Name   string `redact:"name"`
	UUID   string `redact:"uuid"`
	IBAN   string `redact:"iban"`
	Digest string `redact:"sha256"`
	Key    string `redact:"secret"`
}

func TestContentPolicies_EngineMarkers(t *testing.T) {
	e := New(WithPlaceholder("<hidden>"), WithMaskChar('#'))
	got := RedactWith(e, engineMarked{
		SSN:    "123-45-6789",
		BadSSN: "12",
		Name:   "John Smith",
		UUID:   "550e8400-e29b-41d4-a716-446655440000",
		IBAN:   "GB82WEST12345698765432",
		Key:    "k",
	})

	want := engineMarked{
		SSN:    "###-##-6789",
		BadSSN: "<hidden>",
		Name:   "J### S####",
		UUID:   "550e8400-####-####-####-############",
		IBAN:   "GB82##############5432",
		Digest: "<hidden>",
		Key:    "<hidden>",
	}
	if got != want {
		t.Errorf("RedactWith() = %+v, want %+v", got, want)
	}

	line := e.Format(engineMarked{BadSSN: "12", Name: "John Smith", Key: "k"})
	if strings.Contains(line, Placeholder) || strings.Contains(line, "*") {
		t.Errorf("Format() = %q, mixes default markers with engine markers", line)
	}
}

func TestCustomWith(t *testing.T) {
	p := CustomWith("stars", func(text string, m Markers) string {
		if text == "" {
			return m.Placeholder
		}
		return strings.Repeat(string(m.Mask), len(text))
	})

	if got := p.Apply("abc"); got != "***" {
		t.Errorf("Apply() = %q, want %q", got, "***")
	}
	if got := p.WithMaskChar('#').Apply("abc"); got != "###" {
		t.Errorf("WithMaskChar('#').Apply() = %q, want %q", got, "###")
	}
	if got := New(WithPlaceholder("<x>")).adjust(p).Apply(""); got != "<x>" {
		t.Errorf("adjusted Apply(\"\") = %q, want %q", got, "<x>")
	}
	if got := CustomWith("nil", nil).Apply("abc"); got != Placeholder {
		t.Errorf("nil fn Apply() = %q, want %q", got, Placeholder)
	}
}
