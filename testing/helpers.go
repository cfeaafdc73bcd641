// Package testing provides fixtures and assertions for code that redacts
// with shroud.
package testing

import (
	"context"
	"strings"
	"testing"

	"github.com/zoobzio/shroud"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// Raw values used by the fixtures. Assertions check that none of them
// appear in redacted output.
const (
	RawEmail    = "alice@example.com"
	RawPassword = "hunter2-correct-horse"
	RawCard     = "4111111111111234"
	RawSSN      = "123-45-6789"
	RawAPIKey   = "sk_live_abcd1234"
)

// User is a fixture with string, scalar, nested and wrapped sensitive fields.
type User struct {
	ID       string                                 `json:"id" xml:"id" yaml:"id" bson:"id"`
	Name     string                                 `json:"name" xml:"name" yaml:"name" bson:"name"`
	Email    string                                 `json:"email" xml:"email" yaml:"email" bson:"email" redact:"email"`
	Password string                                 `json:"password" xml:"password" yaml:"password" bson:"password" redact:"secret"`
	Card     string                                 `json:"card" xml:"card" yaml:"card" bson:"card" redact:"card"`
	SSN      string                                 `json:"ssn" xml:"ssn" yaml:"ssn" bson:"ssn" redact:"ssn"`
	Age      int                                    `json:"age" xml:"age" yaml:"age" bson:"age" redact:"secret"`
	APIKey   shroud.Sensitive[string, shroud.Token] `json:"api_key" xml:"api_key" yaml:"api_key" bson:"api_key"`
	Address  Address                                `json:"address" xml:"address" yaml:"address" bson:"address"`
}

// Address is nested inside User.
type Address struct {
	City   string `json:"city" xml:"city" yaml:"city" bson:"city"`
	Street string `json:"street" xml:"street" yaml:"street" bson:"street" redact:"pii"`
}

// LoginFailed is a fixture with a display template.
type LoginFailed struct {
	User     string `json:"user"`
	Password string `json:"password" redact:"secret"`
}

// RedactTemplate implements shroud.Templated.
func (LoginFailed) RedactTemplate() string {
	return "login failed for {user} with {password}"
}

// Recipients is a fixture whose set collapses under full redaction.
type Recipients struct {
	Emails map[string]struct{} `json:"emails" redact:"secret"`
}

// SampleUser returns a User populated with the Raw* values.
func SampleUser() User {
	return User{
		ID:       "u-1",
		Name:     "Alice",
		Email:    RawEmail,
		Password: RawPassword,
		Card:     RawCard,
		SSN:      RawSSN,
		Age:      42,
		APIKey:   shroud.NewSensitive[shroud.Token](RawAPIKey),
		Address:  Address{City: "Lisbon", Street: "Rua Augusta"},
	}
}

// NewEngine returns an isolated engine with the given options.
func NewEngine(tb testing.TB, opts ...shroud.Option) *shroud.Engine {
	tb.Helper()
	return shroud.New(opts...)
}

// AssertNoRaw fails the test if out contains any of the raw values.
func AssertNoRaw(tb testing.TB, out string, raws ...string) {
	tb.Helper()
	if len(raws) == 0 {
		raws = []string{RawEmail, RawPassword, RawCard, RawSSN, RawAPIKey}
	}
	for _, raw := range raws {
		if strings.Contains(out, raw) {
			tb.Errorf("output leaks raw value %q: %s", raw, out)
		}
	}
}

// NewTracer returns a tracer whose ended spans are captured by the
// returned recorder.
func NewTracer(tb testing.TB) (trace.Tracer, *tracetest.SpanRecorder) {
	tb.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tb.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})
	return tp.Tracer("shroud-test"), sr
}
