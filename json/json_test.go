package json_test

import (
	"context"
	"strings"
	"testing"

	"github.com/zoobzio/shroud"
	"github.com/zoobzio/shroud/json"
)

type account struct {
	Name  string                                 `json:"name"`
	Email string                                 `json:"email" redact:"email"`
	Key   shroud.Sensitive[string, shroud.Token] `json:"key"`
}

func TestContentType(t *testing.T) {
	c := json.New()
	if c.ContentType() != "application/json" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/json")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := json.New()

	type TestStruct struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	original := TestStruct{Name: "test", Value: 42}

	data, err := c.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var restored TestStruct
	if err := c.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if restored != original {
		t.Errorf("round-trip failed: got %+v, want %+v", restored, original)
	}
}

func TestMarshalNil(t *testing.T) {
	data, err := json.New().Marshal(nil)
	if err != nil {
		t.Fatalf("Marshal(nil) error: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("Marshal(nil) = %q, want %q", data, "null")
	}
}

func TestNewIndent(t *testing.T) {
	data, err := json.NewIndent("", "  ").Marshal(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if want := "{\n  \"a\": 1\n}"; string(data) != want {
		t.Errorf("Marshal() = %q, want %q", data, want)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	var v struct{}
	if err := json.New().Unmarshal([]byte("invalid json"), &v); err == nil {
		t.Error("Unmarshal(invalid) should return error")
	}
}

func TestSendRedacts(t *testing.T) {
	proc, err := shroud.NewProcessor[account](json.New(), shroud.WithEngine(shroud.New()))
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}

	in := account{
		Name:  "alice",
		Email: "alice@example.com",
		Key:   shroud.NewSensitive[shroud.Token]("sk_live_abcd1234"),
	}
	data, err := proc.Send(context.Background(), &in)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	want := `{"name":"alice","email":"al***@example.com","key":"************1234"}`
	if string(data) != want {
		t.Errorf("Send() = %s, want %s", data, want)
	}
	if strings.Contains(string(data), "sk_live") {
		t.Error("Send() leaked the raw key")
	}
	if in.Email != "alice@example.com" {
		t.Error("Send() modified its input")
	}
}
