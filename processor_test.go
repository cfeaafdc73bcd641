package shroud

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
)

// testCodec is a simple JSON codec for testing.
type testCodec struct{}

func (c *testCodec) ContentType() string { return "application/json" }

func (c *testCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *testCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// failingCodec always fails to marshal.
type failingCodec struct{ testCodec }

func (c *failingCodec) Marshal(any) ([]byte, error) {
	return nil, errors.New("boom")
}

// SimpleUser has no redaction tags.
type SimpleUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RedactUser has policy tags and a wrapped key.
type RedactUser struct {
	ID       string                   `json:"id"`
	Email    string                   `json:"email" redact:"email"`
	Password string                   `json:"password" redact:"secret"`
	Key      Sensitive[string, Token] `json:"key"`
	Address  *RedactAddress           `json:"address,omitempty"`
}

type RedactAddress struct {
	Street string `json:"street" redact:"pii"`
}

func TestNewProcessor(t *testing.T) {
	proc, err := NewProcessor[SimpleUser](&testCodec{})
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}
	if proc.ContentType() != "application/json" {
		t.Errorf("ContentType() = %q", proc.ContentType())
	}
	if proc.Engine() != Default {
		t.Error("Engine() should default to Default")
	}
}

func TestNewProcessor_DeclarationError(t *testing.T) {
	_, err := NewProcessor[badUnknownPolicy](&testCodec{}, WithEngine(New()))
	if !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("NewProcessor() error = %v, want %v", err, ErrUnknownPolicy)
	}
}

func TestProcessor_Send(t *testing.T) {
	proc, err := NewProcessor[RedactUser](&testCodec{}, WithEngine(New()))
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}

	user := &RedactUser{
		ID:       "123",
		Email:    "alice@example.com",
		Password: "hunter2",
		Key:      NewSensitive[Token]("sk_live_abcd1234"),
		Address:  &RedactAddress{Street: "Rua Augusta"},
	}

	data, err := proc.Send(context.Background(), user)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	want := `{"id":"123","email":"al***@example.com","password":"[REDACTED]","key":"************1234","address":{"street":"*********ta"}}`
	if string(data) != want {
		t.Errorf("Send() = %s, want %s", data, want)
	}

	// Original is untouched.
	if user.Password != "hunter2" || user.Address.Street != "Rua Augusta" || user.Key.Expose() != "sk_live_abcd1234" {
		t.Errorf("Send() modified its input: %+v", user)
	}
}

func TestProcessor_Send_NoPolicies(t *testing.T) {
	proc, _ := NewProcessor[SimpleUser](&testCodec{}, WithEngine(New()))
	data, err := proc.Send(context.Background(), &SimpleUser{ID: "1", Name: "Alice"})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if string(data) != `{"id":"1","name":"Alice"}` {
		t.Errorf("Send() = %s", data)
	}
}

func TestProcessor_Send_Nil(t *testing.T) {
	proc, _ := NewProcessor[RedactUser](&testCodec{}, WithEngine(New()))
	data, err := proc.Send(context.Background(), nil)
	if err != nil {
		t.Fatalf("Send(nil) error: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("Send(nil) = %s, want null", data)
	}
}

func TestProcessor_Send_MarshalError(t *testing.T) {
	proc, err := NewProcessor[SimpleUser](&failingCodec{}, WithEngine(New()))
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}
	_, err = proc.Send(context.Background(), &SimpleUser{ID: "1"})
	if !errors.Is(err, ErrMarshal) {
		t.Errorf("Send() error = %v, want %v", err, ErrMarshal)
	}
	var ce *CodecError
	if !errors.As(err, &ce) || ce.Cause == nil || ce.Cause.Error() != "boom" {
		t.Errorf("Send() error = %#v, want CodecError with cause", err)
	}
}

func TestProcessor_SendAll(t *testing.T) {
	proc, _ := NewProcessor[RedactUser](&testCodec{}, WithEngine(New()))
	users := []RedactUser{
		{ID: "1", Password: "a"},
		{ID: "2", Password: "b"},
	}

	data, err := proc.SendAll(context.Background(), users)
	if err != nil {
		t.Fatalf("SendAll() error: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(out) != 2 || out[0]["password"] != Placeholder || out[1]["password"] != Placeholder {
		t.Errorf("SendAll() = %s", data)
	}
	if users[0].Password != "a" {
		t.Error("SendAll() modified its input")
	}
}

func TestProcessor_Send_Unredacted(t *testing.T) {
	proc, _ := NewProcessor[RedactUser](&testCodec{}, WithEngine(New(WithMode(ModeUnredacted))))
	data, err := proc.Send(context.Background(), &RedactUser{Password: "hunter2"})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if !strings.Contains(string(data), `"password":"hunter2"`) {
		t.Errorf("Send() = %s, want raw password in unredacted mode", data)
	}
}

func TestProcessor_Send_CancelledContext(t *testing.T) {
	proc, _ := NewProcessor[SimpleUser](&testCodec{}, WithEngine(New()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Redaction is synchronous and does not observe cancellation.
	if _, err := proc.Send(ctx, &SimpleUser{ID: "1"}); err != nil {
		t.Errorf("Send() error: %v", err)
	}
}

func TestProcessor_Send_Concurrent(t *testing.T) {
	proc, _ := NewProcessor[RedactUser](&testCodec{}, WithEngine(New()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := proc.Send(context.Background(), &RedactUser{Password: "hunter2"})
			if err != nil {
				t.Errorf("Send() error: %v", err)
				return
			}
			if strings.Contains(string(data), "hunter2") {
				t.Errorf("Send() leaked: %s", data)
			}
		}()
	}
	wg.Wait()
}
