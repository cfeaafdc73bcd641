package bson_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/zoobzio/shroud"
	"github.com/zoobzio/shroud/bson"
)

type account struct {
	Name  string                                 `bson:"name"`
	Email string                                 `bson:"email" redact:"email"`
	Key   shroud.Sensitive[string, shroud.Token] `bson:"key"`
}

type decodedAccount struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
	Key   string `bson:"key"`
}

func TestContentType(t *testing.T) {
	c := bson.New()
	if c.ContentType() != "application/bson" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/bson")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := bson.New()

	type TestStruct struct {
		Name  string `bson:"name"`
		Value int    `bson:"value"`
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

func TestUnmarshalInvalid(t *testing.T) {
	var v struct{}
	if err := bson.New().Unmarshal([]byte("invalid bson"), &v); err == nil {
		t.Error("Unmarshal(invalid) should return error")
	}
}

func TestSendRedacts(t *testing.T) {
	c := bson.New()
	proc, err := shroud.NewProcessor[account](c, shroud.WithEngine(shroud.New()))
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
	if bytes.Contains(data, []byte("sk_live")) {
		t.Fatal("Send() leaked the raw key")
	}

	var out decodedAccount
	if err := c.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	want := decodedAccount{Name: "alice", Email: "al***@example.com", Key: "************1234"}
	if out != want {
		t.Errorf("Send() decoded = %+v, want %+v", out, want)
	}
}
