package xml_test

import (
	"context"
	"strings"
	"testing"

	"github.com/zoobzio/shroud"
	"github.com/zoobzio/shroud/xml"
)

type account struct {
	Name  string                                 `xml:"name"`
	Email string                                 `xml:"email" redact:"email"`
	Key   shroud.Sensitive[string, shroud.Token] `xml:"key"`
}

type decodedAccount struct {
	Name  string `xml:"name"`
	Email string `xml:"email"`
	Key   string `xml:"key"`
}

func TestContentType(t *testing.T) {
	c := xml.New()
	if c.ContentType() != "application/xml" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/xml")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := xml.New()

	type TestStruct struct {
		Name  string `xml:"name"`
		Value int    `xml:"value"`
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
	data, err := xml.New().Marshal(nil)
	if err != nil {
		t.Fatalf("Marshal(nil) error: %v", err)
	}
	// XML represents nil as empty (no element)
	if len(data) != 0 {
		t.Errorf("Marshal(nil) = %q, want empty", data)
	}
}

func TestUnmarshal_Malformed(t *testing.T) {
	c := xml.New()

	testCases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"unclosed tag", "<root><name>test</root>"},
		{"mismatched tags", "<root></wrong>"},
		{"unclosed element", "<root><name>"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var v struct {
				Name string `xml:"name"`
			}
			if err := c.Unmarshal([]byte(tc.input), &v); err == nil {
				t.Errorf("Unmarshal(%q) should return error", tc.input)
			}
		})
	}
}

func TestSendRedacts(t *testing.T) {
	c := xml.New()
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
	if strings.Contains(string(data), "sk_live") {
		t.Fatalf("Send() leaked the raw key: %s", data)
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
