// Package json provides a JSON codec implementation.
package json

import (
	"encoding/json"

	"github.com/zoobzio/shroud"
)

// jsonCodec implements shroud.Codec for JSON.
type jsonCodec struct {
	prefix string
	indent string
}

// New returns a compact JSON codec.
func New() shroud.Codec {
	return &jsonCodec{}
}

// NewIndent returns a JSON codec that indents its output, for payloads
// meant to be read by people.
func NewIndent(prefix, indent string) shroud.Codec {
	return &jsonCodec{prefix: prefix, indent: indent}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	if c.prefix == "" && c.indent == "" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, c.prefix, c.indent)
}

// Unmarshal decodes JSON data into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
