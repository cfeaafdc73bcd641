// Package msgpack provides a MessagePack codec implementation.
//
// Struct fields are keyed by their json tag names, so a payload carries the
// same field names whichever codec a processor uses.
package msgpack

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/shroud"
)

// structTag is read when a field has no msgpack tag.
const structTag = "json"

// msgpackCodec implements shroud.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() shroud.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag(structTag)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes MessagePack data into v.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag(structTag)
	return dec.Decode(v)
}
