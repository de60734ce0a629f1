// Package wire holds the message catalogue of the DBM service and encodes it
// in the protobuf wire format. Messages are plain structs that marshal
// themselves through protowire, and Codec plugs them into gRPC.
package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is implemented by every request and response of the service.
type Message interface {
	// MarshalWire appends the encoded message to b.
	MarshalWire(b []byte) []byte
	// UnmarshalWire resets the message and decodes b into it.
	UnmarshalWire(b []byte) error
}

// Codec is a gRPC codec for Message values. It reports the name "proto" so
// the content type on the wire matches regular protobuf peers.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("wire: cannot marshal %T", v)
	}
	return m.MarshalWire(nil), nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("wire: cannot unmarshal into %T", v)
	}
	return m.UnmarshalWire(data)
}

func (Codec) Name() string {
	return "proto"
}

// Marshal encodes m.
func Marshal(m Message) []byte {
	return m.MarshalWire(nil)
}

// Unmarshal decodes data into m.
func Unmarshal(data []byte, m Message) error {
	return m.UnmarshalWire(data)
}

// Encoding helpers. Scalar zero values are skipped as in proto3.

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// appendRepeatedBytes keeps empty elements: their position is significant.
func appendRepeatedBytes(b []byte, num protowire.Number, vs [][]byte) []byte {
	for _, v := range vs {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, v)
	}
	return b
}

// appendMessage encodes a present submessage, even when it is empty.
func appendMessage(b []byte, num protowire.Number, m Message) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.MarshalWire(nil))
}

// field is one decoded field value. Accessors are lenient about wire type
// mismatches and yield the zero value.
type field struct {
	typ   protowire.Type
	value uint64
	raw   []byte
}

func (f field) int32() int32 {
	return int32(f.value)
}

func (f field) int64() int64 {
	return int64(f.value)
}

func (f field) bool() bool {
	return protowire.DecodeBool(f.value)
}

func (f field) double() float64 {
	if f.typ != protowire.Fixed64Type {
		return 0
	}
	return math.Float64frombits(f.value)
}

// bytes copies the payload: gRPC may reuse the receive buffer.
func (f field) bytes() []byte {
	if f.typ != protowire.BytesType || len(f.raw) == 0 {
		return nil
	}
	return append([]byte(nil), f.raw...)
}

func (f field) string() string {
	if f.typ != protowire.BytesType {
		return ""
	}
	return string(f.raw)
}

func (f field) message(m Message) error {
	if f.typ != protowire.BytesType {
		return fmt.Errorf("wire: field of type %d is not a message", f.typ)
	}
	return m.UnmarshalWire(f.raw)
}

// decodeFields walks every field of b and hands it to fn. Unknown fields are
// simply ignored by fn.
func decodeFields(b []byte, fn func(num protowire.Number, f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("wire: %w", protowire.ParseError(n))
		}
		b = b[n:]

		f := field{typ: typ}
		switch typ {
		case protowire.VarintType:
			f.value, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			f.value, n = protowire.ConsumeFixed64(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.value = uint64(v)
		case protowire.BytesType:
			f.raw, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("wire: field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(num, f); err != nil {
			return err
		}
	}
	return nil
}
