package bincodec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack returns a codec that stores any MessagePack-encodable T as a
// length-prefixed byte span, like CBOR. Struct fields are named by their
// `msgpack` tags, or by their `json` tags when jsonTags is set.
func MsgPack[T any](jsonTags bool) *TransformCodec[T, []byte] {
	return Transform(Bytes,
		func(v T) ([]byte, error) {
			if !jsonTags {
				return msgpack.Marshal(v)
			}
			var buf bytes.Buffer
			enc := msgpack.NewEncoder(&buf)
			enc.SetCustomStructTag("json")
			if err := enc.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
		func(raw []byte) (T, error) {
			var v T
			dec := msgpack.NewDecoder(bytes.NewReader(raw))
			if jsonTags {
				dec.SetCustomStructTag("json")
			}
			err := dec.Decode(&v)
			return v, err
		},
		nil,
	)
}
