package bincodec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// cborEnc uses Core Deterministic Encoding (RFC 8949 §4.2), so equal values
// always produce identical bytes.
var cborEnc cbor.EncMode

// cborDec decodes untyped maps as map[string]any rather than the CBOR
// default map[any]any.
var cborDec cbor.DecMode

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("bincodec: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("bincodec: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOR returns a codec that stores any CBOR-encodable T as a length-prefixed
// byte span. It embeds free-form values (metadata maps, documents) inside an
// otherwise fixed binary layout.
func CBOR[T any]() *TransformCodec[T, []byte] {
	return Transform(Bytes,
		func(v T) ([]byte, error) {
			return cborEnc.Marshal(v)
		},
		func(raw []byte) (T, error) {
			var v T
			if err := cborDec.Unmarshal(raw, &v); err != nil {
				return v, err
			}
			return v, nil
		},
		nil,
	)
}
