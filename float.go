package bincodec

import (
	"math"
	"strconv"

	"golang.org/x/exp/constraints"
)

// FloatCodec stores a Go float of type T as an IEEE 754 value of 4 or 8 bytes.
type FloatCodec[T constraints.Float] struct {
	width int
	name  string
}

var (
	Float32 = Must(Floating[float32](4))
	Float64 = Must(Floating[float64](8))
)

var _ Codec[float64] = (*FloatCodec[float64])(nil)

// Floating returns a codec storing T in width bytes (4 or 8). Storing a
// float64 in 4 bytes rounds to the nearest float32.
func Floating[T constraints.Float](width int) (*FloatCodec[T], error) {
	if width != 4 && width != 8 {
		return nil, constructionError(nil, "float width needs to be 4 or 8 but was %d", width)
	}
	return &FloatCodec[T]{width: width, name: "Float" + strconv.Itoa(width*8)}, nil
}

func (c *FloatCodec[T]) StaticSize() (int, bool) { return c.width, true }

func (c *FloatCodec[T]) SizeFor(T) (int, error) { return c.width, nil }

func (c *FloatCodec[T]) WireSize(buf []byte, off int) (int, error) {
	return staticWireSize(buf, off, c.width)
}

func (c *FloatCodec[T]) Validate(v T, path string) error {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return validationError(rootPath(path), "needs to be a finite number to be serialized as %s but was %v", c.name, f)
	}
	if c.width == 4 && math.IsInf(float64(float32(f)), 0) {
		return validationError(rootPath(path), "needs to be within ±%v to be serialized as %s but was %v", math.MaxFloat32, c.name, f)
	}
	return nil
}

func (c *FloatCodec[T]) Encode(buf []byte, off int, v T) (int, error) {
	if err := room(buf, off, c.width); err != nil {
		return off, err
	}
	if c.width == 4 {
		Order.PutUint32(buf[off:], math.Float32bits(float32(v)))
	} else {
		Order.PutUint64(buf[off:], math.Float64bits(float64(v)))
	}
	return off + c.width, nil
}

func (c *FloatCodec[T]) Decode(buf []byte, off int) (int, T, error) {
	if err := need(buf, off, c.width); err != nil {
		return off, 0, err
	}
	if c.width == 4 {
		return off + 4, T(math.Float32frombits(Order.Uint32(buf[off:]))), nil
	}
	return off + 8, T(math.Float64frombits(Order.Uint64(buf[off:]))), nil
}

// BoolCodec stores a bool as one byte. Any non-zero byte decodes as true.
type BoolCodec struct{}

var Bool Codec[bool] = BoolCodec{}

func (BoolCodec) StaticSize() (int, bool)     { return 1, true }
func (BoolCodec) SizeFor(bool) (int, error)   { return 1, nil }
func (BoolCodec) Validate(bool, string) error { return nil }

func (BoolCodec) WireSize(buf []byte, off int) (int, error) {
	return staticWireSize(buf, off, 1)
}

func (BoolCodec) Encode(buf []byte, off int, v bool) (int, error) {
	if err := room(buf, off, 1); err != nil {
		return off, err
	}
	if v {
		buf[off] = 1
	} else {
		buf[off] = 0
	}
	return off + 1, nil
}

func (BoolCodec) Decode(buf []byte, off int) (int, bool, error) {
	if err := need(buf, off, 1); err != nil {
		return off, false, err
	}
	return off + 1, buf[off] != 0, nil
}
