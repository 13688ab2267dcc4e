package bincodec

import (
	"math"
	"strconv"

	"golang.org/x/exp/constraints"
)

// IntCodec stores a Go integer of type T in a fixed wire width.
// The wire width and signedness are independent of T: an int can be stored
// as one unsigned byte, in which case Validate enforces [0, 255].
type IntCodec[T constraints.Integer] struct {
	width  int
	signed bool
	min    int64
	max    uint64
	name   string
}

var (
	Uint8  = Must(Integer[uint8](1, false))
	Uint16 = Must(Integer[uint16](2, false))
	Uint32 = Must(Integer[uint32](4, false))
	Uint64 = Must(Integer[uint64](8, false))
	Int8   = Must(Integer[int8](1, true))
	Int16  = Must(Integer[int16](2, true))
	Int32  = Must(Integer[int32](4, true))
	Int64  = Must(Integer[int64](8, true))
)

var _ Codec[int] = (*IntCodec[int])(nil)

// Integer returns a codec storing T in width bytes (1, 2, 4 or 8).
func Integer[T constraints.Integer](width int, signed bool) (*IntCodec[T], error) {
	c := &IntCodec[T]{width: width, signed: signed}
	switch width {
	case 1, 2, 4, 8:
	default:
		return nil, constructionError(nil, "integer width needs to be 1, 2, 4 or 8 but was %d", width)
	}
	bits := uint(width * 8)
	if signed {
		c.min = -1 << (bits - 1)
		c.max = 1<<(bits-1) - 1
		c.name = "Int" + strconv.Itoa(int(bits))
	} else {
		c.max = math.MaxUint64 >> (64 - bits)
		c.name = "Uint" + strconv.Itoa(int(bits))
	}
	return c, nil
}

// Width returns the wire width in bytes.
func (c *IntCodec[T]) Width() int { return c.width }

func (c *IntCodec[T]) StaticSize() (int, bool) { return c.width, true }

func (c *IntCodec[T]) SizeFor(T) (int, error) { return c.width, nil }

func (c *IntCodec[T]) WireSize(buf []byte, off int) (int, error) {
	return staticWireSize(buf, off, c.width)
}

// inRange reports whether v is representable in the wire width.
func (c *IntCodec[T]) inRange(v T) bool {
	if ^T(0) < 0 { // T is signed
		x := int64(v)
		if x < 0 {
			return c.signed && x >= c.min
		}
		return uint64(x) <= c.max
	}
	return uint64(v) <= c.max
}

func (c *IntCodec[T]) Validate(v T, path string) error {
	if c.inRange(v) {
		return nil
	}
	if c.signed {
		return validationError(rootPath(path), "needs to be within [%d, %d] to be serialized as %s but was %d", c.min, int64(c.max), c.name, v)
	}
	return validationError(rootPath(path), "needs to be within [0, %d] to be serialized as %s but was %d", c.max, c.name, v)
}

func (c *IntCodec[T]) Encode(buf []byte, off int, v T) (int, error) {
	if err := c.Validate(v, ""); err != nil {
		return off, err
	}
	if err := room(buf, off, c.width); err != nil {
		return off, err
	}
	u := uint64(v)
	switch c.width {
	case 1:
		buf[off] = byte(u)
	case 2:
		Order.PutUint16(buf[off:], uint16(u))
	case 4:
		Order.PutUint32(buf[off:], uint32(u))
	case 8:
		Order.PutUint64(buf[off:], u)
	}
	return off + c.width, nil
}

func (c *IntCodec[T]) Decode(buf []byte, off int) (int, T, error) {
	if err := need(buf, off, c.width); err != nil {
		return off, 0, err
	}
	var u uint64
	switch c.width {
	case 1:
		u = uint64(buf[off])
	case 2:
		u = uint64(Order.Uint16(buf[off:]))
	case 4:
		u = uint64(Order.Uint32(buf[off:]))
	case 8:
		u = Order.Uint64(buf[off:])
	}

	var v T
	if c.signed {
		shift := uint(64 - c.width*8)
		x := int64(u<<shift) >> shift
		v = T(x)
		if int64(v) != x || (x < 0) != (v < 0) {
			return off, 0, wireError(nil, "%s value %d at offset %d does not fit the target type", c.name, x, off)
		}
	} else {
		v = T(u)
		if uint64(v) != u || v < 0 {
			return off, 0, wireError(nil, "%s value %d at offset %d does not fit the target type", c.name, u, off)
		}
	}
	return off + c.width, v, nil
}

// indexCodec returns the narrowest unsigned codec able to index count
// distinct entries.
func indexCodec(count uint64) (*IntCodec[uint32], error) {
	switch {
	case count <= 1<<8:
		return Integer[uint32](1, false)
	case count <= 1<<16:
		return Integer[uint32](2, false)
	case count <= 1<<32:
		return Integer[uint32](4, false)
	}
	return nil, constructionError(ErrTooManyValues, "%d entries can not be indexed by a 32 bit integer", count)
}
