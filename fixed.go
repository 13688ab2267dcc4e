package bincodec

import (
	"encoding/binary"
	"io"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// fixedSizes avoids the cost of reflection in binary.Size on every use of a
// fixed layout. It is shared by every FixedCodec and safe for concurrent use.
var fixedSizes = xsync.NewMap[reflect.Type, int]()

// FixedCodec encodes a plain struct of fixed-size fields with
// encoding/binary, in Order. It is the shortcut for records that would
// otherwise be a composite of scalar fields only.
//
// Constraint: P must not contain slices, maps, strings or pointers.
type FixedCodec[P any] struct {
	size int
}

var _ Codec[struct{}] = (*FixedCodec[struct{}])(nil)

// Fixed returns a codec for P. It fails if P has no fixed binary layout.
func Fixed[P any]() (*FixedCodec[P], error) {
	size, err := fixedSize[P]()
	if err != nil {
		return nil, err
	}
	return &FixedCodec[P]{size: size}, nil
}

func fixedSize[P any]() (int, error) {
	typ := reflect.TypeFor[P]()
	if size, ok := fixedSizes.Load(typ); ok {
		return size, nil
	}
	var zero P
	size := binary.Size(&zero)
	if size < 0 {
		return 0, constructionError(nil, "%v has no fixed binary layout", typ)
	}
	fixedSizes.Store(typ, size)
	return size, nil
}

func (c *FixedCodec[P]) StaticSize() (int, bool)  { return c.size, true }
func (c *FixedCodec[P]) SizeFor(P) (int, error)   { return c.size, nil }
func (c *FixedCodec[P]) Validate(P, string) error { return nil }

func (c *FixedCodec[P]) WireSize(buf []byte, off int) (int, error) {
	return staticWireSize(buf, off, c.size)
}

func (c *FixedCodec[P]) Encode(buf []byte, off int, v P) (int, error) {
	if err := room(buf, off, c.size); err != nil {
		return off, err
	}
	// binary.Encode only fails with an unexported "buffer too small" error,
	// which room already rules out.
	n, err := binary.Encode(buf[off:], Order, &v)
	if err != nil {
		return off, io.ErrShortWrite
	}
	return off + n, nil
}

func (c *FixedCodec[P]) Decode(buf []byte, off int) (int, P, error) {
	var v P
	if err := need(buf, off, c.size); err != nil {
		return off, v, err
	}
	n, err := binary.Decode(buf[off:], Order, &v)
	if err != nil {
		return off, v, wireError(ErrTruncatedData, "fixed layout %T at offset %d", v, off)
	}
	return off + n, v, nil
}
