package bincodec

import (
	"fmt"
)

// Codec maps values of type T to a byte layout and back.
//
// Every operation is a pure function of (buffer, offset, value): the offset
// going in is where the value starts and the offset coming out is where the
// next value starts. The number of bytes Encode writes equals SizeFor, equals
// what Decode consumes, equals WireSize probed at the start of the encoding.
//
// Codecs are built once and reused. Memoized static sizes are safe for
// concurrent use and follow edits of nested composites; the StringCodec
// last-value cache and composite field edits are not synchronized, so a
// codec shared between goroutines must only be read after construction.
type Codec[T any] interface {
	// StaticSize reports the encoded size if it does not depend on the value.
	StaticSize() (int, bool)

	// SizeFor returns the number of bytes Encode writes for v.
	SizeFor(v T) (int, error)

	// Validate reports whether v can be encoded. path labels v in errors;
	// an empty path means RootPath.
	Validate(v T, path string) error

	// Encode writes v into buf at off and returns the offset after it.
	Encode(buf []byte, off int, v T) (int, error)

	// Decode reads a value from buf at off and returns the offset after it.
	Decode(buf []byte, off int) (int, T, error)

	// WireSize returns the size of the encoded value at off without
	// materializing it.
	WireSize(buf []byte, off int) (int, error)
}

// Marshal encodes v into a freshly allocated buffer of exactly SizeFor(v)
// bytes.
func Marshal[T any](c Codec[T], v T) ([]byte, error) {
	size, err := c.SizeFor(v)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	n, err := c.Encode(buf, 0, v)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, fmt.Errorf("%w: expected %d bytes, but wrote %d", ErrTruncatedData, size, n)
	}
	return buf, nil
}

// Unmarshal decodes the single value held by data.
// Bytes after the value must be zero padding, otherwise ErrTrailingData is
// returned. This rejects payloads that were parsed with a mismatched codec.
func Unmarshal[T any](c Codec[T], data []byte) (T, error) {
	n, v, err := c.Decode(data, 0)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(data) > n {
		if err := CheckBufferNotZeros(data[n:]); err != nil {
			var zero T
			return zero, err
		}
	}
	return v, nil
}

// Must panics if err is non-nil. It is meant for codecs declared as package
// level variables, where a configuration error is a programming error.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// staticWireSize implements WireSize for codecs with a static size.
func staticWireSize(buf []byte, off, size int) (int, error) {
	if err := need(buf, off, size); err != nil {
		return 0, err
	}
	return size, nil
}
