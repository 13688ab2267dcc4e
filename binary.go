package bincodec

import (
	"bytes"
	"encoding"
	"fmt"
	"io"
)

// Sizer reports how many bytes the bound value encodes to under its codec.
// Value.Size returns 0 when the codec's SizeFor fails.
type Sizer interface {
	Size() int
}

// Marshaler writes the bound value in its codec's wire format, either into a
// fresh slice, into a caller buffer (io.ErrShortBuffer if it is too small) or
// to a writer.
type Marshaler interface {
	encoding.BinaryMarshaler
	io.WriterTo
	MarshalTo(buf []byte) (int, error)
}

// Unmarshaler replaces the bound value with one decoded by its codec.
// UnmarshalBinary rejects trailing bytes other than zero padding; ReadFrom
// consumes exactly the static size when the codec has one, otherwise the
// whole reader.
type Unmarshaler interface {
	encoding.BinaryUnmarshaler
	io.ReaderFrom
}

// Binary is the full set implemented by Value.
type Binary interface {
	Sizer
	Marshaler
	Unmarshaler
}

// Value binds a codec to a variable so it can be handed to APIs built on the
// standard encoding and io interfaces.
type Value[T any] struct {
	codec Codec[T]
	ptr   *T
}

var _ Binary = (*Value[struct{}])(nil)

// Bind returns a Binary that encodes *ptr with c and decodes into *ptr.
func Bind[T any](c Codec[T], ptr *T) *Value[T] {
	return &Value[T]{codec: c, ptr: ptr}
}

// Size returns the encoded size of the bound value, or 0 if it cannot be
// encoded. MarshalBinary reports the reason.
func (b *Value[T]) Size() int {
	size, err := b.codec.SizeFor(*b.ptr)
	if err != nil {
		return 0
	}
	return size
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (b *Value[T]) MarshalBinary() ([]byte, error) {
	return Marshal(b.codec, *b.ptr)
}

// MarshalTo encodes the bound value at the start of p.
func (b *Value[T]) MarshalTo(p []byte) (int, error) {
	return b.codec.Encode(p, 0, *b.ptr)
}

// WriteTo implements io.WriterTo.
func (b *Value[T]) WriteTo(w io.Writer) (int64, error) {
	buf, err := b.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	if err != nil {
		return int64(n), err
	}
	if n < len(buf) {
		return int64(n), io.ErrShortWrite
	}
	return int64(n), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Trailing bytes have
// to be zero padding, see Unmarshal.
func (b *Value[T]) UnmarshalBinary(data []byte) error {
	v, err := Unmarshal(b.codec, data)
	if err != nil {
		return err
	}
	*b.ptr = v
	return nil
}

// ReadFrom implements io.ReaderFrom. For static-size codecs it reads exactly
// one value; otherwise it is NOT a streaming implementation and reads the
// whole of r into memory before decoding. Use StreamReader for sequences.
func (b *Value[T]) ReadFrom(r io.Reader) (int64, error) {
	if size, ok := b.codec.StaticSize(); ok {
		buf := make([]byte, size)
		n, err := io.ReadFull(r, buf)
		if err != nil {
			if err == io.ErrUnexpectedEOF || err == io.EOF {
				return int64(n), fmt.Errorf("%w: expected %d bytes, but read %d", ErrTruncatedData, size, n)
			}
			return int64(n), err
		}
		return int64(n), b.UnmarshalBinary(buf)
	}

	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)

	n, err := buf.ReadFrom(r)
	if err != nil {
		return n, err
	}
	return n, b.UnmarshalBinary(buf.Bytes())
}
