package bincodec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxValueSize bounds the encoding a StreamReader buffers for a
// single value.
const DefaultMaxValueSize = 1 << 20 // 1MB

// StreamWriter writes a sequence of values with one codec, back to back and
// without framing. It tracks the first error that occurs; after an error all
// subsequent writes become no-ops.
type StreamWriter[T any] struct {
	w       *bufio.Writer
	codec   Codec[T]
	scratch []byte
	count   int64 // total bytes written
	err     error
}

// NewStreamWriter returns a buffered StreamWriter over w. An existing
// *bufio.Writer is used as is, to prevent double-buffering.
func NewStreamWriter[T any](w io.Writer, c Codec[T]) (*StreamWriter[T], error) {
	if w == nil {
		return nil, ErrNilIO
	}
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	return &StreamWriter[T]{w: bw, codec: c}, nil
}

// Write appends the encoding of v.
func (w *StreamWriter[T]) Write(v T) error {
	if w.err != nil {
		return w.err
	}
	size, err := w.codec.SizeFor(v)
	if err != nil {
		w.setError(err)
		return err
	}
	if cap(w.scratch) < size {
		w.scratch = make([]byte, size)
	}
	buf := w.scratch[:size]
	n, err := w.codec.Encode(buf, 0, v)
	if err != nil {
		w.setError(err)
		return err
	}
	written, err := w.w.Write(buf[:n])
	w.count += int64(written)
	w.setError(err)
	return w.err
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *StreamWriter[T]) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.setError(w.w.Flush())
	return w.err
}

func (w *StreamWriter[T]) Count() int64 { return w.count }
func (w *StreamWriter[T]) Err() error   { return w.err }

// Result flushes the buffer and returns the final count and error state.
func (w *StreamWriter[T]) Result() (int64, error) {
	_ = w.Flush()
	return w.count, w.err
}

// setError records the first non-nil error, preserving the root cause of a
// failure chain instead of a later, less relevant error.
func (w *StreamWriter[T]) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// StreamReader reads a sequence of values written by a StreamWriter. Value
// boundaries come from the codec's WireSize: the reader pulls bytes from its
// source until a complete encoding is buffered.
type StreamReader[T any] struct {
	r       io.Reader
	codec   Codec[T]
	buf     []byte // buf[start:] holds bytes not yet decoded
	start   int
	maxSize int
	count   int64 // total bytes decoded
	eof     bool
	err     error
}

// NewStreamReader returns a StreamReader over r.
func NewStreamReader[T any](r io.Reader, c Codec[T]) (*StreamReader[T], error) {
	if r == nil {
		return nil, ErrNilIO
	}
	if size, ok := c.StaticSize(); ok && size == 0 {
		return nil, constructionError(nil, "a codec with static size 0 cannot be framed in a stream")
	}
	return &StreamReader[T]{r: r, codec: c, maxSize: DefaultMaxValueSize}, nil
}

// WithMaxValueSize sets the largest encoding the reader accepts for a single
// value and returns the reader for chaining.
func (r *StreamReader[T]) WithMaxValueSize(n int) *StreamReader[T] {
	r.maxSize = n
	return r
}

// Read decodes the next value. It returns io.EOF once the source ends on a
// value boundary and io.ErrUnexpectedEOF if it ends inside a value.
func (r *StreamReader[T]) Read() (T, error) {
	var zero T
	if r.err != nil {
		return zero, r.err
	}
	for {
		pending := r.buf[r.start:]
		size, err := r.codec.WireSize(pending, 0)
		// WireSize may succeed from a prefix alone, before the body arrived.
		complete := err == nil && size <= len(pending)
		switch {
		case err == nil && size > r.maxSize:
			r.setError(fmt.Errorf("%w: limit is %d bytes, value at offset %d has %d", ErrValueTooLarge, r.maxSize, r.count, size))
			return zero, r.err
		case r.eof && len(pending) == 0:
			r.setError(io.EOF)
			return zero, r.err
		case complete && size == 0:
			r.setError(wireError(nil, "zero-length value at offset %d cannot be framed", r.count))
			return zero, r.err
		case complete:
			next, v, err := r.codec.Decode(pending[:size], 0)
			if err != nil {
				r.setError(err)
				return zero, err
			}
			r.start += next
			r.count += int64(next)
			return v, nil
		case err != nil && !errors.Is(err, ErrTruncatedData):
			r.setError(err)
			return zero, err
		case len(pending) >= r.maxSize:
			r.setError(fmt.Errorf("%w: limit is %d bytes, value starts at offset %d", ErrValueTooLarge, r.maxSize, r.count))
			return zero, r.err
		case r.eof:
			r.setError(io.ErrUnexpectedEOF)
			return zero, r.err
		}
		if r.fill(); r.err != nil {
			return zero, r.err
		}
	}
}

// fill moves the undecoded bytes to the front of buf and reads one more
// chunk from the source.
func (r *StreamReader[T]) fill() {
	if r.start > 0 {
		r.buf = r.buf[:copy(r.buf, r.buf[r.start:])]
		r.start = 0
	}
	if len(r.buf) == cap(r.buf) {
		grown := make([]byte, len(r.buf), 2*cap(r.buf)+chunkSize)
		copy(grown, r.buf)
		r.buf = grown
	}
	n, err := r.r.Read(r.buf[len(r.buf):cap(r.buf)])
	if n < 0 || n > cap(r.buf)-len(r.buf) {
		r.setError(io.ErrNoProgress)
		return
	}
	r.buf = r.buf[:len(r.buf)+n]
	if err == io.EOF {
		r.eof = true
	} else if err != nil {
		r.setError(err)
	}
}

func (r *StreamReader[T]) Count() int64 { return r.count }
func (r *StreamReader[T]) Err() error   { return r.err }
func (r *StreamReader[T]) IsEOF() bool  { return r.err == io.EOF }

// setError records the first non-nil error.
func (r *StreamReader[T]) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}
