package bincodec

import (
	"crypto/subtle"

	"github.com/zeebo/blake3"
)

// DigestSize is the length of the BLAKE3 hash a DigestCodec appends.
const DigestSize = 32

// DigestCodec appends a BLAKE3-256 hash of the inner encoding and verifies it
// on decode, so corrupted or tampered spans fail loudly instead of decoding
// into plausible garbage.
type DigestCodec[T any] struct {
	inner Codec[T]
}

var _ Codec[int] = (*DigestCodec[int])(nil)

// Digest wraps inner with a trailing checksum.
func Digest[T any](inner Codec[T]) *DigestCodec[T] {
	return &DigestCodec[T]{inner: inner}
}

// Inner returns the wrapped codec.
func (c *DigestCodec[T]) Inner() Codec[T] { return c.inner }

func (c *DigestCodec[T]) StaticSize() (int, bool) {
	size, ok := c.inner.StaticSize()
	if !ok {
		return 0, false
	}
	return size + DigestSize, true
}

func (c *DigestCodec[T]) SizeFor(v T) (int, error) {
	size, err := c.inner.SizeFor(v)
	if err != nil {
		return 0, err
	}
	return size + DigestSize, nil
}

func (c *DigestCodec[T]) Validate(v T, path string) error {
	return c.inner.Validate(v, path)
}

func (c *DigestCodec[T]) Encode(buf []byte, off int, v T) (int, error) {
	next, err := c.inner.Encode(buf, off, v)
	if err != nil {
		return off, err
	}
	if err := room(buf, next, DigestSize); err != nil {
		return off, err
	}
	sum := blake3.Sum256(buf[off:next])
	return next + copy(buf[next:], sum[:]), nil
}

func (c *DigestCodec[T]) Decode(buf []byte, off int) (int, T, error) {
	var zero T
	next, v, err := c.inner.Decode(buf, off)
	if err != nil {
		return off, zero, err
	}
	if err := need(buf, next, DigestSize); err != nil {
		return off, zero, err
	}
	sum := blake3.Sum256(buf[off:next])
	if subtle.ConstantTimeCompare(sum[:], buf[next:next+DigestSize]) != 1 {
		return off, zero, wireError(ErrChecksum, "digest of the %d bytes at offset %d does not match", next-off, off)
	}
	return next + DigestSize, v, nil
}

func (c *DigestCodec[T]) WireSize(buf []byte, off int) (int, error) {
	size, err := c.inner.WireSize(buf, off)
	if err != nil {
		return 0, err
	}
	if err := need(buf, off+size, DigestSize); err != nil {
		return 0, err
	}
	return size + DigestSize, nil
}
