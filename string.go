package bincodec

import "unicode/utf8"

// StringCodec stores a string as its UTF-8 bytes using the Bytes layout.
//
// It remembers the last string it converted so that the usual
// Validate, SizeFor, Encode sequence on one value converts it once. The cache
// is not synchronized: use one StringCodec per goroutine, or NewString for
// each codec tree that is used concurrently.
type StringCodec struct {
	last    string
	lastRaw []byte
}

// String is a shared string codec.
var String = NewString()

var _ Codec[string] = (*StringCodec)(nil)

func NewString() *StringCodec {
	return &StringCodec{lastRaw: []byte{}}
}

func (c *StringCodec) raw(v string) []byte {
	if v != c.last {
		c.last = v
		c.lastRaw = []byte(v)
	}
	return c.lastRaw
}

func (c *StringCodec) StaticSize() (int, bool) { return 0, false }

func (c *StringCodec) SizeFor(v string) (int, error) {
	if len(v) > MaxSpan {
		return 0, validationError(RootPath, "can not serialize a string of %d bytes, the maximum is %d", len(v), MaxSpan)
	}
	return 2 + len(c.raw(v)), nil
}

func (c *StringCodec) Validate(v string, path string) error {
	if size := len(c.raw(v)); size > MaxSpan {
		return validationError(rootPath(path), "needs to have a size equal or lower than %d bytes but had a size of %d", MaxSpan, size)
	}
	if !utf8.ValidString(v) {
		return validationError(rootPath(path), "is not valid UTF-8")
	}
	return nil
}

func (c *StringCodec) Encode(buf []byte, off int, v string) (int, error) {
	return Bytes.Encode(buf, off, c.raw(v))
}

func (c *StringCodec) Decode(buf []byte, off int) (int, string, error) {
	n, err := readLength(buf, off)
	if err != nil {
		return off, "", err
	}
	if err := need(buf, off+2, n); err != nil {
		return off, "", err
	}
	return off + 2 + n, string(buf[off+2 : off+2+n]), nil
}

func (c *StringCodec) WireSize(buf []byte, off int) (int, error) {
	return Bytes.WireSize(buf, off)
}
