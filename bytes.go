package bincodec

// BytesCodec stores a byte span as a uint16 length followed by the raw bytes.
type BytesCodec struct{}

// Bytes is the byte span codec.
var Bytes Codec[[]byte] = BytesCodec{}

func (BytesCodec) StaticSize() (int, bool) { return 0, false }

func (BytesCodec) SizeFor(v []byte) (int, error) {
	if len(v) > MaxSpan {
		return 0, validationError(RootPath, "can not serialize a span of %d bytes, the maximum is %d", len(v), MaxSpan)
	}
	return 2 + len(v), nil
}

func (BytesCodec) Validate(v []byte, path string) error {
	if len(v) > MaxSpan {
		return validationError(rootPath(path), "needs to be at most %d bytes long but was %d", MaxSpan, len(v))
	}
	return nil
}

func (c BytesCodec) Encode(buf []byte, off int, v []byte) (int, error) {
	if len(v) > MaxSpan {
		return off, c.Validate(v, "")
	}
	if err := room(buf, off, 2+len(v)); err != nil {
		return off, err
	}
	Order.PutUint16(buf[off:], uint16(len(v)))
	off += 2
	off += copy(buf[off:], v)
	return off, nil
}

// Decode copies the span into fresh storage; the result never aliases buf.
func (BytesCodec) Decode(buf []byte, off int) (int, []byte, error) {
	n, err := readLength(buf, off)
	if err != nil {
		return off, nil, err
	}
	if err := need(buf, off+2, n); err != nil {
		return off, nil, err
	}
	v := make([]byte, n)
	copy(v, buf[off+2:])
	return off + 2 + n, v, nil
}

func (BytesCodec) WireSize(buf []byte, off int) (int, error) {
	n, err := readLength(buf, off)
	if err != nil {
		return 0, err
	}
	return 2 + n, nil
}
