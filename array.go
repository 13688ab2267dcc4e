package bincodec

// ArrayCodec stores a homogeneous slice as a uint16 element count followed by
// the elements.
type ArrayCodec[E any] struct {
	elem Codec[E]
}

var _ Codec[[]int] = (*ArrayCodec[int])(nil)

// Array returns a dynamic-length array codec over elem.
func Array[E any](elem Codec[E]) *ArrayCodec[E] {
	return &ArrayCodec[E]{elem: elem}
}

func (c *ArrayCodec[E]) StaticSize() (int, bool) { return 0, false }

func (c *ArrayCodec[E]) SizeFor(v []E) (int, error) {
	if len(v) > MaxSpan {
		return 0, validationError(RootPath, "can not serialize %d elements, the maximum is %d", len(v), MaxSpan)
	}
	if size, ok := c.elem.StaticSize(); ok {
		return 2 + size*len(v), nil
	}
	total := 2
	for _, e := range v {
		size, err := c.elem.SizeFor(e)
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}

func (c *ArrayCodec[E]) Validate(v []E, path string) error {
	if len(v) > MaxSpan {
		return validationError(rootPath(path), "needs to have at most %d elements but had %d", MaxSpan, len(v))
	}
	for i, e := range v {
		if err := c.elem.Validate(e, IndexPath(path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (c *ArrayCodec[E]) Encode(buf []byte, off int, v []E) (int, error) {
	if len(v) > MaxSpan {
		return off, c.Validate(v, "")
	}
	if err := room(buf, off, 2); err != nil {
		return off, err
	}
	Order.PutUint16(buf[off:], uint16(len(v)))
	off += 2

	var err error
	for _, e := range v {
		if off, err = c.elem.Encode(buf, off, e); err != nil {
			return off, err
		}
	}
	return off, nil
}

func (c *ArrayCodec[E]) Decode(buf []byte, off int) (int, []E, error) {
	n, err := readLength(buf, off)
	if err != nil {
		return off, nil, err
	}
	off += 2

	v := make([]E, n)
	for i := range v {
		if off, v[i], err = c.elem.Decode(buf, off); err != nil {
			return off, nil, err
		}
	}
	return off, v, nil
}

func (c *ArrayCodec[E]) WireSize(buf []byte, off int) (int, error) {
	n, err := readLength(buf, off)
	if err != nil {
		return 0, err
	}
	if size, ok := c.elem.StaticSize(); ok {
		return 2 + size*n, nil
	}
	start := off
	off += 2
	for i := 0; i < n; i++ {
		size, err := c.elem.WireSize(buf, off)
		if err != nil {
			return 0, err
		}
		off += size
	}
	return off - start, nil
}
