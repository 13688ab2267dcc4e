package bincodec

// VectorCodec stores exactly n elements back to back. The length is part of
// the configuration and never written.
type VectorCodec[E any] struct {
	elem Codec[E]
	n    int
}

var _ Codec[[]int] = (*VectorCodec[int])(nil)

// Vector returns a fixed-length vector codec of n elements.
func Vector[E any](elem Codec[E], n int) (*VectorCodec[E], error) {
	if n < 0 {
		return nil, constructionError(nil, "vector length needs to be non-negative but was %d", n)
	}
	return &VectorCodec[E]{elem: elem, n: n}, nil
}

// Len returns the configured arity.
func (c *VectorCodec[E]) Len() int { return c.n }

func (c *VectorCodec[E]) StaticSize() (int, bool) {
	size, ok := c.elem.StaticSize()
	if !ok {
		return 0, false
	}
	return size * c.n, true
}

func (c *VectorCodec[E]) SizeFor(v []E) (int, error) {
	if size, ok := c.StaticSize(); ok {
		return size, nil
	}
	if len(v) != c.n {
		return 0, c.lengthError(len(v), "")
	}
	total := 0
	for _, e := range v {
		size, err := c.elem.SizeFor(e)
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}

func (c *VectorCodec[E]) lengthError(got int, path string) error {
	return validationError(rootPath(path), "length needs to be equal to the defined length %d but was %d", c.n, got)
}

func (c *VectorCodec[E]) Validate(v []E, path string) error {
	if len(v) != c.n {
		return c.lengthError(len(v), path)
	}
	for i, e := range v {
		if err := c.elem.Validate(e, IndexPath(path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (c *VectorCodec[E]) Encode(buf []byte, off int, v []E) (int, error) {
	if len(v) != c.n {
		return off, c.lengthError(len(v), "")
	}
	var err error
	for _, e := range v {
		if off, err = c.elem.Encode(buf, off, e); err != nil {
			return off, err
		}
	}
	return off, nil
}

func (c *VectorCodec[E]) Decode(buf []byte, off int) (int, []E, error) {
	v := make([]E, c.n)
	var err error
	for i := range v {
		if off, v[i], err = c.elem.Decode(buf, off); err != nil {
			return off, nil, err
		}
	}
	return off, v, nil
}

func (c *VectorCodec[E]) WireSize(buf []byte, off int) (int, error) {
	if size, ok := c.StaticSize(); ok {
		return staticWireSize(buf, off, size)
	}
	start := off
	for i := 0; i < c.n; i++ {
		size, err := c.elem.WireSize(buf, off)
		if err != nil {
			return 0, err
		}
		off += size
	}
	return off - start, nil
}
