package bincodec

// ChainCodec stores a fixed-arity heterogeneous tuple: slot i of the value
// is handled by codec i. Nothing but the slots is written.
//
// Typed codecs are erased with Any:
//
//	pair := bincodec.Chain(bincodec.Any(bincodec.Uint8), bincodec.Any(bincodec.String))
//	buf, err := bincodec.Marshal[[]any](pair, []any{uint8(7), "seven"})
type ChainCodec struct {
	slots []Codec[any]
}

var _ Codec[[]any] = (*ChainCodec)(nil)

// Chain returns a tuple codec over the given slot codecs.
func Chain(slots ...Codec[any]) *ChainCodec {
	return &ChainCodec{slots: append([]Codec[any](nil), slots...)}
}

// Len returns the number of slots.
func (c *ChainCodec) Len() int { return len(c.slots) }

func (c *ChainCodec) StaticSize() (int, bool) {
	total := 0
	for _, s := range c.slots {
		size, ok := s.StaticSize()
		if !ok {
			return 0, false
		}
		total += size
	}
	return total, true
}

func (c *ChainCodec) arity(v []any, path string) error {
	if len(v) != len(c.slots) {
		return validationError(rootPath(path), "needs %d components but had %d", len(c.slots), len(v))
	}
	return nil
}

func (c *ChainCodec) SizeFor(v []any) (int, error) {
	if err := c.arity(v, ""); err != nil {
		return 0, err
	}
	total := 0
	for i, s := range c.slots {
		size, err := s.SizeFor(v[i])
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}

func (c *ChainCodec) Validate(v []any, path string) error {
	if err := c.arity(v, path); err != nil {
		return err
	}
	for i, s := range c.slots {
		if err := s.Validate(v[i], IndexPath(path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (c *ChainCodec) Encode(buf []byte, off int, v []any) (int, error) {
	if err := c.arity(v, ""); err != nil {
		return off, err
	}
	var err error
	for i, s := range c.slots {
		if off, err = s.Encode(buf, off, v[i]); err != nil {
			return off, err
		}
	}
	return off, nil
}

func (c *ChainCodec) Decode(buf []byte, off int) (int, []any, error) {
	v := make([]any, len(c.slots))
	var err error
	for i, s := range c.slots {
		if off, v[i], err = s.Decode(buf, off); err != nil {
			return off, nil, err
		}
	}
	return off, v, nil
}

func (c *ChainCodec) WireSize(buf []byte, off int) (int, error) {
	if size, ok := c.StaticSize(); ok {
		return staticWireSize(buf, off, size)
	}
	start := off
	for _, s := range c.slots {
		size, err := s.WireSize(buf, off)
		if err != nil {
			return 0, err
		}
		off += size
	}
	return off - start, nil
}
