package bincodec

// Partial is a record decoded by a PartialCodec. Value holds every ordinary
// field; the kept-serialized fields are left at whatever the instance hook
// produced and their encoded bytes are in Raw, keyed by field name.
type Partial[T any] struct {
	Value T
	Raw   map[string][]byte
}

// PartialCodec reads and writes the exact layout of a full composite, but
// keeps a chosen set of fields as opaque, already encoded byte spans.
//
// A stage that only routes a sub-value can decode the rest of the record,
// move the span elsewhere and re-encode it without ever parsing it: the
// bytes written for a kept field are the bytes read for it.
type PartialCodec[T any] struct {
	full *Composite[T]
	keep map[string]struct{}
}

var _ Codec[Partial[struct{}]] = (*PartialCodec[struct{}])(nil)

// NewPartial returns a partial view of full keeping the named fields
// serialized. Every name has to be a field of full.
func NewPartial[T any](full *Composite[T], keep ...string) (*PartialCodec[T], error) {
	c := &PartialCodec[T]{full: full, keep: make(map[string]struct{}, len(keep))}
	for _, name := range keep {
		if _, ok := full.Field(name); !ok {
			return nil, constructionError(ErrUnknownField, "%q is not a field of the composite and can not be kept serialized", name)
		}
		c.keep[name] = struct{}{}
	}
	return c, nil
}

// Full returns the composite this codec is a view of.
func (c *PartialCodec[T]) Full() *Composite[T] { return c.full }

// Kept reports whether the field called name stays serialized.
func (c *PartialCodec[T]) Kept(name string) bool {
	_, ok := c.keep[name]
	return ok
}

// Clone returns an independent copy with the same kept fields.
func (c *PartialCodec[T]) Clone() *PartialCodec[T] {
	keep := make(map[string]struct{}, len(c.keep))
	for name := range c.keep {
		keep[name] = struct{}{}
	}
	return &PartialCodec[T]{full: c.full, keep: keep}
}

func (c *PartialCodec[T]) StaticSize() (int, bool) { return c.full.StaticSize() }

func (c *PartialCodec[T]) SizeFor(v Partial[T]) (int, error) {
	if size, ok := c.StaticSize(); ok {
		return size, nil
	}
	total := 0
	for _, f := range c.full.steps {
		if raw, ok := v.Raw[f.Name()]; ok && c.Kept(f.Name()) {
			total += len(raw)
			continue
		}
		size, err := f.sizeOf(&v.Value)
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}

func (c *PartialCodec[T]) Validate(v Partial[T], path string) error {
	path = rootPath(path)
	for _, s := range c.full.statics {
		if err := s.check(&v.Value, FieldPath(path, s.Name())); err != nil {
			return err
		}
	}
	for _, f := range c.full.steps {
		fieldPath := FieldPath(path, f.Name())
		if !c.Kept(f.Name()) {
			if err := f.validate(&v.Value, fieldPath); err != nil {
				return err
			}
			continue
		}
		raw, ok := v.Raw[f.Name()]
		if !ok {
			return validationError(fieldPath, "is kept serialized but no raw span was given")
		}
		if size, ok := f.StaticSize(); ok && size != len(raw) {
			return validationError(fieldPath, "raw span has %d bytes but the field codec has a static size of %d", len(raw), size)
		}
	}
	return nil
}

// Encode copies kept fields verbatim. Their spans are trusted to be valid
// encodings for the field codec; only Validate checks static lengths.
func (c *PartialCodec[T]) Encode(buf []byte, off int, v Partial[T]) (int, error) {
	var err error
	for _, f := range c.full.steps {
		if !c.Kept(f.Name()) {
			if off, err = f.encode(buf, off, &v.Value); err != nil {
				return off, err
			}
			continue
		}
		raw, ok := v.Raw[f.Name()]
		if !ok {
			return off, validationError(FieldPath("", f.Name()), "is kept serialized but no raw span was given")
		}
		if err := room(buf, off, len(raw)); err != nil {
			return off, err
		}
		off += copy(buf[off:], raw)
	}
	return off, nil
}

// Decode copies each kept field's bytes into fresh storage, sized with the
// field codec's WireSize.
func (c *PartialCodec[T]) Decode(buf []byte, off int) (int, Partial[T], error) {
	v := Partial[T]{Value: c.full.instance(), Raw: make(map[string][]byte, len(c.keep))}
	for _, s := range c.full.statics {
		s.assign(&v.Value)
	}
	var err error
	for _, f := range c.full.steps {
		if !c.Kept(f.Name()) {
			if off, err = f.decode(buf, off, &v.Value); err != nil {
				return off, Partial[T]{}, err
			}
			continue
		}
		size, err := f.wireSize(buf, off)
		if err != nil {
			return off, Partial[T]{}, err
		}
		if err := need(buf, off, size); err != nil {
			return off, Partial[T]{}, err
		}
		raw := make([]byte, size)
		copy(raw, buf[off:])
		v.Raw[f.Name()] = raw
		off += size
	}
	return off, v, nil
}

func (c *PartialCodec[T]) WireSize(buf []byte, off int) (int, error) {
	return c.full.WireSize(buf, off)
}
