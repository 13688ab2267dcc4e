package bincodec

import (
	"go.uber.org/zap"
)

// PropertyUnionBuilder collects the variants of a union keyed by one field of
// the record, the discriminant. Each variant codec encodes the rest of the
// record and must not encode the discriminant itself.
type PropertyUnionBuilder[T any, K comparable] struct {
	name   string
	get    func(*T) K
	set    func(*T, K)
	ids    []K
	codecs map[K]Codec[T]
}

// NewPropertyUnion returns a builder for a union discriminated by the field
// called name, read with get and restored on decode with set.
func NewPropertyUnion[T any, K comparable](name string, get func(*T) K, set func(*T, K)) *PropertyUnionBuilder[T, K] {
	return &PropertyUnionBuilder[T, K]{name: name, get: get, set: set, codecs: make(map[K]Codec[T])}
}

// Register binds id to c. Registering an id again replaces its codec and
// keeps its position.
func (b *PropertyUnionBuilder[T, K]) Register(id K, c Codec[T]) *PropertyUnionBuilder[T, K] {
	if _, ok := b.codecs[id]; !ok {
		b.ids = append(b.ids, id)
	}
	b.codecs[id] = c
	return b
}

// Len returns the number of registered discriminant values.
func (b *PropertyUnionBuilder[T, K]) Len() int { return len(b.ids) }

// Clone returns an independent builder with the same registrations.
func (b *PropertyUnionBuilder[T, K]) Clone() *PropertyUnionBuilder[T, K] {
	c := NewPropertyUnion(b.name, b.get, b.set)
	for _, id := range b.ids {
		c.Register(id, b.codecs[id])
	}
	return c
}

// Finalize freezes the registrations and builds the enum codec that writes
// the discriminant.
func (b *PropertyUnionBuilder[T, K]) Finalize() (*PropertyUnion[T, K], error) {
	if len(b.ids) == 0 {
		return nil, constructionError(nil, "a property union on %q needs at least one variant", b.name)
	}
	enum, err := Enum(b.ids...)
	if err != nil {
		return nil, err
	}
	frozen := b.Clone()
	u := &PropertyUnion[T, K]{
		name:   frozen.name,
		get:    frozen.get,
		set:    frozen.set,
		ids:    frozen.ids,
		codecs: frozen.codecs,
		enum:   enum,
	}
	width, _ := enum.StaticSize()
	_, static := u.StaticSize()

	Logger().Debug("property union finalized",
		zap.String("discriminant", u.name),
		zap.Int("variants", len(u.ids)),
		zap.Int("index_width", width),
		zap.Bool("static", static),
	)
	return u, nil
}

// PropertyUnion is a finalized property-keyed union: the discriminant's enum
// index followed by the selected variant's encoding. The zero PropertyUnion
// is unusable and returns ErrNotFinalized.
type PropertyUnion[T any, K comparable] struct {
	name   string
	get    func(*T) K
	set    func(*T, K)
	ids    []K
	codecs map[K]Codec[T]
	enum   *EnumCodec[K]
	cache  sizeCache
}

var _ Codec[struct{}] = (*PropertyUnion[struct{}, int])(nil)

// Unfreeze returns a new builder holding this union's registrations.
func (u *PropertyUnion[T, K]) Unfreeze() *PropertyUnionBuilder[T, K] {
	b := NewPropertyUnion(u.name, u.get, u.set)
	for _, id := range u.ids {
		b.Register(id, u.codecs[id])
	}
	return b
}

// Discriminants returns the registered values in index order.
func (u *PropertyUnion[T, K]) Discriminants() []K {
	return append([]K(nil), u.ids...)
}

func (u *PropertyUnion[T, K]) ready() error {
	if u == nil || u.enum == nil {
		return constructionError(ErrNotFinalized, "property union used before Finalize")
	}
	return nil
}

func (u *PropertyUnion[T, K]) variant(id K, path string) (Codec[T], error) {
	c, ok := u.codecs[id]
	if !ok {
		return nil, validationError(FieldPath(path, u.name), "there is no codec registered for the discriminant value %v", id)
	}
	return c, nil
}

func (u *PropertyUnion[T, K]) StaticSize() (int, bool) {
	if u.ready() != nil {
		return 0, false
	}
	return u.cache.get(func() (int, bool) {
		width, _ := u.enum.StaticSize()
		return commonStaticSize(width, u.ids, func(id K) Codec[T] { return u.codecs[id] })
	})
}

func (u *PropertyUnion[T, K]) SizeFor(v T) (int, error) {
	if err := u.ready(); err != nil {
		return 0, err
	}
	if size, ok := u.StaticSize(); ok {
		return size, nil
	}
	id := u.get(&v)
	c, err := u.variant(id, "")
	if err != nil {
		return 0, err
	}
	idSize, err := u.enum.SizeFor(id)
	if err != nil {
		return 0, err
	}
	size, err := c.SizeFor(v)
	if err != nil {
		return 0, err
	}
	return idSize + size, nil
}

func (u *PropertyUnion[T, K]) Validate(v T, path string) error {
	if err := u.ready(); err != nil {
		return err
	}
	path = rootPath(path)
	c, err := u.variant(u.get(&v), path)
	if err != nil {
		return err
	}
	return c.Validate(v, path)
}

func (u *PropertyUnion[T, K]) Encode(buf []byte, off int, v T) (int, error) {
	if err := u.ready(); err != nil {
		return off, err
	}
	id := u.get(&v)
	c, err := u.variant(id, "")
	if err != nil {
		return off, err
	}
	next, err := u.enum.Encode(buf, off, id)
	if err != nil {
		return off, err
	}
	return c.Encode(buf, next, v)
}

func (u *PropertyUnion[T, K]) Decode(buf []byte, off int) (int, T, error) {
	var zero T
	if err := u.ready(); err != nil {
		return off, zero, err
	}
	next, id, err := u.enum.Decode(buf, off)
	if err != nil {
		return off, zero, err
	}
	next, v, err := u.codecs[id].Decode(buf, next)
	if err != nil {
		return off, zero, err
	}
	u.set(&v, id)
	return next, v, nil
}

func (u *PropertyUnion[T, K]) WireSize(buf []byte, off int) (int, error) {
	if err := u.ready(); err != nil {
		return 0, err
	}
	if size, ok := u.StaticSize(); ok {
		return staticWireSize(buf, off, size)
	}
	next, id, err := u.enum.Decode(buf, off)
	if err != nil {
		return 0, err
	}
	size, err := u.codecs[id].WireSize(buf, next)
	if err != nil {
		return 0, err
	}
	return next - off + size, nil
}
