package bincodec

import (
	"go.uber.org/zap"
)

type unionEntry[T any] struct {
	match func(T) bool
	codec Codec[T]
}

// UnionBuilder collects the variants of an ordered union. Entries are tried
// in the order they were added; the first whose predicate accepts a value
// encodes it.
type UnionBuilder[T any] struct {
	entries []unionEntry[T]
}

// NewUnion returns an empty ordered union builder.
func NewUnion[T any]() *UnionBuilder[T] {
	return &UnionBuilder[T]{}
}

// Add registers a variant selected by match.
func (b *UnionBuilder[T]) Add(match func(T) bool, c Codec[T]) *UnionBuilder[T] {
	b.entries = append(b.entries, unionEntry[T]{match: match, codec: c})
	return b
}

// AddCase registers a variant selected by the dynamic type of the value:
// values holding a V are encoded by c.
func AddCase[T, V any](b *UnionBuilder[T], c Codec[V]) error {
	cast, err := Cast[T](c)
	if err != nil {
		return err
	}
	b.Add(func(v T) bool {
		_, ok := any(v).(V)
		return ok
	}, cast)
	return nil
}

// Len returns the number of registered variants.
func (b *UnionBuilder[T]) Len() int { return len(b.entries) }

// Clone returns an independent builder with the same entries.
func (b *UnionBuilder[T]) Clone() *UnionBuilder[T] {
	return &UnionBuilder[T]{entries: append([]unionEntry[T](nil), b.entries...)}
}

// Finalize freezes the entries and derives the index width from their count.
// The builder stays usable; later additions do not affect the returned codec.
func (b *UnionBuilder[T]) Finalize() (*Union[T], error) {
	if len(b.entries) == 0 {
		return nil, constructionError(nil, "an ordered union needs at least one variant")
	}
	index, err := indexCodec(uint64(len(b.entries)))
	if err != nil {
		return nil, err
	}
	u := &Union[T]{entries: append([]unionEntry[T](nil), b.entries...), index: index}
	_, static := u.StaticSize()

	Logger().Debug("ordered union finalized",
		zap.Int("variants", len(u.entries)),
		zap.Int("index_width", index.Width()),
		zap.Bool("static", static),
	)
	return u, nil
}

// commonStaticSize returns prefix plus the static size shared by every
// entry, if they all have the same one.
func commonStaticSize[E, T any](prefix int, entries []E, codec func(E) Codec[T]) (int, bool) {
	common := -1
	for _, e := range entries {
		size, ok := codec(e).StaticSize()
		if !ok || (common >= 0 && size != common) {
			return 0, false
		}
		common = size
	}
	if common < 0 {
		common = 0
	}
	return prefix + common, true
}

// Union is a finalized ordered union: the index of the selected variant,
// followed by the variant's own encoding. The zero Union is unusable and
// returns ErrNotFinalized.
type Union[T any] struct {
	entries []unionEntry[T]
	index   *IntCodec[uint32]
	cache   sizeCache
}

var _ Codec[any] = (*Union[any])(nil)

// Unfreeze returns a new builder holding this union's entries, for deriving
// a variant set from it.
func (u *Union[T]) Unfreeze() *UnionBuilder[T] {
	return &UnionBuilder[T]{entries: append([]unionEntry[T](nil), u.entries...)}
}

// Len returns the number of variants.
func (u *Union[T]) Len() int { return len(u.entries) }

func (u *Union[T]) ready() error {
	if u == nil || u.index == nil {
		return constructionError(ErrNotFinalized, "ordered union used before Finalize")
	}
	return nil
}

// pick returns the index of the first entry accepting v.
func (u *Union[T]) pick(v T, path string) (int, error) {
	for i, e := range u.entries {
		if e.match(v) {
			return i, nil
		}
	}
	return 0, validationError(rootPath(path), "%T matches none of the %d registered variants", v, len(u.entries))
}

func (u *Union[T]) StaticSize() (int, bool) {
	if u.ready() != nil {
		return 0, false
	}
	return u.cache.get(func() (int, bool) {
		return commonStaticSize(u.index.Width(), u.entries, func(e unionEntry[T]) Codec[T] { return e.codec })
	})
}

func (u *Union[T]) SizeFor(v T) (int, error) {
	if err := u.ready(); err != nil {
		return 0, err
	}
	if size, ok := u.StaticSize(); ok {
		return size, nil
	}
	i, err := u.pick(v, "")
	if err != nil {
		return 0, err
	}
	size, err := u.entries[i].codec.SizeFor(v)
	if err != nil {
		return 0, err
	}
	return u.index.Width() + size, nil
}

func (u *Union[T]) Validate(v T, path string) error {
	if err := u.ready(); err != nil {
		return err
	}
	i, err := u.pick(v, path)
	if err != nil {
		return err
	}
	return u.entries[i].codec.Validate(v, path)
}

func (u *Union[T]) Encode(buf []byte, off int, v T) (int, error) {
	if err := u.ready(); err != nil {
		return off, err
	}
	i, err := u.pick(v, "")
	if err != nil {
		return off, err
	}
	next, err := u.index.Encode(buf, off, uint32(i))
	if err != nil {
		return off, err
	}
	return u.entries[i].codec.Encode(buf, next, v)
}

func (u *Union[T]) Decode(buf []byte, off int) (int, T, error) {
	var zero T
	if err := u.ready(); err != nil {
		return off, zero, err
	}
	next, i, err := u.index.Decode(buf, off)
	if err != nil {
		return off, zero, err
	}
	if int64(i) >= int64(len(u.entries)) {
		return off, zero, wireError(nil, "union index %d at offset %d is out of range for %d variants", i, off, len(u.entries))
	}
	return u.entries[i].codec.Decode(buf, next)
}

func (u *Union[T]) WireSize(buf []byte, off int) (int, error) {
	if err := u.ready(); err != nil {
		return 0, err
	}
	if size, ok := u.StaticSize(); ok {
		return staticWireSize(buf, off, size)
	}
	next, i, err := u.index.Decode(buf, off)
	if err != nil {
		return 0, err
	}
	if int64(i) >= int64(len(u.entries)) {
		return 0, wireError(nil, "union index %d at offset %d is out of range for %d variants", i, off, len(u.entries))
	}
	size, err := u.entries[i].codec.WireSize(buf, next)
	if err != nil {
		return 0, err
	}
	return next - off + size, nil
}
