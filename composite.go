package bincodec

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// layoutEpoch counts structural edits of composites. A memoized static size
// is trusted only while the epoch it was computed at is current, so editing a
// nested composite also invalidates every codec built around it.
var layoutEpoch atomic.Uint64

type sizeMemo struct {
	epoch  uint64
	size   int
	static bool
}

// sizeCache memoizes a static size computation.
type sizeCache struct {
	memo atomic.Pointer[sizeMemo]
}

// get returns the memoized size, computing it with fn when the memo is
// missing or older than the last layout edit.
func (s *sizeCache) get(fn func() (int, bool)) (int, bool) {
	epoch := layoutEpoch.Load()
	if m := s.memo.Load(); m != nil && m.epoch == epoch {
		return m.size, m.static
	}
	size, static := fn()
	s.memo.Store(&sizeMemo{epoch: epoch, size: size, static: static})
	return size, static
}

// layoutChanged invalidates every memoized static size.
func layoutChanged() { layoutEpoch.Add(1) }

// Composite encodes a record of type T as its fields back to back, in the
// order they were appended. Static members contribute no bytes.
//
// Field edits (Append, Replace, Remove) are not synchronized with encoding;
// finish configuring a composite before sharing it.
type Composite[T any] struct {
	steps       []FieldCodec[T]
	statics     []StaticMember[T]
	newInstance func() T
	cache       sizeCache
}

var _ Codec[struct{}] = (*Composite[struct{}])(nil)

// NewComposite returns a composite over the given fields.
func NewComposite[T any](fields ...FieldCodec[T]) (*Composite[T], error) {
	c := &Composite[T]{}
	if err := c.Append(fields...); err != nil {
		return nil, err
	}
	return c, nil
}

// WithInstance sets the hook Decode uses to create the record it fills.
// The default is the zero value of T.
func (c *Composite[T]) WithInstance(fn func() T) *Composite[T] {
	c.newInstance = fn
	return c
}

func (c *Composite[T]) instance() T {
	if c.newInstance != nil {
		return c.newInstance()
	}
	var zero T
	return zero
}

// taken reports whether name is used by a field or a static member.
func (c *Composite[T]) taken(name string) bool {
	for _, f := range c.steps {
		if f.Name() == name {
			return true
		}
	}
	for _, s := range c.statics {
		if s.Name() == name {
			return true
		}
	}
	return false
}

func duplicate(name string) error {
	return constructionError(ErrDuplicateName, "%q is already used by a field or static member", name)
}

// Append adds fields to the end of the composite. Nothing is added if one of
// the names is already taken.
func (c *Composite[T]) Append(fields ...FieldCodec[T]) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f.Name()]; ok || c.taken(f.Name()) {
			return duplicate(f.Name())
		}
		seen[f.Name()] = struct{}{}
	}
	c.steps = append(c.steps, fields...)
	layoutChanged()
	return nil
}

// AppendStatic adds static members. Nothing is added if one of the names is
// already taken.
func (c *Composite[T]) AppendStatic(members ...StaticMember[T]) error {
	seen := make(map[string]struct{}, len(members))
	for _, s := range members {
		if _, ok := seen[s.Name()]; ok || c.taken(s.Name()) {
			return duplicate(s.Name())
		}
		seen[s.Name()] = struct{}{}
	}
	c.statics = append(c.statics, members...)
	return nil
}

// Replace swaps the field carrying f's name for f, keeping its position.
func (c *Composite[T]) Replace(f FieldCodec[T]) error {
	for i, step := range c.steps {
		if step.Name() == f.Name() {
			c.steps[i] = f
			layoutChanged()
			return nil
		}
	}
	return constructionError(ErrUnknownField, "no field named %q to replace", f.Name())
}

// Remove drops the field or static member called name and reports whether
// there was one.
func (c *Composite[T]) Remove(name string) bool {
	for i, step := range c.steps {
		if step.Name() == name {
			c.steps = append(c.steps[:i:i], c.steps[i+1:]...)
			layoutChanged()
			return true
		}
	}
	for i, s := range c.statics {
		if s.Name() == name {
			c.statics = append(c.statics[:i:i], c.statics[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a composite with copies of the field and static lists; edits
// of either composite do not affect the other. Field codecs are shared.
func (c *Composite[T]) Clone() *Composite[T] {
	return &Composite[T]{
		steps:       append([]FieldCodec[T](nil), c.steps...),
		statics:     append([]StaticMember[T](nil), c.statics...),
		newInstance: c.newInstance,
	}
}

// Fields returns the serialized fields in wire order.
func (c *Composite[T]) Fields() []FieldCodec[T] {
	return append([]FieldCodec[T](nil), c.steps...)
}

// Statics returns the static members.
func (c *Composite[T]) Statics() []StaticMember[T] {
	return append([]StaticMember[T](nil), c.statics...)
}

// Field returns the field called name.
func (c *Composite[T]) Field(name string) (FieldCodec[T], bool) {
	for _, f := range c.steps {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

func (c *Composite[T]) StaticSize() (int, bool) {
	return c.cache.get(c.computeStaticSize)
}

func (c *Composite[T]) computeStaticSize() (int, bool) {
	total := 0
	for _, f := range c.steps {
		size, ok := f.StaticSize()
		if !ok {
			return 0, false
		}
		total += size
	}
	return total, true
}

func (c *Composite[T]) SizeFor(v T) (int, error) {
	if size, ok := c.StaticSize(); ok {
		return size, nil
	}
	total := 0
	for _, f := range c.steps {
		size, err := f.sizeOf(&v)
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}

func (c *Composite[T]) Validate(v T, path string) error {
	path = rootPath(path)
	for _, s := range c.statics {
		if err := s.check(&v, FieldPath(path, s.Name())); err != nil {
			return err
		}
	}
	for _, f := range c.steps {
		if err := f.validate(&v, FieldPath(path, f.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *Composite[T]) Encode(buf []byte, off int, v T) (int, error) {
	var err error
	for _, f := range c.steps {
		if off, err = f.encode(buf, off, &v); err != nil {
			return off, err
		}
	}
	return off, nil
}

func (c *Composite[T]) Decode(buf []byte, off int) (int, T, error) {
	v := c.instance()
	for _, s := range c.statics {
		s.assign(&v)
	}
	var err error
	for _, f := range c.steps {
		if off, err = f.decode(buf, off, &v); err != nil {
			var zero T
			return off, zero, err
		}
	}
	return off, v, nil
}

func (c *Composite[T]) WireSize(buf []byte, off int) (int, error) {
	if size, ok := c.StaticSize(); ok {
		return staticWireSize(buf, off, size)
	}
	start := off
	for _, f := range c.steps {
		size, err := f.wireSize(buf, off)
		if err != nil {
			return 0, err
		}
		off += size
	}
	return off - start, nil
}

// Merge combines composites into a new one: the static members of all parts
// first, then their fields, each group in argument order. The instance hook
// is taken from the first part that has one.
func Merge[T any](parts ...*Composite[T]) (*Composite[T], error) {
	merged := &Composite[T]{}
	for _, p := range parts {
		if err := merged.AppendStatic(p.statics...); err != nil {
			return nil, err
		}
		if merged.newInstance == nil {
			merged.newInstance = p.newInstance
		}
	}
	for _, p := range parts {
		if err := merged.Append(p.steps...); err != nil {
			return nil, err
		}
	}

	Logger().Debug("composites merged",
		zap.Int("parts", len(parts)),
		zap.Int("fields", len(merged.steps)),
		zap.Int("statics", len(merged.statics)),
	)
	return merged, nil
}
