package bincodec

import (
	"errors"
	"reflect"
)

// TransformCodec encodes an Origin value by mapping it to a Base value and
// delegating to the base codec: Origin -> Base -> bytes -> Base -> Origin.
// The wire layout, static size and wire size are exactly those of Base.
type TransformCodec[Origin, Base any] struct {
	base     Codec[Base]
	toBase   func(Origin) (Base, error)
	toOrigin func(Base) (Origin, error)
	check    func(Origin, string) error
}

var _ Codec[string] = (*TransformCodec[string, int])(nil)

// Transform builds a derived codec from two mapping functions.
// check may be nil; otherwise it runs before the mapped value is validated
// by the base codec and receives the path label of the value.
func Transform[Origin, Base any](
	base Codec[Base],
	toBase func(Origin) (Base, error),
	toOrigin func(Base) (Origin, error),
	check func(v Origin, path string) error,
) *TransformCodec[Origin, Base] {
	return &TransformCodec[Origin, Base]{base: base, toBase: toBase, toOrigin: toOrigin, check: check}
}

// Base returns the wrapped codec.
func (c *TransformCodec[Origin, Base]) Base() Codec[Base] { return c.base }

func (c *TransformCodec[Origin, Base]) StaticSize() (int, bool) { return c.base.StaticSize() }

func (c *TransformCodec[Origin, Base]) SizeFor(v Origin) (int, error) {
	b, err := c.toBase(v)
	if err != nil {
		return 0, withKind(err, KindValidation, RootPath)
	}
	return c.base.SizeFor(b)
}

func (c *TransformCodec[Origin, Base]) Validate(v Origin, path string) error {
	path = rootPath(path)
	if c.check != nil {
		if err := c.check(v, path); err != nil {
			return withKind(err, KindValidation, path)
		}
	}
	b, err := c.toBase(v)
	if err != nil {
		return withKind(err, KindValidation, path)
	}
	return c.base.Validate(b, path)
}

func (c *TransformCodec[Origin, Base]) Encode(buf []byte, off int, v Origin) (int, error) {
	b, err := c.toBase(v)
	if err != nil {
		return off, withKind(err, KindValidation, RootPath)
	}
	return c.base.Encode(buf, off, b)
}

func (c *TransformCodec[Origin, Base]) Decode(buf []byte, off int) (int, Origin, error) {
	next, b, err := c.base.Decode(buf, off)
	if err != nil {
		var zero Origin
		return off, zero, err
	}
	v, err := c.toOrigin(b)
	if err != nil {
		var zero Origin
		return off, zero, withKind(err, KindWire, "")
	}
	return next, v, nil
}

func (c *TransformCodec[Origin, Base]) WireSize(buf []byte, off int) (int, error) {
	return c.base.WireSize(buf, off)
}

// withKind leaves codec errors untouched and classifies anything else.
func withKind(err error, kind Kind, path string) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kind, Path: path, Cause: err}
}

// Cast adapts a Codec[V] to a Codec[T] by type assertion. It is typically
// used to register concrete variant codecs in a union over an interface type,
// or to erase a codec to Codec[any] for Chain.
func Cast[T, V any](c Codec[V]) (*TransformCodec[T, V], error) {
	if !reflect.TypeFor[V]().AssignableTo(reflect.TypeFor[T]()) {
		return nil, constructionError(nil, "%s is not assignable to %s", reflect.TypeFor[V](), reflect.TypeFor[T]())
	}
	var zero V
	toBase := func(v T) (V, error) {
		b, ok := any(v).(V)
		if !ok {
			return zero, validationError(RootPath, "needs to be %s but was %T", reflect.TypeFor[V](), v)
		}
		return b, nil
	}
	toOrigin := func(b V) (T, error) {
		v, _ := any(b).(T)
		return v, nil
	}
	check := func(v T, path string) error {
		if _, ok := any(v).(V); !ok {
			return validationError(path, "needs to be %s but was %T", reflect.TypeFor[V](), v)
		}
		return nil
	}
	return Transform[T, V](c, toBase, toOrigin, check), nil
}

// Any erases the value type of c.
func Any[V any](c Codec[V]) Codec[any] {
	return Must(Cast[any](c))
}
