package bincodec

import (
	"bytes"
	"reflect"
)

// FieldCodec is one named, serialized member of a composite over records of
// type T. Fields are created with Field or DictField, which bind the member's
// accessors once; encoding and decoding call them directly.
type FieldCodec[T any] interface {
	Name() string
	StaticSize() (int, bool)

	sizeOf(rec *T) (int, error)
	validate(rec *T, path string) error
	encode(buf []byte, off int, rec *T) (int, error)
	decode(buf []byte, off int, rec *T) (int, error)
	wireSize(buf []byte, off int) (int, error)
}

// StaticMember is a named constant of a composite. It is never read from or
// written to the wire: Decode assigns it and Validate checks it.
type StaticMember[T any] interface {
	Name() string
	Value() any

	check(rec *T, path string) error
	assign(rec *T)
}

type field[T, F any] struct {
	name  string
	get   func(*T) (F, error)
	set   func(*T, F)
	codec Codec[F]
}

// Field binds a struct member to a codec.
//
//	bincodec.Field("id",
//		func(p *Player) uint32 { return p.ID },
//		func(p *Player, v uint32) { p.ID = v },
//		bincodec.Uint32)
func Field[T, F any](name string, get func(*T) F, set func(*T, F), c Codec[F]) FieldCodec[T] {
	return &field[T, F]{
		name:  name,
		get:   func(rec *T) (F, error) { return get(rec), nil },
		set:   set,
		codec: c,
	}
}

func (f *field[T, F]) Name() string { return f.name }

func (f *field[T, F]) StaticSize() (int, bool) { return f.codec.StaticSize() }

func (f *field[T, F]) sizeOf(rec *T) (int, error) {
	v, err := f.get(rec)
	if err != nil {
		return 0, atPath(err, FieldPath("", f.name))
	}
	return f.codec.SizeFor(v)
}

func (f *field[T, F]) validate(rec *T, path string) error {
	v, err := f.get(rec)
	if err != nil {
		return atPath(err, path)
	}
	return f.codec.Validate(v, path)
}

func (f *field[T, F]) encode(buf []byte, off int, rec *T) (int, error) {
	v, err := f.get(rec)
	if err != nil {
		return off, atPath(err, FieldPath("", f.name))
	}
	return f.codec.Encode(buf, off, v)
}

func (f *field[T, F]) decode(buf []byte, off int, rec *T) (int, error) {
	next, v, err := f.codec.Decode(buf, off)
	if err != nil {
		return off, err
	}
	f.set(rec, v)
	return next, nil
}

func (f *field[T, F]) wireSize(buf []byte, off int) (int, error) {
	if size, ok := f.codec.StaticSize(); ok {
		return staticWireSize(buf, off, size)
	}
	return f.codec.WireSize(buf, off)
}

type static[T any, F comparable] struct {
	name  string
	get   func(*T) (F, error)
	set   func(*T, F)
	value F
}

// Static binds a struct member to a constant. Decoded records always carry
// value; Validate rejects records whose member differs from it.
func Static[T any, F comparable](name string, get func(*T) F, set func(*T, F), value F) StaticMember[T] {
	return &static[T, F]{
		name:  name,
		get:   func(rec *T) (F, error) { return get(rec), nil },
		set:   set,
		value: value,
	}
}

func (s *static[T, F]) Name() string  { return s.name }
func (s *static[T, F]) Value() any    { return s.value }
func (s *static[T, F]) assign(rec *T) { s.set(rec, s.value) }

func (s *static[T, F]) check(rec *T, path string) error {
	v, err := s.get(rec)
	if err != nil {
		return atPath(err, path)
	}
	if v != s.value {
		return validationError(path, "does not match the static value %v, is: %v", s.value, v)
	}
	return nil
}

// staticEqual compares dynamically typed static values. Byte spans compare by
// content, comparable values with ==, anything else deeply.
func staticEqual(a, b any) bool {
	if ab, ok := a.([]byte); ok {
		bb, ok := b.([]byte)
		return ok && bytes.Equal(ab, bb)
	}
	if a == nil || b == nil {
		return a == b
	}
	if reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
