package bincodec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type inner struct {
	D int8
	E uint16
}

type outer struct {
	A uint32
	B float32
	C inner
}

func innerCodec() *Composite[inner] {
	return Must(NewComposite(
		Field("d", func(v *inner) int8 { return v.D }, func(v *inner, d int8) { v.D = d }, Codec[int8](Int8)),
		Field("e", func(v *inner) uint16 { return v.E }, func(v *inner, e uint16) { v.E = e }, Codec[uint16](Uint16)),
	))
}

func outerCodec() *Composite[outer] {
	return Must(NewComposite(
		Field("a", func(v *outer) uint32 { return v.A }, func(v *outer, a uint32) { v.A = a }, Codec[uint32](Uint32)),
		Field("b", func(v *outer) float32 { return v.B }, func(v *outer, b float32) { v.B = b }, Codec[float32](Float32)),
		Field("c", func(v *outer) inner { return v.C }, func(v *outer, c inner) { v.C = c }, Codec[inner](innerCodec())),
	))
}

type message struct {
	Version uint8
	Kind    string
	Name    string
	Tags    []string
}

func messageCodec() *Composite[message] {
	c := Must(NewComposite(
		Field("name", func(m *message) string { return m.Name }, func(m *message, v string) { m.Name = v }, Codec[string](NewString())),
		Field("tags", func(m *message) []string { return m.Tags }, func(m *message, v []string) { m.Tags = v }, Codec[[]string](Array[string](NewString()))),
	))
	if err := c.AppendStatic(
		Static("version", func(m *message) uint8 { return m.Version }, func(m *message, v uint8) { m.Version = v }, uint8(2)),
	); err != nil {
		panic(err)
	}
	return c
}

type CompositeTestSuite struct {
	suite.Suite
	codec *Composite[outer]
}

func (s *CompositeTestSuite) SetupTest() {
	s.codec = outerCodec()
}

func (s *CompositeTestSuite) TestNestedRecord() {
	in := outer{A: 12, B: 3.14, C: inner{D: -22, E: 443}}

	size, ok := s.codec.StaticSize()
	s.Require().True(ok)
	s.Assert().Equal(11, size)

	buf, err := Marshal[outer](s.codec, in)
	s.Require().NoError(err)
	s.Assert().Len(buf, 11)
	s.Assert().Equal([]byte{0x00, 0x00, 0x00, 0x0c}, buf[:4])
	s.Assert().Equal([]byte{0xea, 0x01, 0xbb}, buf[8:])

	wire, err := s.codec.WireSize(buf, 0)
	s.Require().NoError(err)
	s.Assert().Equal(11, wire)

	out, err := Unmarshal[outer](s.codec, buf)
	s.Require().NoError(err)
	s.Assert().Equal(in, out)
}

func (s *CompositeTestSuite) TestNestedPath() {
	wide := Must(NewComposite(
		Field("d", func(v *inner) int8 { return v.D }, func(v *inner, d int8) { v.D = d }, Codec[int8](Int8)),
		Field("e-value", func(v *inner) uint16 { return v.E }, func(v *inner, e uint16) { v.E = e }, Codec[uint16](Must(Integer[uint16](1, false)))),
	))
	s.Require().NoError(s.codec.Replace(
		Field("c", func(v *outer) inner { return v.C }, func(v *outer, c inner) { v.C = c }, Codec[inner](wide)),
	))

	err := s.codec.Validate(outer{C: inner{E: 443}}, "")
	var e *Error
	s.Require().True(errors.As(err, &e))
	s.Assert().Equal(`val.c["e-value"]`, e.Path)
}

func (s *CompositeTestSuite) TestDuplicateNames() {
	err := s.codec.Append(Field("a", func(v *outer) uint32 { return v.A }, func(v *outer, a uint32) { v.A = a }, Codec[uint32](Uint32)))
	s.Require().Error(err)
	s.Assert().ErrorIs(err, ErrConstruction)
	s.Assert().ErrorIs(err, ErrDuplicateName)
	s.Assert().Len(s.codec.Fields(), 3, "a failed append adds nothing")

	_, err = NewComposite(
		Field("x", func(v *outer) uint32 { return v.A }, func(v *outer, a uint32) { v.A = a }, Codec[uint32](Uint32)),
		Field("x", func(v *outer) uint32 { return v.A }, func(v *outer, a uint32) { v.A = a }, Codec[uint32](Uint32)),
	)
	s.Assert().ErrorIs(err, ErrDuplicateName)
}

func (s *CompositeTestSuite) TestStaticSizeCacheInvalidation() {
	size, ok := s.codec.StaticSize()
	s.Require().True(ok)
	s.Require().Equal(11, size)

	s.Require().True(s.codec.Remove("b"))
	size, ok = s.codec.StaticSize()
	s.Require().True(ok)
	s.Assert().Equal(7, size)

	s.Require().NoError(s.codec.Append(
		Field("b", func(v *outer) float32 { return v.B }, func(v *outer, b float32) { v.B = b }, Codec[float32](Float32)),
	))
	size, _ = s.codec.StaticSize()
	s.Assert().Equal(11, size)

	s.Require().NoError(s.codec.Replace(
		Field("b", func(v *outer) float32 { return v.B }, func(v *outer, b float32) { v.B = b }, Codec[float32](Must(Floating[float32](8)))),
	))
	size, _ = s.codec.StaticSize()
	s.Assert().Equal(15, size)

	err := s.codec.Replace(Field("zz", func(v *outer) uint32 { return v.A }, func(v *outer, a uint32) { v.A = a }, Codec[uint32](Uint32)))
	s.Assert().ErrorIs(err, ErrUnknownField)
}

func (s *CompositeTestSuite) TestNestedEditReachesOuter() {
	in := Must(NewComposite(
		Field("d", func(v *inner) int8 { return v.D }, func(v *inner, d int8) { v.D = d }, Codec[int8](Int8)),
	))
	out := Must(NewComposite(
		Field("a", func(v *outer) uint32 { return v.A }, func(v *outer, a uint32) { v.A = a }, Codec[uint32](Uint32)),
		Field("c", func(v *outer) inner { return v.C }, func(v *outer, c inner) { v.C = c }, Codec[inner](in)),
	))
	size, ok := out.StaticSize()
	s.Require().True(ok)
	s.Require().Equal(5, size)

	s.Require().NoError(in.Append(
		Field("e", func(v *inner) uint16 { return v.E }, func(v *inner, e uint16) { v.E = e }, Codec[uint16](Uint16)),
	))
	size, ok = out.StaticSize()
	s.Require().True(ok)
	s.Assert().Equal(7, size)

	value := outer{A: 1, C: inner{D: 2, E: 3}}
	buf, err := Marshal[outer](out, value)
	s.Require().NoError(err)
	s.Assert().Len(buf, 7)

	wire, err := out.WireSize(buf, 0)
	s.Require().NoError(err)
	s.Assert().Equal(7, wire)

	decoded, err := Unmarshal[outer](out, buf)
	s.Require().NoError(err)
	s.Assert().Equal(value, decoded)

	s.Require().True(in.Remove("d"))
	size, _ = out.StaticSize()
	s.Assert().Equal(6, size)
}

func (s *CompositeTestSuite) TestClone() {
	clone := s.codec.Clone()
	s.Require().True(clone.Remove("c"))

	size, _ := s.codec.StaticSize()
	s.Assert().Equal(11, size, "the original is unaffected")
	size, _ = clone.StaticSize()
	s.Assert().Equal(8, size)
}

func (s *CompositeTestSuite) TestStatics() {
	c := messageCodec()
	in := message{Version: 2, Name: "n", Tags: []string{"x", "yz"}}

	_, ok := c.StaticSize()
	s.Assert().False(ok)

	buf, err := Marshal[message](c, in)
	s.Require().NoError(err)
	s.Assert().Len(buf, 3+2+3+4, "static members contribute no bytes")

	out, err := Unmarshal[message](c, buf)
	s.Require().NoError(err)
	s.Assert().Equal(in, out, "decode assigns the static value")

	err = c.Validate(message{Version: 3}, "")
	var e *Error
	s.Require().True(errors.As(err, &e))
	s.Assert().Equal("val.version", e.Path)

	err = c.AppendStatic(Static("name", func(m *message) string { return m.Kind }, func(m *message, v string) { m.Kind = v }, "k"))
	s.Assert().ErrorIs(err, ErrDuplicateName)
}

func (s *CompositeTestSuite) TestWithInstance() {
	c := messageCodec().WithInstance(func() message { return message{Kind: "default"} })
	buf, err := Marshal[message](c, message{Version: 2, Name: "a"})
	s.Require().NoError(err)

	out, err := Unmarshal[message](c, buf)
	s.Require().NoError(err)
	s.Assert().Equal("default", out.Kind)
}

func (s *CompositeTestSuite) TestMerge() {
	head := Must(NewComposite(
		Field("a", func(v *outer) uint32 { return v.A }, func(v *outer, a uint32) { v.A = a }, Codec[uint32](Uint32)),
	))
	tail := Must(NewComposite(
		Field("b", func(v *outer) float32 { return v.B }, func(v *outer, b float32) { v.B = b }, Codec[float32](Float32)),
	))
	merged, err := Merge(head, tail)
	s.Require().NoError(err)

	names := []string{}
	for _, f := range merged.Fields() {
		names = append(names, f.Name())
	}
	s.Assert().Equal([]string{"a", "b"}, names)

	_, err = Merge(head, head)
	s.Assert().ErrorIs(err, ErrDuplicateName)
}

func TestComposite(t *testing.T) {
	suite.Run(t, new(CompositeTestSuite))
}

func TestDict(t *testing.T) {
	c := Must(NewComposite(
		DictField[uint16]("id", Uint16),
		DictField[string]("display name", NewString()),
	))
	require.NoError(t, c.AppendStatic(DictStatic("type", "user")))

	in := Dict{"id": uint16(5), "display name": "Ana", "type": "user"}
	buf, err := Marshal[Dict](c, in)
	require.NoError(t, err)
	assert.Len(t, buf, 2+2+3)

	out, err := Unmarshal[Dict](c, buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	t.Run("MissingKey", func(t *testing.T) {
		err := c.Validate(Dict{"id": uint16(5), "type": "user"}, "")
		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, `val["display name"]`, e.Path)
		assert.Contains(t, e.Detail, "is missing")
	})

	t.Run("WrongType", func(t *testing.T) {
		err := c.Validate(Dict{"id": 5, "display name": "x", "type": "user"}, "")
		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, "val.id", e.Path)
	})

	t.Run("StaticMismatch", func(t *testing.T) {
		err := c.Validate(Dict{"id": uint16(5), "display name": "x", "type": "admin"}, "")
		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, "val.type", e.Path)
	})

	t.Run("MissingKeyOnEncode", func(t *testing.T) {
		_, err := Marshal[Dict](c, Dict{"id": uint16(1)})
		assert.ErrorIs(t, err, ErrValidation)
	})
}
