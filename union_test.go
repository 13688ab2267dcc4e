package bincodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type shape interface{ area() float64 }

type circle struct{ R uint16 }

type rect struct{ W, H uint16 }

func (c circle) area() float64 { return 3 * float64(c.R) * float64(c.R) }
func (r rect) area() float64   { return float64(r.W) * float64(r.H) }

var (
	circleCodec = Must(NewComposite(
		Field("r", func(c *circle) uint16 { return c.R }, func(c *circle, v uint16) { c.R = v }, Codec[uint16](Uint16)),
	))
	rectCodec = Must(NewComposite(
		Field("w", func(r *rect) uint16 { return r.W }, func(r *rect, v uint16) { r.W = v }, Codec[uint16](Uint16)),
		Field("h", func(r *rect) uint16 { return r.H }, func(r *rect, v uint16) { r.H = v }, Codec[uint16](Uint16)),
	))
)

type UnionTestSuite struct {
	suite.Suite
}

func (s *UnionTestSuite) TestFirstMatchWins() {
	b := NewUnion[int]().
		Add(func(v int) bool { return v < 256 }, Codec[int](Must(Integer[int](1, false)))).
		Add(func(v int) bool { return v >= 0 }, Codec[int](Must(Integer[int](4, false))))
	u, err := b.Finalize()
	s.Require().NoError(err)

	buf, err := Marshal[int](u, 7)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x00, 0x07}, buf, "7 matches both predicates, the first is used")

	buf, err = Marshal[int](u, 300)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x01, 0x00, 0x00, 0x01, 0x2c}, buf)

	v, err := Unmarshal[int](u, buf)
	s.Require().NoError(err)
	s.Assert().Equal(300, v)

	size, err := u.WireSize(buf, 0)
	s.Require().NoError(err)
	s.Assert().Equal(5, size)

	err = u.Validate(-1, "")
	s.Assert().ErrorIs(err, ErrValidation)
}

func (s *UnionTestSuite) TestTypeCases() {
	b := NewUnion[shape]()
	s.Require().NoError(AddCase[shape, circle](b, circleCodec))
	s.Require().NoError(AddCase[shape, rect](b, rectCodec))
	u, err := b.Finalize()
	s.Require().NoError(err)

	_, static := u.StaticSize()
	s.Assert().False(static, "variants differ in size")

	for _, in := range []shape{circle{R: 2}, rect{W: 3, H: 4}} {
		buf, err := Marshal[shape](u, in)
		s.Require().NoError(err)

		size, err := u.SizeFor(in)
		s.Require().NoError(err)
		s.Assert().Len(buf, size)

		wire, err := u.WireSize(buf, 0)
		s.Require().NoError(err)
		s.Assert().Equal(size, wire)

		out, err := Unmarshal[shape](u, buf)
		s.Require().NoError(err)
		s.Assert().Equal(in, out)
	}
}

func (s *UnionTestSuite) TestIndexOutOfRange() {
	u, err := NewUnion[string]().Add(func(string) bool { return true }, Codec[string](NewString())).Finalize()
	s.Require().NoError(err)

	_, _, err = u.Decode([]byte{0x01, 0x00, 0x00}, 0)
	s.Assert().ErrorIs(err, ErrWire)
	_, err = u.WireSize([]byte{0x05, 0x00, 0x00}, 0)
	s.Assert().ErrorIs(err, ErrWire)
}

func (s *UnionTestSuite) TestStaticVariants() {
	u, err := NewUnion[uint16]().
		Add(func(v uint16) bool { return v%2 == 0 }, Codec[uint16](Uint16)).
		Add(func(v uint16) bool { return true }, Codec[uint16](Uint16)).
		Finalize()
	s.Require().NoError(err)

	size, ok := u.StaticSize()
	s.Require().True(ok)
	s.Assert().Equal(3, size)
}

func (s *UnionTestSuite) TestVariantEditAfterFinalize() {
	variant := Must(NewComposite(
		Field("r", func(c *circle) uint16 { return c.R }, func(c *circle, v uint16) { c.R = v }, Codec[uint16](Uint16)),
	))
	u, err := NewUnion[circle]().Add(func(circle) bool { return true }, Codec[circle](variant)).Finalize()
	s.Require().NoError(err)
	size, ok := u.StaticSize()
	s.Require().True(ok)
	s.Require().Equal(3, size)

	s.Require().NoError(variant.Replace(
		Field("r", func(c *circle) uint16 { return c.R }, func(c *circle, v uint16) { c.R = v }, Codec[uint16](Must(Integer[uint16](4, false)))),
	))
	size, ok = u.StaticSize()
	s.Require().True(ok)
	s.Assert().Equal(5, size)

	buf, err := Marshal[circle](u, circle{R: 9})
	s.Require().NoError(err)
	wire, err := u.WireSize(buf, 0)
	s.Require().NoError(err)
	s.Assert().Equal(len(buf), wire)
}

func (s *UnionTestSuite) TestNotFinalized() {
	var u Union[int]
	_, err := Marshal[int](&u, 1)
	s.Assert().ErrorIs(err, ErrNotFinalized)
	s.Assert().ErrorIs(err, ErrConstruction)

	_, err = NewUnion[int]().Finalize()
	s.Assert().ErrorIs(err, ErrConstruction)
}

func (s *UnionTestSuite) TestFinalizeFreezes() {
	b := NewUnion[uint16]().Add(func(uint16) bool { return true }, Codec[uint16](Uint16))
	u, err := b.Finalize()
	s.Require().NoError(err)

	b.Add(func(uint16) bool { return true }, Codec[uint16](Uint16))
	s.Assert().Equal(1, u.Len())

	grown, err := u.Unfreeze().Add(func(uint16) bool { return true }, Codec[uint16](Uint16)).Finalize()
	s.Require().NoError(err)
	s.Assert().Equal(2, grown.Len())
	s.Assert().Equal(1, u.Len())
}

func TestUnion(t *testing.T) {
	suite.Run(t, new(UnionTestSuite))
}

type event struct {
	Kind  string
	Code  uint16
	Label string
}

func eventUnion(t *testing.T) *PropertyUnion[event, string] {
	codeOnly := Must(NewComposite(
		Field("code", func(e *event) uint16 { return e.Code }, func(e *event, v uint16) { e.Code = v }, Codec[uint16](Uint16)),
	))
	labelled := Must(NewComposite(
		Field("code", func(e *event) uint16 { return e.Code }, func(e *event, v uint16) { e.Code = v }, Codec[uint16](Uint16)),
		Field("label", func(e *event) string { return e.Label }, func(e *event, v string) { e.Label = v }, Codec[string](NewString())),
	))
	u, err := NewPropertyUnion("kind",
		func(e *event) string { return e.Kind },
		func(e *event, k string) { e.Kind = k },
	).
		Register("ping", codeOnly).
		Register("note", labelled).
		Finalize()
	require.NoError(t, err)
	return u
}

func TestPropertyUnion(t *testing.T) {
	u := eventUnion(t)
	assert.Equal(t, []string{"ping", "note"}, u.Discriminants())

	t.Run("RecoversDiscriminant", func(t *testing.T) {
		for _, in := range []event{{Kind: "ping", Code: 7}, {Kind: "note", Code: 1, Label: "hi"}} {
			buf, err := Marshal[event](u, in)
			require.NoError(t, err)

			wire, err := u.WireSize(buf, 0)
			require.NoError(t, err)
			assert.Equal(t, len(buf), wire)

			out, err := Unmarshal[event](u, buf)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		}
	})

	t.Run("WireLayout", func(t *testing.T) {
		buf, err := Marshal[event](u, event{Kind: "note", Code: 1, Label: "hi"})
		require.NoError(t, err)
		assert.Equal(t, []byte{0x01, 0x00, 0x01, 0x00, 0x02, 'h', 'i'}, buf)
	})

	t.Run("UnknownDiscriminant", func(t *testing.T) {
		err := u.Validate(event{Kind: "other"}, "")
		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "val.kind", e.Path)
		assert.Contains(t, e.Detail, "other")

		_, err = Marshal[event](u, event{Kind: "other"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("BadIndex", func(t *testing.T) {
		_, _, err := u.Decode([]byte{0x02, 0x00, 0x00}, 0)
		assert.ErrorIs(t, err, ErrWire)
	})

	t.Run("ReRegisterReplaces", func(t *testing.T) {
		b := u.Unfreeze().Register("ping", Must(NewComposite[event]()))
		assert.Equal(t, 2, b.Len())

		replaced, err := b.Finalize()
		require.NoError(t, err)
		buf, err := Marshal[event](replaced, event{Kind: "ping", Code: 7})
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00}, buf)
	})

	t.Run("VariantEditAfterFinalize", func(t *testing.T) {
		code := Must(NewComposite(
			Field("code", func(e *event) uint16 { return e.Code }, func(e *event, v uint16) { e.Code = v }, Codec[uint16](Uint16)),
		))
		static, err := NewPropertyUnion("kind", func(e *event) string { return e.Kind }, func(e *event, k string) { e.Kind = k }).
			Register("ping", code).
			Finalize()
		require.NoError(t, err)
		size, ok := static.StaticSize()
		require.True(t, ok)
		require.Equal(t, 3, size)

		require.NoError(t, code.Append(
			Field("label", func(e *event) string { return e.Label }, func(e *event, v string) { e.Label = v }, Codec[string](NewString())),
		))
		_, ok = static.StaticSize()
		assert.False(t, ok, "the variant is no longer static")

		in := event{Kind: "ping", Code: 1, Label: "x"}
		buf, err := Marshal[event](static, in)
		require.NoError(t, err)
		out, err := Unmarshal[event](static, buf)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("NotFinalized", func(t *testing.T) {
		var zero PropertyUnion[event, string]
		assert.ErrorIs(t, zero.Validate(event{}, ""), ErrNotFinalized)

		_, err := NewPropertyUnion("kind", func(e *event) string { return e.Kind }, func(e *event, k string) { e.Kind = k }).Finalize()
		assert.ErrorIs(t, err, ErrConstruction)
	})
}
