package bincodec

import (
	"go.uber.org/zap"
)

// EnumCodec maps a closed set of distinct values to their index and stores
// the index in the narrowest unsigned integer that can hold it.
//
// Both sides have to be built from the same values in the same order; the
// values themselves never reach the wire.
type EnumCodec[E comparable] struct {
	*TransformCodec[E, uint32]
	values  []E
	indexes map[E]uint32
}

// Enum returns an index codec over values. Duplicates are dropped, the first
// occurrence keeping its position.
func Enum[E comparable](values ...E) (*EnumCodec[E], error) {
	c := &EnumCodec[E]{indexes: make(map[E]uint32, len(values))}
	for _, v := range values {
		if _, ok := c.indexes[v]; ok {
			continue
		}
		c.indexes[v] = uint32(len(c.values))
		c.values = append(c.values, v)
	}

	base, err := indexCodec(uint64(len(c.values)))
	if err != nil {
		return nil, err
	}
	c.TransformCodec = Transform[E, uint32](base, c.toIndex, c.toValue, c.check)

	Logger().Debug("enum codec built",
		zap.Int("values", len(c.values)),
		zap.Int("index_width", base.Width()),
	)
	return c, nil
}

// Values returns the de-duplicated values in index order.
func (c *EnumCodec[E]) Values() []E {
	return append([]E(nil), c.values...)
}

// Index returns the wire index of v.
func (c *EnumCodec[E]) Index(v E) (uint32, bool) {
	i, ok := c.indexes[v]
	return i, ok
}

// Contains reports whether v is one of the enum values.
func (c *EnumCodec[E]) Contains(v E) bool {
	_, ok := c.indexes[v]
	return ok
}

func (c *EnumCodec[E]) toIndex(v E) (uint32, error) {
	i, ok := c.indexes[v]
	if !ok {
		return 0, validationError(RootPath, "%v is not in the enum", v)
	}
	return i, nil
}

func (c *EnumCodec[E]) toValue(i uint32) (E, error) {
	if int64(i) >= int64(len(c.values)) {
		var zero E
		return zero, wireError(nil, "%d is not mappable to one of %d enum values", i, len(c.values))
	}
	return c.values[i], nil
}

func (c *EnumCodec[E]) check(v E, path string) error {
	if !c.Contains(v) {
		return validationError(path, "is not a valid enum value, was: %v", v)
	}
	return nil
}
