package bincodec

// Dict is a dynamically shaped record. Composites over Dict bind fields by
// key with DictField and DictStatic; a key that is absent is reported by
// Validate as a missing field.
type Dict map[string]any

func (d *Dict) put(name string, v any) {
	if *d == nil {
		*d = make(Dict)
	}
	(*d)[name] = v
}

// DictField binds the key name of a Dict record to a codec. The stored value
// must have the codec's exact Go type.
func DictField[F any](name string, c Codec[F]) FieldCodec[Dict] {
	return &field[Dict, F]{
		name:  name,
		get:   func(d *Dict) (F, error) { return dictGet[F](*d, name) },
		set:   func(d *Dict, v F) { d.put(name, v) },
		codec: c,
	}
}

func dictGet[F any](d Dict, name string) (F, error) {
	var zero F
	raw, ok := d[name]
	if !ok {
		return zero, validationError("", "is missing but required by the codec")
	}
	v, ok := raw.(F)
	if !ok {
		return zero, validationError("", "needs to be %T but was %T", zero, raw)
	}
	return v, nil
}

type dictStatic struct {
	name  string
	value any
}

// DictStatic binds the key name of a Dict record to a constant.
func DictStatic(name string, value any) StaticMember[Dict] {
	return &dictStatic{name: name, value: value}
}

func (s *dictStatic) Name() string   { return s.name }
func (s *dictStatic) Value() any     { return s.value }
func (s *dictStatic) assign(d *Dict) { d.put(s.name, s.value) }

func (s *dictStatic) check(d *Dict, path string) error {
	v, ok := (*d)[s.name]
	if !ok {
		return validationError(path, "is missing but required as static member")
	}
	if !staticEqual(v, s.value) {
		return validationError(path, "does not match the static value %v, is: %v", s.value, v)
	}
	return nil
}
