package codec

import (
	"github.com/wippyai/bytecoding/errors"
	"github.com/wippyai/bytecoding/schema"
)

// ResolvedField is one record or payload field at its serialization
// slot. Index is the field's declaration position.
type ResolvedField struct {
	Index  int
	Name   string
	Ignore bool
}

// ResolvedVariant is one union variant with its assigned tag. The tag is
// carried as a 128-bit lo/hi pair plus its decimal rendering; it has
// already passed the uniqueness and width checks.
type ResolvedVariant struct {
	Index  int
	Name   string
	TagLo  uint64
	TagHi  uint64
	Tag    string
	Fields []ResolvedField
}

// Resolved is the compile-time artifact of one declared type: merged
// attributes, field serialization order and the variant tag table.
type Resolved struct {
	Type     *schema.Type
	Attrs    schema.TypeAttrs
	Fields   []ResolvedField   // records and tuples
	Variants []ResolvedVariant // unions
}

// Resolve runs attribute resolution, field ordering and tag assignment
// for one declared type without binding it to a Go type. The reflect
// compiler and the source generator share this path.
func Resolve(t *schema.Type) (*Resolved, error) {
	path := []string{t.Name}

	attrs, err := schema.ResolveTypeAttrs(path, t.Annotations)
	if err != nil {
		return nil, err
	}
	if t.Kind != schema.Union && attrs.Union != nil {
		return nil, errors.MisplacedOption(path, attrs.UnionKey, attrs.UnionLoc)
	}

	r := &Resolved{Type: t, Attrs: attrs}
	if t.Kind != schema.Union {
		r.Fields, err = resolveFieldOrder(path, t.Fields)
		return r, err
	}

	tags, err := assignTags(path, t.Variants, attrs)
	if err != nil {
		return nil, err
	}
	r.Variants = make([]ResolvedVariant, len(t.Variants))
	for i, v := range t.Variants {
		fields, err := resolveFieldOrder(childPath(path, v.Name), v.Fields)
		if err != nil {
			return nil, err
		}
		r.Variants[i] = ResolvedVariant{
			Index:  i,
			Name:   v.Name,
			TagLo:  tags[i].Lo,
			TagHi:  tags[i].Hi,
			Tag:    tags[i].String(),
			Fields: fields,
		}
	}
	return r, nil
}

func resolveFieldOrder(path []string, fields []schema.Field) ([]ResolvedField, error) {
	ordered, err := orderFields(path, fields)
	if err != nil {
		return nil, err
	}
	out := make([]ResolvedField, len(ordered))
	for i, of := range ordered {
		out[i] = ResolvedField{Index: of.index, Name: of.name, Ignore: of.attrs.Ignore}
	}
	return out, nil
}
