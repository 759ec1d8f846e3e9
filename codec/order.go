package codec

import (
	"sort"
	"strconv"

	"github.com/wippyai/bytecoding/errors"
	"github.com/wippyai/bytecoding/schema"
)

// orderedField pairs a field's declaration index with its resolved
// attributes, positioned at its serialization slot.
type orderedField struct {
	index int
	name  string // declaration index rendered for positional fields
	attrs schema.FieldAttrs
}

// orderFields resolves each field's attributes and computes the
// serialization order: explicit order numbers ascending, then fields
// without one in declaration order. Two fields claiming the same
// explicit number is a resolution failure.
func orderFields(path []string, fields []schema.Field) ([]orderedField, error) {
	out := make([]orderedField, len(fields))
	seen := make(map[uint64]string, len(fields))

	for i, f := range fields {
		name := f.Name
		if name == "" {
			name = strconv.Itoa(i)
		}
		attrs, err := schema.ResolveFieldAttrs(childPath(path, name), f.Annotations)
		if err != nil {
			return nil, err
		}
		if attrs.OrderNo != nil {
			if first, ok := seen[*attrs.OrderNo]; ok {
				return nil, errors.DuplicateOrder(childPath(path, name), *attrs.OrderNo, first)
			}
			seen[*attrs.OrderNo] = name
		}
		out[i] = orderedField{index: i, name: name, attrs: attrs}
	}

	sort.SliceStable(out, func(a, b int) bool {
		oa, ob := out[a].attrs.OrderNo, out[b].attrs.OrderNo
		switch {
		case oa != nil && ob != nil:
			return *oa < *ob
		case oa != nil:
			return true
		default:
			return false
		}
	})
	return out, nil
}
