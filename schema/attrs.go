package schema

import (
	"strconv"

	"github.com/wippyai/bytecoding/errors"
	"github.com/wippyai/bytecoding/internal/u128"
)

// TagWidth is the bit width used to encode a union's variant tag.
type TagWidth int

const (
	Width8   TagWidth = 8
	Width16  TagWidth = 16
	Width32  TagWidth = 32
	Width64  TagWidth = 64
	Width128 TagWidth = 128

	// DefaultWidth is used when a union carries no encoding_type.
	DefaultWidth = Width16
)

var widthNames = map[string]TagWidth{
	"u8":   Width8,
	"u16":  Width16,
	"u32":  Width32,
	"u64":  Width64,
	"u128": Width128,
}

// UnionOpts holds the union-only configuration of a type.
type UnionOpts struct {
	Width    TagWidth // 0 when not configured
	Inferred bool
}

// TypeAttrs is the merged configuration of one declared type.
type TypeAttrs struct {
	PreEncode  string
	PostEncode string
	PreDecode  string
	PostDecode string
	Union      *UnionOpts

	// UnionKey and UnionLoc record the first annotation entry that set a
	// union-only option, so misplacement on a record reports the right
	// source position.
	UnionKey string
	UnionLoc errors.Loc
}

// TagWidth returns the configured tag width, or the default.
func (a TypeAttrs) TagWidth() TagWidth {
	if a.Union != nil && a.Union.Width != 0 {
		return a.Union.Width
	}
	return DefaultWidth
}

// InferredTags reports whether tag inference is enabled.
func (a TypeAttrs) InferredTags() bool {
	return a.Union != nil && a.Union.Inferred
}

// FieldAttrs is the merged configuration of one field.
type FieldAttrs struct {
	OrderNo *uint64
	Ignore  bool
}

// VariantAttrs is the merged configuration of one union variant.
type VariantAttrs struct {
	Value *u128.U128
}

// ResolveTypeAttrs parses and merges a type's annotation blocks. Blocks
// merge left to right: later non-empty scalars win, inferred_tags ORs.
func ResolveTypeAttrs(path []string, blocks []Block) (TypeAttrs, error) {
	var merged TypeAttrs
	for _, block := range blocks {
		parsed, err := parseTypeBlock(path, block)
		if err != nil {
			return TypeAttrs{}, err
		}
		merged = mergeTypeAttrs(merged, parsed)
	}
	return merged, nil
}

func parseTypeBlock(path []string, block Block) (TypeAttrs, error) {
	var a TypeAttrs
	for _, e := range block.Entries {
		switch e.Key {
		case "pre_enc_func", "post_enc_func", "pre_dec_func", "post_dec_func":
			if e.Form != FormString {
				return TypeAttrs{}, errors.InvalidValue(path, e.Key, "expected a string", e.Loc)
			}
			switch e.Key {
			case "pre_enc_func":
				a.PreEncode = e.Str
			case "post_enc_func":
				a.PostEncode = e.Str
			case "pre_dec_func":
				a.PreDecode = e.Str
			case "post_dec_func":
				a.PostDecode = e.Str
			}

		case "encoding_type":
			if e.Form != FormString {
				return TypeAttrs{}, errors.InvalidValue(path, e.Key, "expected a string", e.Loc)
			}
			width, ok := widthNames[e.Str]
			if !ok {
				return TypeAttrs{}, errors.InvalidValue(path, e.Key, "unknown encoding type "+strconv.Quote(e.Str), e.Loc)
			}
			a.setUnion(e, func(o *UnionOpts) { o.Width = width })

		case "inferred_tags":
			if e.Form != FormFlag {
				return TypeAttrs{}, errors.InvalidValue(path, e.Key, "takes no value", e.Loc)
			}
			a.setUnion(e, func(o *UnionOpts) { o.Inferred = true })

		default:
			return TypeAttrs{}, errors.UnknownAttribute(path, e.Key, e.Loc)
		}
	}
	return a, nil
}

func (a *TypeAttrs) setUnion(e Entry, apply func(*UnionOpts)) {
	if a.Union == nil {
		a.Union = &UnionOpts{}
		a.UnionKey = e.Key
		a.UnionLoc = e.Loc
	}
	apply(a.Union)
}

func mergeTypeAttrs(dst, src TypeAttrs) TypeAttrs {
	if src.PreEncode != "" {
		dst.PreEncode = src.PreEncode
	}
	if src.PostEncode != "" {
		dst.PostEncode = src.PostEncode
	}
	if src.PreDecode != "" {
		dst.PreDecode = src.PreDecode
	}
	if src.PostDecode != "" {
		dst.PostDecode = src.PostDecode
	}

	if src.Union != nil {
		if dst.Union == nil {
			dst.Union = src.Union
			dst.UnionKey = src.UnionKey
			dst.UnionLoc = src.UnionLoc
		} else {
			if src.Union.Width != 0 {
				dst.Union.Width = src.Union.Width
			}
			dst.Union.Inferred = dst.Union.Inferred || src.Union.Inferred
		}
	}
	return dst
}

// ResolveFieldAttrs parses and merges a field's annotation blocks.
func ResolveFieldAttrs(path []string, blocks []Block) (FieldAttrs, error) {
	var merged FieldAttrs
	for _, block := range blocks {
		parsed, err := parseFieldBlock(path, block)
		if err != nil {
			return FieldAttrs{}, err
		}
		if parsed.OrderNo != nil {
			merged.OrderNo = parsed.OrderNo
		}
		merged.Ignore = merged.Ignore || parsed.Ignore
	}
	return merged, nil
}

func parseFieldBlock(path []string, block Block) (FieldAttrs, error) {
	var a FieldAttrs
	for _, e := range block.Entries {
		switch e.Key {
		case "order_no":
			if e.Form != FormInt {
				return FieldAttrs{}, errors.InvalidValue(path, e.Key, "expected a number", e.Loc)
			}
			n, err := strconv.ParseUint(e.Int, 10, 64)
			if err != nil {
				return FieldAttrs{}, errors.InvalidValue(path, e.Key, "invalid integer "+strconv.Quote(e.Int), e.Loc)
			}
			a.OrderNo = &n

		case "ignore":
			if e.Form != FormFlag {
				return FieldAttrs{}, errors.InvalidValue(path, e.Key, "takes no value", e.Loc)
			}
			a.Ignore = true

		default:
			return FieldAttrs{}, errors.UnknownAttribute(path, e.Key, e.Loc)
		}
	}
	return a, nil
}

// ResolveVariantAttrs parses and merges a variant's annotation blocks.
func ResolveVariantAttrs(path []string, blocks []Block) (VariantAttrs, error) {
	var merged VariantAttrs
	for _, block := range blocks {
		parsed, err := parseVariantBlock(path, block)
		if err != nil {
			return VariantAttrs{}, err
		}
		if parsed.Value != nil {
			merged.Value = parsed.Value
		}
	}
	return merged, nil
}

func parseVariantBlock(path []string, block Block) (VariantAttrs, error) {
	var a VariantAttrs
	for _, e := range block.Entries {
		switch e.Key {
		case "value":
			if e.Form != FormInt {
				return VariantAttrs{}, errors.InvalidValue(path, e.Key, "expected a number", e.Loc)
			}
			v, err := u128.ParseDecimal(e.Int)
			if err != nil {
				return VariantAttrs{}, errors.InvalidValue(path, e.Key, err.Error(), e.Loc)
			}
			a.Value = &v

		default:
			return VariantAttrs{}, errors.UnknownAttribute(path, e.Key, e.Loc)
		}
	}
	return a, nil
}
