package codec

import (
	"github.com/wippyai/bytecoding/errors"
	"github.com/wippyai/bytecoding/internal/u128"
	"github.com/wippyai/bytecoding/schema"
	"github.com/wippyai/bytecoding/wire"
)

// assignTags computes each variant's tag in a single pass over the
// declaration order, threading the inference accumulator explicitly.
//
// Per variant the tag comes from exactly one source, in precedence
// order: an explicit value annotation, a base-10 discriminant literal,
// or (when inference is on) the previous tag plus one, starting at zero.
// The accumulator reseeds to whatever tag was chosen, so a variant after
// an explicit jump continues from the jump. Tags stay at full 128-bit
// precision through the uniqueness check and only then narrow to the
// configured width.
func assignTags(path []string, variants []schema.Variant, attrs schema.TypeAttrs) ([]u128.U128, error) {
	width := int(attrs.TagWidth())
	inferred := attrs.InferredTags()

	tags := make([]u128.U128, len(variants))
	seen := make(map[u128.U128]string, len(variants))
	var last *u128.U128

	for i, v := range variants {
		vpath := childPath(path, v.Name)

		var candidate u128.U128
		if inferred && last != nil {
			candidate = last.Inc() // wraps at 2^128; a wrap collision fails the uniqueness check
		}

		va, err := schema.ResolveVariantAttrs(vpath, v.Annotations)
		if err != nil {
			return nil, err
		}

		var tag u128.U128
		switch {
		case va.Value != nil:
			tag = *va.Value
		case v.Discriminant != "":
			tag, err = u128.ParseDecimal(v.Discriminant)
			if err != nil {
				return nil, errors.New(errors.PhaseResolve, errors.KindInvalidValue).
					Path(vpath...).
					Loc(v.Loc).
					Detail("discriminant must be a base-10 integer literal: %v", err).
					Build()
			}
		case inferred:
			tag = candidate
		default:
			return nil, errors.MissingDiscriminant(vpath)
		}

		if inferred {
			t := tag
			last = &t
		}

		if first, ok := seen[tag]; ok {
			return nil, errors.DuplicateTag(vpath, tag.String(), first)
		}
		seen[tag] = v.Name

		if !tag.FitsIn(width) {
			return nil, errors.TagOverflow(vpath, tag.String(), width)
		}
		tags[i] = tag
	}
	return tags, nil
}

// tagCodec returns the wire codec pair for a tag of the given width.
func tagCodec(w schema.TagWidth) (func([]byte, u128.U128) []byte, func([]byte) (u128.U128, []byte, error)) {
	switch w {
	case schema.Width8:
		return func(buf []byte, t u128.U128) []byte {
				return wire.AppendU8(buf, uint8(t.Lo))
			}, func(buf []byte) (u128.U128, []byte, error) {
				v, rest, err := wire.ReadU8(buf)
				return u128.From(uint64(v)), rest, err
			}
	case schema.Width32:
		return func(buf []byte, t u128.U128) []byte {
				return wire.AppendU32(buf, uint32(t.Lo))
			}, func(buf []byte) (u128.U128, []byte, error) {
				v, rest, err := wire.ReadU32(buf)
				return u128.From(uint64(v)), rest, err
			}
	case schema.Width64:
		return func(buf []byte, t u128.U128) []byte {
				return wire.AppendU64(buf, t.Lo)
			}, func(buf []byte) (u128.U128, []byte, error) {
				v, rest, err := wire.ReadU64(buf)
				return u128.From(v), rest, err
			}
	case schema.Width128:
		return func(buf []byte, t u128.U128) []byte {
				return wire.AppendU128(buf, t.Lo, t.Hi)
			}, func(buf []byte) (u128.U128, []byte, error) {
				lo, hi, rest, err := wire.ReadU128(buf)
				return u128.U128{Hi: hi, Lo: lo}, rest, err
			}
	default:
		return func(buf []byte, t u128.U128) []byte {
				return wire.AppendU16(buf, uint16(t.Lo))
			}, func(buf []byte) (u128.U128, []byte, error) {
				v, rest, err := wire.ReadU16(buf)
				return u128.From(uint64(v)), rest, err
			}
	}
}
