package schema

import (
	"errors"
	"testing"

	coderr "github.com/wippyai/bytecoding/errors"
)

func TestResolveTypeAttrs_Merge(t *testing.T) {
	attrs, err := ResolveTypeAttrs([]string{"T"}, []Block{
		Annot(Str("pre_enc_func", "first"), Str("post_dec_func", "keepMe")),
		Annot(Str("pre_enc_func", "second")),
		Annot(Str("pre_dec_func", "stripHeader")),
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if attrs.PreEncode != "second" {
		t.Errorf("PreEncode = %q, want later block to win", attrs.PreEncode)
	}
	if attrs.PostDecode != "keepMe" {
		t.Errorf("PostDecode = %q, want earlier value kept", attrs.PostDecode)
	}
	if attrs.PreDecode != "stripHeader" {
		t.Errorf("PreDecode = %q", attrs.PreDecode)
	}
	if attrs.PostEncode != "" {
		t.Errorf("PostEncode = %q, want empty", attrs.PostEncode)
	}
	if attrs.Union != nil {
		t.Error("no union options were set")
	}
}

func TestResolveTypeAttrs_UnionOptions(t *testing.T) {
	attrs, err := ResolveTypeAttrs([]string{"Shape"}, []Block{
		Annot(Flag("inferred_tags")),
		Annot(Str("encoding_type", "u8")),
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if attrs.Union == nil {
		t.Fatal("union options not collected")
	}
	if !attrs.InferredTags() {
		t.Error("inferred_tags lost in merge")
	}
	if attrs.TagWidth() != Width8 {
		t.Errorf("TagWidth = %d, want 8", attrs.TagWidth())
	}
	if attrs.UnionKey != "inferred_tags" {
		t.Errorf("UnionKey = %q, want first union entry", attrs.UnionKey)
	}
}

func TestResolveTypeAttrs_InferredFlagOrs(t *testing.T) {
	attrs, err := ResolveTypeAttrs(nil, []Block{
		Annot(Flag("inferred_tags")),
		Annot(Str("encoding_type", "u32")), // later block does not unset the flag
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !attrs.InferredTags() || attrs.TagWidth() != Width32 {
		t.Errorf("inferred=%v width=%d", attrs.InferredTags(), attrs.TagWidth())
	}
}

func TestResolveTypeAttrs_DefaultWidth(t *testing.T) {
	attrs, err := ResolveTypeAttrs(nil, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if attrs.TagWidth() != Width16 {
		t.Errorf("default TagWidth = %d, want 16", attrs.TagWidth())
	}
}

func TestResolveTypeAttrs_Errors(t *testing.T) {
	tests := []struct {
		name   string
		blocks []Block
		kind   coderr.Kind
	}{
		{"unknown key", []Block{Annot(Str("colour", "red"))}, coderr.KindUnknownAttribute},
		{"hook needs string", []Block{Annot(Num("pre_enc_func", 1))}, coderr.KindInvalidValue},
		{"unknown encoding type", []Block{Annot(Str("encoding_type", "u7"))}, coderr.KindInvalidValue},
		{"encoding type needs string", []Block{Annot(Num("encoding_type", 16))}, coderr.KindInvalidValue},
		{"inferred takes no value", []Block{Annot(Str("inferred_tags", "yes"))}, coderr.KindInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveTypeAttrs([]string{"T"}, tt.blocks)
			if !errors.Is(err, &coderr.Error{Phase: coderr.PhaseResolve, Kind: tt.kind}) {
				t.Fatalf("want %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestResolveFieldAttrs(t *testing.T) {
	attrs, err := ResolveFieldAttrs([]string{"T", "f"}, []Block{
		Annot(Num("order_no", 3)),
		Annot(Flag("ignore")),
		Annot(Num("order_no", 1)),
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if attrs.OrderNo == nil || *attrs.OrderNo != 1 {
		t.Errorf("OrderNo = %v, want later block to win", attrs.OrderNo)
	}
	if !attrs.Ignore {
		t.Error("ignore flag lost in merge")
	}
}

func TestResolveFieldAttrs_Errors(t *testing.T) {
	tests := []struct {
		name   string
		blocks []Block
		kind   coderr.Kind
	}{
		{"unknown key", []Block{Annot(Num("order", 1))}, coderr.KindUnknownAttribute},
		{"order needs number", []Block{Annot(Str("order_no", "first"))}, coderr.KindInvalidValue},
		{"order too large", []Block{Annot(NumLit("order_no", "99999999999999999999999"))}, coderr.KindInvalidValue},
		{"ignore takes no value", []Block{Annot(Str("ignore", "true"))}, coderr.KindInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveFieldAttrs(nil, tt.blocks)
			if !errors.Is(err, &coderr.Error{Phase: coderr.PhaseResolve, Kind: tt.kind}) {
				t.Fatalf("want %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestResolveVariantAttrs(t *testing.T) {
	attrs, err := ResolveVariantAttrs([]string{"Shape", "Rect"}, []Block{
		Annot(Num("value", 4)),
		Annot(Num("value", 9)),
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if attrs.Value == nil || attrs.Value.Lo != 9 || attrs.Value.Hi != 0 {
		t.Errorf("Value = %v, want 9", attrs.Value)
	}
}

func TestResolveVariantAttrs_FullPrecision(t *testing.T) {
	attrs, err := ResolveVariantAttrs(nil, []Block{
		Annot(NumLit("value", "340282366920938463463374607431768211455")),
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if attrs.Value == nil || attrs.Value.Hi != ^uint64(0) || attrs.Value.Lo != ^uint64(0) {
		t.Errorf("Value = %v, want 2^128-1", attrs.Value)
	}
}

func TestResolveVariantAttrs_Errors(t *testing.T) {
	tests := []struct {
		name   string
		blocks []Block
		kind   coderr.Kind
	}{
		{"unknown key", []Block{Annot(Num("tag", 1))}, coderr.KindUnknownAttribute},
		{"value needs number", []Block{Annot(Str("value", "one"))}, coderr.KindInvalidValue},
		{"value over 128 bits", []Block{Annot(NumLit("value", "340282366920938463463374607431768211456"))}, coderr.KindInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveVariantAttrs(nil, tt.blocks)
			if !errors.Is(err, &coderr.Error{Phase: coderr.PhaseResolve, Kind: tt.kind}) {
				t.Fatalf("want %s, got %v", tt.kind, err)
			}
		})
	}
}
