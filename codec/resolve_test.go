package codec

import (
	"testing"

	"github.com/wippyai/bytecoding/schema"
)

func TestResolveInferenceContinuesFromExplicit(t *testing.T) {
	r, err := Resolve(&schema.Type{
		Name: "U", Kind: schema.Union,
		Annotations: []schema.Block{schema.Annot(schema.Flag("inferred_tags"))},
		Variants: []schema.Variant{
			{Name: "A"},
			{Name: "B", Annotations: []schema.Block{schema.Annot(schema.Num("value", 10))}},
			{Name: "C"},
		},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []uint64{0, 10, 11}
	for i, rv := range r.Variants {
		if rv.TagLo != want[i] || rv.TagHi != 0 {
			t.Errorf("variant %s tag = %s, want %d", rv.Name, rv.Tag, want[i])
		}
	}
}

func TestResolveZeroVariantUnion(t *testing.T) {
	r, err := Resolve(&schema.Type{Name: "U", Kind: schema.Union})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(r.Variants) != 0 {
		t.Errorf("variants = %+v", r.Variants)
	}
}

func TestResolveOrderedFields(t *testing.T) {
	r, err := Resolve(&schema.Type{
		Name: "T", Kind: schema.Record,
		Fields: []schema.Field{
			{Name: "f0", Type: schema.Prim(schema.RefU8)},
			{Name: "f1", Type: schema.Prim(schema.RefU8),
				Annotations: []schema.Block{schema.Annot(schema.Num("order_no", 2))}},
			{Name: "f2", Type: schema.Prim(schema.RefU8),
				Annotations: []schema.Block{schema.Annot(schema.Num("order_no", 0))}},
			{Name: "f3", Type: schema.Prim(schema.RefU8)},
		},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var got []string
	for _, f := range r.Fields {
		got = append(got, f.Name)
	}
	want := []string{"f2", "f1", "f0", "f3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestResolveFullWidthTag(t *testing.T) {
	r, err := Resolve(&schema.Type{
		Name: "U", Kind: schema.Union,
		Annotations: []schema.Block{schema.Annot(schema.Str("encoding_type", "u128"))},
		Variants: []schema.Variant{
			{Name: "Max", Annotations: []schema.Block{
				schema.Annot(schema.NumLit("value", "340282366920938463463374607431768211455")),
			}},
		},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	v := r.Variants[0]
	if v.TagLo != ^uint64(0) || v.TagHi != ^uint64(0) {
		t.Errorf("tag = %s", v.Tag)
	}
}
