package codec

import (
	"bytes"
	"fmt"
	"reflect"
	"testing"

	"github.com/wippyai/bytecoding/errors"
	"github.com/wippyai/bytecoding/schema"
)

type framed struct{ N uint8 }

func framedType() *schema.Type {
	return &schema.Type{
		Name: "Framed", Kind: schema.Record,
		Annotations: []schema.Block{schema.Annot(
			schema.Str("pre_enc_func", "double"),
			schema.Str("post_enc_func", "addMagic"),
			schema.Str("pre_dec_func", "stripMagic"),
			schema.Str("post_dec_func", "bump"),
		)},
		Fields: []schema.Field{{Name: "n", Type: schema.Prim(schema.RefU8)}},
	}
}

func framedHooks() Hooks {
	return Hooks{
		"double": func(f framed) framed {
			f.N *= 2
			return f
		},
		"addMagic": func(b []byte) []byte {
			return append([]byte{0xab}, b...)
		},
		"stripMagic": func(b []byte) ([]byte, error) {
			if len(b) == 0 || b[0] != 0xab {
				return nil, fmt.Errorf("missing magic byte")
			}
			return b[1:], nil
		},
		"bump": func(f framed, rest []byte) (framed, []byte, error) {
			f.N++
			return f, rest, nil
		},
	}
}

func TestHooksSplice(t *testing.T) {
	set := mustSet(t, framedType())
	cdc := mustCompile(t, set, "Framed", reflect.TypeOf(framed{}), WithHooks(framedHooks()))

	data, err := cdc.Encode(framed{N: 3})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// Pre-encode doubles the value, post-encode prepends the magic byte.
	if !bytes.Equal(data, []byte{0xab, 6}) {
		t.Fatalf("data = %v", data)
	}

	out, rest, err := cdc.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rest) != 0 {
		t.Errorf("rest = %v", rest)
	}
	// Pre-decode strips the magic byte, post-decode bumps the value.
	if got := out.(framed); got.N != 7 {
		t.Errorf("N = %d, want 7", got.N)
	}
}

func TestHookFailureAbortsDecode(t *testing.T) {
	set := mustSet(t, framedType())
	cdc := mustCompile(t, set, "Framed", reflect.TypeOf(framed{}), WithHooks(framedHooks()))

	_, _, err := cdc.Decode([]byte{0x00, 6})
	wantKind(t, err, errors.PhaseDecode, errors.KindHook)
}

func TestHookNotSupplied(t *testing.T) {
	set := mustSet(t, framedType())
	h := framedHooks()
	delete(h, "bump")
	_, err := NewCompiler(set, WithHooks(h)).Compile("Framed", reflect.TypeOf(framed{}))
	wantKind(t, err, errors.PhaseResolve, errors.KindNotFound)
}

func TestHookSignatureChecked(t *testing.T) {
	set := mustSet(t, framedType())
	h := framedHooks()
	h["double"] = func(n int) int { return n } // wrong value type
	_, err := NewCompiler(set, WithHooks(h)).Compile("Framed", reflect.TypeOf(framed{}))
	wantKind(t, err, errors.PhaseResolve, errors.KindTypeMismatch)
}

func TestNestedTypeHooksApply(t *testing.T) {
	// A record embedding Framed still runs Framed's hooks, and the
	// post-encode hook sees the whole accumulated buffer.
	set := mustSet(t,
		framedType(),
		&schema.Type{
			Name: "Outer", Kind: schema.Record,
			Fields: []schema.Field{
				{Name: "lead", Type: schema.Prim(schema.RefU8)},
				{Name: "inner", Type: schema.Named("Framed")},
			},
		},
	)
	type outer struct {
		Lead  uint8
		Inner framed
	}
	cdc := mustCompile(t, set, "Outer", reflect.TypeOf(outer{}), WithHooks(framedHooks()))

	data, err := cdc.Encode(outer{Lead: 1, Inner: framed{N: 3}})
	if err != nil {
		t.Fatal(err)
	}
	// addMagic prepended to the buffer that already held the lead byte.
	if !bytes.Equal(data, []byte{0xab, 1, 6}) {
		t.Fatalf("data = %v", data)
	}
}
