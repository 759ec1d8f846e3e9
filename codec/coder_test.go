package codec

import (
	"reflect"
	"testing"

	"github.com/wippyai/bytecoding/errors"
	"github.com/wippyai/bytecoding/schema"
)

func TestCoderFIFO(t *testing.T) {
	set := mustSet(t, &schema.Type{
		Name: "Msg", Kind: schema.Record,
		Fields: []schema.Field{{Name: "seq", Type: schema.Prim(schema.RefU32)}},
	})
	type msg struct{ Seq uint32 }
	cdc := mustCompile(t, set, "Msg", reflect.TypeOf(msg{}))

	coder := NewCoder()
	for i := uint32(0); i < 3; i++ {
		if err := coder.Push(cdc, msg{Seq: i}); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if coder.Len() != 12 {
		t.Errorf("Len = %d, want 12", coder.Len())
	}

	for i := uint32(0); i < 3; i++ {
		v, err := coder.Pull(cdc)
		if err != nil {
			t.Fatalf("Pull(%d): %v", i, err)
		}
		if got := v.(msg).Seq; got != i {
			t.Errorf("Seq = %d, want %d", got, i)
		}
	}
	if coder.Len() != 0 {
		t.Errorf("Len = %d after draining", coder.Len())
	}
}

func TestCoderInterleavesTypes(t *testing.T) {
	set := mustSet(t,
		&schema.Type{
			Name: "A", Kind: schema.Record,
			Fields: []schema.Field{{Name: "v", Type: schema.Prim(schema.RefU8)}},
		},
		&schema.Type{
			Name: "B", Kind: schema.Record,
			Fields: []schema.Field{{Name: "v", Type: schema.Prim(schema.RefString)}},
		},
	)
	type a struct{ V uint8 }
	type b struct{ V string }
	c := NewCompiler(set)
	ca, err := c.Compile("A", reflect.TypeOf(a{}))
	if err != nil {
		t.Fatal(err)
	}
	cb, err := c.Compile("B", reflect.TypeOf(b{}))
	if err != nil {
		t.Fatal(err)
	}

	coder := NewCoder()
	if err := coder.Push(ca, a{V: 1}); err != nil {
		t.Fatal(err)
	}
	if err := coder.Push(cb, b{V: "hi"}); err != nil {
		t.Fatal(err)
	}

	got, err := coder.Pull(ca)
	if err != nil {
		t.Fatal(err)
	}
	if got.(a).V != 1 {
		t.Errorf("a = %+v", got)
	}
	got, err = coder.Pull(cb)
	if err != nil {
		t.Fatal(err)
	}
	if got.(b).V != "hi" {
		t.Errorf("b = %+v", got)
	}
}

func TestCoderPullKeepsBufferOnFailure(t *testing.T) {
	set := mustSet(t, &schema.Type{
		Name: "Msg", Kind: schema.Record,
		Fields: []schema.Field{{Name: "seq", Type: schema.Prim(schema.RefU32)}},
	})
	type msg struct{ Seq uint32 }
	cdc := mustCompile(t, set, "Msg", reflect.TypeOf(msg{}))

	coder := NewCoder()
	coder.Load([]byte{1, 0}) // half a u32

	_, err := coder.Pull(cdc)
	wantKind(t, err, errors.PhaseDecode, errors.KindInsufficientBytes)
	if coder.Len() != 2 {
		t.Errorf("Len = %d, buffer should be untouched after a failed pull", coder.Len())
	}

	// The caller can complete the message and retry.
	coder.Load(append(coder.Bytes(), 0, 0))
	v, err := coder.Pull(cdc)
	if err != nil {
		t.Fatal(err)
	}
	if v.(msg).Seq != 1 {
		t.Errorf("Seq = %d", v.(msg).Seq)
	}
}
