package gen

import (
	stderrors "errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coderr "github.com/wippyai/bytecoding/errors"
	"github.com/wippyai/bytecoding/schema"
)

func load(t *testing.T, src string) *schema.File {
	t.Helper()
	f, err := schema.Load([]byte(src), "test.yaml")
	require.NoError(t, err)
	return f
}

func TestFileRecord(t *testing.T) {
	f := load(t, `
package: petstore
types:
  - name: Pet
    fields:
      - name: id
        type: u64
      - name: name
        type: string
`)
	out, err := File(f, Options{})
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "pet", out)
}

func TestFileUnion(t *testing.T) {
	f := load(t, `
package: shapes
types:
  - name: Shape
    annotations:
      - inferred_tags
      - encoding_type: u8
    variants:
      - Empty
      - name: Circle
        fields:
          - type: u32
      - name: Rect
        annotations:
          - value: 9
        fields:
          - name: w
            type: u32
          - name: h
            type: u32
`)
	out, err := File(f, Options{})
	require.NoError(t, err)
	src := string(out)

	assert.Contains(t, src, "type Shape struct {")
	assert.Contains(t, src, "Case int")
	assert.Contains(t, src, "switch v.Case {")
	assert.Contains(t, src, "wire.AppendU8(buf, 9)")
	assert.Contains(t, src, "errors.UnknownTag")
	assert.Contains(t, src, "type ShapeRect struct {")
	assert.Contains(t, src, "func DecodeShapeCircle(data []byte) (ShapeCircle, []byte, error)")
	assert.NotContains(t, src, "reflect")
}

func TestFileHooks(t *testing.T) {
	f := load(t, `
package: hooked
types:
  - name: Frame
    annotations:
      - pre_enc_func: sealFrame
        post_dec_func: openFrame
    fields:
      - name: n
        type: u8
`)
	out, err := File(f, Options{})
	require.NoError(t, err)
	src := string(out)

	assert.Contains(t, src, "v = sealFrame(v)")
	assert.Contains(t, src, "v, data, err = openFrame(v, data)")
}

func TestFileDeterministic(t *testing.T) {
	f := load(t, `
package: p
types:
  - name: T
    fields:
      - name: items
        type: map<string,list<u32>>
      - name: big
        type: u128
      - name: maybe
        type: option<bool8>
`)
	first, err := File(f, Options{})
	require.NoError(t, err)
	second, err := File(f, Options{})
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

func TestFilePackageOverride(t *testing.T) {
	f := load(t, "types:\n  - name: T\n    fields: [{name: a, type: u8}]")
	_, err := File(f, Options{})
	require.Error(t, err, "schema has no package name")

	out, err := File(f, Options{Package: "override"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "package override")
}

func TestFileResolutionFailure(t *testing.T) {
	f := load(t, `
package: p
types:
  - name: U
    variants:
      - name: A
        annotations: [{value: 3}]
      - name: B
        annotations: [{value: 3}]
`)
	_, err := File(f, Options{})
	require.Error(t, err)
	if !stderrors.Is(err, &coderr.Error{Phase: coderr.PhaseResolve, Kind: coderr.KindDuplicateTag}) {
		t.Fatalf("want duplicate tag error, got %v", err)
	}
}

func TestFileUndeclaredReference(t *testing.T) {
	f := load(t, `
package: p
types:
  - name: T
    fields:
      - name: who
        type: option<Missing>
`)
	_, err := File(f, Options{})
	require.Error(t, err)
	if !stderrors.Is(err, &coderr.Error{Phase: coderr.PhaseResolve, Kind: coderr.KindNotFound}) {
		t.Fatalf("want not found error, got %v", err)
	}
}

func TestExportName(t *testing.T) {
	tests := map[string]string{
		"id":        "Id",
		"user_id":   "UserId",
		"Shape":     "Shape",
		"two_words": "TwoWords",
	}
	for in, want := range tests {
		assert.Equal(t, want, exportName(in), "exportName(%q)", in)
	}
}
