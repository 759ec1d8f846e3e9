// Package gen generates Go source from a schema, specializing the
// encode/decode bodies at build time so the output carries no
// reflection. It shares the resolution pipeline with the runtime
// compiler, so a schema that compiles generates, and vice versa.
package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"unicode"

	"github.com/wippyai/bytecoding/codec"
	"github.com/wippyai/bytecoding/errors"
	"github.com/wippyai/bytecoding/schema"
)

// Options configures source generation.
type Options struct {
	// Package overrides the schema's declared package name.
	Package string
}

// File generates one gofmt-formatted Go source file implementing a
// codec for every type in the schema: a struct declaration, AppendTo
// and Encode methods, and a Decode<Type> function. Hook annotations
// become calls to identically named functions the consuming package
// must define. Output is deterministic for a given schema.
func File(f *schema.File, opts Options) ([]byte, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = f.Package
	}
	if pkg == "" {
		return nil, errors.InvalidData(errors.PhaseResolve, nil, "schema declares no package name and none was given")
	}

	g := &generator{}
	var body bytes.Buffer
	g.b = &body
	for _, t := range f.Types.Types() {
		r, err := codec.Resolve(t)
		if err != nil {
			return nil, err
		}
		if err := checkNamedRefs(f.Types, t); err != nil {
			return nil, err
		}
		if t.Kind == schema.Union {
			g.emitUnion(r)
		} else {
			g.emitStruct(exportName(t.Name), t.Name, t.Fields, r.Fields, r.Attrs)
		}
	}

	var out bytes.Buffer
	out.WriteString("// Code generated by bytecodegen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&out, "package %s\n\n", pkg)
	g.writeImports(&out)
	out.Write(body.Bytes())

	src, err := format.Source(out.Bytes())
	if err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindInvalidData, err, "generated source does not parse")
	}
	return src, nil
}

// checkNamedRefs verifies every named reference in t points at a
// declared type, so the generated source never calls an undefined
// Decode function.
func checkNamedRefs(set *schema.Set, t *schema.Type) error {
	check := func(path []string, fields []schema.Field) error {
		for _, f := range fields {
			if err := checkRef(set, path, f.Type); err != nil {
				return err
			}
		}
		return nil
	}

	if err := check([]string{t.Name}, t.Fields); err != nil {
		return err
	}
	for _, v := range t.Variants {
		if err := check([]string{t.Name, v.Name}, v.Fields); err != nil {
			return err
		}
	}
	return nil
}

func checkRef(set *schema.Set, path []string, ref schema.TypeRef) error {
	switch ref.Kind {
	case schema.RefNamed:
		if set.Lookup(ref.Name) == nil {
			return errors.New(errors.PhaseResolve, errors.KindNotFound).
				Path(path...).
				Detail("type %q not declared", ref.Name).
				Build()
		}
	case schema.RefOption, schema.RefList, schema.RefArray:
		return checkRef(set, path, *ref.Elem)
	case schema.RefMap:
		if err := checkRef(set, path, *ref.Key); err != nil {
			return err
		}
		return checkRef(set, path, *ref.Elem)
	}
	return nil
}

type generator struct {
	b   *bytes.Buffer
	tmp int

	// failRet is the zero-value expression the current decode function
	// returns on error.
	failRet string

	needErr    bool
	usesWire   bool
	usesErrors bool
	usesFmt    bool
}

func (g *generator) writeImports(out *bytes.Buffer) {
	var lines []string
	if g.usesFmt {
		lines = append(lines, `"fmt"`, "")
	}
	if g.usesErrors {
		lines = append(lines, `"github.com/wippyai/bytecoding/errors"`)
	}
	if g.usesWire {
		lines = append(lines, `"github.com/wippyai/bytecoding/wire"`)
	}
	if len(lines) == 0 {
		return
	}
	out.WriteString("import (\n")
	for _, l := range lines {
		out.WriteString("\t" + l + "\n")
	}
	out.WriteString(")\n\n")
}

func (g *generator) p(format string, args ...any) {
	fmt.Fprintf(g.b, format+"\n", args...)
}

// temp returns a fresh identifier with the given prefix, unique within
// the current function body.
func (g *generator) temp(prefix string) string {
	name := fmt.Sprintf("%s%d", prefix, g.tmp)
	g.tmp++
	return name
}

// capture renders a function body into its own buffer so the caller can
// prepend declarations the body turned out to need.
func (g *generator) capture(fn func()) (string, bool) {
	prevB, prevErr, prevTmp := g.b, g.needErr, g.tmp
	var sub bytes.Buffer
	g.b, g.needErr, g.tmp = &sub, false, 0
	fn()
	body, need := sub.String(), g.needErr
	g.b, g.needErr, g.tmp = prevB, prevErr, prevTmp
	return body, need
}

func (g *generator) check() {
	g.p("if err != nil {")
	g.p("return %s, nil, err", g.failRet)
	g.p("}")
}

// emitStruct generates the declaration and codec for a record, tuple or
// union payload shape.
func (g *generator) emitStruct(goName, declName string, fields []schema.Field, ordered []codec.ResolvedField, attrs schema.TypeAttrs) {
	g.p("// %s is the Go shape of declared type %q.", goName, declName)
	g.p("type %s struct {", goName)
	for i, f := range fields {
		g.p("%s %s", fieldIdent(fields, i), goTypeOf(f.Type))
	}
	g.p("}")
	g.p("")

	body, needErr := g.capture(func() {
		if attrs.PreEncode != "" {
			g.p("v = %s(v)", attrs.PreEncode)
		}
		for _, rf := range ordered {
			if rf.Ignore {
				continue
			}
			g.encodeRef(fields[rf.Index].Type, "v."+fieldIdent(fields, rf.Index))
		}
		if attrs.PostEncode != "" {
			g.p("buf = %s(buf)", attrs.PostEncode)
		}
	})
	g.p("// AppendTo appends v's wire form to buf.")
	g.p("func (v %s) AppendTo(buf []byte) ([]byte, error) {", goName)
	if needErr {
		g.p("var err error")
	}
	g.b.WriteString(body)
	g.p("return buf, nil")
	g.p("}")
	g.p("")

	g.p("// Encode serializes v into a fresh buffer.")
	g.p("func (v %s) Encode() ([]byte, error) {", goName)
	g.p("return v.AppendTo(nil)")
	g.p("}")
	g.p("")

	g.failRet = goName + "{}"
	body, needErr = g.capture(func() {
		if attrs.PreDecode != "" {
			g.needErr = true
			g.p("data, err = %s(data)", attrs.PreDecode)
			g.check()
		}
		for _, rf := range ordered {
			if rf.Ignore {
				continue
			}
			g.decodeRef(fields[rf.Index].Type, "v."+fieldIdent(fields, rf.Index))
		}
		if attrs.PostDecode != "" {
			g.needErr = true
			g.p("v, data, err = %s(v, data)", attrs.PostDecode)
			g.check()
		}
	})
	g.p("// Decode%s parses one %s from data, returning the remainder.", goName, goName)
	g.p("func Decode%s(data []byte) (%s, []byte, error) {", goName, goName)
	g.p("var v %s", goName)
	if needErr {
		g.p("var err error")
	}
	g.b.WriteString(body)
	g.p("return v, data, nil")
	g.p("}")
	g.p("")
}

func (g *generator) emitUnion(r *codec.Resolved) {
	t := r.Type
	goName := exportName(t.Name)

	g.p("// %s is the Go shape of declared union %q. Case holds the", goName, t.Name)
	g.p("// selected variant's declaration index.")
	g.p("type %s struct {", goName)
	g.p("Case int")
	for _, v := range t.Variants {
		if len(v.Fields) > 0 {
			g.p("%s *%s", exportName(v.Name), goName+exportName(v.Name))
		}
	}
	g.p("}")
	g.p("")

	width := r.Attrs.TagWidth()
	g.usesErrors = true

	// Encode: exhaustive match on the selector.
	body, needErr := g.capture(func() {
		if r.Attrs.PreEncode != "" {
			g.p("v = %s(v)", r.Attrs.PreEncode)
		}
		g.p("switch v.Case {")
		for i, v := range t.Variants {
			rv := r.Variants[i]
			g.p("case %d:", i)
			if len(v.Fields) > 0 {
				g.p("if v.%s == nil {", exportName(v.Name))
				g.p("return nil, errors.InvalidData(errors.PhaseEncode, []string{%q}, %q)",
					t.Name, fmt.Sprintf("variant %q selected but its payload is nil", v.Name))
				g.p("}")
			}
			g.encodeTag(width, rv)
			if len(v.Fields) > 0 {
				g.needErr = true
				g.p("buf, err = v.%s.AppendTo(buf)", exportName(v.Name))
				g.p("if err != nil {")
				g.p("return nil, err")
				g.p("}")
			}
		}
		g.p("default:")
		g.p("return nil, errors.InvalidData(errors.PhaseEncode, []string{%q}, \"union selector matches no variant\")", t.Name)
		g.p("}")
		if r.Attrs.PostEncode != "" {
			g.p("buf = %s(buf)", r.Attrs.PostEncode)
		}
	})
	g.p("// AppendTo appends v's wire form to buf.")
	g.p("func (v %s) AppendTo(buf []byte) ([]byte, error) {", goName)
	if needErr {
		g.p("var err error")
	}
	g.b.WriteString(body)
	g.p("return buf, nil")
	g.p("}")
	g.p("")

	g.p("// Encode serializes v into a fresh buffer.")
	g.p("func (v %s) Encode() ([]byte, error) {", goName)
	g.p("return v.AppendTo(nil)")
	g.p("}")
	g.p("")

	// Decode: static tag table.
	g.failRet = goName + "{}"
	body, _ = g.capture(func() {
		g.needErr = true
		if r.Attrs.PreDecode != "" {
			g.p("data, err = %s(data)", r.Attrs.PreDecode)
			g.check()
		}
		g.decodeTagSwitch(goName, t, r, width)
		if r.Attrs.PostDecode != "" {
			g.p("v, data, err = %s(v, data)", r.Attrs.PostDecode)
			g.check()
		}
	})
	g.p("// Decode%s parses one %s from data, returning the remainder.", goName, goName)
	g.p("func Decode%s(data []byte) (%s, []byte, error) {", goName, goName)
	g.p("var v %s", goName)
	g.p("var err error")
	g.b.WriteString(body)
	g.p("return v, data, nil")
	g.p("}")
	g.p("")

	// Payload shapes follow their union.
	for i, v := range t.Variants {
		if len(v.Fields) == 0 {
			continue
		}
		g.emitStruct(goName+exportName(v.Name), t.Name+"."+v.Name, v.Fields, r.Variants[i].Fields, schema.TypeAttrs{})
	}
}

func (g *generator) encodeTag(width schema.TagWidth, rv codec.ResolvedVariant) {
	g.usesWire = true
	switch width {
	case schema.Width8:
		g.p("buf = wire.AppendU8(buf, %d)", rv.TagLo)
	case schema.Width32:
		g.p("buf = wire.AppendU32(buf, %d)", rv.TagLo)
	case schema.Width64:
		g.p("buf = wire.AppendU64(buf, %d)", rv.TagLo)
	case schema.Width128:
		g.p("buf = wire.AppendU128(buf, %d, %d)", rv.TagLo, rv.TagHi)
	default:
		g.p("buf = wire.AppendU16(buf, %d)", rv.TagLo)
	}
}

func (g *generator) decodeTagSwitch(goName string, t *schema.Type, r *codec.Resolved, width schema.TagWidth) {
	g.usesWire = true
	g.usesFmt = true

	if width == schema.Width128 {
		g.p("var tagLo, tagHi uint64")
		g.p("tagLo, tagHi, data, err = wire.ReadU128(data)")
		g.check()
		g.p("switch {")
		for i := range t.Variants {
			rv := r.Variants[i]
			g.p("case tagLo == %d && tagHi == %d:", rv.TagLo, rv.TagHi)
			g.decodeVariantBody(goName, t, i)
		}
		g.p("default:")
		g.p("return %s, nil, errors.UnknownTag([]string{%q}, fmt.Sprintf(\"%%d:%%d\", tagHi, tagLo))", g.failRet, t.Name)
		g.p("}")
		return
	}

	var tagType, read string
	switch width {
	case schema.Width8:
		tagType, read = "uint8", "ReadU8"
	case schema.Width32:
		tagType, read = "uint32", "ReadU32"
	case schema.Width64:
		tagType, read = "uint64", "ReadU64"
	default:
		tagType, read = "uint16", "ReadU16"
	}
	g.p("var tag %s", tagType)
	g.p("tag, data, err = wire.%s(data)", read)
	g.check()
	g.p("switch tag {")
	for i := range t.Variants {
		g.p("case %s:", r.Variants[i].Tag)
		g.decodeVariantBody(goName, t, i)
	}
	g.p("default:")
	g.p("return %s, nil, errors.UnknownTag([]string{%q}, fmt.Sprint(tag))", g.failRet, t.Name)
	g.p("}")
}

func (g *generator) decodeVariantBody(goName string, t *schema.Type, i int) {
	v := t.Variants[i]
	g.p("v.Case = %d", i)
	if len(v.Fields) == 0 {
		return
	}
	p := g.temp("p")
	payload := goName + exportName(v.Name)
	g.p("var %s %s", p, payload)
	g.p("%s, data, err = Decode%s(data)", p, payload)
	g.check()
	g.p("v.%s = &%s", exportName(v.Name), p)
}

var appendNames = map[schema.RefKind]string{
	schema.RefBool:   "AppendBool",
	schema.RefU8:     "AppendU8",
	schema.RefU16:    "AppendU16",
	schema.RefU32:    "AppendU32",
	schema.RefU64:    "AppendU64",
	schema.RefI8:     "AppendI8",
	schema.RefI16:    "AppendI16",
	schema.RefI32:    "AppendI32",
	schema.RefI64:    "AppendI64",
	schema.RefUint:   "AppendUint",
	schema.RefInt:    "AppendInt",
	schema.RefString: "AppendString",
	schema.RefBool8:  "AppendBool8",
}

var readNames = map[schema.RefKind]string{
	schema.RefBool:   "ReadBool",
	schema.RefU8:     "ReadU8",
	schema.RefU16:    "ReadU16",
	schema.RefU32:    "ReadU32",
	schema.RefU64:    "ReadU64",
	schema.RefI8:     "ReadI8",
	schema.RefI16:    "ReadI16",
	schema.RefI32:    "ReadI32",
	schema.RefI64:    "ReadI64",
	schema.RefUint:   "ReadUint",
	schema.RefInt:    "ReadInt",
	schema.RefString: "ReadString",
	schema.RefBool8:  "ReadBool8",
}

func (g *generator) encodeRef(ref schema.TypeRef, expr string) {
	if name, ok := appendNames[ref.Kind]; ok {
		g.usesWire = true
		g.p("buf = wire.%s(buf, %s)", name, expr)
		return
	}

	switch ref.Kind {
	case schema.RefU128, schema.RefI128:
		g.usesWire = true
		g.p("buf = wire.AppendBytes(buf, %s[:])", expr)

	case schema.RefOption:
		g.usesWire = true
		g.p("if %s == nil {", expr)
		g.p("buf = wire.AppendBool(buf, false)")
		g.p("} else {")
		g.p("buf = wire.AppendBool(buf, true)")
		g.encodeRef(*ref.Elem, "(*"+expr+")")
		g.p("}")

	case schema.RefList:
		g.usesWire = true
		e := g.temp("e")
		g.p("buf = wire.AppendLen(buf, len(%s))", expr)
		g.p("for _, %s := range %s {", e, expr)
		g.encodeRef(*ref.Elem, e)
		g.p("}")

	case schema.RefArray:
		i := g.temp("i")
		g.p("for %s := range %s {", i, expr)
		g.encodeRef(*ref.Elem, fmt.Sprintf("%s[%s]", expr, i))
		g.p("}")

	case schema.RefMap:
		// Iteration order is not deterministic for multi-entry maps.
		g.usesWire = true
		k, e := g.temp("k"), g.temp("e")
		g.p("buf = wire.AppendLen(buf, len(%s))", expr)
		g.p("for %s, %s := range %s {", k, e, expr)
		g.encodeRef(*ref.Key, k)
		g.encodeRef(*ref.Elem, e)
		g.p("}")

	case schema.RefNamed:
		g.needErr = true
		g.p("buf, err = %s.AppendTo(buf)", expr)
		g.p("if err != nil {")
		g.p("return nil, err")
		g.p("}")
	}
}

func (g *generator) decodeRef(ref schema.TypeRef, lvalue string) {
	if name, ok := readNames[ref.Kind]; ok {
		g.usesWire = true
		g.needErr = true
		g.p("%s, data, err = wire.%s(data)", lvalue, name)
		g.check()
		return
	}

	switch ref.Kind {
	case schema.RefU128, schema.RefI128:
		g.usesWire = true
		g.needErr = true
		raw := g.temp("raw")
		g.p("var %s []byte", raw)
		g.p("%s, data, err = wire.ReadBytes(data, 16)", raw)
		g.check()
		g.p("copy(%s[:], %s)", lvalue, raw)

	case schema.RefOption:
		g.usesWire = true
		g.needErr = true
		ok := g.temp("ok")
		g.p("var %s bool", ok)
		g.p("%s, data, err = wire.ReadBool(data)", ok)
		g.check()
		g.p("if %s {", ok)
		e := g.temp("e")
		g.p("var %s %s", e, goTypeOf(*ref.Elem))
		g.decodeRef(*ref.Elem, e)
		g.p("%s = &%s", lvalue, e)
		g.p("}")

	case schema.RefList:
		g.usesWire = true
		g.needErr = true
		n := g.temp("n")
		g.p("var %s int", n)
		g.p("%s, data, err = wire.ReadLen(data)", n)
		g.check()
		g.p("%s = make(%s, 0, wire.SeqCap(%s))", lvalue, goTypeOf(ref), n)
		i := g.temp("i")
		g.p("for %s := 0; %s < %s; %s++ {", i, i, n, i)
		e := g.temp("e")
		g.p("var %s %s", e, goTypeOf(*ref.Elem))
		g.decodeRef(*ref.Elem, e)
		g.p("%s = append(%s, %s)", lvalue, lvalue, e)
		g.p("}")

	case schema.RefArray:
		i := g.temp("i")
		g.p("for %s := range %s {", i, lvalue)
		g.decodeRef(*ref.Elem, fmt.Sprintf("%s[%s]", lvalue, i))
		g.p("}")

	case schema.RefMap:
		g.usesWire = true
		g.needErr = true
		n := g.temp("n")
		g.p("var %s int", n)
		g.p("%s, data, err = wire.ReadLen(data)", n)
		g.check()
		g.p("%s = make(%s, wire.SeqCap(%s))", lvalue, goTypeOf(ref), n)
		i := g.temp("i")
		g.p("for %s := 0; %s < %s; %s++ {", i, i, n, i)
		k := g.temp("k")
		g.p("var %s %s", k, goTypeOf(*ref.Key))
		g.decodeRef(*ref.Key, k)
		e := g.temp("e")
		g.p("var %s %s", e, goTypeOf(*ref.Elem))
		g.decodeRef(*ref.Elem, e)
		g.p("%s[%s] = %s", lvalue, k, e)
		g.p("}")

	case schema.RefNamed:
		g.needErr = true
		g.p("%s, data, err = Decode%s(data)", lvalue, exportName(ref.Name))
		g.check()
	}
}

var primGoTypes = map[schema.RefKind]string{
	schema.RefBool:   "bool",
	schema.RefU8:     "uint8",
	schema.RefU16:    "uint16",
	schema.RefU32:    "uint32",
	schema.RefU64:    "uint64",
	schema.RefU128:   "[16]byte",
	schema.RefI8:     "int8",
	schema.RefI16:    "int16",
	schema.RefI32:    "int32",
	schema.RefI64:    "int64",
	schema.RefI128:   "[16]byte",
	schema.RefUint:   "uint",
	schema.RefInt:    "int",
	schema.RefString: "string",
	schema.RefBool8:  "[8]bool",
}

func goTypeOf(ref schema.TypeRef) string {
	if s, ok := primGoTypes[ref.Kind]; ok {
		return s
	}
	switch ref.Kind {
	case schema.RefOption:
		return "*" + goTypeOf(*ref.Elem)
	case schema.RefList:
		return "[]" + goTypeOf(*ref.Elem)
	case schema.RefArray:
		return fmt.Sprintf("[%d]%s", ref.Len, goTypeOf(*ref.Elem))
	case schema.RefMap:
		return fmt.Sprintf("map[%s]%s", goTypeOf(*ref.Key), goTypeOf(*ref.Elem))
	default:
		return exportName(ref.Name)
	}
}

func fieldIdent(fields []schema.Field, i int) string {
	if fields[i].Name == "" {
		return fmt.Sprintf("F%d", i)
	}
	return exportName(fields[i].Name)
}

// exportName turns a schema identifier into an exported Go identifier:
// underscores split words, each word is capitalized.
func exportName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		r := []rune(part)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}
