package codec

import (
	"reflect"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/bytecoding/errors"
	"github.com/wippyai/bytecoding/internal/u128"
	"github.com/wippyai/bytecoding/schema"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithHooks registers caller functions for hook annotations to refer to.
// May be given more than once; later registrations win on name clashes.
func WithHooks(h Hooks) Option {
	return func(c *Compiler) {
		for name, fn := range h {
			c.hooks[name] = fn
		}
	}
}

// Compiler turns declared types from one schema set into codecs. Plans
// are cached per (type name, Go type) pair, so compiling the same pair
// twice returns the same underlying plan. Safe for concurrent use.
type Compiler struct {
	set   *schema.Set
	hooks Hooks

	mu    sync.Mutex
	nodes map[nodeKey]*node
}

type nodeKey struct {
	name   string
	goType reflect.Type
}

// NewCompiler builds a compiler over the declared type set.
func NewCompiler(set *schema.Set, opts ...Option) *Compiler {
	c := &Compiler{
		set:   set,
		hooks: make(Hooks),
		nodes: make(map[nodeKey]*node),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile resolves the named declared type against goType and returns a
// ready codec. goType may be the struct type or a pointer to it. All
// annotation, tag and order failures surface here; the returned codec
// cannot fail at resolution level again.
func (c *Compiler) Compile(name string, goType reflect.Type) (*Codec, error) {
	t := c.set.Lookup(name)
	if t == nil {
		return nil, errors.NotFound(errors.PhaseResolve, "type", name)
	}
	if goType == nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindTypeMismatch).
			Path(name).
			Detail("no Go type given").
			Build()
	}
	if goType.Kind() == reflect.Pointer {
		goType = goType.Elem()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := c.compileNamed(t, goType)
	if err != nil {
		return nil, err
	}
	return &Codec{name: name, goType: goType, node: n}, nil
}

// MustCompile is Compile panicking on error, for package-level codecs.
func (c *Compiler) MustCompile(name string, goType reflect.Type) *Codec {
	cdc, err := c.Compile(name, goType)
	if err != nil {
		panic(err)
	}
	return cdc
}

// compileNamed returns the cached plan for (t, goType), compiling it on
// first use. The node is registered before its body compiles so
// recursive references (through option) resolve to the same plan.
func (c *Compiler) compileNamed(t *schema.Type, goType reflect.Type) (*node, error) {
	key := nodeKey{name: t.Name, goType: goType}
	if n, ok := c.nodes[key]; ok {
		return n, nil
	}

	n := &node{}
	c.nodes[key] = n
	enc, dec, err := c.compileType(t, goType)
	if err != nil {
		delete(c.nodes, key)
		return nil, err
	}
	n.enc, n.dec = enc, dec

	Logger().Debug("compiled type",
		zap.String("type", t.Name),
		zap.String("kind", t.Kind.String()),
		zap.String("go_type", goType.String()))
	return n, nil
}

func (c *Compiler) compileType(t *schema.Type, goType reflect.Type) (encFunc, decFunc, error) {
	path := []string{t.Name}

	r, err := Resolve(t)
	if err != nil {
		return nil, nil, err
	}
	if goType.Kind() != reflect.Struct {
		return nil, nil, errors.TypeMismatch(errors.PhaseResolve, path, goType.String(), t.Kind.String())
	}

	var enc encFunc
	var dec decFunc
	if t.Kind == schema.Union {
		enc, dec, err = c.compileUnion(path, r, goType)
	} else {
		enc, dec, err = c.compileFields(path, t.Kind == schema.Tuple, t.Fields, r.Fields, goType)
	}
	if err != nil {
		return nil, nil, err
	}

	hs, err := c.resolveHooks(path, r.Attrs, goType)
	if err != nil {
		return nil, nil, err
	}
	enc, dec = hs.wrap(path, enc, dec)
	return enc, dec, nil
}

// fieldPlan is one non-ignored field at its serialization slot.
type fieldPlan struct {
	goIndex int
	enc     encFunc
	dec     decFunc
}

// compileFields builds the encode/decode bodies for a record, tuple or
// variant payload, walking fields in their resolved serialization
// order. Ignored fields emit no plan: the encoder writes nothing and
// the decoder leaves the Go zero value in place.
func (c *Compiler) compileFields(path []string, positional bool, fields []schema.Field, ordered []ResolvedField, goType reflect.Type) (encFunc, decFunc, error) {
	plans := make([]fieldPlan, 0, len(ordered))
	for _, of := range ordered {
		if of.Ignore {
			continue
		}
		f := fields[of.Index]
		fpath := childPath(path, of.Name)

		var sf reflect.StructField
		var goIndex int
		if positional {
			if of.Index >= goType.NumField() {
				return nil, nil, errors.New(errors.PhaseResolve, errors.KindFieldMissing).
					Path(fpath...).
					GoType(goType.String()).
					Detail("tuple has %d elements but the struct has %d fields", len(fields), goType.NumField()).
					Build()
			}
			goIndex = of.Index
			sf = goType.Field(goIndex)
		} else {
			var ok bool
			sf, goIndex, ok = findGoField(goType, f.Name)
			if !ok {
				return nil, nil, errors.FieldMissing(errors.PhaseResolve, fpath, f.Name)
			}
		}

		fenc, fdec, err := c.compileRef(fpath, f.Type, sf.Type)
		if err != nil {
			return nil, nil, err
		}
		plans = append(plans, fieldPlan{goIndex: goIndex, enc: fenc, dec: fdec})
	}

	enc := func(buf []byte, v reflect.Value) ([]byte, error) {
		var err error
		for _, p := range plans {
			if buf, err = p.enc(buf, v.Field(p.goIndex)); err != nil {
				return nil, err
			}
		}
		return buf, nil
	}
	dec := func(buf []byte, v reflect.Value) ([]byte, error) {
		var err error
		for _, p := range plans {
			if buf, err = p.dec(buf, v.Field(p.goIndex)); err != nil {
				return nil, err
			}
		}
		return buf, nil
	}
	return enc, dec, nil
}

// variantPlan is one compiled union variant. goIndex is -1 for unit
// variants, which carry no payload field.
type variantPlan struct {
	tag     u128.U128
	goIndex int
	ptr     bool
	payload reflect.Type
	enc     encFunc
	dec     decFunc
}

func (c *Compiler) compileUnion(path []string, r *Resolved, goType reflect.Type) (encFunc, decFunc, error) {
	t := r.Type

	selIdx := -1
	for i := 0; i < goType.NumField(); i++ {
		f := goType.Field(i)
		if f.Name == "Case" && f.Type.Kind() == reflect.Int {
			selIdx = i
			break
		}
	}
	if selIdx < 0 {
		return nil, nil, errors.New(errors.PhaseResolve, errors.KindFieldMissing).
			Path(path...).
			GoType(goType.String()).
			Detail("union struct needs a Case int selector field").
			Build()
	}

	plans := make([]variantPlan, len(t.Variants))
	byTag := make(map[u128.U128]int, len(t.Variants))
	for i, variant := range t.Variants {
		rv := r.Variants[i]
		vpath := childPath(path, variant.Name)
		tag := u128.U128{Hi: rv.TagHi, Lo: rv.TagLo}
		vp := variantPlan{tag: tag, goIndex: -1}
		byTag[tag] = i

		if len(variant.Fields) > 0 {
			sf, goIndex, ok := findGoField(goType, variant.Name)
			if !ok {
				return nil, nil, errors.FieldMissing(errors.PhaseResolve, vpath, variant.Name)
			}
			payload := sf.Type
			if payload.Kind() == reflect.Pointer {
				vp.ptr = true
				payload = payload.Elem()
			}
			if payload.Kind() != reflect.Struct {
				return nil, nil, errors.TypeMismatch(errors.PhaseResolve, vpath, sf.Type.String(), "variant payload struct")
			}
			vp.goIndex = goIndex
			vp.payload = payload
			var err error
			vp.enc, vp.dec, err = c.compileFields(vpath, variant.Tuple, variant.Fields, rv.Fields, payload)
			if err != nil {
				return nil, nil, err
			}
		}
		plans[i] = vp
	}

	encTag, decTag := tagCodec(r.Attrs.TagWidth())

	enc := func(buf []byte, v reflect.Value) ([]byte, error) {
		idx := int(v.Field(selIdx).Int())
		if idx < 0 || idx >= len(plans) {
			return nil, errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Path(path...).
				Value(idx).
				Detail("union selector %d matches no variant", idx).
				Build()
		}
		p := plans[idx]
		buf = encTag(buf, p.tag)
		if p.goIndex < 0 {
			return buf, nil
		}
		pv := v.Field(p.goIndex)
		if p.ptr {
			if pv.IsNil() {
				return nil, errors.New(errors.PhaseEncode, errors.KindInvalidData).
					Path(path...).
					Detail("variant %q selected but its payload is nil", t.Variants[idx].Name).
					Build()
			}
			pv = pv.Elem()
		}
		return p.enc(buf, pv)
	}

	dec := func(buf []byte, v reflect.Value) ([]byte, error) {
		tag, rest, err := decTag(buf)
		if err != nil {
			return nil, pathErr(err, path)
		}
		idx, ok := byTag[tag]
		if !ok {
			return nil, errors.UnknownTag(path, tag.String())
		}
		p := plans[idx]
		v.Field(selIdx).SetInt(int64(idx))
		if p.goIndex < 0 {
			return rest, nil
		}
		pv := v.Field(p.goIndex)
		if p.ptr {
			np := reflect.New(p.payload)
			if rest, err = p.dec(rest, np.Elem()); err != nil {
				return nil, err
			}
			pv.Set(np)
			return rest, nil
		}
		return p.dec(rest, pv)
	}
	return enc, dec, nil
}

// findGoField matches a schema name to an exported struct field. A
// `codec:"name"` tag wins; otherwise names compare case-insensitively
// with underscores dropped, so schema user_id matches Go UserID.
func findGoField(goType reflect.Type, name string) (reflect.StructField, int, bool) {
	want := strings.ReplaceAll(name, "_", "")
	for i := 0; i < goType.NumField(); i++ {
		f := goType.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, ok := f.Tag.Lookup("codec"); ok {
			if tag == name {
				return f, i, true
			}
			continue
		}
		if strings.EqualFold(f.Name, want) {
			return f, i, true
		}
	}
	return reflect.StructField{}, 0, false
}
