package codec

import (
	"reflect"

	"github.com/wippyai/bytecoding/errors"
	"github.com/wippyai/bytecoding/schema"
	"github.com/wippyai/bytecoding/wire"
)

// compileRef emits the encode/decode pair for one type reference against
// the Go type at that position. 128-bit integers map to [16]byte in wire
// order, bool8 to [8]bool, option<T> to *T.
func (c *Compiler) compileRef(path []string, ref schema.TypeRef, goType reflect.Type) (encFunc, decFunc, error) {
	switch ref.Kind {
	case schema.RefBool:
		if goType.Kind() != reflect.Bool {
			return c.mismatch(path, goType, ref)
		}
		return func(buf []byte, v reflect.Value) ([]byte, error) {
				return wire.AppendBool(buf, v.Bool()), nil
			}, func(buf []byte, v reflect.Value) ([]byte, error) {
				b, rest, err := wire.ReadBool(buf)
				if err != nil {
					return nil, pathErr(err, path)
				}
				v.SetBool(b)
				return rest, nil
			}, nil

	case schema.RefU8, schema.RefU16, schema.RefU32, schema.RefU64, schema.RefUint:
		return c.compileUnsigned(path, ref, goType)

	case schema.RefI8, schema.RefI16, schema.RefI32, schema.RefI64, schema.RefInt:
		return c.compileSigned(path, ref, goType)

	case schema.RefU128, schema.RefI128:
		if goType.Kind() != reflect.Array || goType.Len() != 16 || goType.Elem().Kind() != reflect.Uint8 {
			return c.mismatch(path, goType, ref)
		}
		return func(buf []byte, v reflect.Value) ([]byte, error) {
				for i := 0; i < 16; i++ {
					buf = append(buf, byte(v.Index(i).Uint()))
				}
				return buf, nil
			}, func(buf []byte, v reflect.Value) ([]byte, error) {
				raw, rest, err := wire.ReadBytes(buf, 16)
				if err != nil {
					return nil, pathErr(err, path)
				}
				for i := 0; i < 16; i++ {
					v.Index(i).SetUint(uint64(raw[i]))
				}
				return rest, nil
			}, nil

	case schema.RefString:
		if goType.Kind() != reflect.String {
			return c.mismatch(path, goType, ref)
		}
		return func(buf []byte, v reflect.Value) ([]byte, error) {
				return wire.AppendString(buf, v.String()), nil
			}, func(buf []byte, v reflect.Value) ([]byte, error) {
				s, rest, err := wire.ReadString(buf)
				if err != nil {
					return nil, pathErr(err, path)
				}
				v.SetString(s)
				return rest, nil
			}, nil

	case schema.RefBool8:
		if goType.Kind() != reflect.Array || goType.Len() != 8 || goType.Elem().Kind() != reflect.Bool {
			return c.mismatch(path, goType, ref)
		}
		return func(buf []byte, v reflect.Value) ([]byte, error) {
				var bits [8]bool
				for i := range bits {
					bits[i] = v.Index(i).Bool()
				}
				return wire.AppendBool8(buf, bits), nil
			}, func(buf []byte, v reflect.Value) ([]byte, error) {
				bits, rest, err := wire.ReadBool8(buf)
				if err != nil {
					return nil, pathErr(err, path)
				}
				for i := range bits {
					v.Index(i).SetBool(bits[i])
				}
				return rest, nil
			}, nil

	case schema.RefOption:
		return c.compileOption(path, ref, goType)

	case schema.RefList:
		return c.compileList(path, ref, goType)

	case schema.RefArray:
		return c.compileArray(path, ref, goType)

	case schema.RefMap:
		return c.compileMap(path, ref, goType)

	case schema.RefNamed:
		t := c.set.Lookup(ref.Name)
		if t == nil {
			return nil, nil, errors.New(errors.PhaseResolve, errors.KindNotFound).
				Path(path...).
				Detail("type %q not declared", ref.Name).
				Build()
		}
		n, err := c.compileNamed(t, goType)
		if err != nil {
			return nil, nil, err
		}
		// Indirection through the node keeps recursive types compilable.
		return func(buf []byte, v reflect.Value) ([]byte, error) {
				return n.enc(buf, v)
			}, func(buf []byte, v reflect.Value) ([]byte, error) {
				return n.dec(buf, v)
			}, nil

	default:
		return nil, nil, errors.Unsupported(errors.PhaseResolve, "type reference "+ref.String())
	}
}

func (c *Compiler) mismatch(path []string, goType reflect.Type, ref schema.TypeRef) (encFunc, decFunc, error) {
	return nil, nil, errors.TypeMismatch(errors.PhaseResolve, path, goType.String(), ref.String())
}

var unsignedGoKinds = map[schema.RefKind]reflect.Kind{
	schema.RefU8:   reflect.Uint8,
	schema.RefU16:  reflect.Uint16,
	schema.RefU32:  reflect.Uint32,
	schema.RefU64:  reflect.Uint64,
	schema.RefUint: reflect.Uint,
}

func (c *Compiler) compileUnsigned(path []string, ref schema.TypeRef, goType reflect.Type) (encFunc, decFunc, error) {
	if goType.Kind() != unsignedGoKinds[ref.Kind] {
		return c.mismatch(path, goType, ref)
	}

	var enc encFunc
	var read func([]byte) (uint64, []byte, error)
	switch ref.Kind {
	case schema.RefU8:
		enc = func(buf []byte, v reflect.Value) ([]byte, error) {
			return wire.AppendU8(buf, uint8(v.Uint())), nil
		}
		read = func(buf []byte) (uint64, []byte, error) {
			n, rest, err := wire.ReadU8(buf)
			return uint64(n), rest, err
		}
	case schema.RefU16:
		enc = func(buf []byte, v reflect.Value) ([]byte, error) {
			return wire.AppendU16(buf, uint16(v.Uint())), nil
		}
		read = func(buf []byte) (uint64, []byte, error) {
			n, rest, err := wire.ReadU16(buf)
			return uint64(n), rest, err
		}
	case schema.RefU32:
		enc = func(buf []byte, v reflect.Value) ([]byte, error) {
			return wire.AppendU32(buf, uint32(v.Uint())), nil
		}
		read = func(buf []byte) (uint64, []byte, error) {
			n, rest, err := wire.ReadU32(buf)
			return uint64(n), rest, err
		}
	default: // u64 and uint share the 8-byte encoding
		enc = func(buf []byte, v reflect.Value) ([]byte, error) {
			return wire.AppendU64(buf, v.Uint()), nil
		}
		read = wire.ReadU64
	}

	dec := func(buf []byte, v reflect.Value) ([]byte, error) {
		n, rest, err := read(buf)
		if err != nil {
			return nil, pathErr(err, path)
		}
		v.SetUint(n)
		return rest, nil
	}
	return enc, dec, nil
}

var signedGoKinds = map[schema.RefKind]reflect.Kind{
	schema.RefI8:  reflect.Int8,
	schema.RefI16: reflect.Int16,
	schema.RefI32: reflect.Int32,
	schema.RefI64: reflect.Int64,
	schema.RefInt: reflect.Int,
}

func (c *Compiler) compileSigned(path []string, ref schema.TypeRef, goType reflect.Type) (encFunc, decFunc, error) {
	if goType.Kind() != signedGoKinds[ref.Kind] {
		return c.mismatch(path, goType, ref)
	}

	var enc encFunc
	var read func([]byte) (int64, []byte, error)
	switch ref.Kind {
	case schema.RefI8:
		enc = func(buf []byte, v reflect.Value) ([]byte, error) {
			return wire.AppendI8(buf, int8(v.Int())), nil
		}
		read = func(buf []byte) (int64, []byte, error) {
			n, rest, err := wire.ReadI8(buf)
			return int64(n), rest, err
		}
	case schema.RefI16:
		enc = func(buf []byte, v reflect.Value) ([]byte, error) {
			return wire.AppendI16(buf, int16(v.Int())), nil
		}
		read = func(buf []byte) (int64, []byte, error) {
			n, rest, err := wire.ReadI16(buf)
			return int64(n), rest, err
		}
	case schema.RefI32:
		enc = func(buf []byte, v reflect.Value) ([]byte, error) {
			return wire.AppendI32(buf, int32(v.Int())), nil
		}
		read = func(buf []byte) (int64, []byte, error) {
			n, rest, err := wire.ReadI32(buf)
			return int64(n), rest, err
		}
	default: // i64 and int share the 8-byte encoding
		enc = func(buf []byte, v reflect.Value) ([]byte, error) {
			return wire.AppendI64(buf, v.Int()), nil
		}
		read = wire.ReadI64
	}

	dec := func(buf []byte, v reflect.Value) ([]byte, error) {
		n, rest, err := read(buf)
		if err != nil {
			return nil, pathErr(err, path)
		}
		v.SetInt(n)
		return rest, nil
	}
	return enc, dec, nil
}

func (c *Compiler) compileOption(path []string, ref schema.TypeRef, goType reflect.Type) (encFunc, decFunc, error) {
	if goType.Kind() != reflect.Pointer {
		return c.mismatch(path, goType, ref)
	}
	elemType := goType.Elem()
	elemEnc, elemDec, err := c.compileRef(path, *ref.Elem, elemType)
	if err != nil {
		return nil, nil, err
	}

	enc := func(buf []byte, v reflect.Value) ([]byte, error) {
		if v.IsNil() {
			return wire.AppendBool(buf, false), nil
		}
		buf = wire.AppendBool(buf, true)
		return elemEnc(buf, v.Elem())
	}
	dec := func(buf []byte, v reflect.Value) ([]byte, error) {
		present, rest, err := wire.ReadBool(buf)
		if err != nil {
			return nil, pathErr(err, path)
		}
		if !present {
			v.Set(reflect.Zero(goType))
			return rest, nil
		}
		np := reflect.New(elemType)
		if rest, err = elemDec(rest, np.Elem()); err != nil {
			return nil, err
		}
		v.Set(np)
		return rest, nil
	}
	return enc, dec, nil
}

func (c *Compiler) compileList(path []string, ref schema.TypeRef, goType reflect.Type) (encFunc, decFunc, error) {
	if goType.Kind() != reflect.Slice {
		return c.mismatch(path, goType, ref)
	}
	elemType := goType.Elem()
	elemEnc, elemDec, err := c.compileRef(path, *ref.Elem, elemType)
	if err != nil {
		return nil, nil, err
	}

	enc := func(buf []byte, v reflect.Value) ([]byte, error) {
		buf = wire.AppendLen(buf, v.Len())
		var err error
		for i := 0; i < v.Len(); i++ {
			if buf, err = elemEnc(buf, v.Index(i)); err != nil {
				return nil, err
			}
		}
		return buf, nil
	}
	dec := func(buf []byte, v reflect.Value) ([]byte, error) {
		n, rest, err := wire.ReadLen(buf)
		if err != nil {
			return nil, pathErr(err, path)
		}
		s := reflect.MakeSlice(goType, 0, wire.SeqCap(n))
		for i := 0; i < n; i++ {
			ev := reflect.New(elemType).Elem()
			if rest, err = elemDec(rest, ev); err != nil {
				return nil, err
			}
			s = reflect.Append(s, ev)
		}
		v.Set(s)
		return rest, nil
	}
	return enc, dec, nil
}

func (c *Compiler) compileArray(path []string, ref schema.TypeRef, goType reflect.Type) (encFunc, decFunc, error) {
	if goType.Kind() != reflect.Array || goType.Len() != ref.Len {
		return c.mismatch(path, goType, ref)
	}
	n := ref.Len
	elemEnc, elemDec, err := c.compileRef(path, *ref.Elem, goType.Elem())
	if err != nil {
		return nil, nil, err
	}

	enc := func(buf []byte, v reflect.Value) ([]byte, error) {
		var err error
		for i := 0; i < n; i++ {
			if buf, err = elemEnc(buf, v.Index(i)); err != nil {
				return nil, err
			}
		}
		return buf, nil
	}
	dec := func(buf []byte, v reflect.Value) ([]byte, error) {
		var err error
		for i := 0; i < n; i++ {
			if buf, err = elemDec(buf, v.Index(i)); err != nil {
				return nil, err
			}
		}
		return buf, nil
	}
	return enc, dec, nil
}

func (c *Compiler) compileMap(path []string, ref schema.TypeRef, goType reflect.Type) (encFunc, decFunc, error) {
	if goType.Kind() != reflect.Map {
		return c.mismatch(path, goType, ref)
	}
	keyType, valType := goType.Key(), goType.Elem()
	keyEnc, keyDec, err := c.compileRef(path, *ref.Key, keyType)
	if err != nil {
		return nil, nil, err
	}
	valEnc, valDec, err := c.compileRef(path, *ref.Elem, valType)
	if err != nil {
		return nil, nil, err
	}

	// Iteration order is whatever the Go map yields; encoding a map with
	// more than one entry is not byte-deterministic.
	enc := func(buf []byte, v reflect.Value) ([]byte, error) {
		buf = wire.AppendLen(buf, v.Len())
		var err error
		iter := v.MapRange()
		for iter.Next() {
			if buf, err = keyEnc(buf, iter.Key()); err != nil {
				return nil, err
			}
			if buf, err = valEnc(buf, iter.Value()); err != nil {
				return nil, err
			}
		}
		return buf, nil
	}
	dec := func(buf []byte, v reflect.Value) ([]byte, error) {
		n, rest, err := wire.ReadLen(buf)
		if err != nil {
			return nil, pathErr(err, path)
		}
		m := reflect.MakeMapWithSize(goType, wire.SeqCap(n))
		for i := 0; i < n; i++ {
			kv := reflect.New(keyType).Elem()
			if rest, err = keyDec(rest, kv); err != nil {
				return nil, err
			}
			vv := reflect.New(valType).Elem()
			if rest, err = valDec(rest, vv); err != nil {
				return nil, err
			}
			m.SetMapIndex(kv, vv)
		}
		v.Set(m)
		return rest, nil
	}
	return enc, dec, nil
}
