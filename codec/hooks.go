package codec

import (
	"reflect"

	"github.com/wippyai/bytecoding/errors"
	"github.com/wippyai/bytecoding/schema"
)

// Hooks supplies the caller functions hook annotations refer to, keyed
// by the name used in the annotation.
type Hooks map[string]any

var (
	bytesType = reflect.TypeOf([]byte(nil))
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// hookSet is the validated hook functions of one compiled type. Unset
// slots hold the zero Value.
type hookSet struct {
	preEnc,
	postEnc,
	preDec,
	postDec reflect.Value

	preDecName,
	postDecName string
}

// resolveHooks looks up the hooks a type's annotations name and checks
// their signatures against the compiled Go type.
func (c *Compiler) resolveHooks(path []string, attrs schema.TypeAttrs, goType reflect.Type) (hookSet, error) {
	var hs hookSet
	var err error

	if attrs.PreEncode != "" {
		want := reflect.FuncOf([]reflect.Type{goType}, []reflect.Type{goType}, false)
		if hs.preEnc, err = c.hookFunc(path, attrs.PreEncode, want); err != nil {
			return hookSet{}, err
		}
	}
	if attrs.PostEncode != "" {
		want := reflect.FuncOf([]reflect.Type{bytesType}, []reflect.Type{bytesType}, false)
		if hs.postEnc, err = c.hookFunc(path, attrs.PostEncode, want); err != nil {
			return hookSet{}, err
		}
	}
	if attrs.PreDecode != "" {
		want := reflect.FuncOf([]reflect.Type{bytesType}, []reflect.Type{bytesType, errorType}, false)
		if hs.preDec, err = c.hookFunc(path, attrs.PreDecode, want); err != nil {
			return hookSet{}, err
		}
		hs.preDecName = attrs.PreDecode
	}
	if attrs.PostDecode != "" {
		want := reflect.FuncOf(
			[]reflect.Type{goType, bytesType},
			[]reflect.Type{goType, bytesType, errorType},
			false,
		)
		if hs.postDec, err = c.hookFunc(path, attrs.PostDecode, want); err != nil {
			return hookSet{}, err
		}
		hs.postDecName = attrs.PostDecode
	}
	return hs, nil
}

func (c *Compiler) hookFunc(path []string, name string, want reflect.Type) (reflect.Value, error) {
	fn, ok := c.hooks[name]
	if !ok {
		return reflect.Value{}, errors.New(errors.PhaseResolve, errors.KindNotFound).
			Path(path...).
			Detail("hook %q not supplied to the compiler", name).
			Build()
	}
	got := reflect.TypeOf(fn)
	if got != want {
		return reflect.Value{}, errors.New(errors.PhaseResolve, errors.KindTypeMismatch).
			Path(path...).
			GoType(got.String()).
			Detail("hook %q must have signature %s", name, want).
			Build()
	}
	return reflect.ValueOf(fn), nil
}

// wrap splices the hooks around a type's core encode/decode bodies.
//
// Pre-encode transforms the value before the fields are written;
// post-encode receives the whole accumulated buffer, parent prefix
// included, and may replace it. Pre-decode may replace the remaining
// input before the fields are read; post-decode may replace both the
// decoded value and the remainder. A hook returning an error aborts the
// whole decode.
func (hs hookSet) wrap(path []string, enc encFunc, dec decFunc) (encFunc, decFunc) {
	if hs.preEnc.IsValid() || hs.postEnc.IsValid() {
		body := enc
		enc = func(buf []byte, v reflect.Value) ([]byte, error) {
			if hs.preEnc.IsValid() {
				v = hs.preEnc.Call([]reflect.Value{v})[0]
			}
			out, err := body(buf, v)
			if err != nil {
				return nil, err
			}
			if hs.postEnc.IsValid() {
				out = hs.postEnc.Call([]reflect.Value{reflect.ValueOf(out)})[0].Interface().([]byte)
			}
			return out, nil
		}
	}

	if hs.preDec.IsValid() || hs.postDec.IsValid() {
		body := dec
		dec = func(buf []byte, v reflect.Value) ([]byte, error) {
			if hs.preDec.IsValid() {
				outs := hs.preDec.Call([]reflect.Value{reflect.ValueOf(buf)})
				if errv := outs[1].Interface(); errv != nil {
					return nil, errors.Hook(errors.PhaseDecode, path, hs.preDecName, errv.(error))
				}
				buf = outs[0].Interface().([]byte)
			}
			rest, err := body(buf, v)
			if err != nil {
				return nil, err
			}
			if hs.postDec.IsValid() {
				outs := hs.postDec.Call([]reflect.Value{v, reflect.ValueOf(rest)})
				if errv := outs[2].Interface(); errv != nil {
					return nil, errors.Hook(errors.PhaseDecode, path, hs.postDecName, errv.(error))
				}
				v.Set(outs[0])
				rest = outs[1].Interface().([]byte)
			}
			return rest, nil
		}
	}
	return enc, dec
}
