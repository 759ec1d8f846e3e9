package codec

import (
	stderrors "errors"
	"reflect"

	"github.com/wippyai/bytecoding/errors"
)

// encFunc appends the wire form of v to buf.
type encFunc func(buf []byte, v reflect.Value) ([]byte, error)

// decFunc fills v from buf and returns the unconsumed remainder. v must
// be settable.
type decFunc func(buf []byte, v reflect.Value) ([]byte, error)

// node is one compiled type in the plan cache. Recursive references go
// through the node, whose funcs are assigned after the compile that
// created it finishes, so self-referential types resolve.
type node struct {
	enc encFunc
	dec decFunc
}

// Codec encodes and decodes values of one Go type against one declared
// schema type. All attribute, tag and order resolution happened at
// compile time; the methods are safe for concurrent use.
type Codec struct {
	name   string
	goType reflect.Type
	node   *node
}

// Name returns the declared type name the codec was compiled from.
func (c *Codec) Name() string { return c.name }

// GoType returns the Go type the codec was compiled for.
func (c *Codec) GoType() reflect.Type { return c.goType }

// Encode serializes v into a fresh buffer. v may be a value of the
// compiled Go type or a non-nil pointer to one.
func (c *Codec) Encode(v any) ([]byte, error) {
	return c.AppendTo(nil, v)
}

// AppendTo appends the wire form of v to buf and returns the extended
// buffer.
func (c *Codec) AppendTo(buf []byte, v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, errors.InvalidData(errors.PhaseEncode, []string{c.name}, "cannot encode nil")
	}
	if rv.Kind() == reflect.Pointer && rv.Type().Elem() == c.goType {
		if rv.IsNil() {
			return nil, errors.InvalidData(errors.PhaseEncode, []string{c.name}, "cannot encode nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Type() != c.goType {
		return nil, errors.TypeMismatch(errors.PhaseEncode, []string{c.name}, rv.Type().String(), c.name)
	}
	return c.node.enc(buf, rv)
}

// Decode parses one value from the front of data and returns it together
// with the unconsumed remainder. Malformed input surfaces as an error,
// never a panic, and no partial value is returned.
func (c *Codec) Decode(data []byte) (any, []byte, error) {
	rv := reflect.New(c.goType).Elem()
	rest, err := c.node.dec(data, rv)
	if err != nil {
		return nil, nil, err
	}
	return rv.Interface(), rest, nil
}

// DecodeInto parses one value into the variable dst points at, avoiding
// the interface round trip of Decode.
func (c *Codec) DecodeInto(data []byte, dst any) ([]byte, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Type().Elem() != c.goType {
		got := "nil"
		if rv.IsValid() {
			got = rv.Type().String()
		}
		return nil, errors.TypeMismatch(errors.PhaseDecode, []string{c.name}, got, "*"+c.goType.String())
	}
	return c.node.dec(data, rv.Elem())
}

// childPath extends a diagnostic path without aliasing the parent slice.
func childPath(path []string, elem string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = elem
	return out
}

// pathErr attaches path to a wire-level error that carries none.
func pathErr(err error, path []string) error {
	var e *errors.Error
	if stderrors.As(err, &e) && len(e.Path) == 0 {
		e.Path = path
	}
	return err
}
