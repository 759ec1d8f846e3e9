package schema

import (
	"strconv"
	"strings"

	"github.com/wippyai/bytecoding/errors"
)

// RefKind identifies a wire type.
type RefKind int

const (
	RefBool RefKind = iota
	RefU8
	RefU16
	RefU32
	RefU64
	RefU128
	RefI8
	RefI16
	RefI32
	RefI64
	RefI128
	RefUint // pointer-sized unsigned, fixed 8 bytes on the wire
	RefInt  // pointer-sized signed, fixed 8 bytes on the wire
	RefString
	RefOption
	RefList
	RefArray
	RefBool8
	RefMap
	RefNamed
)

var refKindNames = [...]string{
	RefBool:   "bool",
	RefU8:     "u8",
	RefU16:    "u16",
	RefU32:    "u32",
	RefU64:    "u64",
	RefU128:   "u128",
	RefI8:     "i8",
	RefI16:    "i16",
	RefI32:    "i32",
	RefI64:    "i64",
	RefI128:   "i128",
	RefUint:   "uint",
	RefInt:    "int",
	RefString: "string",
	RefOption: "option",
	RefList:   "list",
	RefArray:  "array",
	RefBool8:  "bool8",
	RefMap:    "map",
	RefNamed:  "named",
}

var primitiveKinds = map[string]RefKind{
	"bool":   RefBool,
	"u8":     RefU8,
	"u16":    RefU16,
	"u32":    RefU32,
	"u64":    RefU64,
	"u128":   RefU128,
	"i8":     RefI8,
	"i16":    RefI16,
	"i32":    RefI32,
	"i64":    RefI64,
	"i128":   RefI128,
	"uint":   RefUint,
	"int":    RefInt,
	"string": RefString,
	"bool8":  RefBool8,
}

// TypeRef references a wire type: a primitive, a parameterized container
// or a named declared type.
type TypeRef struct {
	Kind RefKind
	Elem *TypeRef // option, list and array element; map value
	Key  *TypeRef // map key
	Len  int      // array length
	Name string   // named reference
}

// String renders the reference in the schema grammar.
func (r TypeRef) String() string {
	switch r.Kind {
	case RefOption:
		return "option<" + r.Elem.String() + ">"
	case RefList:
		return "list<" + r.Elem.String() + ">"
	case RefArray:
		return "array<" + strconv.Itoa(r.Len) + "," + r.Elem.String() + ">"
	case RefMap:
		return "map<" + r.Key.String() + "," + r.Elem.String() + ">"
	case RefNamed:
		return r.Name
	default:
		if int(r.Kind) < len(refKindNames) {
			return refKindNames[r.Kind]
		}
		return "unknown"
	}
}

// Named returns a reference to a declared type.
func Named(name string) TypeRef {
	return TypeRef{Kind: RefNamed, Name: name}
}

// Option wraps a reference in option<...>.
func Option(elem TypeRef) TypeRef {
	e := elem
	return TypeRef{Kind: RefOption, Elem: &e}
}

// List wraps a reference in list<...>.
func List(elem TypeRef) TypeRef {
	e := elem
	return TypeRef{Kind: RefList, Elem: &e}
}

// Array wraps a reference in array<n,...>.
func Array(n int, elem TypeRef) TypeRef {
	e := elem
	return TypeRef{Kind: RefArray, Len: n, Elem: &e}
}

// Map builds a map<key,value> reference.
func Map(key, value TypeRef) TypeRef {
	k, v := key, value
	return TypeRef{Kind: RefMap, Key: &k, Elem: &v}
}

// Prim returns the primitive reference of the given kind.
func Prim(kind RefKind) TypeRef {
	return TypeRef{Kind: kind}
}

// ParseTypeRef parses the schema grammar for wire types:
//
//	bool u8 u16 u32 u64 u128 i8 i16 i32 i64 i128 uint int string bool8
//	option<T> list<T> array<N,T> map<K,V> NamedType
//
// Anything starting with an upper- or lowercase letter that is not a
// keyword parses as a named type reference.
func ParseTypeRef(s string, loc errors.Loc) (TypeRef, error) {
	p := refParser{src: s, loc: loc}
	ref, err := p.parse()
	if err != nil {
		return TypeRef{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return TypeRef{}, p.errorf("trailing characters after type %q", s[:p.pos])
	}
	return ref, nil
}

type refParser struct {
	src string
	pos int
	loc errors.Loc
}

func (p *refParser) errorf(format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidData).
		Loc(p.loc).
		Detail(format, args...).
		Build()
}

func (p *refParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *refParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return p.errorf("expected %q in type %q", string(c), p.src)
	}
	p.pos++
	return nil
}

func (p *refParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *refParser) parse() (TypeRef, error) {
	word := p.ident()
	if word == "" {
		return TypeRef{}, p.errorf("empty type reference")
	}

	if kind, ok := primitiveKinds[word]; ok {
		return TypeRef{Kind: kind}, nil
	}

	switch word {
	case "option", "list":
		if err := p.expect('<'); err != nil {
			return TypeRef{}, err
		}
		elem, err := p.parse()
		if err != nil {
			return TypeRef{}, err
		}
		if err := p.expect('>'); err != nil {
			return TypeRef{}, err
		}
		kind := RefOption
		if word == "list" {
			kind = RefList
		}
		return TypeRef{Kind: kind, Elem: &elem}, nil

	case "array":
		if err := p.expect('<'); err != nil {
			return TypeRef{}, err
		}
		p.skipSpace()
		digits := p.ident()
		n, err := strconv.Atoi(digits)
		if err != nil || n < 0 {
			return TypeRef{}, p.errorf("array length %q is not a non-negative integer", digits)
		}
		if err := p.expect(','); err != nil {
			return TypeRef{}, err
		}
		elem, err := p.parse()
		if err != nil {
			return TypeRef{}, err
		}
		if err := p.expect('>'); err != nil {
			return TypeRef{}, err
		}
		return TypeRef{Kind: RefArray, Len: n, Elem: &elem}, nil

	case "map":
		if err := p.expect('<'); err != nil {
			return TypeRef{}, err
		}
		key, err := p.parse()
		if err != nil {
			return TypeRef{}, err
		}
		if err := p.expect(','); err != nil {
			return TypeRef{}, err
		}
		val, err := p.parse()
		if err != nil {
			return TypeRef{}, err
		}
		if err := p.expect('>'); err != nil {
			return TypeRef{}, err
		}
		return TypeRef{Kind: RefMap, Key: &key, Elem: &val}, nil
	}

	if strings.ContainsAny(word[:1], "0123456789") {
		return TypeRef{}, p.errorf("unknown type %q", word)
	}
	return TypeRef{Kind: RefNamed, Name: word}, nil
}
