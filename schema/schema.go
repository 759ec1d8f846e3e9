package schema

import (
	"github.com/wippyai/bytecoding/errors"
)

// TypeKind distinguishes the supported declaration shapes.
type TypeKind int

const (
	// Record is a struct with named fields.
	Record TypeKind = iota
	// Tuple is a struct with positional fields.
	Tuple
	// Union is a tagged union of variants.
	Union
)

var typeKindNames = [...]string{
	Record: "record",
	Tuple:  "tuple",
	Union:  "union",
}

func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return "unknown"
}

// Type is one declared type: a record, tuple record or tagged union,
// together with the annotation blocks attached to it.
type Type struct {
	Name        string
	Kind        TypeKind
	Annotations []Block
	Fields      []Field   // Record and Tuple
	Variants    []Variant // Union
	Loc         errors.Loc
}

// Field is one record field or variant payload field. Positional fields
// have an empty Name.
type Field struct {
	Name        string
	Type        TypeRef
	Annotations []Block
	Loc         errors.Loc
}

// Variant is one union variant. Discriminant carries the raw text of a
// language-native discriminant expression, if any; only base-10 integer
// literals are accepted when it is consulted for the tag.
type Variant struct {
	Name         string
	Discriminant string
	Tuple        bool
	Fields       []Field
	Annotations  []Block
	Loc          errors.Loc
}

// EntryForm is the syntactic form of an annotation entry.
type EntryForm int

const (
	// FormFlag is a bare marker with no value, e.g. `ignore`.
	FormFlag EntryForm = iota
	// FormString is a key with a string value, e.g. `pre_enc_func: "f"`.
	FormString
	// FormInt is a key with an unsigned integer value. The digits are
	// kept as text so values stay at full precision until narrowed.
	FormInt
)

// Entry is a single key inside an annotation block.
type Entry struct {
	Key  string
	Form EntryForm
	Str  string
	Int  string // decimal digits for FormInt
	Loc  errors.Loc
}

// Block is one annotation block. A node may carry several blocks; the
// resolver merges them left to right.
type Block struct {
	Entries []Entry
	Loc     errors.Loc
}

// Str builds a string-valued annotation entry.
func Str(key, value string) Entry {
	return Entry{Key: key, Form: FormString, Str: value}
}

// Num builds an integer-valued annotation entry.
func Num(key string, value uint64) Entry {
	return Entry{Key: key, Form: FormInt, Int: formatUint(value)}
}

// NumLit builds an integer-valued annotation entry from decimal digits,
// for values wider than 64 bits.
func NumLit(key, digits string) Entry {
	return Entry{Key: key, Form: FormInt, Int: digits}
}

// Flag builds a bare marker annotation entry.
func Flag(key string) Entry {
	return Entry{Key: key, Form: FormFlag}
}

// Annot builds a block from entries.
func Annot(entries ...Entry) Block {
	return Block{Entries: entries}
}

func formatUint(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// Set is an ordered collection of declared types, indexed by name.
// Named type references resolve against the set they were declared in.
type Set struct {
	byName map[string]*Type
	order  []string
}

// NewSet builds a set from types, rejecting duplicate names.
func NewSet(types ...*Type) (*Set, error) {
	s := &Set{byName: make(map[string]*Type, len(types))}
	for _, t := range types {
		if err := s.Add(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add inserts one type into the set.
func (s *Set) Add(t *Type) error {
	if _, ok := s.byName[t.Name]; ok {
		return errors.New(errors.PhaseResolve, errors.KindInvalidData).
			Path(t.Name).
			Loc(t.Loc).
			Detail("type %q declared twice", t.Name).
			Build()
	}
	s.byName[t.Name] = t
	s.order = append(s.order, t.Name)
	return nil
}

// Lookup returns the named type, or nil.
func (s *Set) Lookup(name string) *Type {
	if s == nil {
		return nil
	}
	return s.byName[name]
}

// Types returns the declared types in declaration order.
func (s *Set) Types() []*Type {
	out := make([]*Type, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}
