// Package codec compiles schema type descriptions into encode/decode
// procedures for Go values.
//
// A Compiler resolves a declared type's annotations, assigns variant
// tags, orders record fields and emits a closure plan over reflect:
//
//	set, _ := schema.NewSet(userType)
//	c := codec.NewCompiler(set)
//	cdc, err := c.Compile("User", reflect.TypeOf(User{}))
//	data, _ := cdc.Encode(User{ID: 7, Nick: "kim"})
//	v, rest, _ := cdc.Decode(data)
//
// All resolution happens in Compile; the returned Codec performs no
// attribute or tag work at run time. Encode cannot fail for a resolved
// type except when the value violates the union selector contract;
// Decode reports malformed input as an error, never a panic.
//
// # Union values
//
// A union's Go representation is a struct with an int selector field
// named Case holding the variant's declaration index, plus one payload
// field per non-unit variant, matched to the variant name:
//
//	type Shape struct {
//		Case   int
//		Circle *Circle
//		Rect   *Rect
//	}
//
// Encode matches exhaustively on the selector and writes the variant's
// resolved tag; decode maps the tag back through the static table built
// at compile time.
//
// # Hooks
//
// Annotations may name pre/post hooks, supplied to the compiler by name:
//
//	codec.WithHooks(codec.Hooks{
//		"NormalizeUser": func(u User) User { ... },
//	})
//
// Signatures are checked at compile time: pre-encode func(T) T,
// post-encode func([]byte) []byte, pre-decode func([]byte) ([]byte,
// error), post-decode func(T, []byte) (T, []byte, error).
//
// Compiler and Codec are safe for concurrent use. Coder is not.
package codec
