// Package bytecoding compiles declarative type schemas into binary
// codecs over a fixed little-endian wire format.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct
// responsibilities:
//
//	bytecoding/          Root package with the Appender convention
//	├── codec/           Reflection-based compiler producing cached encode/decode plans
//	├── gen/             Source generator emitting reflection-free Go codecs
//	├── schema/          Schema loading, annotations and type references
//	├── wire/            Little-endian wire format primitives
//	├── errors/          Structured error types for diagnostics
//	└── cmd/bytecodegen/ CLI: check, gen and inspect commands
//
// # Quick Start
//
// Load a schema and compile a codec at runtime:
//
//	f, err := schema.LoadFile("types.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c := codec.NewCompiler(f.Types)
//	accountCodec, err := c.Compile("Account", reflect.TypeOf(Account{}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	data, err := accountCodec.Encode(Account{Id: 7, Name: "ada"})
//	v, rest, err := accountCodec.Decode(data)
//
// Or generate reflection-free source ahead of time:
//
//	bytecodegen gen -o types_gen.go types.yaml
//
// # Wire Format
//
// All integers are little-endian and fixed width. Strings carry an
// 8-byte length prefix followed by UTF-8 bytes; lists and maps carry an
// 8-byte count; options carry a presence byte; union variants carry a
// tag at the configured width (u16 by default) followed by the payload.
// There is no padding and no alignment.
//
// # Thread Safety
//
// Compiler and Codec are safe for concurrent use. Coder is NOT
// thread-safe and should be confined to a single goroutine, or access
// must be synchronized.
package bytecoding
