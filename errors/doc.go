// Package errors provides structured error types for schema resolution
// and wire codec failures.
//
// Errors carry a Phase (resolve, encode, decode, parse), a Kind, an
// optional field path and an optional schema source location, so callers
// can match on category with errors.Is while diagnostics stay precise:
//
//	[resolve] duplicate_tag at Shape.Rect: tag 3 already used by variant "Circle"
//	[decode] insufficient_bytes at user.name: need 8 bytes, have 2
package errors
