// Package wire implements the primitive byte-level codecs the compiled
// encode/decode plans call into.
//
// All multi-byte values are little-endian with a fixed width matching the
// declared bit width. Strings and sequences carry an 8-byte length prefix
// counting bytes and elements respectively. Optional values carry a
// single presence byte. An [8]bool packs into one byte, first element in
// the most significant bit.
//
// Append functions never fail. Read functions return the decoded value
// and the remaining bytes, or a structured decode error; they never read
// past the input slice.
package wire
