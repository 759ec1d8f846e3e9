// Package schema describes declared types and resolves the configuration
// annotations attached to them.
//
// A Type is an explicit description of a record or tagged union: its
// fields or variants, their wire types, and zero or more annotation
// blocks. Blocks are enumerated on the node they configure rather than
// scanned from free-form metadata, so the resolver's input is always
// explicit.
//
// The attribute resolver merges a node's blocks left to right: a later
// non-empty scalar replaces an earlier one, while boolean markers
// (inferred_tags, ignore) combine with OR. Unknown keys, values of the
// wrong form and malformed integers fail resolution with the offending
// source location.
//
// Schemas can be built in code or loaded from a YAML file with Load;
// loaded nodes keep their file positions for diagnostics.
package schema
