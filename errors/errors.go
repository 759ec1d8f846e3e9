package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve Phase = "resolve" // schema and attribute resolution
	PhaseEncode  Phase = "encode"  // value to bytes
	PhaseDecode  Phase = "decode"  // bytes to value
	PhaseParse   Phase = "parse"   // schema file parsing
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownAttribute    Kind = "unknown_attribute"
	KindInvalidValue        Kind = "invalid_value"
	KindDuplicateTag        Kind = "duplicate_tag"
	KindTagOverflow         Kind = "tag_overflow"
	KindMissingDiscriminant Kind = "missing_discriminant"
	KindDuplicateOrder      Kind = "duplicate_order"
	KindMisplacedOption     Kind = "misplaced_option"
	KindTypeMismatch        Kind = "type_mismatch"
	KindFieldMissing        Kind = "field_missing"
	KindInsufficientBytes   Kind = "insufficient_bytes"
	KindInvalidUTF8         Kind = "invalid_utf8"
	KindUnknownTag          Kind = "unknown_tag"
	KindHook                Kind = "hook"
	KindUnsupported         Kind = "unsupported"
	KindInvalidData         Kind = "invalid_data"
	KindNotFound            Kind = "not_found"
)

// Loc is a position in a schema source file. A zero Loc means the schema
// was constructed in code and carries no file position.
type Loc struct {
	File string
	Line int
	Col  int
}

// IsZero reports whether the location carries no position information.
func (l Loc) IsZero() bool {
	return l.File == "" && l.Line == 0 && l.Col == 0
}

func (l Loc) String() string {
	if l.IsZero() {
		return ""
	}
	file := l.File
	if file == "" {
		file = "<schema>"
	}
	return file + ":" + strconv.Itoa(l.Line) + ":" + strconv.Itoa(l.Col)
}

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	WireType string
	Detail   string
	Path     []string
	Loc      Loc
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.WireType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.WireType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", wire type ")
			b.WriteString(e.WireType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("wire type ")
			b.WriteString(e.WireType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.WireType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if !e.Loc.IsZero() {
		b.WriteString(" (")
		b.WriteString(e.Loc.String())
		b.WriteByte(')')
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Loc sets the schema source location
func (b *Builder) Loc(loc Loc) *Builder {
	b.err.Loc = loc
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// WireType sets the wire type name
func (b *Builder) WireType(t string) *Builder {
	b.err.WireType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnknownAttribute creates an error for an annotation key the resolver
// does not recognize in the position it appears.
func UnknownAttribute(path []string, key string, loc Loc) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnknownAttribute,
		Path:   path,
		Detail: fmt.Sprintf("unknown attribute %q", key),
		Loc:    loc,
	}
}

// InvalidValue creates an error for an annotation value of the wrong form.
func InvalidValue(path []string, key, detail string, loc Loc) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindInvalidValue,
		Path:   path,
		Detail: fmt.Sprintf("attribute %q: %s", key, detail),
		Loc:    loc,
	}
}

// DuplicateTag creates an error for two variants resolving to one tag.
func DuplicateTag(path []string, tag string, firstVariant string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindDuplicateTag,
		Path:   path,
		Detail: fmt.Sprintf("tag %s already used by variant %q", tag, firstVariant),
	}
}

// TagOverflow creates an error for a tag value that does not fit the
// configured tag width.
func TagOverflow(path []string, tag string, bits int) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindTagOverflow,
		Path:   path,
		Detail: fmt.Sprintf("tag %s too large for u%d encoding", tag, bits),
	}
}

// MissingDiscriminant creates an error for a variant with no tag source.
func MissingDiscriminant(path []string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindMissingDiscriminant,
		Path:   path,
		Detail: "no discriminant or value provided",
	}
}

// DuplicateOrder creates an error for two fields sharing an order number.
func DuplicateOrder(path []string, orderNo uint64, firstField string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindDuplicateOrder,
		Path:   path,
		Detail: fmt.Sprintf("order_no %d already used by field %q", orderNo, firstField),
	}
}

// MisplacedOption creates an error for a union-only option on a record.
func MisplacedOption(path []string, key string, loc Loc) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindMisplacedOption,
		Path:   path,
		Detail: fmt.Sprintf("union option %q applied to a record", key),
		Loc:    loc,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, wireType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		GoType:   goType,
		WireType: wireType,
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// InsufficientBytes creates an error for a read past the end of input.
func InsufficientBytes(path []string, need, have int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInsufficientBytes,
		Path:   path,
		Detail: fmt.Sprintf("need %d bytes, have %d", need, have),
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// UnknownTag creates an error for a union tag matching no variant. The
// tag is passed as its decimal rendering so 128-bit tags keep full
// precision.
func UnknownTag(path []string, tag string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownTag,
		Path:   path,
		Detail: fmt.Sprintf("tag %s matches no variant", tag),
		Value:  tag,
	}
}

// Hook creates an error for a caller-supplied hook that failed.
func Hook(phase Phase, path []string, name string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindHook,
		Path:   path,
		Detail: fmt.Sprintf("hook %q failed", name),
		Cause:  cause,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// ParseFailed creates a schema parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
