package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseResolve,
				Kind:     KindTypeMismatch,
				Path:     []string{"user", "address", "zip"},
				GoType:   "string",
				WireType: "u32",
				Detail:   "cannot convert",
			},
			contains: []string{"[resolve]", "type_mismatch", "user.address.zip", "string", "u32", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindInsufficientBytes,
			},
			contains: []string{"[decode]", "insufficient_bytes"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindHook,
				Detail: "hook \"fixup\" failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[decode]", "hook", "fixup", "caused by", "underlying error"},
		},
		{
			name: "error with location",
			err: &Error{
				Phase:  PhaseResolve,
				Kind:   KindUnknownAttribute,
				Detail: "unknown attribute \"order\"",
				Loc:    Loc{File: "schema.yaml", Line: 12, Col: 5},
			},
			contains: []string{"[resolve]", "unknown_attribute", "schema.yaml:12:5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseResolve,
		Kind:  KindDuplicateTag,
		Path:  []string{"Shape"},
	}

	if !err.Is(&Error{Phase: PhaseResolve, Kind: KindDuplicateTag}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseDecode, Kind: KindDuplicateTag}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseResolve, Kind: KindTagOverflow}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseResolve, Kind: KindDuplicateTag}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseResolve, KindInvalidValue).
		Path("Message", "id").
		GoType("string").
		WireType("u32").
		Value(42).
		Loc(Loc{File: "s.yaml", Line: 3, Col: 7}).
		Cause(cause).
		Detail("expected %s, got %s", "number", "string").
		Build()

	if err.Phase != PhaseResolve {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseResolve)
	}
	if err.Kind != KindInvalidValue {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidValue)
	}
	if len(err.Path) != 2 || err.Path[0] != "Message" || err.Path[1] != "id" {
		t.Errorf("Path = %v", err.Path)
	}
	if err.GoType != "string" || err.WireType != "u32" {
		t.Errorf("types = %q/%q", err.GoType, err.WireType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v", err.Value)
	}
	if err.Loc.Line != 3 {
		t.Errorf("Loc = %v", err.Loc)
	}
	if !errors.Is(err.Cause, cause) {
		t.Error("Cause not preserved")
	}
	if err.Detail != "expected number, got string" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestLoc(t *testing.T) {
	var zero Loc
	if !zero.IsZero() {
		t.Error("zero Loc should report IsZero")
	}
	if zero.String() != "" {
		t.Errorf("zero Loc String = %q", zero.String())
	}

	loc := Loc{Line: 4, Col: 2}
	if loc.IsZero() {
		t.Error("positioned Loc should not be zero")
	}
	if loc.String() != "<schema>:4:2" {
		t.Errorf("Loc String = %q", loc.String())
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		phase    Phase
		kind     Kind
		contains string
	}{
		{"UnknownAttribute", UnknownAttribute([]string{"T"}, "colour", Loc{}), PhaseResolve, KindUnknownAttribute, `unknown attribute "colour"`},
		{"InvalidValue", InvalidValue([]string{"T"}, "order_no", "expected a number", Loc{}), PhaseResolve, KindInvalidValue, "expected a number"},
		{"DuplicateTag", DuplicateTag([]string{"Shape", "Rect"}, "3", "Circle"), PhaseResolve, KindDuplicateTag, `already used by variant "Circle"`},
		{"TagOverflow", TagOverflow([]string{"Shape", "Big"}, "70000", 16), PhaseResolve, KindTagOverflow, "too large for u16"},
		{"MissingDiscriminant", MissingDiscriminant([]string{"Shape", "Blob"}), PhaseResolve, KindMissingDiscriminant, "no discriminant or value"},
		{"DuplicateOrder", DuplicateOrder([]string{"Rec", "b"}, 2, "a"), PhaseResolve, KindDuplicateOrder, `order_no 2 already used by field "a"`},
		{"MisplacedOption", MisplacedOption([]string{"Rec"}, "inferred_tags", Loc{}), PhaseResolve, KindMisplacedOption, `union option "inferred_tags"`},
		{"InsufficientBytes", InsufficientBytes([]string{"f"}, 8, 2), PhaseDecode, KindInsufficientBytes, "need 8 bytes, have 2"},
		{"InvalidUTF8", InvalidUTF8([]string{"s"}, []byte{0xff, 0xfe}), PhaseDecode, KindInvalidUTF8, "fffe"},
		{"UnknownTag", UnknownTag([]string{"Shape"}, "9"), PhaseDecode, KindUnknownTag, "tag 9 matches no variant"},
		{"Hook", Hook(PhaseDecode, []string{"T"}, "pre", errors.New("boom")), PhaseDecode, KindHook, `hook "pre" failed`},
		{"NotFound", NotFound(PhaseResolve, "type", "Missing"), PhaseResolve, KindNotFound, `type "Missing" not found`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %v, want %v", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("Error() = %q, want substring %q", tt.err.Error(), tt.contains)
			}
		})
	}
}
