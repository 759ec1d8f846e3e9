// Package u128 provides the minimal unsigned 128-bit arithmetic needed
// for variant tag assignment: decimal parsing, wrapping increment,
// comparison and width narrowing. Tags stay at full precision until the
// final narrowing step so uniqueness checks never lose bits.
package u128

import (
	"fmt"
	"math/bits"
)

// U128 is an unsigned 128-bit integer.
type U128 struct {
	Hi uint64
	Lo uint64
}

// From returns the U128 holding v.
func From(v uint64) U128 {
	return U128{Lo: v}
}

// ParseDecimal parses an unsigned base-10 literal. It rejects empty
// input, non-digit characters and values wider than 128 bits.
func ParseDecimal(s string) (U128, error) {
	if s == "" {
		return U128{}, fmt.Errorf("empty integer literal")
	}
	var v U128
	for _, c := range s {
		if c < '0' || c > '9' {
			return U128{}, fmt.Errorf("invalid digit %q in integer literal", c)
		}
		var carry bool
		v, carry = mul10(v)
		if carry {
			return U128{}, fmt.Errorf("integer literal exceeds 128 bits")
		}
		v, carry = addSmall(v, uint64(c-'0'))
		if carry {
			return U128{}, fmt.Errorf("integer literal exceeds 128 bits")
		}
	}
	return v, nil
}

func mul10(v U128) (U128, bool) {
	hi1, lo := bits.Mul64(v.Lo, 10)
	hiOverflow, hi2 := bits.Mul64(v.Hi, 10)
	hi, carry := bits.Add64(hi2, hi1, 0)
	return U128{Hi: hi, Lo: lo}, hiOverflow != 0 || carry != 0
}

func addSmall(v U128, n uint64) (U128, bool) {
	lo, carry := bits.Add64(v.Lo, n, 0)
	hi, carry := bits.Add64(v.Hi, 0, carry)
	return U128{Hi: hi, Lo: lo}, carry != 0
}

// Inc returns v+1, wrapping around at 2^128.
func (v U128) Inc() U128 {
	lo, carry := bits.Add64(v.Lo, 1, 0)
	hi, _ := bits.Add64(v.Hi, 0, carry)
	return U128{Hi: hi, Lo: lo}
}

// FitsIn reports whether v is representable in the given bit width.
// Valid widths are 8, 16, 32, 64 and 128.
func (v U128) FitsIn(bits int) bool {
	switch bits {
	case 128:
		return true
	case 64:
		return v.Hi == 0
	default:
		return v.Hi == 0 && v.Lo < 1<<uint(bits)
	}
}

// IsZero reports whether v is zero.
func (v U128) IsZero() bool {
	return v.Hi == 0 && v.Lo == 0
}

// String formats v as a base-10 literal.
func (v U128) String() string {
	if v.Hi == 0 {
		return fmt.Sprintf("%d", v.Lo)
	}
	var digits []byte
	for !v.IsZero() {
		var rem uint64
		v, rem = divmod10(v)
		digits = append(digits, byte('0'+rem))
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

func divmod10(v U128) (U128, uint64) {
	hi := v.Hi / 10
	rem := v.Hi % 10
	lo, rem2 := bits.Div64(rem, v.Lo, 10)
	return U128{Hi: hi, Lo: lo}, rem2
}
