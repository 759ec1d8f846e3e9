package wire

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/wippyai/bytecoding/errors"
)

// maxPrealloc caps the capacity handed to make() while decoding a
// sequence, so a forged length prefix cannot exhaust memory before the
// element reads run out of input.
const maxPrealloc = 4096

// AppendBool appends one byte: 1 for true, 0 for false.
func AppendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

// ReadBool consumes one byte; any nonzero value decodes as true.
func ReadBool(buf []byte) (bool, []byte, error) {
	if len(buf) < 1 {
		return false, nil, errors.InsufficientBytes(nil, 1, len(buf))
	}
	return buf[0] != 0, buf[1:], nil
}

func AppendU8(buf []byte, v uint8) []byte {
	return append(buf, v)
}

func ReadU8(buf []byte) (uint8, []byte, error) {
	if len(buf) < 1 {
		return 0, nil, errors.InsufficientBytes(nil, 1, len(buf))
	}
	return buf[0], buf[1:], nil
}

func AppendU16(buf []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(buf, v)
}

func ReadU16(buf []byte) (uint16, []byte, error) {
	if len(buf) < 2 {
		return 0, nil, errors.InsufficientBytes(nil, 2, len(buf))
	}
	return binary.LittleEndian.Uint16(buf), buf[2:], nil
}

func AppendU32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

func ReadU32(buf []byte) (uint32, []byte, error) {
	if len(buf) < 4 {
		return 0, nil, errors.InsufficientBytes(nil, 4, len(buf))
	}
	return binary.LittleEndian.Uint32(buf), buf[4:], nil
}

func AppendU64(buf []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(buf, v)
}

func ReadU64(buf []byte) (uint64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, errors.InsufficientBytes(nil, 8, len(buf))
	}
	return binary.LittleEndian.Uint64(buf), buf[8:], nil
}

// AppendU128 appends 16 bytes: the low half first, then the high half,
// keeping the whole value little-endian.
func AppendU128(buf []byte, lo, hi uint64) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, lo)
	return binary.LittleEndian.AppendUint64(buf, hi)
}

func ReadU128(buf []byte) (lo, hi uint64, rest []byte, err error) {
	if len(buf) < 16 {
		return 0, 0, nil, errors.InsufficientBytes(nil, 16, len(buf))
	}
	lo = binary.LittleEndian.Uint64(buf)
	hi = binary.LittleEndian.Uint64(buf[8:])
	return lo, hi, buf[16:], nil
}

func AppendI8(buf []byte, v int8) []byte {
	return append(buf, uint8(v))
}

func ReadI8(buf []byte) (int8, []byte, error) {
	v, rest, err := ReadU8(buf)
	return int8(v), rest, err
}

func AppendI16(buf []byte, v int16) []byte {
	return AppendU16(buf, uint16(v))
}

func ReadI16(buf []byte) (int16, []byte, error) {
	v, rest, err := ReadU16(buf)
	return int16(v), rest, err
}

func AppendI32(buf []byte, v int32) []byte {
	return AppendU32(buf, uint32(v))
}

func ReadI32(buf []byte) (int32, []byte, error) {
	v, rest, err := ReadU32(buf)
	return int32(v), rest, err
}

func AppendI64(buf []byte, v int64) []byte {
	return AppendU64(buf, uint64(v))
}

func ReadI64(buf []byte) (int64, []byte, error) {
	v, rest, err := ReadU64(buf)
	return int64(v), rest, err
}

// AppendUint encodes a pointer-sized unsigned integer at a fixed 8 bytes.
func AppendUint(buf []byte, v uint) []byte {
	return AppendU64(buf, uint64(v))
}

func ReadUint(buf []byte) (uint, []byte, error) {
	v, rest, err := ReadU64(buf)
	return uint(v), rest, err
}

// AppendInt encodes a pointer-sized signed integer at a fixed 8 bytes.
func AppendInt(buf []byte, v int) []byte {
	return AppendU64(buf, uint64(int64(v)))
}

func ReadInt(buf []byte) (int, []byte, error) {
	v, rest, err := ReadU64(buf)
	return int(int64(v)), rest, err
}

// AppendLen appends an 8-byte little-endian element or byte count.
func AppendLen(buf []byte, n int) []byte {
	return AppendU64(buf, uint64(n))
}

// ReadLen consumes an 8-byte count and rejects values that cannot be
// represented as a non-negative int on this platform.
func ReadLen(buf []byte) (int, []byte, error) {
	v, rest, err := ReadU64(buf)
	if err != nil {
		return 0, nil, err
	}
	if v > math.MaxInt {
		return 0, nil, errors.InvalidData(errors.PhaseDecode, nil, "length prefix overflows int")
	}
	return int(v), rest, nil
}

// SeqCap bounds the capacity preallocated for a decoded sequence.
func SeqCap(n int) int {
	if n > maxPrealloc {
		return maxPrealloc
	}
	return n
}

// AppendString appends an 8-byte byte count followed by the raw UTF-8
// bytes of s.
func AppendString(buf []byte, s string) []byte {
	buf = AppendLen(buf, len(s))
	return append(buf, s...)
}

// ReadString consumes a length-prefixed string and validates UTF-8.
func ReadString(buf []byte) (string, []byte, error) {
	n, rest, err := ReadLen(buf)
	if err != nil {
		return "", nil, err
	}
	if len(rest) < n {
		return "", nil, errors.InsufficientBytes(nil, n, len(rest))
	}
	raw := rest[:n]
	if !utf8.Valid(raw) {
		return "", nil, errors.InvalidUTF8(nil, raw)
	}
	return string(raw), rest[n:], nil
}

// AppendBytes appends raw bytes with no prefix.
func AppendBytes(buf, data []byte) []byte {
	return append(buf, data...)
}

// ReadBytes consumes exactly n raw bytes.
func ReadBytes(buf []byte, n int) ([]byte, []byte, error) {
	if len(buf) < n {
		return nil, nil, errors.InsufficientBytes(nil, n, len(buf))
	}
	return buf[:n], buf[n:], nil
}

// AppendBool8 packs eight booleans into one byte, first element in the
// most significant bit.
func AppendBool8(buf []byte, v [8]bool) []byte {
	var b byte
	for _, set := range v {
		b <<= 1
		if set {
			b |= 1
		}
	}
	return append(buf, b)
}

// ReadBool8 unpacks one byte into eight booleans, most significant bit
// first.
func ReadBool8(buf []byte) ([8]bool, []byte, error) {
	var v [8]bool
	if len(buf) < 1 {
		return v, nil, errors.InsufficientBytes(nil, 1, len(buf))
	}
	b := buf[0]
	for i := 0; i < 8; i++ {
		v[i] = b&(1<<(7-i)) != 0
	}
	return v, buf[1:], nil
}
