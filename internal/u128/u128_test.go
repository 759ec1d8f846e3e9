package u128

import "testing"

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in      string
		want    U128
		wantErr bool
	}{
		{"0", U128{}, false},
		{"1", U128{Lo: 1}, false},
		{"65535", U128{Lo: 65535}, false},
		{"18446744073709551615", U128{Lo: ^uint64(0)}, false},
		{"18446744073709551616", U128{Hi: 1}, false},
		{"340282366920938463463374607431768211455", U128{Hi: ^uint64(0), Lo: ^uint64(0)}, false},
		{"340282366920938463463374607431768211456", U128{}, true},
		{"", U128{}, true},
		{"12a", U128{}, true},
		{"-1", U128{}, true},
	}

	for _, tt := range tests {
		got, err := ParseDecimal(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDecimal(%q): want error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDecimal(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDecimal(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInc(t *testing.T) {
	if got := From(0).Inc(); got != From(1) {
		t.Errorf("0+1 = %v", got)
	}
	if got := (U128{Lo: ^uint64(0)}).Inc(); got != (U128{Hi: 1}) {
		t.Errorf("lo overflow carries into hi: %v", got)
	}
	// Wraps at 2^128.
	max := U128{Hi: ^uint64(0), Lo: ^uint64(0)}
	if got := max.Inc(); !got.IsZero() {
		t.Errorf("max+1 = %v, want 0", got)
	}
}

func TestFitsIn(t *testing.T) {
	tests := []struct {
		v    U128
		bits int
		want bool
	}{
		{From(255), 8, true},
		{From(256), 8, false},
		{From(65535), 16, true},
		{From(65536), 16, false},
		{From(1 << 32), 32, false},
		{From(1<<32 - 1), 32, true},
		{From(^uint64(0)), 64, true},
		{U128{Hi: 1}, 64, false},
		{U128{Hi: ^uint64(0), Lo: ^uint64(0)}, 128, true},
	}

	for _, tt := range tests {
		if got := tt.v.FitsIn(tt.bits); got != tt.want {
			t.Errorf("%v.FitsIn(%d) = %v, want %v", tt.v, tt.bits, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		v    U128
		want string
	}{
		{U128{}, "0"},
		{From(42), "42"},
		{U128{Hi: 1}, "18446744073709551616"},
		{U128{Hi: ^uint64(0), Lo: ^uint64(0)}, "340282366920938463463374607431768211455"},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseStringRoundTrip(t *testing.T) {
	inputs := []string{"0", "9", "10", "65536", "18446744073709551617", "99999999999999999999999999999999999999"}
	for _, in := range inputs {
		v, err := ParseDecimal(in)
		if err != nil {
			t.Fatalf("ParseDecimal(%q): %v", in, err)
		}
		if got := v.String(); got != in {
			t.Errorf("round trip %q -> %q", in, got)
		}
	}
}
