package column

import (
	"testing"

	"github.com/reoring/ndskema/dtype"
)

func TestParseNum_Classification(t *testing.T) {
	tests := []struct {
		text     string
		kind     NumKind
		bigInt   bool
		overflow bool
		integer  bool
	}{
		{"-5", NumInt, false, false, true},
		{"18446744073709551615", NumUint, false, false, true},
		{"-9223372036854775809", NumFloat, true, false, true},
		{"18446744073709551616", NumFloat, true, false, true},
		{"2.5", NumFloat, false, false, false},
		{"1e400", NumFloat, false, true, false},
		{"-1e400", NumFloat, false, true, false},
	}
	for _, tt := range tests {
		n, err := ParseNum(tt.text)
		if err != nil {
			t.Fatalf("%s: %v", tt.text, err)
		}
		if n.Kind != tt.kind || n.BigInt != tt.bigInt || n.Overflow != tt.overflow || n.IsInteger() != tt.integer {
			t.Fatalf("%s: got %+v", tt.text, n)
		}
	}
	if _, err := ParseNum("1x"); err == nil {
		t.Fatalf("want error for malformed number")
	}
}

func TestInRange_Edges(t *testing.T) {
	tests := []struct {
		kind dtype.Kind
		text string
		want bool
	}{
		{dtype.Int64, "-9223372036854775808", true},
		{dtype.Int64, "-9223372036854775809", false},
		{dtype.Uint64, "18446744073709551616", false},
		{dtype.Int8, "-9223372036854775809", false},
		{dtype.Float64, "-9223372036854775809", true},
		{dtype.Float32, "18446744073709551616", true},
		{dtype.Float64, "1e400", false},
		{dtype.Float32, "-1e400", false},
		{dtype.Int32, "1e400", false},
		{dtype.Float32, "1e300", false},
		{dtype.Uint8, "255.9", true},
		{dtype.Uint8, "-0.5", true},
		{dtype.Uint8, "-1", false},
	}
	for _, tt := range tests {
		n, err := ParseNum(tt.text)
		if err != nil {
			t.Fatalf("%s: %v", tt.text, err)
		}
		if got := inRange(tt.kind, n); got != tt.want {
			t.Fatalf("inRange(%s, %s) = %v, want %v", tt.kind, tt.text, got, tt.want)
		}
	}
}
