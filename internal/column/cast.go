package column

import (
	"math"
	"strconv"
	"strings"

	"github.com/reoring/ndskema/dtype"
	eng "github.com/reoring/ndskema/internal/engine"
)

// NumKind is the source representation of a parsed number.
type NumKind int

const (
	NumInt NumKind = iota
	NumUint
	NumFloat
)

func (k NumKind) String() string {
	switch k {
	case NumInt:
		return "int64"
	case NumUint:
		return "uint64"
	default:
		return "float64"
	}
}

// Num is a number token parsed into the widest matching Go representation.
// Non-negative integers that fit int64 are NumInt; larger ones are NumUint;
// anything with a fraction or exponent, or beyond uint64, is NumFloat.
// BigInt marks an integer literal outside both int64 and uint64; Overflow
// marks a literal outside float64.
type Num struct {
	Kind     NumKind
	I        int64
	U        uint64
	F        float64
	Text     string
	BigInt   bool
	Overflow bool
}

// ParseNum parses the textual number carried by a token.
func ParseNum(text string) (Num, error) {
	n := Num{Kind: NumFloat, Text: text}
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Num{Kind: NumInt, I: i, Text: text}, nil
		}
		if u, err := strconv.ParseUint(text, 10, 64); err == nil {
			return Num{Kind: NumUint, U: u, Text: text}, nil
		}
		n.BigInt = true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// ParseFloat still returns ±Inf for out-of-range input.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return Num{}, err
		}
		n.Overflow = true
	}
	n.F = f
	return n, nil
}

// IsInteger reports whether the number was written without fraction or exponent.
func (n Num) IsInteger() bool { return n.Kind != NumFloat || n.BigInt }

// Numeric is the set of typed numeric element types.
type Numeric interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// Element is the set of element types a typed buffer can hold.
type Element interface {
	Numeric | bool
}

// Converter turns a scalar token into an element of the target kind.
type Converter[T Element] func(tok eng.Token) (T, error)

// NumericConverter returns the checked narrowing conversion into k.
// k must be the dtype matching T.
func NumericConverter[T Numeric](k dtype.Kind) Converter[T] {
	return func(tok eng.Token) (T, error) {
		if tok.Kind != eng.KindNumber {
			return 0, &TypeError{Kind: k, Got: tok.Kind.String()}
		}
		n, err := ParseNum(tok.Number)
		if err != nil {
			return 0, &TypeError{Kind: k, Got: "malformed number " + tok.Number}
		}
		if !inRange(k, n) {
			return 0, &CastError{Value: n.Text, From: n.Kind.String(), To: k}
		}
		switch n.Kind {
		case NumInt:
			return T(n.I), nil
		case NumUint:
			return T(n.U), nil
		default:
			return T(n.F), nil
		}
	}
}

// BoolConverter accepts boolean tokens only.
func BoolConverter() Converter[bool] {
	return func(tok eng.Token) (bool, error) {
		if tok.Kind != eng.KindBool {
			return false, &TypeError{Kind: dtype.Bool, Got: tok.Kind.String()}
		}
		return tok.Bool, nil
	}
}

// inRange reports whether n is representable in k. Floats headed for an
// integer kind are truncated toward zero before the check.
func inRange(k dtype.Kind, n Num) bool {
	if n.Overflow || (n.BigInt && k.IsInteger()) {
		return false
	}
	switch {
	case k == dtype.Float64:
		return true
	case k == dtype.Float32:
		if n.Kind != NumFloat || math.IsInf(n.F, 0) || math.IsNaN(n.F) {
			return true
		}
		return math.Abs(n.F) <= math.MaxFloat32
	case k.IsSigned():
		bits := uint(k.Bits())
		lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
		switch n.Kind {
		case NumInt:
			return n.I >= lo && n.I <= hi
		case NumUint:
			return n.U <= uint64(hi)
		default:
			if math.IsNaN(n.F) {
				return false
			}
			t := math.Trunc(n.F)
			return t >= -math.Ldexp(1, int(bits-1)) && t < math.Ldexp(1, int(bits-1))
		}
	case k.IsInteger():
		bits := uint(k.Bits())
		hi := uint64(math.MaxUint64) >> (64 - bits)
		switch n.Kind {
		case NumInt:
			return n.I >= 0 && uint64(n.I) <= hi
		case NumUint:
			return n.U <= hi
		default:
			if math.IsNaN(n.F) {
				return false
			}
			t := math.Trunc(n.F)
			return t > -1 && t < math.Ldexp(1, int(bits))
		}
	}
	return false
}
