// Package dtype enumerates the scalar kinds a schema leaf can declare.
//
// Typed kinds (Int8 ... Float64, Bool) decode into dense buffers with an
// inferred shape. Passthrough kinds (Int, Float, Str, PyBool, List, Dict, Any)
// decode into dynamic values that mirror the input document.
package dtype

import "fmt"

// Kind is one member of the closed set of leaf types.
type Kind int

const (
	Invalid Kind = iota

	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Bool // "bool_": boolean buffer

	Int    // "int": integer passthrough
	Float  // "float": number passthrough
	Str    // "str": string passthrough
	PyBool // "bool": boolean passthrough
	List   // "list": array passthrough
	Dict   // "dict": object passthrough
	Any    // "any": anything
)

var names = [...]string{
	Invalid: "invalid",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
	Bool:    "bool_",
	Int:     "int",
	Float:   "float",
	Str:     "str",
	PyBool:  "bool",
	List:    "list",
	Dict:    "dict",
	Any:     "any",
}

var byName = func() map[string]Kind {
	m := make(map[string]Kind, len(names))
	for k, n := range names {
		if Kind(k) == Invalid {
			continue
		}
		m[n] = Kind(k)
	}
	return m
}()

// UnsupportedError reports a dtype token outside the closed set.
type UnsupportedError struct {
	Token string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported dtype %q", e.Token)
}

// Parse maps a dtype token such as "int32" or "bool_" to its Kind.
func Parse(token string) (Kind, error) {
	if k, ok := byName[token]; ok {
		return k, nil
	}
	return Invalid, &UnsupportedError{Token: token}
}

// MustParse is Parse that panics on unknown tokens.
func MustParse(token string) Kind {
	k, err := Parse(token)
	if err != nil {
		panic(err)
	}
	return k
}

// String returns the dtype token.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(names) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return names[k]
}

// Valid reports whether k is a member of the closed set.
func (k Kind) Valid() bool { return k > Invalid && k <= Any }

// IsTyped reports whether k decodes into a dense buffer.
func (k Kind) IsTyped() bool { return k >= Int8 && k <= Bool }

// IsNumeric reports whether k is a typed integer or float kind.
func (k Kind) IsNumeric() bool { return k >= Int8 && k <= Float64 }

// IsInteger reports whether k is a typed integer kind.
func (k Kind) IsInteger() bool { return k >= Int8 && k <= Uint64 }

// IsSigned reports whether k is a typed signed integer kind.
func (k Kind) IsSigned() bool { return k >= Int8 && k <= Int64 }

// IsFloat reports whether k is a typed float kind.
func (k Kind) IsFloat() bool { return k == Float32 || k == Float64 }

// IsPassthrough reports whether k decodes into a dynamic value.
func (k Kind) IsPassthrough() bool { return k >= Int && k <= Any }

// Bits returns the storage width of typed numeric kinds, 0 otherwise.
func (k Kind) Bits() int {
	switch k {
	case Int8, Uint8:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32, Float32:
		return 32
	case Int64, Uint64, Float64:
		return 64
	}
	return 0
}

// All returns every valid kind in declaration order.
func All() []Kind {
	out := make([]Kind, 0, int(Any))
	for k := Int8; k <= Any; k++ {
		out = append(out, k)
	}
	return out
}
