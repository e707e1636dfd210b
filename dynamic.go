package ndskema

import (
	"strconv"

	"github.com/reoring/ndskema/dtype"
	"github.com/reoring/ndskema/internal/column"
	eng "github.com/reoring/ndskema/internal/engine"
)

// DynamicKind is the JSON-like kind of a Dynamic value.
type DynamicKind int

const (
	DynNull DynamicKind = iota
	DynBool
	DynNumber
	DynString
	DynList
	DynMap
)

func (k DynamicKind) String() string {
	switch k {
	case DynBool:
		return "bool"
	case DynNumber:
		return "number"
	case DynString:
		return "string"
	case DynList:
		return "list"
	case DynMap:
		return "map"
	}
	return "null"
}

// Number is a number kept in its source text.
type Number string

// Int64 parses the number as a signed integer.
func (n Number) Int64() (int64, error) { return strconv.ParseInt(string(n), 10, 64) }

// Uint64 parses the number as an unsigned integer.
func (n Number) Uint64() (uint64, error) { return strconv.ParseUint(string(n), 10, 64) }

// Float64 parses the number as a float.
func (n Number) Float64() (float64, error) { return strconv.ParseFloat(string(n), 64) }

// Dynamic is a passthrough value mirroring the input verbatim. Map entries
// keep input order in Keys; a key repeated in the input keeps its first
// position and its last value.
type Dynamic struct {
	Kind   DynamicKind
	Bool   bool
	Number Number
	Str    string
	List   []Dynamic
	Keys   []string
	Map    map[string]Dynamic
}

func (Dynamic) isValue() {}

// Interface converts the value to plain Go values: nil, bool, int64, uint64
// or float64, string, []any and map[string]any.
func (d Dynamic) Interface() any {
	switch d.Kind {
	case DynBool:
		return d.Bool
	case DynNumber:
		n, err := column.ParseNum(string(d.Number))
		if err != nil {
			return string(d.Number)
		}
		switch n.Kind {
		case column.NumInt:
			return n.I
		case column.NumUint:
			return n.U
		}
		return n.F
	case DynString:
		return d.Str
	case DynList:
		out := make([]any, len(d.List))
		for i, e := range d.List {
			out[i] = e.Interface()
		}
		return out
	case DynMap:
		out := make(map[string]any, len(d.Map))
		for k, v := range d.Map {
			out[k] = v.Interface()
		}
		return out
	}
	return nil
}

// passthroughAccepts reports whether a token may open a value of kind k,
// naming what was expected when it may not.
func passthroughAccepts(k dtype.Kind, tok eng.Token) (bool, string) {
	switch k {
	case dtype.Int:
		if tok.Kind != eng.KindNumber {
			return false, "integer"
		}
		n, err := column.ParseNum(tok.Number)
		return err == nil && n.IsInteger(), "integer"
	case dtype.Float:
		return tok.Kind == eng.KindNumber, "number"
	case dtype.Str:
		return tok.Kind == eng.KindString, "string"
	case dtype.PyBool:
		return tok.Kind == eng.KindBool, "bool"
	case dtype.List:
		return tok.Kind == eng.KindBeginArray, "sequence"
	case dtype.Dict:
		return tok.Kind == eng.KindBeginObject, "map"
	}
	return true, "any"
}

// readPassthrough checks tok against the passthrough kind and copies the value.
func readPassthrough(k dtype.Kind, src eng.TokenSource, tok eng.Token) (Dynamic, error) {
	if ok, want := passthroughAccepts(k, tok); !ok {
		got := tok.Kind.String()
		if tok.Kind == eng.KindNumber {
			got = "number " + tok.Number
		}
		return Dynamic{}, &mismatchError{expected: want, got: got}
	}
	return readDynamic(src, tok)
}

// readDynamic copies the value starting at tok.
func readDynamic(src eng.TokenSource, tok eng.Token) (Dynamic, error) {
	switch tok.Kind {
	case eng.KindNull:
		return Dynamic{Kind: DynNull}, nil
	case eng.KindBool:
		return Dynamic{Kind: DynBool, Bool: tok.Bool}, nil
	case eng.KindNumber:
		return Dynamic{Kind: DynNumber, Number: Number(tok.Number)}, nil
	case eng.KindString:
		return Dynamic{Kind: DynString, Str: tok.String}, nil
	case eng.KindBeginArray:
		d := Dynamic{Kind: DynList, List: []Dynamic{}}
		for {
			t, err := eng.Next(src)
			if err != nil {
				return Dynamic{}, err
			}
			if t.Kind == eng.KindEndArray {
				return d, nil
			}
			e, err := readDynamic(src, t)
			if err != nil {
				return Dynamic{}, err
			}
			d.List = append(d.List, e)
		}
	case eng.KindBeginObject:
		d := Dynamic{Kind: DynMap, Keys: []string{}, Map: map[string]Dynamic{}}
		for {
			t, err := eng.Next(src)
			if err != nil {
				return Dynamic{}, err
			}
			if t.Kind == eng.KindEndObject {
				return d, nil
			}
			vt, err := eng.Next(src)
			if err != nil {
				return Dynamic{}, err
			}
			v, err := readDynamic(src, vt)
			if err != nil {
				return Dynamic{}, err
			}
			if _, seen := d.Map[t.String]; !seen {
				d.Keys = append(d.Keys, t.String)
			}
			d.Map[t.String] = v
		}
	}
	return Dynamic{}, &mismatchError{expected: "value", got: tok.Kind.String()}
}
