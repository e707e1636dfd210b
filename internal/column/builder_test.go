package column

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/reoring/ndskema/dtype"
	eng "github.com/reoring/ndskema/internal/engine"
)

// lexSource turns a tiny bracket/number notation into tokens so tests can
// describe nested arrays compactly: "[[1,2],[3,4]]", "true", "x" (string).
type lexSource struct {
	toks []eng.Token
	i    int
}

func lex(s string) *lexSource {
	var toks []eng.Token
	for _, f := range strings.FieldsFunc(strings.NewReplacer("[", " [ ", "]", " ] ", ",", " ").Replace(s), func(r rune) bool { return r == ' ' }) {
		switch f {
		case "[":
			toks = append(toks, eng.Token{Kind: eng.KindBeginArray})
		case "]":
			toks = append(toks, eng.Token{Kind: eng.KindEndArray})
		case "true", "false":
			toks = append(toks, eng.Token{Kind: eng.KindBool, Bool: f == "true"})
		case "null":
			toks = append(toks, eng.Token{Kind: eng.KindNull})
		case "{":
			toks = append(toks, eng.Token{Kind: eng.KindBeginObject})
		default:
			if f[0] == '-' || (f[0] >= '0' && f[0] <= '9') {
				toks = append(toks, eng.Token{Kind: eng.KindNumber, Number: f})
			} else {
				toks = append(toks, eng.Token{Kind: eng.KindString, String: f})
			}
		}
	}
	return &lexSource{toks: toks}
}

func (s *lexSource) NextToken() (eng.Token, error) {
	if s.i >= len(s.toks) {
		return eng.Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

func (s *lexSource) Location() int64 { return -1 }

func visitInt32(t *testing.T, in string) ([]int32, []int, error) {
	t.Helper()
	b := NewTree(dtype.Int32, NumericConverter[int32](dtype.Int32))
	src := lex(in)
	first, err := src.NextToken()
	if err != nil {
		t.Fatalf("empty input")
	}
	if err := b.Visit(src, first); err != nil {
		return nil, nil, err
	}
	return b.Finish()
}

func TestTree_ShapeInference(t *testing.T) {
	tests := []struct {
		in    string
		data  []int32
		shape []int
	}{
		{"5", []int32{5}, nil},
		{"[1,2,3]", []int32{1, 2, 3}, []int{3}},
		{"[[1,2],[3,4],[5,6]]", []int32{1, 2, 3, 4, 5, 6}, []int{3, 2}},
		{"[[[1],[2]],[[3],[4]]]", []int32{1, 2, 3, 4}, []int{2, 2, 1}},
		{"[]", nil, []int{0}},
		{"[[],[]]", nil, []int{2, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			data, shape, err := visitInt32(t, tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(data) != len(tt.data) || (len(data) > 0 && !reflect.DeepEqual(data, tt.data)) {
				t.Fatalf("data = %v, want %v", data, tt.data)
			}
			if !reflect.DeepEqual(shape, tt.shape) {
				t.Fatalf("shape = %v, want %v", shape, tt.shape)
			}
			p := 1
			for _, d := range shape {
				p *= d
			}
			if shape != nil && p != len(data) {
				t.Fatalf("product(shape) = %d, len = %d", p, len(data))
			}
		})
	}
}

func TestTree_IrregularShape(t *testing.T) {
	tests := []struct {
		in       string
		expected []int
		total    int
	}{
		{"[[1,2],[3]]", []int{2, 2}, 3},
		{"[[1,2],[3,4,5],[6]]", []int{3, 2}, 6},
		{"[1,[2,3]]", []int{2}, 3},
		{"[[1],2]", []int{2, 1}, 2},
		{"[[],[1]]", []int{2, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, _, err := visitInt32(t, tt.in)
			var se *ShapeError
			if !errors.As(err, &se) {
				t.Fatalf("want ShapeError, got %v", err)
			}
			if !reflect.DeepEqual(se.Expected, tt.expected) || se.Total != tt.total {
				t.Fatalf("got expected=%v total=%d, want %v %d", se.Expected, se.Total, tt.expected, tt.total)
			}
		})
	}
}

func TestTree_TypeErrors(t *testing.T) {
	for _, in := range []string{"abc", "null", "[1,true]", "{"} {
		t.Run(in, func(t *testing.T) {
			_, _, err := visitInt32(t, in)
			var te *TypeError
			if !errors.As(err, &te) {
				t.Fatalf("want TypeError, got %v", err)
			}
		})
	}
}

func TestTree_Truncated(t *testing.T) {
	_, _, err := visitInt32(t, "[[1,2]")
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("want ErrUnexpectedEOF, got %v", err)
	}
}

func TestBool_Tree(t *testing.T) {
	b := NewTree(dtype.Bool, BoolConverter())
	src := lex("[[false,true],[true,false]]")
	first, _ := src.NextToken()
	if err := b.Visit(src, first); err != nil {
		t.Fatalf("visit: %v", err)
	}
	data, shape, err := b.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !reflect.DeepEqual(data, []bool{false, true, true, false}) || !reflect.DeepEqual(shape, []int{2, 2}) {
		t.Fatalf("got %v %v", data, shape)
	}

	nb := NewTree(dtype.Bool, BoolConverter())
	if err := nb.Visit(nil, eng.Token{Kind: eng.KindNumber, Number: "1"}); err == nil {
		t.Fatalf("bool buffer must reject numbers")
	}
}

func TestColumn_Push(t *testing.T) {
	b := NewColumn(dtype.Float32, NumericConverter[float32](dtype.Float32))
	for _, n := range []string{"2.5", "4.5", "7"} {
		if err := b.Push(eng.Token{Kind: eng.KindNumber, Number: n}); err != nil {
			t.Fatalf("push %s: %v", n, err)
		}
	}
	data, shape, err := b.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !reflect.DeepEqual(data, []float32{2.5, 4.5, 7}) || !reflect.DeepEqual(shape, []int{3}) {
		t.Fatalf("got %v %v", data, shape)
	}
	if err := b.Push(eng.Token{Kind: eng.KindBeginArray}); err == nil {
		t.Fatalf("push must reject containers")
	}
}

func TestColumn_EmptyIsOneDimensional(t *testing.T) {
	b := NewColumn(dtype.Int8, NumericConverter[int8](dtype.Int8))
	data, shape, err := b.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if len(data) != 0 || !reflect.DeepEqual(shape, []int{0}) {
		t.Fatalf("got %v %v", data, shape)
	}
}

func TestColumn_NestedCells(t *testing.T) {
	b := NewColumn(dtype.Uint8, NumericConverter[uint8](dtype.Uint8))
	for _, cell := range []string{"[1,2]", "[3,4]", "[5,6]"} {
		src := lex(cell)
		first, _ := src.NextToken()
		if err := b.AppendCell(src, first); err != nil {
			t.Fatalf("append %s: %v", cell, err)
		}
	}
	if b.Rows() != 3 || b.Len() != 6 || b.Kind() != dtype.Uint8 {
		t.Fatalf("rows=%d len=%d kind=%v", b.Rows(), b.Len(), b.Kind())
	}
	data, shape, err := b.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !reflect.DeepEqual(data, []uint8{1, 2, 3, 4, 5, 6}) || !reflect.DeepEqual(shape, []int{3, 2}) {
		t.Fatalf("got %v %v", data, shape)
	}
}

func TestColumn_MixedCellsAreIrregular(t *testing.T) {
	b := NewColumn(dtype.Int64, NumericConverter[int64](dtype.Int64))
	_ = b.Push(eng.Token{Kind: eng.KindNumber, Number: "1"})
	src := lex("[2,3]")
	first, _ := src.NextToken()
	_ = b.AppendCell(src, first)
	_, _, err := b.Finish()
	var se *ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("want ShapeError, got %v", err)
	}
}
