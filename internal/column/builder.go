// Package column accumulates scalar tokens into one flat, growable buffer per
// dtype while inferring the buffer's rectangular shape.
//
// A Builder works in one of two modes. A tree builder visits exactly one
// input value (a scalar or arbitrarily nested arrays) and yields either a
// scalar or a dense buffer whose shape mirrors the nesting. A column builder
// receives one cell per row; its outermost dimension is the row count and
// each cell contributes the inner dimensions.
//
// Shape inference is single pass: the first sequence completed at every
// nesting depth fixes that depth's length, and every later sequence at the
// same depth is compared against it. Any disagreement, including a scalar
// where a sequence was seen before (or the reverse), marks the buffer
// irregular; Finish then reports the shape inferred from the first elements
// together with the element count actually collected.
//
// This is stricter than checking only that the element count equals the
// product of the first-child shape: [[1,2],[3,4,5],[6]] holds 6 elements and
// matches shape [3,2] by count, but is still rejected as irregular.
package column

import (
	"github.com/reoring/ndskema/dtype"
	eng "github.com/reoring/ndskema/internal/engine"
)

// Builder is a growable typed buffer plus a separately tracked shape.
type Builder[T Element] struct {
	kind   dtype.Kind
	conv   Converter[T]
	column bool

	data    []T
	levels  []int // first observed length per depth, -1 while unknown
	rank    int   // depth of scalars, -1 until the first scalar
	deepest int   // deepest depth holding a sequence, -1 if none
	rows    int
	visited bool

	irregular bool
}

// NewTree returns a builder for a single input value.
func NewTree[T Element](k dtype.Kind, conv Converter[T]) *Builder[T] {
	return &Builder[T]{kind: k, conv: conv, rank: -1, deepest: -1}
}

// NewColumn returns a builder fed one cell per row.
func NewColumn[T Element](k dtype.Kind, conv Converter[T]) *Builder[T] {
	return &Builder[T]{kind: k, conv: conv, column: true, rank: -1, deepest: -1}
}

// Kind returns the dtype the builder converts into.
func (b *Builder[T]) Kind() dtype.Kind { return b.kind }

// Len returns the number of elements collected so far.
func (b *Builder[T]) Len() int { return len(b.data) }

// Rows returns the number of cells appended to a column builder.
func (b *Builder[T]) Rows() int { return b.rows }

// Visit consumes the value starting at first. Tree builders accept one call.
func (b *Builder[T]) Visit(src eng.TokenSource, first eng.Token) error {
	if b.column {
		return b.AppendCell(src, first)
	}
	b.visited = true
	return b.visit(src, first, 0)
}

// AppendCell consumes one row's cell starting at first.
func (b *Builder[T]) AppendCell(src eng.TokenSource, first eng.Token) error {
	if err := b.visit(src, first, 1); err != nil {
		return err
	}
	b.rows++
	return nil
}

// Push appends one scalar cell to a 1-D column.
func (b *Builder[T]) Push(tok eng.Token) error {
	if !tok.Kind.IsScalar() {
		return &TypeError{Kind: b.kind, Got: tok.Kind.String()}
	}
	return b.AppendCell(nil, tok)
}

func (b *Builder[T]) visit(src eng.TokenSource, tok eng.Token, depth int) error {
	switch tok.Kind {
	case eng.KindBeginArray:
		if b.rank >= 0 && depth >= b.rank {
			b.irregular = true
		}
		if depth > b.deepest {
			b.deepest = depth
		}
		n := 0
		for {
			t, err := eng.Next(src)
			if err != nil {
				return err
			}
			if t.Kind == eng.KindEndArray {
				break
			}
			if err := b.visit(src, t, depth+1); err != nil {
				return err
			}
			n++
		}
		b.observe(depth, n)
		return nil
	case eng.KindNumber, eng.KindBool, eng.KindString, eng.KindNull:
		v, err := b.conv(tok)
		if err != nil {
			return err
		}
		b.data = append(b.data, v)
		b.leaf(depth)
		return nil
	default:
		return &TypeError{Kind: b.kind, Got: tok.Kind.String()}
	}
}

func (b *Builder[T]) leaf(depth int) {
	if b.rank < 0 {
		b.rank = depth
		if b.deepest >= depth {
			b.irregular = true
		}
		return
	}
	if b.rank != depth {
		b.irregular = true
	}
}

func (b *Builder[T]) observe(depth, n int) {
	for len(b.levels) <= depth {
		b.levels = append(b.levels, -1)
	}
	switch b.levels[depth] {
	case -1:
		b.levels[depth] = n
	case n:
	default:
		b.irregular = true
	}
}

// Finish returns the flat buffer and its shape, outermost dimension first.
// A nil shape means the tree builder saw a single scalar.
func (b *Builder[T]) Finish() ([]T, []int, error) {
	if b.column {
		if len(b.levels) == 0 {
			b.levels = append(b.levels, -1)
		}
		b.levels[0] = b.rows
	} else if !b.visited {
		return nil, nil, &TypeError{Kind: b.kind, Got: "nothing"}
	}

	rank := b.rank
	if rank < 0 {
		rank = b.deepest + 1
		if b.column && rank < 1 {
			rank = 1
		}
	}
	if rank == 0 {
		return b.data, nil, nil
	}

	shape := make([]int, rank)
	product := 1
	for i := range shape {
		if i < len(b.levels) && b.levels[i] >= 0 {
			shape[i] = b.levels[i]
		}
		product *= shape[i]
	}
	if b.irregular || product != len(b.data) {
		return nil, nil, &ShapeError{Kind: b.kind, Expected: shape, Total: len(b.data)}
	}
	return b.data, shape, nil
}
