package ndskema

import (
	"github.com/reoring/ndskema/dtype"
	"github.com/reoring/ndskema/internal/column"
	eng "github.com/reoring/ndskema/internal/engine"
)

// buffer is the per-leaf accumulator the decoder drives: a typed builder for
// typed kinds, a Dynamic collector for passthrough kinds.
type buffer interface {
	append(src eng.TokenSource, tok eng.Token) error
	finish() (Value, error)
}

// newBuffer returns the accumulator for k. Tree buffers take exactly one
// input value; column buffers take one cell per row.
func newBuffer(k dtype.Kind, tree bool) buffer {
	switch k {
	case dtype.Int8:
		return typedBuffer(k, column.NumericConverter[int8](k), tree)
	case dtype.Int16:
		return typedBuffer(k, column.NumericConverter[int16](k), tree)
	case dtype.Int32:
		return typedBuffer(k, column.NumericConverter[int32](k), tree)
	case dtype.Int64:
		return typedBuffer(k, column.NumericConverter[int64](k), tree)
	case dtype.Uint8:
		return typedBuffer(k, column.NumericConverter[uint8](k), tree)
	case dtype.Uint16:
		return typedBuffer(k, column.NumericConverter[uint16](k), tree)
	case dtype.Uint32:
		return typedBuffer(k, column.NumericConverter[uint32](k), tree)
	case dtype.Uint64:
		return typedBuffer(k, column.NumericConverter[uint64](k), tree)
	case dtype.Float32:
		return typedBuffer(k, column.NumericConverter[float32](k), tree)
	case dtype.Float64:
		return typedBuffer(k, column.NumericConverter[float64](k), tree)
	case dtype.Bool:
		return typedBuffer(k, column.BoolConverter(), tree)
	}
	return &dynamicBuffer{kind: k, tree: tree}
}

type typed[T Element] struct {
	b    *column.Builder[T]
	tree bool
}

func typedBuffer[T Element](k dtype.Kind, conv column.Converter[T], tree bool) buffer {
	if tree {
		return &typed[T]{b: column.NewTree(k, conv), tree: true}
	}
	return &typed[T]{b: column.NewColumn(k, conv)}
}

func (t *typed[T]) append(src eng.TokenSource, tok eng.Token) error {
	if !t.tree && tok.Kind.IsScalar() {
		return t.b.Push(tok)
	}
	return t.b.Visit(src, tok)
}

func (t *typed[T]) finish() (Value, error) {
	data, shape, err := t.b.Finish()
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []T{}
	}
	return &Array[T]{Data: data, Shape: shape}, nil
}

type dynamicBuffer struct {
	kind dtype.Kind
	tree bool
	rows []Dynamic
}

func (d *dynamicBuffer) append(src eng.TokenSource, tok eng.Token) error {
	v, err := readPassthrough(d.kind, src, tok)
	if err != nil {
		return err
	}
	d.rows = append(d.rows, v)
	return nil
}

func (d *dynamicBuffer) finish() (Value, error) {
	if d.tree {
		if len(d.rows) == 0 {
			return Dynamic{}, nil
		}
		return d.rows[0], nil
	}
	return Dynamic{Kind: DynList, List: append([]Dynamic{}, d.rows...)}, nil
}
