// Package ndarrow hands decoded values to Apache Arrow.
//
// A dense buffer of shape [n, d1, ..., dk] becomes an Arrow array of length n
// whose type nests k FixedSizeList layers around the element type. Scalars
// become arrays of length one. Dynamic values are rendered as JSON text.
// Rows and KeyedRows results become records with one column per buffer.
package ndarrow

import (
	"fmt"
	"strconv"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
	json "github.com/goccy/go-json"

	"github.com/reoring/ndskema"
	"github.com/reoring/ndskema/dtype"
)

// ElementType returns the Arrow type of one element of kind k.
func ElementType(k dtype.Kind) (arrow.DataType, error) {
	switch k {
	case dtype.Int8:
		return arrow.PrimitiveTypes.Int8, nil
	case dtype.Int16:
		return arrow.PrimitiveTypes.Int16, nil
	case dtype.Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case dtype.Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case dtype.Uint8:
		return arrow.PrimitiveTypes.Uint8, nil
	case dtype.Uint16:
		return arrow.PrimitiveTypes.Uint16, nil
	case dtype.Uint32:
		return arrow.PrimitiveTypes.Uint32, nil
	case dtype.Uint64:
		return arrow.PrimitiveTypes.Uint64, nil
	case dtype.Float32:
		return arrow.PrimitiveTypes.Float32, nil
	case dtype.Float64:
		return arrow.PrimitiveTypes.Float64, nil
	case dtype.Bool:
		return arrow.FixedWidthTypes.Boolean, nil
	}
	if k.IsPassthrough() {
		return arrow.BinaryTypes.String, nil
	}
	return nil, fmt.Errorf("ndarrow: no arrow type for %s", k)
}

// ArrayType returns the Arrow type of a buffer of kind k and the given shape.
// The outermost dimension is the array length and does not appear in the type.
func ArrayType(k dtype.Kind, shape []int) (arrow.DataType, error) {
	dt, err := ElementType(k)
	if err != nil {
		return nil, err
	}
	for i := len(shape) - 1; i >= 1; i-- {
		dt = arrow.FixedSizeListOf(int32(shape[i]), dt)
	}
	return dt, nil
}

// FromValue converts a typed buffer or a Dynamic into an Arrow array. The
// caller owns the result and must Release it.
func FromValue(mem memory.Allocator, v ndskema.Value) (arrow.Array, error) {
	switch a := v.(type) {
	case *ndskema.Array[int8]:
		return fromArray(mem, a)
	case *ndskema.Array[int16]:
		return fromArray(mem, a)
	case *ndskema.Array[int32]:
		return fromArray(mem, a)
	case *ndskema.Array[int64]:
		return fromArray(mem, a)
	case *ndskema.Array[uint8]:
		return fromArray(mem, a)
	case *ndskema.Array[uint16]:
		return fromArray(mem, a)
	case *ndskema.Array[uint32]:
		return fromArray(mem, a)
	case *ndskema.Array[uint64]:
		return fromArray(mem, a)
	case *ndskema.Array[float32]:
		return fromArray(mem, a)
	case *ndskema.Array[float64]:
		return fromArray(mem, a)
	case *ndskema.Array[bool]:
		return fromArray(mem, a)
	case ndskema.Dynamic:
		return fromDynamic(mem, a)
	}
	return nil, fmt.Errorf("ndarrow: cannot convert %T to an arrow array", v)
}

func fromArray[T ndskema.Element](mem memory.Allocator, a *ndskema.Array[T]) (arrow.Array, error) {
	shape := a.Shape
	if shape == nil {
		shape = []int{1}
	}
	dt, err := ArrayType(a.DType(), shape)
	if err != nil {
		return nil, err
	}
	b := array.NewBuilder(mem, dt)
	defer b.Release()

	// FixedSizeList validity is independent of its children, so each layer
	// takes its slot count up front and the leaf takes the flat data.
	count := shape[0]
	leaf := b
	for _, d := range shape[1:] {
		fl := leaf.(*array.FixedSizeListBuilder)
		fl.Reserve(count)
		for i := 0; i < count; i++ {
			fl.Append(true)
		}
		count *= d
		leaf = fl.ValueBuilder()
	}
	if err := appendLeaf(leaf, a.Data); err != nil {
		return nil, err
	}
	return b.NewArray(), nil
}

func appendLeaf[T ndskema.Element](b array.Builder, data []T) error {
	switch lb := b.(type) {
	case *array.Int8Builder:
		lb.AppendValues(any(data).([]int8), nil)
	case *array.Int16Builder:
		lb.AppendValues(any(data).([]int16), nil)
	case *array.Int32Builder:
		lb.AppendValues(any(data).([]int32), nil)
	case *array.Int64Builder:
		lb.AppendValues(any(data).([]int64), nil)
	case *array.Uint8Builder:
		lb.AppendValues(any(data).([]uint8), nil)
	case *array.Uint16Builder:
		lb.AppendValues(any(data).([]uint16), nil)
	case *array.Uint32Builder:
		lb.AppendValues(any(data).([]uint32), nil)
	case *array.Uint64Builder:
		lb.AppendValues(any(data).([]uint64), nil)
	case *array.Float32Builder:
		lb.AppendValues(any(data).([]float32), nil)
	case *array.Float64Builder:
		lb.AppendValues(any(data).([]float64), nil)
	case *array.BooleanBuilder:
		lb.AppendValues(any(data).([]bool), nil)
	default:
		return fmt.Errorf("ndarrow: unexpected leaf builder %T", b)
	}
	return nil
}

// fromDynamic renders a Dynamic list column as one JSON string per row and
// any other Dynamic as a single JSON string.
func fromDynamic(mem memory.Allocator, d ndskema.Dynamic) (arrow.Array, error) {
	rows := []ndskema.Dynamic{d}
	if d.Kind == ndskema.DynList {
		rows = d.List
	}
	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.Reserve(len(rows))
	for _, r := range rows {
		if r.Kind == ndskema.DynNull {
			b.AppendNull()
			continue
		}
		text, err := json.Marshal(r.Interface())
		if err != nil {
			return nil, fmt.Errorf("ndarrow: render dynamic value: %w", err)
		}
		b.Append(string(text))
	}
	return b.NewArray(), nil
}

// FromColumns converts a Rows (List) or KeyedRows (*Map) result into a
// record. List columns are named by position. The caller owns the record
// and must Release it.
func FromColumns(mem memory.Allocator, v ndskema.Value) (arrow.Record, error) {
	var (
		names []string
		vals  []ndskema.Value
	)
	switch c := v.(type) {
	case ndskema.List:
		for i, e := range c {
			names = append(names, strconv.Itoa(i))
			vals = append(vals, e)
		}
	case *ndskema.Map:
		c.Range(func(k string, e ndskema.Value) bool {
			names = append(names, k)
			vals = append(vals, e)
			return true
		})
	default:
		return nil, fmt.Errorf("ndarrow: %T is not a column set", v)
	}

	cols := make([]arrow.Array, 0, len(vals))
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()
	fields := make([]arrow.Field, 0, len(vals))
	rows := -1
	for i, e := range vals {
		if d, ok := e.(ndskema.Dynamic); ok && d.Kind != ndskema.DynList {
			return nil, fmt.Errorf("ndarrow: column %q is not a column", names[i])
		}
		arr, err := FromValue(mem, e)
		if err != nil {
			return nil, err
		}
		cols = append(cols, arr)
		if rows >= 0 && arr.Len() != rows {
			return nil, fmt.Errorf("ndarrow: column %q has %d rows, want %d", names[i], arr.Len(), rows)
		}
		rows = arr.Len()
		fields = append(fields, arrow.Field{Name: names[i], Type: arr.DataType(), Nullable: true})
	}
	if rows < 0 {
		rows = 0
	}
	return array.NewRecord(arrow.NewSchema(fields, nil), cols, int64(rows)), nil
}
