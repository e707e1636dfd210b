package ndskema

import (
	"github.com/reoring/ndskema/dtype"
	"github.com/reoring/ndskema/internal/column"
)

// Value is a decoded value: an *Array of one element type, a Dynamic, a List
// (Tuple and Rows results) or a *Map (Object and KeyedRows results).
// The set of implementations is closed.
type Value interface {
	isValue()
}

// Element is the set of element types a typed buffer holds.
type Element interface {
	column.Element
}

// Array is a typed buffer. A nil Shape marks a scalar held in Data[0];
// otherwise Data is the row-major flattening of a dense array and the product
// of Shape equals len(Data).
type Array[T Element] struct {
	Data  []T
	Shape []int
}

func (*Array[T]) isValue() {}

// Buffer is the element-type independent view of an *Array.
type Buffer interface {
	Value
	DType() dtype.Kind
	IsScalar() bool
	Len() int
	Dims() []int
	At(i int) any
}

var _ Buffer = (*Array[float64])(nil)

// IsScalar reports whether the buffer holds a single scalar.
func (a *Array[T]) IsScalar() bool { return a.Shape == nil }

// Scalar returns the scalar value. It panics on a dense buffer.
func (a *Array[T]) Scalar() T {
	if a.Shape != nil {
		panic("ndskema: Scalar called on a dense array")
	}
	return a.Data[0]
}

// Len returns the number of elements.
func (a *Array[T]) Len() int { return len(a.Data) }

// Dims returns a copy of the shape; nil for a scalar.
func (a *Array[T]) Dims() []int {
	if a.Shape == nil {
		return nil
	}
	return append([]int{}, a.Shape...)
}

// At returns the i-th element of the flat buffer.
func (a *Array[T]) At(i int) any { return a.Data[i] }

// DType returns the element kind.
func (a *Array[T]) DType() dtype.Kind { return kindOf[T]() }

func kindOf[T Element]() dtype.Kind {
	var zero T
	switch any(zero).(type) {
	case int8:
		return dtype.Int8
	case int16:
		return dtype.Int16
	case int32:
		return dtype.Int32
	case int64:
		return dtype.Int64
	case uint8:
		return dtype.Uint8
	case uint16:
		return dtype.Uint16
	case uint32:
		return dtype.Uint32
	case uint64:
		return dtype.Uint64
	case float32:
		return dtype.Float32
	case float64:
		return dtype.Float64
	case bool:
		return dtype.Bool
	}
	return dtype.Invalid
}

// List is an ordered sequence of values.
type List []Value

func (List) isValue() {}

// Map is an ordered mapping from names to values. Entries follow the schema's
// declaration order.
type Map struct {
	keys  []string
	vals  []Value
	index map[string]int
}

func (*Map) isValue() {}

func newMap(n int) *Map {
	return &Map{keys: make([]string, 0, n), vals: make([]Value, 0, n), index: make(map[string]int, n)}
}

func (m *Map) set(key string, v Value) {
	if i, ok := m.index[key]; ok {
		m.vals[i] = v
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, v)
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.vals[i], true
}

// Keys returns the keys in order.
func (m *Map) Keys() []string { return append([]string(nil), m.keys...) }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Range calls fn for each entry in order until fn returns false.
func (m *Map) Range(fn func(key string, v Value) bool) {
	for i, k := range m.keys {
		if !fn(k, m.vals[i]) {
			return
		}
	}
}

// ArrayOf asserts v is a typed buffer of element type T.
func ArrayOf[T Element](v Value) (*Array[T], bool) {
	a, ok := v.(*Array[T])
	return a, ok
}
