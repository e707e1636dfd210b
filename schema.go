package ndskema

import (
	"fmt"

	"github.com/reoring/ndskema/dtype"
)

// NodeKind identifies the shape of a schema node.
type NodeKind int

const (
	NodeScalar    NodeKind = iota // a single leaf kind
	NodeTuple                     // fixed-arity positional leaves
	NodeRows                      // sequence of positional rows, decoded per column
	NodeKeyedRows                 // sequence of named rows, decoded per column
	NodeObject                    // named fields, arbitrary nesting
)

func (k NodeKind) String() string {
	switch k {
	case NodeScalar:
		return "scalar"
	case NodeTuple:
		return "tuple"
	case NodeRows:
		return "rows"
	case NodeKeyedRows:
		return "keyed_rows"
	case NodeObject:
		return "object"
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// Column is one named column of a KeyedRows node.
type Column struct {
	Name string
	Kind dtype.Kind
}

// Field is one named member of an Object node.
type Field struct {
	Name string
	Node *Schema
}

// Schema is an immutable decode schema node. It is safe for concurrent use
// by any number of decodes once built.
//
// The builders below never panic; a malformed schema carries its error and
// Decode reports it as unsupported_type. Use Err to check eagerly.
type Schema struct {
	kind    NodeKind
	dtype   dtype.Kind
	kinds   []dtype.Kind
	columns []Column
	fields  []Field
	index   map[string]int
	err     error
}

// Scalar returns a leaf node.
func Scalar(k dtype.Kind) *Schema {
	s := &Schema{kind: NodeScalar, dtype: k}
	if !k.Valid() {
		s.err = unsupported("", k.String())
	}
	return s
}

// Tuple returns a fixed-arity positional node.
func Tuple(kinds ...dtype.Kind) *Schema {
	s := &Schema{kind: NodeTuple, kinds: append([]dtype.Kind(nil), kinds...)}
	s.err = checkKinds(kinds, "empty tuple")
	return s
}

// Rows returns a node decoding a sequence of positional rows into one column
// per declared kind.
func Rows(kinds ...dtype.Kind) *Schema {
	s := &Schema{kind: NodeRows, kinds: append([]dtype.Kind(nil), kinds...)}
	s.err = checkKinds(kinds, "empty row template")
	return s
}

// Col declares a KeyedRows column.
func Col(name string, k dtype.Kind) Column { return Column{Name: name, Kind: k} }

// KeyedRows returns a node decoding a sequence of objects into one column per
// declared name. Column order is declaration order.
func KeyedRows(cols ...Column) *Schema {
	s := &Schema{kind: NodeKeyedRows, columns: append([]Column(nil), cols...), index: make(map[string]int, len(cols))}
	if len(cols) == 0 {
		s.err = unsupported("", "empty row template")
		return s
	}
	for i, c := range cols {
		if !c.Kind.Valid() {
			s.err = unsupported("/"+pointerEscaper.Replace(c.Name), c.Kind.String())
			return s
		}
		if _, dup := s.index[c.Name]; dup {
			s.err = unsupported("/"+pointerEscaper.Replace(c.Name), "duplicate column "+c.Name)
			return s
		}
		s.index[c.Name] = i
	}
	return s
}

// F declares an Object field.
func F(name string, node *Schema) Field { return Field{Name: name, Node: node} }

// Object returns a node with named fields. Field order is declaration order
// and is the order of the decoded Map.
func Object(fields ...Field) *Schema {
	s := &Schema{kind: NodeObject, fields: append([]Field(nil), fields...), index: make(map[string]int, len(fields))}
	for i, f := range fields {
		at := "/" + pointerEscaper.Replace(f.Name)
		if f.Node == nil {
			s.err = unsupported(at, "nil node")
			return s
		}
		if f.Node.err != nil {
			s.err = prefixSchemaErr(at, f.Node.err)
			return s
		}
		if _, dup := s.index[f.Name]; dup {
			s.err = unsupported(at, "duplicate field "+f.Name)
			return s
		}
		s.index[f.Name] = i
	}
	return s
}

// Kind returns the node kind.
func (s *Schema) Kind() NodeKind { return s.kind }

// DType returns the leaf kind of a Scalar node.
func (s *Schema) DType() dtype.Kind { return s.dtype }

// Kinds returns the positional kinds of a Tuple or Rows node.
func (s *Schema) Kinds() []dtype.Kind { return append([]dtype.Kind(nil), s.kinds...) }

// Columns returns the columns of a KeyedRows node.
func (s *Schema) Columns() []Column { return append([]Column(nil), s.columns...) }

// Fields returns the fields of an Object node.
func (s *Schema) Fields() []Field { return append([]Field(nil), s.fields...) }

// Field looks up an Object field by name.
func (s *Schema) Field(name string) (*Schema, bool) {
	if s.kind != NodeObject {
		return nil, false
	}
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i].Node, true
}

// Err returns the construction error of the node, if any.
func (s *Schema) Err() error { return s.err }

func checkKinds(kinds []dtype.Kind, emptyMsg string) error {
	if len(kinds) == 0 {
		return unsupported("", emptyMsg)
	}
	for i, k := range kinds {
		if !k.Valid() {
			return unsupported(fmt.Sprintf("/%d", i), k.String())
		}
	}
	return nil
}

func unsupported(path, token string) Issues {
	return AppendIssues(nil, newIssue(CodeUnsupportedType, path, map[string]any{"type": token}))
}

// prefixSchemaErr rewrites the path of a nested construction error so it
// points into the enclosing schema document.
func prefixSchemaErr(prefix string, err error) error {
	iss, ok := AsIssues(err)
	if !ok || prefix == "" {
		return err
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		if it.Path == "/" {
			it.Path = prefix
		} else {
			it.Path = prefix + it.Path
		}
		out[i] = it
	}
	return out
}
