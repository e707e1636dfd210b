package ndskema

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/reoring/ndskema/dtype"
	eng "github.com/reoring/ndskema/internal/engine"
)

// ParseSchema builds a Schema from a declarative Go value. Leaves are dtype
// tokens (string), dtype.Kind values or prebuilt *Schema nodes; a list of
// leaves is a Tuple, a list holding one list of leaves is Rows, a list holding
// one map of leaves is KeyedRows, and a map is an Object. Go maps carry no
// order, so map keys are taken in sorted order.
func ParseSchema(v any) (*Schema, error) {
	d, err := declFromAny(v, "")
	if err != nil {
		return nil, err
	}
	return buildSchema(d, "")
}

// ParseSchemaJSON builds a Schema from JSON text using the current JSON
// driver. Object key order is preserved.
func ParseSchemaJSON(b []byte) (*Schema, error) {
	src := JSONBytes(b)
	tok, err := src.NextToken()
	if err != nil {
		return nil, toIssues(schemaReadErr(err), "", src.Location())
	}
	d, err := declFromTokens(src, tok, "")
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); err != io.EOF {
		if err == nil {
			return nil, singleIssue(CodeParseError, "trailing data after schema")
		}
		return nil, toIssues(err, "", src.Location())
	}
	return buildSchema(d, "")
}

// ParseSchemaYAML builds a Schema from a YAML document. Mapping key order is
// preserved.
func ParseSchemaYAML(b []byte) (*Schema, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(b, &n); err != nil {
		return nil, AppendIssues(nil, Issue{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err, Offset: -1})
	}
	d, err := declFromYAML(&n, "")
	if err != nil {
		return nil, err
	}
	return buildSchema(d, "")
}

// MustParseSchema is like ParseSchema but panics on error.
func MustParseSchema(v any) *Schema {
	s, err := ParseSchema(v)
	if err != nil {
		panic(err)
	}
	return s
}

type declKind int

const (
	declLeaf declKind = iota
	declList
	declMap
)

// decl is the format-neutral form of a declarative schema document.
type decl struct {
	kind  declKind
	token string  // declLeaf
	node  *Schema // declLeaf given as a prebuilt node
	items []decl  // declList
	keys  []string
	vals  []decl // declMap, parallel to keys
}

func buildSchema(d decl, path string) (*Schema, error) {
	switch d.kind {
	case declLeaf:
		if d.node != nil {
			if d.node.err != nil {
				return nil, prefixSchemaErr(path, d.node.err)
			}
			return d.node, nil
		}
		k, err := dtype.Parse(d.token)
		if err != nil {
			return nil, unsupported(path, d.token)
		}
		return Scalar(k), nil
	case declList:
		if len(d.items) == 1 {
			switch inner := d.items[0]; inner.kind {
			case declList:
				kinds, err := leafKinds(inner.items, path+"/0")
				if err != nil {
					return nil, err
				}
				if len(kinds) == 0 {
					return nil, unsupported(path+"/0", "empty row template")
				}
				return Rows(kinds...), nil
			case declMap:
				if len(inner.keys) == 0 {
					return nil, unsupported(path+"/0", "empty row template")
				}
				kinds, err := leafKinds(inner.vals, "")
				if err != nil {
					return nil, prefixSchemaErr(path+"/0", remapIndexPath(err, inner.keys))
				}
				cols := make([]Column, len(kinds))
				for i, k := range kinds {
					cols[i] = Col(inner.keys[i], k)
				}
				s := KeyedRows(cols...)
				if s.err != nil {
					return nil, prefixSchemaErr(path+"/0", s.err)
				}
				return s, nil
			}
		}
		if len(d.items) == 0 {
			return nil, unsupported(path, "empty tuple")
		}
		kinds, err := leafKinds(d.items, path)
		if err != nil {
			return nil, err
		}
		return Tuple(kinds...), nil
	default:
		fields := make([]Field, len(d.keys))
		for i, name := range d.keys {
			node, err := buildSchema(d.vals[i], path+"/"+pointerEscaper.Replace(name))
			if err != nil {
				return nil, err
			}
			fields[i] = F(name, node)
		}
		s := Object(fields...)
		if s.err != nil {
			return nil, prefixSchemaErr(path, s.err)
		}
		return s, nil
	}
}

// leafKinds resolves positional leaves; containers are not allowed here.
func leafKinds(items []decl, path string) ([]dtype.Kind, error) {
	kinds := make([]dtype.Kind, len(items))
	for i, it := range items {
		at := path + "/" + strconv.Itoa(i)
		switch {
		case it.kind != declLeaf:
			return nil, unsupported(at, "nested structure")
		case it.node != nil:
			if it.node.kind != NodeScalar || it.node.err != nil {
				return nil, unsupported(at, "nested structure")
			}
			kinds[i] = it.node.dtype
		default:
			k, err := dtype.Parse(it.token)
			if err != nil {
				return nil, unsupported(at, it.token)
			}
			kinds[i] = k
		}
	}
	return kinds, nil
}

// remapIndexPath turns "/i" paths produced by leafKinds into "/name".
func remapIndexPath(err error, keys []string) error {
	iss, ok := AsIssues(err)
	if !ok {
		return err
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		if n, perr := strconv.Atoi(it.Path[1:]); perr == nil && n < len(keys) {
			it.Path = "/" + pointerEscaper.Replace(keys[n])
		}
		out[i] = it
	}
	return out
}

func declFromAny(v any, path string) (decl, error) {
	switch v := v.(type) {
	case string:
		return decl{kind: declLeaf, token: v}, nil
	case dtype.Kind:
		return decl{kind: declLeaf, node: Scalar(v)}, nil
	case *Schema:
		if v == nil {
			return decl{}, unsupported(path, "nil node")
		}
		return decl{kind: declLeaf, node: v}, nil
	case []string:
		d := decl{kind: declList, items: make([]decl, len(v))}
		for i, s := range v {
			d.items[i] = decl{kind: declLeaf, token: s}
		}
		return d, nil
	case []dtype.Kind:
		d := decl{kind: declList, items: make([]decl, len(v))}
		for i, k := range v {
			d.items[i] = decl{kind: declLeaf, node: Scalar(k)}
		}
		return d, nil
	case []any:
		d := decl{kind: declList, items: make([]decl, len(v))}
		for i, e := range v {
			it, err := declFromAny(e, path+"/"+strconv.Itoa(i))
			if err != nil {
				return decl{}, err
			}
			d.items[i] = it
		}
		return d, nil
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return declFromAny(m, path)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d := decl{kind: declMap, keys: keys, vals: make([]decl, len(keys))}
		for i, k := range keys {
			it, err := declFromAny(v[k], path+"/"+pointerEscaper.Replace(k))
			if err != nil {
				return decl{}, err
			}
			d.vals[i] = it
		}
		return d, nil
	}
	return decl{}, unsupported(path, fmt.Sprintf("%T", v))
}

func declFromTokens(src Source, tok Token, path string) (decl, error) {
	switch tok.Kind {
	case eng.KindString:
		return decl{kind: declLeaf, token: tok.String}, nil
	case eng.KindBeginArray:
		d := decl{kind: declList}
		for i := 0; ; i++ {
			t, err := eng.Next(src)
			if err != nil {
				return decl{}, toIssues(err, path, src.Location())
			}
			if t.Kind == eng.KindEndArray {
				return d, nil
			}
			it, err := declFromTokens(src, t, path+"/"+strconv.Itoa(i))
			if err != nil {
				return decl{}, err
			}
			d.items = append(d.items, it)
		}
	case eng.KindBeginObject:
		d := decl{kind: declMap}
		for {
			t, err := eng.Next(src)
			if err != nil {
				return decl{}, toIssues(err, path, src.Location())
			}
			if t.Kind == eng.KindEndObject {
				return d, nil
			}
			at := path + "/" + pointerEscaper.Replace(t.String)
			vt, err := eng.Next(src)
			if err != nil {
				return decl{}, toIssues(err, at, src.Location())
			}
			it, err := declFromTokens(src, vt, at)
			if err != nil {
				return decl{}, err
			}
			d.keys = append(d.keys, t.String)
			d.vals = append(d.vals, it)
		}
	}
	token := tok.Kind.String()
	switch tok.Kind {
	case eng.KindNumber:
		token = tok.Number
	case eng.KindBool:
		token = strconv.FormatBool(tok.Bool)
	}
	return decl{}, unsupported(path, token)
}

func declFromYAML(n *yaml.Node, path string) (decl, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return decl{}, unsupported(path, "empty document")
		}
		return declFromYAML(n.Content[0], path)
	case yaml.AliasNode:
		return declFromYAML(n.Alias, path)
	case yaml.ScalarNode:
		if n.ShortTag() != "!!str" {
			return decl{}, unsupported(path, n.Value)
		}
		return decl{kind: declLeaf, token: n.Value}, nil
	case yaml.SequenceNode:
		d := decl{kind: declList, items: make([]decl, len(n.Content))}
		for i, c := range n.Content {
			it, err := declFromYAML(c, path+"/"+strconv.Itoa(i))
			if err != nil {
				return decl{}, err
			}
			d.items[i] = it
		}
		return d, nil
	case yaml.MappingNode:
		d := decl{kind: declMap}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i].Value
			it, err := declFromYAML(n.Content[i+1], path+"/"+pointerEscaper.Replace(k))
			if err != nil {
				return decl{}, err
			}
			d.keys = append(d.keys, k)
			d.vals = append(d.vals, it)
		}
		return d, nil
	}
	return decl{}, unsupported(path, "unknown yaml node")
}

func schemaReadErr(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
