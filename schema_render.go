package ndskema

import (
	"math"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/ndskema/dtype"
	"github.com/reoring/ndskema/jsonschema"
)

// String renders the schema in its declarative JSON form, the same form
// ParseSchemaJSON accepts.
func (s *Schema) String() string {
	var b strings.Builder
	s.render(&b)
	return b.String()
}

func (s *Schema) render(b *strings.Builder) {
	switch s.kind {
	case NodeScalar:
		quote(b, s.dtype.String())
	case NodeTuple:
		renderKinds(b, s.kinds)
	case NodeRows:
		b.WriteByte('[')
		renderKinds(b, s.kinds)
		b.WriteByte(']')
	case NodeKeyedRows:
		b.WriteString("[{")
		for i, c := range s.columns {
			if i > 0 {
				b.WriteByte(',')
			}
			quote(b, c.Name)
			b.WriteByte(':')
			quote(b, c.Kind.String())
		}
		b.WriteString("}]")
	case NodeObject:
		b.WriteByte('{')
		for i, f := range s.fields {
			if i > 0 {
				b.WriteByte(',')
			}
			quote(b, f.Name)
			b.WriteByte(':')
			f.Node.render(b)
		}
		b.WriteByte('}')
	}
}

func renderKinds(b *strings.Builder, kinds []dtype.Kind) {
	b.WriteByte('[')
	for i, k := range kinds {
		if i > 0 {
			b.WriteByte(',')
		}
		quote(b, k.String())
	}
	b.WriteByte(']')
}

func quote(b *strings.Builder, s string) {
	q, err := json.Marshal(s)
	if err != nil {
		// strings always marshal
		panic(err)
	}
	b.Write(q)
}

// JSONSchema projects the schema onto the JSON Schema of the input it
// accepts. Typed leaves accept a number (or boolean) or arbitrarily nested
// arrays of them; integer kinds carry their representable range and, since
// fractions are truncated, accept any number inside it.
func (s *Schema) JSONSchema() *jsonschema.Schema {
	js := s.jsonSchema()
	js.SchemaURI = jsonschema.Draft
	return js
}

func (s *Schema) jsonSchema() *jsonschema.Schema {
	switch s.kind {
	case NodeScalar:
		return leafJSONSchema(s.dtype)
	case NodeTuple:
		return tupleJSONSchema(s.kinds)
	case NodeRows:
		return &jsonschema.Schema{Type: "array", Items: tupleJSONSchema(s.kinds)}
	case NodeKeyedRows:
		row := &jsonschema.Schema{Type: "object", Properties: make(map[string]*jsonschema.Schema, len(s.columns))}
		for _, c := range s.columns {
			row.Properties[c.Name] = leafJSONSchema(c.Kind)
			row.Required = append(row.Required, c.Name)
		}
		return &jsonschema.Schema{Type: "array", Items: row}
	default:
		obj := &jsonschema.Schema{Type: "object", Properties: make(map[string]*jsonschema.Schema, len(s.fields))}
		for _, f := range s.fields {
			obj.Properties[f.Name] = f.Node.jsonSchema()
			obj.Required = append(obj.Required, f.Name)
		}
		return obj
	}
}

func tupleJSONSchema(kinds []dtype.Kind) *jsonschema.Schema {
	t := &jsonschema.Schema{Type: "array", MinItems: jsonschema.Int(len(kinds))}
	for _, k := range kinds {
		t.PrefixItems = append(t.PrefixItems, leafJSONSchema(k))
	}
	return t
}

func leafJSONSchema(k dtype.Kind) *jsonschema.Schema {
	switch k {
	case dtype.Int:
		return &jsonschema.Schema{Type: "integer"}
	case dtype.Float:
		return &jsonschema.Schema{Type: "number"}
	case dtype.Str:
		return &jsonschema.Schema{Type: "string"}
	case dtype.PyBool:
		return &jsonschema.Schema{Type: "boolean"}
	case dtype.List:
		return &jsonschema.Schema{Type: "array"}
	case dtype.Dict:
		return &jsonschema.Schema{Type: "object"}
	case dtype.Any:
		return &jsonschema.Schema{}
	}
	elem := elementJSONSchema(k)
	return &jsonschema.Schema{
		Description: k.String() + " scalar or nested array",
		AnyOf:       []*jsonschema.Schema{elem, {Type: "array"}},
	}
}

func elementJSONSchema(k dtype.Kind) *jsonschema.Schema {
	switch {
	case k == dtype.Bool:
		return &jsonschema.Schema{Type: "boolean"}
	case k == dtype.Float32:
		return &jsonschema.Schema{Type: "number", Minimum: jsonschema.Float(-math.MaxFloat32), Maximum: jsonschema.Float(math.MaxFloat32)}
	case k == dtype.Float64:
		return &jsonschema.Schema{Type: "number"}
	case k.IsSigned():
		bits := k.Bits()
		return &jsonschema.Schema{Type: "number", Minimum: jsonschema.Float(-math.Ldexp(1, bits-1)), Maximum: jsonschema.Float(math.Ldexp(1, bits-1) - 1)}
	default:
		return &jsonschema.Schema{Type: "number", Minimum: jsonschema.Float(0), Maximum: jsonschema.Float(math.Ldexp(1, k.Bits()) - 1)}
	}
}
