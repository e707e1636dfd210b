package ndskema_test

import (
	"reflect"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/reoring/ndskema"
	"github.com/reoring/ndskema/dtype"
)

func TestParseSchema_Grammar(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind ndskema.NodeKind
	}{
		{"leaf", "float64", ndskema.NodeScalar},
		{"kind leaf", dtype.Uint16, ndskema.NodeScalar},
		{"tuple", []any{"int8", "str"}, ndskema.NodeTuple},
		{"string tuple", []string{"int8"}, ndskema.NodeTuple},
		{"rows", []any{[]any{"int32", "float32"}}, ndskema.NodeRows},
		{"keyed rows", []any{map[string]any{"x": "int32"}}, ndskema.NodeKeyedRows},
		{"object", map[string]any{"a": "int8", "b": map[string]any{"c": "any"}}, ndskema.NodeObject},
		{"empty object", map[string]any{}, ndskema.NodeObject},
		{"prebuilt node", map[string]any{"a": ndskema.Rows(dtype.Int8)}, ndskema.NodeObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ndskema.ParseSchema(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Kind() != tt.kind {
				t.Fatalf("kind = %v, want %v", s.Kind(), tt.kind)
			}
		})
	}
}

func TestParseSchema_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		in   any
		path string
	}{
		{"unknown token", "int128", "/"},
		{"nested unknown", map[string]any{"a": map[string]any{"b": "complex"}}, "/a/b"},
		{"empty tuple", []any{}, "/"},
		{"empty rows", []any{[]any{}}, "/0"},
		{"empty keyed rows", []any{map[string]any{}}, "/0"},
		{"container in tuple", []any{"int8", []any{"int8"}}, "/1"},
		{"nested rows", []any{[]any{[]any{"int8"}}}, "/0/0"},
		{"nested keyed column", []any{map[string]any{"x": []any{"int8"}}}, "/0/x"},
		{"bad kind in rows", []any{[]any{"int8", "nope"}}, "/0/1"},
		{"non string leaf", map[string]any{"a": 3}, "/a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ndskema.ParseSchema(tt.in)
			if is := issue(t, err, ndskema.CodeUnsupportedType); is.Path != tt.path {
				t.Fatalf("path = %s, want %s", is.Path, tt.path)
			}
		})
	}
}

func TestParseSchemaJSON_PreservesOrder(t *testing.T) {
	s := mustSchema(t, `{"z":"int8","a":[{"y":"float32","b":"int16"}],"m":[["uint8","str"]]}`)
	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.Name)
	}
	if !reflect.DeepEqual(names, []string{"z", "a", "m"}) {
		t.Fatalf("fields = %v", names)
	}
	rows, _ := s.Field("a")
	if cols := rows.Columns(); cols[0].Name != "y" || cols[1].Kind != dtype.Int16 {
		t.Fatalf("columns = %v", cols)
	}
	m, _ := s.Field("m")
	if !reflect.DeepEqual(m.Kinds(), []dtype.Kind{dtype.Uint8, dtype.Str}) {
		t.Fatalf("kinds = %v", m.Kinds())
	}
}

func TestParseSchemaJSON_Rejects(t *testing.T) {
	for _, in := range []string{`{"a":1}`, `{"a":"int8","a":"int16"}`, `[true]`, `"int8" "int8"`, `{"a":`} {
		if _, err := ndskema.ParseSchemaJSON([]byte(in)); err == nil {
			t.Fatalf("%s: want error", in)
		}
	}
}

func TestParseSchemaYAML(t *testing.T) {
	doc := []byte(`
points:
  - x: float64
    y: float64
label: str
pair: [int8, bool_]
base: &leaf int32
alias: *leaf
`)
	s, err := ndskema.ParseSchemaYAML(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.Name)
	}
	if !reflect.DeepEqual(names, []string{"points", "label", "pair", "base", "alias"}) {
		t.Fatalf("fields = %v", names)
	}
	if p, _ := s.Field("points"); p.Kind() != ndskema.NodeKeyedRows {
		t.Fatalf("points kind = %v", p.Kind())
	}
	if a, _ := s.Field("alias"); a.DType() != dtype.Int32 {
		t.Fatalf("alias = %v", a.DType())
	}

	if _, err := ndskema.ParseSchemaYAML([]byte("a: 3\n")); !ndskema.HasCode(err, ndskema.CodeUnsupportedType) {
		t.Fatalf("numeric yaml leaf: %v", err)
	}
	if _, err := ndskema.ParseSchemaYAML([]byte("a: [\n")); !ndskema.HasCode(err, ndskema.CodeParseError) {
		t.Fatalf("broken yaml: %v", err)
	}
}

func TestBuilders(t *testing.T) {
	s := ndskema.Object(
		ndskema.F("img", ndskema.Scalar(dtype.Uint8)),
		ndskema.F("meta", ndskema.Tuple(dtype.Str, dtype.Any)),
		ndskema.F("pts", ndskema.KeyedRows(ndskema.Col("x", dtype.Float32), ndskema.Col("y", dtype.Float32))),
	)
	if s.Err() != nil {
		t.Fatalf("unexpected error: %v", s.Err())
	}
	if got := s.String(); got != `{"img":"uint8","meta":["str","any"],"pts":[{"x":"float32","y":"float32"}]}` {
		t.Fatalf("String() = %s", got)
	}

	for name, bad := range map[string]*ndskema.Schema{
		"empty tuple":   ndskema.Tuple(),
		"empty rows":    ndskema.Rows(),
		"dup column":    ndskema.KeyedRows(ndskema.Col("x", dtype.Int8), ndskema.Col("x", dtype.Int8)),
		"dup field":     ndskema.Object(ndskema.F("a", ndskema.Scalar(dtype.Int8)), ndskema.F("a", ndskema.Scalar(dtype.Int8))),
		"nil field":     ndskema.Object(ndskema.F("a", nil)),
		"invalid kind":  ndskema.Rows(dtype.Kind(99)),
		"invalid child": ndskema.Object(ndskema.F("a", ndskema.Tuple())),
	} {
		if !ndskema.HasCode(bad.Err(), ndskema.CodeUnsupportedType) {
			t.Fatalf("%s: want unsupported_type, got %v", name, bad.Err())
		}
	}
}

func TestSchemaString_RoundTrip(t *testing.T) {
	for _, in := range []string{
		`"bool_"`,
		`["int8","uint64","dict"]`,
		`[["float32","list"]]`,
		`[{"b":"int16","a":"any"}]`,
		`{"z":{"y":[["int32"]]},"a":"float"}`,
	} {
		s := mustSchema(t, in)
		if s.String() != in {
			t.Fatalf("String() = %s, want %s", s.String(), in)
		}
		if again := mustSchema(t, s.String()); again.String() != in {
			t.Fatalf("round trip changed %s", in)
		}
	}
}

func TestJSONSchema_Projection(t *testing.T) {
	s := mustSchema(t, `{"a":"int8","t":["uint8","str"],"r":[{"x":"float32"}]}`)
	js := s.JSONSchema()
	if js.Type != "object" || !reflect.DeepEqual(js.Required, []string{"a", "t", "r"}) {
		t.Fatalf("root = %+v", js)
	}
	a := js.Properties["a"]
	elem := a.AnyOf[0]
	if *elem.Minimum != -128 || *elem.Maximum != 127 {
		t.Fatalf("int8 range = %v..%v", *elem.Minimum, *elem.Maximum)
	}
	tup := js.Properties["t"]
	if len(tup.PrefixItems) != 2 || *tup.MinItems != 2 || tup.PrefixItems[1].Type != "string" {
		t.Fatalf("tuple = %+v", tup)
	}
	r := js.Properties["r"]
	if r.Type != "array" || !reflect.DeepEqual(r.Items.Required, []string{"x"}) {
		t.Fatalf("keyed rows = %+v", r)
	}

	b, err := json.Marshal(js)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back["$schema"] == nil {
		t.Fatalf("missing $schema in %s", b)
	}
}
