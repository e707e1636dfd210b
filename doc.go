// Package ndskema decodes JSON-like token streams straight into typed,
// shape-annotated numeric buffers, guided by a declarative schema.
//
//   - A Schema describes the expected structure: scalar leaves, tuples, rows of
//     positional or named columns, and nested objects.
//   - Decode walks schema and input in lockstep, exactly once, and infers the
//     shape of every typed buffer on the fly.
//   - Rows and KeyedRows nodes are transposed while streaming: each input row is
//     pushed into one buffer per column.
//   - Shapes are checked at every level: each sequence at a depth must match
//     the length of the first one, so a jagged array is rejected even when its
//     element count equals the product of the first-child shape.
//   - Errors are Issues with a JSON Pointer, a stable code and a message.
//
// Design policy:
//   - Keep only public APIs in the root package; put token handling and buffer
//     building under internal/.
//   - Input formats plug in as Sources: JSON (encoding/json or go-json),
//     MessagePack and CBOR drivers live under source/.
//
// Typical usage:
//
//	s, err := ndskema.ParseSchemaJSON([]byte(`{"rows": [["int32", "float32"]]}`))
//	v, err := ndskema.DecodeBytes(ctx, s, data)
//	m := v.(*ndskema.Map)
//	cols, _ := m.Get("rows")
package ndskema
