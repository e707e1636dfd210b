package msgpack_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"reflect"
	"testing"

	mp "github.com/vmihailenco/msgpack/v5"

	"github.com/reoring/ndskema"
	"github.com/reoring/ndskema/dtype"
	msgpacksrc "github.com/reoring/ndskema/source/msgpack"
)

func encode(t *testing.T, v any) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := mp.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func drain(t *testing.T, src ndskema.Source) []ndskema.Token {
	t.Helper()
	var out []ndskema.Token
	for {
		tok, err := src.NextToken()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		out = append(out, tok)
	}
}

func TestTokens_MirrorDocumentShape(t *testing.T) {
	data := encode(t, map[string]any{
		"a": []any{1, 2.5, "x", true, nil},
		"b": map[string]any{},
	})
	toks := drain(t, msgpacksrc.NewBytes(data))
	want := []ndskema.TokenKind{
		ndskema.TokenBeginObject,
		ndskema.TokenKey, ndskema.TokenBeginArray,
		ndskema.TokenNumber, ndskema.TokenNumber, ndskema.TokenString, ndskema.TokenBool, ndskema.TokenNull,
		ndskema.TokenEndArray,
		ndskema.TokenKey, ndskema.TokenBeginObject, ndskema.TokenEndObject,
		ndskema.TokenEndObject,
	}
	got := make([]ndskema.TokenKind, len(toks))
	for i, tk := range toks {
		got[i] = tk.Kind
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	if toks[1].String != "a" || toks[3].Number != "1" || toks[4].Number != "2.5" || toks[5].String != "x" {
		t.Fatalf("unexpected payloads %+v", toks)
	}
	if toks[len(toks)-1].Offset != int64(len(data)) {
		t.Fatalf("final offset = %d, want %d", toks[len(toks)-1].Offset, len(data))
	}
}

func TestTokens_NumberText(t *testing.T) {
	toks := drain(t, msgpacksrc.NewBytes(encode(t, []any{uint64(math.MaxUint64), int64(-7), 3.0, float32(0.5)})))
	var nums []string
	for _, tk := range toks {
		if tk.Kind == ndskema.TokenNumber {
			nums = append(nums, tk.Number)
		}
	}
	want := []string{"18446744073709551615", "-7", "3.0", "0.5"}
	if !reflect.DeepEqual(nums, want) {
		t.Fatalf("numbers = %v, want %v", nums, want)
	}
}

func TestTokens_IntegerKeys(t *testing.T) {
	data, err := mp.Marshal(map[int]string{7: "seven"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	toks := drain(t, msgpacksrc.NewBytes(data))
	if toks[1].Kind != ndskema.TokenKey || toks[1].String != "7" {
		t.Fatalf("want key 7, got %+v", toks[1])
	}
}

func TestTokens_Truncated(t *testing.T) {
	data := encode(t, []any{1, 2, 3})
	src := msgpacksrc.NewBytes(data[:len(data)-1])
	var err error
	for err == nil {
		_, err = src.NextToken()
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("want ErrUnexpectedEOF, got %v", err)
	}
}

func TestDecode_KeyedRows(t *testing.T) {
	data := encode(t, map[string]any{"rows": []any{
		map[string]any{"x": 1, "y": 2.5},
		map[string]any{"x": 3, "y": 4.5, "z": "ignored"},
	}})
	s := ndskema.Object(ndskema.F("rows", ndskema.KeyedRows(
		ndskema.Col("x", dtype.Int32),
		ndskema.Col("y", dtype.Float32),
	)))
	v, err := ndskema.Decode(context.Background(), s, msgpacksrc.NewBytes(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rows, _ := v.(*ndskema.Map).Get("rows")
	x, _ := rows.(*ndskema.Map).Get("x")
	y, _ := rows.(*ndskema.Map).Get("y")
	xa, ok := ndskema.ArrayOf[int32](x)
	if !ok || !reflect.DeepEqual(xa.Data, []int32{1, 3}) {
		t.Fatalf("x = %#v", x)
	}
	ya, ok := ndskema.ArrayOf[float32](y)
	if !ok || !reflect.DeepEqual(ya.Data, []float32{2.5, 4.5}) || !reflect.DeepEqual(ya.Shape, []int{2}) {
		t.Fatalf("y = %#v", y)
	}
}

func TestDecode_IntegralFloatIsNotInt(t *testing.T) {
	_, err := ndskema.Decode(context.Background(), ndskema.Scalar(dtype.Int), msgpacksrc.NewBytes(encode(t, 3.0)))
	if !ndskema.HasCode(err, ndskema.CodeSchemaMismatch) {
		t.Fatalf("want schema_mismatch, got %v", err)
	}
}
