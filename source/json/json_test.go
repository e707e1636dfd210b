package json

import (
	"io"
	"strings"
	"testing"

	eng "github.com/reoring/ndskema/internal/engine"
)

func TestSource_KeysAndValues(t *testing.T) {
	src := NewReader(strings.NewReader(`{"a":"x","b":[1,2.5e3,"y",{"c":null}],"d":true}`))
	want := []eng.Token{
		{Kind: eng.KindBeginObject},
		{Kind: eng.KindKey, String: "a"}, {Kind: eng.KindString, String: "x"},
		{Kind: eng.KindKey, String: "b"}, {Kind: eng.KindBeginArray},
		{Kind: eng.KindNumber, Number: "1"}, {Kind: eng.KindNumber, Number: "2.5e3"},
		{Kind: eng.KindString, String: "y"},
		{Kind: eng.KindBeginObject}, {Kind: eng.KindKey, String: "c"}, {Kind: eng.KindNull}, {Kind: eng.KindEndObject},
		{Kind: eng.KindEndArray},
		{Kind: eng.KindKey, String: "d"}, {Kind: eng.KindBool, Bool: true},
		{Kind: eng.KindEndObject},
	}
	for i, w := range want {
		got, err := src.NextToken()
		if err != nil {
			t.Fatalf("token %d: %v", i, err)
		}
		if got.Kind != w.Kind || got.String != w.String || got.Number != w.Number || got.Bool != w.Bool {
			t.Fatalf("token %d = %+v, want %+v", i, got, w)
		}
	}
	if _, err := src.NextToken(); err != io.EOF {
		t.Fatalf("want io.EOF, got %v", err)
	}
}

func TestSource_Offsets(t *testing.T) {
	src := NewBytes([]byte(`[10, 20]`))
	var last int64
	for {
		tok, err := src.NextToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if tok.Offset < last {
			t.Fatalf("offsets must not decrease: %d after %d", tok.Offset, last)
		}
		last = tok.Offset
	}
	if last != 8 || src.Location() != 8 {
		t.Fatalf("final offset = %d, location = %d", last, src.Location())
	}
}
