// Package cbor provides a token source over CBOR input.
//
// The document is decoded up front and replayed as tokens; map keys are
// replayed in sorted order so the token stream is deterministic.
package cbor

import (
	"fmt"
	"io"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"

	eng "github.com/reoring/ndskema/internal/engine"
)

var decMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		DupMapKey:      cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

type source struct {
	tokens []eng.Token
	idx    int
	err    error
}

// NewReader reads all of r and returns its tokens.
func NewReader(r io.Reader) eng.TokenSource {
	data, err := io.ReadAll(r)
	if err != nil {
		return &source{err: err}
	}
	return NewBytes(data)
}

// NewBytes decodes b and returns its tokens. Decode errors surface on the
// first NextToken call.
func NewBytes(b []byte) eng.TokenSource {
	var v any
	if err := decMode.Unmarshal(b, &v); err != nil {
		return &source{err: err}
	}
	buf := make([]eng.Token, 0, 64)
	buf, err := appendValueTokens(buf, v)
	if err != nil {
		return &source{err: err}
	}
	return &source{tokens: buf}
}

func (s *source) NextToken() (eng.Token, error) {
	if s.err != nil {
		return eng.Token{}, s.err
	}
	if s.idx >= len(s.tokens) {
		return eng.Token{}, io.EOF
	}
	t := s.tokens[s.idx]
	s.idx++
	return t, nil
}

func (s *source) Location() int64 { return -1 }

func appendValueTokens(out []eng.Token, v any) ([]eng.Token, error) {
	var err error
	switch x := v.(type) {
	case map[string]any:
		out = append(out, eng.Token{Kind: eng.KindBeginObject, Offset: -1})
		// stable order for determinism
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, eng.Token{Kind: eng.KindKey, String: k, Offset: -1})
			if out, err = appendValueTokens(out, x[k]); err != nil {
				return nil, err
			}
		}
		out = append(out, eng.Token{Kind: eng.KindEndObject, Offset: -1})
	case []any:
		out = append(out, eng.Token{Kind: eng.KindBeginArray, Offset: -1})
		for _, e := range x {
			if out, err = appendValueTokens(out, e); err != nil {
				return nil, err
			}
		}
		out = append(out, eng.Token{Kind: eng.KindEndArray, Offset: -1})
	case string:
		out = append(out, eng.Token{Kind: eng.KindString, String: x, Offset: -1})
	case []byte:
		out = append(out, eng.Token{Kind: eng.KindString, String: string(x), Offset: -1})
	case bool:
		out = append(out, eng.Token{Kind: eng.KindBool, Bool: x, Offset: -1})
	case nil:
		out = append(out, eng.Token{Kind: eng.KindNull, Offset: -1})
	case uint64:
		out = append(out, eng.Token{Kind: eng.KindNumber, Number: strconv.FormatUint(x, 10), Offset: -1})
	case int64:
		out = append(out, eng.Token{Kind: eng.KindNumber, Number: strconv.FormatInt(x, 10), Offset: -1})
	case big.Int:
		out = append(out, eng.Token{Kind: eng.KindNumber, Number: x.String(), Offset: -1})
	case *big.Int:
		out = append(out, eng.Token{Kind: eng.KindNumber, Number: x.String(), Offset: -1})
	case float64:
		out = append(out, eng.Token{Kind: eng.KindNumber, Number: formatFloat(x), Offset: -1})
	case float32:
		out = append(out, eng.Token{Kind: eng.KindNumber, Number: formatFloat(float64(x)), Offset: -1})
	default:
		return nil, fmt.Errorf("cbor: unsupported value of type %T", v)
	}
	return out, nil
}

// formatFloat keeps a fraction or exponent on integral floats so the
// decoder still sees a float.
func formatFloat(f float64) string {
	text := strconv.FormatFloat(f, 'g', -1, 64)
	if !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) && !strings.ContainsAny(text, ".eE") {
		text += ".0"
	}
	return text
}
