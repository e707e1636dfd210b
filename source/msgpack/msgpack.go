// Package msgpack provides a streaming token source over MessagePack input.
//
// Containers are framed by their declared lengths, so the source emits the
// same token sequence a JSON document of the same shape would. Map keys must
// be strings or integers; integer keys are rendered in decimal.
package msgpack

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	mp "github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	eng "github.com/reoring/ndskema/internal/engine"
)

type frame struct {
	isMap     bool
	remaining int  // elements (arrays) or entries (maps) not yet started
	wantKey   bool // maps only
}

type source struct {
	dec    *mp.Decoder
	stack  []frame
	offset func() int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for MessagePack.
// Byte offsets are unknown for readers.
func NewReader(r io.Reader) eng.TokenSource {
	return &source{dec: mp.NewDecoder(r), offset: func() int64 { return -1 }}
}

// NewBytes wraps a byte slice into an engine.TokenSource for MessagePack.
func NewBytes(b []byte) eng.TokenSource {
	r := bytes.NewReader(b)
	return &source{dec: mp.NewDecoder(r), offset: func() int64 { return r.Size() - int64(r.Len()) }}
}

func (s *source) Location() int64 { return s.offset() }

func (s *source) NextToken() (eng.Token, error) {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.remaining == 0 && (!top.isMap || top.wantKey) {
			s.stack = s.stack[:n-1]
			if top.isMap {
				return s.tok(eng.Token{Kind: eng.KindEndObject}), nil
			}
			return s.tok(eng.Token{Kind: eng.KindEndArray}), nil
		}
		if top.isMap && top.wantKey {
			top.wantKey = false
			return s.key()
		}
		top.remaining--
		if top.isMap {
			top.wantKey = true
		}
	}
	return s.value()
}

func (s *source) tok(t eng.Token) eng.Token {
	t.Offset = s.offset()
	return t
}

func (s *source) peek() (byte, error) {
	c, err := s.dec.PeekCode()
	if err == io.EOF && len(s.stack) > 0 {
		return 0, io.ErrUnexpectedEOF
	}
	return c, err
}

func (s *source) key() (eng.Token, error) {
	c, err := s.peek()
	if err != nil {
		return eng.Token{}, err
	}
	switch {
	case msgpcode.IsString(c) || msgpcode.IsBin(c):
		k, err := s.dec.DecodeString()
		if err != nil {
			return eng.Token{}, err
		}
		return s.tok(eng.Token{Kind: eng.KindKey, String: k}), nil
	case msgpcode.IsFixedNum(c) || isIntCode(c):
		t, err := s.number(c)
		if err != nil {
			return eng.Token{}, err
		}
		return s.tok(eng.Token{Kind: eng.KindKey, String: t.Number}), nil
	}
	return eng.Token{}, fmt.Errorf("msgpack: unsupported map key code 0x%02x", c)
}

func (s *source) value() (eng.Token, error) {
	c, err := s.peek()
	if err != nil {
		return eng.Token{}, err
	}
	switch {
	case c == msgpcode.Nil:
		if err := s.dec.DecodeNil(); err != nil {
			return eng.Token{}, err
		}
		return s.tok(eng.Token{Kind: eng.KindNull}), nil
	case c == msgpcode.True || c == msgpcode.False:
		b, err := s.dec.DecodeBool()
		if err != nil {
			return eng.Token{}, err
		}
		return s.tok(eng.Token{Kind: eng.KindBool, Bool: b}), nil
	case msgpcode.IsString(c) || msgpcode.IsBin(c):
		v, err := s.dec.DecodeString()
		if err != nil {
			return eng.Token{}, err
		}
		return s.tok(eng.Token{Kind: eng.KindString, String: v}), nil
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := s.dec.DecodeMapLen()
		if err != nil {
			return eng.Token{}, err
		}
		s.stack = append(s.stack, frame{isMap: true, remaining: n, wantKey: true})
		return s.tok(eng.Token{Kind: eng.KindBeginObject}), nil
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := s.dec.DecodeArrayLen()
		if err != nil {
			return eng.Token{}, err
		}
		s.stack = append(s.stack, frame{remaining: n})
		return s.tok(eng.Token{Kind: eng.KindBeginArray}), nil
	case msgpcode.IsFixedNum(c) || isIntCode(c) || c == msgpcode.Float || c == msgpcode.Double:
		t, err := s.number(c)
		if err != nil {
			return eng.Token{}, err
		}
		return s.tok(t), nil
	}
	return eng.Token{}, fmt.Errorf("msgpack: unsupported code 0x%02x", c)
}

func isIntCode(c byte) bool {
	switch c {
	case msgpcode.Int8, msgpcode.Int16, msgpcode.Int32, msgpcode.Int64,
		msgpcode.Uint8, msgpcode.Uint16, msgpcode.Uint32, msgpcode.Uint64:
		return true
	}
	return false
}

func (s *source) number(c byte) (eng.Token, error) {
	var text string
	switch c {
	case msgpcode.Uint64:
		u, err := s.dec.DecodeUint64()
		if err != nil {
			return eng.Token{}, err
		}
		text = strconv.FormatUint(u, 10)
	case msgpcode.Float:
		f, err := s.dec.DecodeFloat32()
		if err != nil {
			return eng.Token{}, err
		}
		text = formatFloat(float64(f), 32)
	case msgpcode.Double:
		f, err := s.dec.DecodeFloat64()
		if err != nil {
			return eng.Token{}, err
		}
		text = formatFloat(f, 64)
	default:
		i, err := s.dec.DecodeInt64()
		if err != nil {
			return eng.Token{}, err
		}
		text = strconv.FormatInt(i, 10)
	}
	return eng.Token{Kind: eng.KindNumber, Number: text}, nil
}

// formatFloat keeps a fraction or exponent on integral floats so the
// decoder still sees a float.
func formatFloat(f float64, bits int) string {
	text := strconv.FormatFloat(f, 'g', -1, bits)
	if !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) && !strings.ContainsAny(text, ".eE") {
		text += ".0"
	}
	return text
}
