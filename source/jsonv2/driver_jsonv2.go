//go:build goexperiment.jsonv2

package jsonv2

import (
	"bytes"
	"encoding/json/jsontext"
	"io"

	"github.com/reoring/ndskema"
	eng "github.com/reoring/ndskema/internal/engine"
)

// Driver returns an ndskema.JSONDriver backed by encoding/json/jsontext.
// Note: Requires building with GOEXPERIMENT=jsonv2.
func Driver() ndskema.JSONDriver { return driverV2{} }

type driverV2 struct{}

func (driverV2) NewReader(r io.Reader) ndskema.Source { return NewReader(r) }
func (driverV2) NewBytes(b []byte) ndskema.Source     { return NewBytes(b) }
func (driverV2) Name() string                         { return "encoding/json/jsontext" }

// source streams tokens straight from a jsontext.Decoder. Duplicate names are
// let through; the decoder and the enforcement wrapper report them.
type source struct {
	dec    *jsontext.Decoder
	frames eng.Frames
}

// NewReader wraps an io.Reader into a streaming token source.
func NewReader(r io.Reader) eng.TokenSource {
	return &source{dec: jsontext.NewDecoder(r, jsontext.AllowDuplicateNames(true))}
}

// NewBytes wraps a byte slice into a streaming token source.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.ReadToken()
	if err != nil {
		if err == io.EOF && s.frames.Depth() > 0 {
			return eng.Token{}, io.ErrUnexpectedEOF
		}
		return eng.Token{}, err
	}
	off := s.dec.InputOffset()
	switch tok.Kind() {
	case '{':
		s.frames.BeginObject()
		return eng.Token{Kind: eng.KindBeginObject, Offset: off}, nil
	case '}':
		s.frames.End()
		return eng.Token{Kind: eng.KindEndObject, Offset: off}, nil
	case '[':
		s.frames.BeginArray()
		return eng.Token{Kind: eng.KindBeginArray, Offset: off}, nil
	case ']':
		s.frames.End()
		return eng.Token{Kind: eng.KindEndArray, Offset: off}, nil
	case '"':
		return eng.Token{Kind: s.frames.StringKind(), String: tok.String(), Offset: off}, nil
	case 't', 'f':
		s.frames.Scalar()
		return eng.Token{Kind: eng.KindBool, Bool: tok.Bool(), Offset: off}, nil
	case '0':
		s.frames.Scalar()
		// String on a number token yields its raw text.
		return eng.Token{Kind: eng.KindNumber, Number: tok.String(), Offset: off}, nil
	}
	s.frames.Scalar()
	return eng.Token{Kind: eng.KindNull, Offset: off}, nil
}

func (s *source) Location() int64 { return s.dec.InputOffset() }
