package engine

import (
	"fmt"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// String names the structural kind a token opens, as used in mismatch messages.
func (k Kind) String() string {
	switch k {
	case KindBeginObject, KindEndObject:
		return "map"
	case KindBeginArray, KindEndArray:
		return "sequence"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsScalar reports whether the token carries a complete value by itself.
func (k Kind) IsScalar() bool {
	return k == KindString || k == KindNumber || k == KindBool || k == KindNull
}

// Token represents a streaming token with approximate input offset.
// Numbers are kept as their textual form; consumers pick the conversion.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// Skip consumes the remainder of the value whose first token is first.
// Scalars are already complete; containers are drained to their matching end.
func Skip(src TokenSource, first Token) error {
	switch first.Kind {
	case KindBeginObject, KindBeginArray:
	case KindEndObject, KindEndArray, KindKey:
		return io.ErrUnexpectedEOF
	default:
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := src.NextToken()
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		switch tok.Kind {
		case KindBeginObject, KindBeginArray:
			depth++
		case KindEndObject, KindEndArray:
			depth--
		}
	}
	return nil
}

// Next reads a token and turns a premature io.EOF into io.ErrUnexpectedEOF.
// It is meant for reads inside a container, where the document cannot end.
func Next(src TokenSource) (Token, error) {
	tok, err := src.NextToken()
	if err == io.EOF {
		return Token{}, io.ErrUnexpectedEOF
	}
	return tok, err
}
