package engine

import (
	"errors"
	"io"
	"testing"
)

type sliceSource struct {
	toks []Token
	i    int
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.i >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.i) }

func tk(k Kind) Token { return Token{Kind: k, Offset: -1} }

func key(s string) Token { return Token{Kind: KindKey, String: s, Offset: -1} }

func num(s string) Token { return Token{Kind: KindNumber, Number: s, Offset: -1} }

func src(toks ...Token) *sliceSource { return &sliceSource{toks: toks} }

func TestSkip_ConsumesNestedContainer(t *testing.T) {
	s := src(
		key("a"), tk(KindBeginArray), num("1"), tk(KindEndArray),
		tk(KindEndObject),
		num("9"),
	)
	if err := Skip(s, tk(KindBeginObject)); err != nil {
		t.Fatalf("skip: %v", err)
	}
	next, err := s.NextToken()
	if err != nil || next.Number != "9" {
		t.Fatalf("want next token 9, got %+v %v", next, err)
	}
}

func TestSkip_ScalarIsNoop(t *testing.T) {
	s := src(num("2"))
	if err := Skip(s, num("1")); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if s.i != 0 {
		t.Fatalf("scalar skip must not read ahead")
	}
}

func TestSkip_Truncated(t *testing.T) {
	s := src(num("1"))
	if err := Skip(s, tk(KindBeginArray)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("want ErrUnexpectedEOF, got %v", err)
	}
}

func TestFrames_ClassifiesKeys(t *testing.T) {
	var f Frames
	f.BeginObject()
	if f.StringKind() != KindKey {
		t.Fatalf("first string in object must be a key")
	}
	if f.StringKind() != KindString {
		t.Fatalf("second string in object must be a value")
	}
	if f.StringKind() != KindKey {
		t.Fatalf("third string in object must be a key")
	}
	f.BeginArray()
	if f.StringKind() != KindString {
		t.Fatalf("string in array must be a value")
	}
	f.End()
	if f.StringKind() != KindKey {
		t.Fatalf("closing a value container must re-arm key expectation")
	}
	if f.Depth() != 1 {
		t.Fatalf("depth = %d", f.Depth())
	}
}

func TestEnforce_MaxDepthPath(t *testing.T) {
	s := WrapWithEnforcement(src(
		tk(KindBeginObject), key("a"),
		tk(KindBeginObject), key("b"),
		tk(KindBeginObject), key("c"), num("1"),
		tk(KindEndObject), tk(KindEndObject), tk(KindEndObject),
	), EnforceOptions{MaxDepth: 2})
	var err error
	for err == nil {
		_, err = s.NextToken()
	}
	var ie IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("want IssueError, got %v", err)
	}
	if ie.Path != "/a/b" || ie.Code != "parse_error" {
		t.Fatalf("unexpected issue %+v", ie.SimpleIssue)
	}
}

func TestEnforce_DuplicateKey(t *testing.T) {
	toks := []Token{
		tk(KindBeginArray),
		tk(KindBeginObject), key("a"), num("1"), key("a"), num("2"), tk(KindEndObject),
		tk(KindEndArray),
	}
	t.Run("error", func(t *testing.T) {
		s := WrapWithEnforcement(src(toks...), EnforceOptions{OnDuplicate: DupError})
		var err error
		for err == nil {
			_, err = s.NextToken()
		}
		var ie IssueError
		if !errors.As(err, &ie) || ie.Code != "duplicate_key" || ie.Path != "/0/a" {
			t.Fatalf("unexpected %v", err)
		}
	})
	t.Run("warn", func(t *testing.T) {
		var got []SimpleIssue
		s := WrapWithEnforcement(src(toks...), EnforceOptions{
			OnDuplicate: DupWarn,
			IssueSink:   func(si SimpleIssue) { got = append(got, si) },
		})
		for {
			_, err := s.NextToken()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("warn must not fail: %v", err)
			}
		}
		if len(got) != 1 || got[0].Code != "duplicate_key" {
			t.Fatalf("want one warning, got %v", got)
		}
	})
}

func TestEnforce_MaxBytes(t *testing.T) {
	s := WrapWithEnforcement(src(tk(KindBeginArray), num("1"), num("2"), tk(KindEndArray)), EnforceOptions{MaxBytes: 2})
	var err error
	for err == nil {
		_, err = s.NextToken()
	}
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != "truncated" {
		t.Fatalf("want truncated, got %v", err)
	}
}
