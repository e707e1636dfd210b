package ndskema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/reoring/ndskema/i18n"
	"github.com/reoring/ndskema/internal/column"
	eng "github.com/reoring/ndskema/internal/engine"
)

// Issue codes.
const (
	CodeUnsupportedType   = "unsupported_type"
	CodeSchemaMismatch    = "schema_mismatch"
	CodeCastOverflow      = "cast_overflow"
	CodeIrregularShape    = "irregular_shape"
	CodeSequenceExhausted = "sequence_exhausted"
	CodeMissingKeys       = "missing_keys"
	CodeDuplicateKey      = "duplicate_key"
	CodeParseError        = "parse_error"
	CodeTruncated         = "truncated"
)

// Issue represents a single decode failure.
type Issue struct {
	Path    string // JSON Pointer into the input (or the schema document for unsupported_type).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input source (-1 when unknown).
	// Params carries structured parameters (e.g., {"expected":"sequence", "got":"map"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of errors that implements error. Decoding is
// fail-fast, so a failed decode returns exactly one Issue.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. cast_overflow at /a: could not cast 300 (int64) into int8
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			b.WriteString(": ")
			b.WriteString(it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is/As can reach them.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries an Issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// newIssue builds an Issue whose message is rendered from the i18n catalogue.
func newIssue(code, path string, params map[string]any) Issue {
	data := make(map[string]string, len(params))
	for k, v := range params {
		switch v := v.(type) {
		case []string:
			data[k] = "[" + strings.Join(v, ", ") + "]"
		default:
			data[k] = fmt.Sprint(v)
		}
	}
	return Issue{Path: normalizePath(path), Code: code, Message: i18n.T(code, data), Offset: -1, Params: params}
}

func singleIssue(code, msg string) Issues {
	return AppendIssues(nil, Issue{Path: "/", Code: code, Message: msg, Offset: -1})
}

// mismatchError is raised when the structural kind of the input disagrees
// with the schema node visiting it.
type mismatchError struct {
	expected string
	got      string
}

func (e *mismatchError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.expected, e.got)
}

// toIssues maps errors raised while decoding into Issues. Context errors are
// returned unchanged.
func toIssues(err error, path string, offset int64) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}

	var (
		ie  eng.IssueError
		ce  *column.CastError
		se  *column.ShapeError
		te  *column.TypeError
		me  *mismatchError
		iss Issue
	)
	switch {
	case errors.As(err, &ie):
		iss = Issue{Path: normalizePath(ie.Path), Code: ie.Code, Message: ie.Message, Offset: -1}
	case errors.As(err, &ce):
		iss = newIssue(CodeCastOverflow, path, map[string]any{"value": ce.Value, "from": ce.From, "to": ce.To.String()})
	case errors.As(err, &se):
		iss = newIssue(CodeIrregularShape, path, map[string]any{"dtype": se.Kind.String(), "expected": se.Expected, "total": se.Total})
	case errors.As(err, &te):
		iss = newIssue(CodeSchemaMismatch, path, map[string]any{"expected": te.Kind.String(), "got": te.Got})
	case errors.As(err, &me):
		iss = newIssue(CodeSchemaMismatch, path, map[string]any{"expected": me.expected, "got": me.got})
	case errors.Is(err, io.ErrUnexpectedEOF):
		iss = Issue{Path: normalizePath(path), Code: CodeTruncated, Message: "unexpected end of input"}
	default:
		iss = Issue{Path: normalizePath(path), Code: CodeParseError, Message: err.Error()}
	}
	iss.Cause = err
	iss.Offset = offset
	return AppendIssues(nil, iss)
}
