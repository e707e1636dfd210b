package ndskema

import (
	"bytes"
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/reoring/ndskema/dtype"
	eng "github.com/reoring/ndskema/internal/engine"
)

// Decode walks the schema and the token stream in lockstep and returns the
// decoded value. The input is consumed exactly once. On error no value is
// returned; the error is Issues holding one Issue, or the context error when
// ctx is cancelled.
func Decode(ctx context.Context, s *Schema, src Source, opts ...DecodeOpt) (Value, error) {
	if s == nil {
		return nil, singleIssue(CodeParseError, "nil schema")
	}
	if s.err != nil {
		return nil, s.err
	}
	opt := lastOpt(opts)
	if opt.Strictness.OnDuplicateKey != Ignore || opt.MaxDepth > 0 || opt.MaxBytes > 0 {
		src = EnforceSourceWith(src, opt, func(iss Issue) {
			if iss.Code == CodeDuplicateKey && opt.Strictness.OnDuplicateKey == Warn {
				Logger().Warn("duplicate key in input", zap.String("path", iss.Path))
			}
		})
	}

	start := time.Now()
	d := &decoder{ctx: ctx, src: src}
	v, err := d.document(s)
	if err != nil {
		if iss, ok := AsIssues(err); ok && len(iss) > 0 {
			Logger().Debug("decode failed",
				zap.String("schema", s.kind.String()),
				zap.String("code", iss[0].Code),
				zap.String("path", iss[0].Path),
				zap.Int64("offset", iss[0].Offset))
		} else {
			Logger().Debug("decode aborted", zap.String("schema", s.kind.String()), zap.Error(err))
		}
		return nil, err
	}
	Logger().Debug("decode finished",
		zap.String("schema", s.kind.String()),
		zap.Duration("took", time.Since(start)))
	return v, nil
}

// DecodeBytes decodes JSON bytes through the current JSON driver.
func DecodeBytes(ctx context.Context, s *Schema, b []byte, opts ...DecodeOpt) (Value, error) {
	return Decode(ctx, s, JSONBytes(b), opts...)
}

// StreamDecode decodes JSON from an io.Reader.
// When MaxBytes is set it enforces the size cap up front, otherwise it
// streams tokens straight from the reader.
func StreamDecode(ctx context.Context, s *Schema, r io.Reader, opts ...DecodeOpt) (Value, error) {
	if opt := lastOpt(opts); opt.MaxBytes > 0 {
		lr := io.LimitReader(r, opt.MaxBytes+1)
		data, err := io.ReadAll(lr)
		if err != nil {
			return nil, singleIssue(CodeParseError, err.Error())
		}
		if int64(len(data)) > opt.MaxBytes {
			return nil, singleIssue(CodeTruncated, "max bytes exceeded")
		}
		return Decode(ctx, s, JSONReader(bytes.NewReader(data)), opts...)
	}
	return Decode(ctx, s, JSONReader(r), opts...)
}

// decoder holds the state of one decode call. Nothing in it outlives the call.
type decoder struct {
	ctx  context.Context
	src  Source
	path pathRef
}

func (d *decoder) fail(err error) error {
	return toIssues(err, d.path.Pointer(), d.src.Location())
}

func (d *decoder) next() (Token, error) {
	tok, err := eng.Next(d.src)
	if err != nil {
		return Token{}, d.fail(err)
	}
	return tok, nil
}

func (d *decoder) document(s *Schema) (Value, error) {
	if err := d.ctx.Err(); err != nil {
		return nil, err
	}
	tok, err := d.src.NextToken()
	if err == io.EOF {
		return nil, singleIssue(CodeTruncated, "empty input")
	}
	if err != nil {
		return nil, d.fail(err)
	}
	v, err := d.node(s, tok)
	if err != nil {
		return nil, err
	}
	if _, err := d.src.NextToken(); err != io.EOF {
		if err == nil {
			return nil, singleIssue(CodeParseError, "trailing data after document")
		}
		return nil, d.fail(err)
	}
	return v, nil
}

// node dispatches on the schema node kind.
func (d *decoder) node(s *Schema, tok Token) (Value, error) {
	switch s.kind {
	case NodeScalar:
		return d.leaf(s.dtype, tok)
	case NodeTuple:
		return d.tuple(s, tok)
	case NodeRows:
		return d.rows(s, tok)
	case NodeKeyedRows:
		return d.keyedRows(s, tok)
	default:
		return d.object(s, tok)
	}
}

// leaf decodes one value into a typed buffer or a passthrough value.
func (d *decoder) leaf(k dtype.Kind, tok Token) (Value, error) {
	if k.IsPassthrough() {
		v, err := readPassthrough(k, d.src, tok)
		if err != nil {
			return nil, d.fail(err)
		}
		return v, nil
	}
	b := newBuffer(k, true)
	if err := b.append(d.src, tok); err != nil {
		return nil, d.fail(err)
	}
	v, err := b.finish()
	if err != nil {
		return nil, d.fail(err)
	}
	return v, nil
}

func (d *decoder) expect(tok Token, want TokenKind) error {
	if tok.Kind == want {
		return nil
	}
	return d.fail(&mismatchError{expected: want.String(), got: tok.Kind.String()})
}

func (d *decoder) tuple(s *Schema, tok Token) (Value, error) {
	if err := d.expect(tok, eng.KindBeginArray); err != nil {
		return nil, err
	}
	out := make(List, 0, len(s.kinds))
	for i := 0; ; i++ {
		t, err := d.next()
		if err != nil {
			return nil, err
		}
		if t.Kind == eng.KindEndArray {
			if i < len(s.kinds) {
				return nil, d.exhausted(len(s.kinds), i)
			}
			return out, nil
		}
		if i >= len(s.kinds) {
			if err := eng.Skip(d.src, t); err != nil {
				return nil, d.fail(err)
			}
			continue
		}
		d.path.index(i)
		v, err := d.leaf(s.kinds[i], t)
		d.path.pop()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func (d *decoder) object(s *Schema, tok Token) (Value, error) {
	if err := d.expect(tok, eng.KindBeginObject); err != nil {
		return nil, err
	}
	vals := make([]Value, len(s.fields))
	seen := make([]bool, len(s.fields))
	for {
		if err := d.ctx.Err(); err != nil {
			return nil, err
		}
		kt, err := d.next()
		if err != nil {
			return nil, err
		}
		if kt.Kind == eng.KindEndObject {
			break
		}
		vt, err := d.next()
		if err != nil {
			return nil, err
		}
		i, ok := s.index[kt.String]
		if !ok {
			if err := eng.Skip(d.src, vt); err != nil {
				return nil, d.fail(err)
			}
			continue
		}
		d.path.field(kt.String)
		if seen[i] {
			err := d.duplicate(kt.String)
			d.path.pop()
			return nil, err
		}
		v, err := d.node(s.fields[i].Node, vt)
		d.path.pop()
		if err != nil {
			return nil, err
		}
		vals[i], seen[i] = v, true
	}
	if missing := missingNames(seen, func(i int) string { return s.fields[i].Name }); len(missing) > 0 {
		return nil, d.missing(missing)
	}
	m := newMap(len(s.fields))
	for i, f := range s.fields {
		m.set(f.Name, vals[i])
	}
	return m, nil
}

func missingNames(seen []bool, name func(int) string) []string {
	var out []string
	for i, ok := range seen {
		if !ok {
			out = append(out, name(i))
		}
	}
	return out
}

func (d *decoder) exhausted(expected, got int) error {
	iss := newIssue(CodeSequenceExhausted, d.path.Pointer(), map[string]any{"expected": expected, "got": got})
	iss.Offset = d.src.Location()
	return AppendIssues(nil, iss)
}

func (d *decoder) missing(names []string) error {
	iss := newIssue(CodeMissingKeys, d.path.Pointer(), map[string]any{"keys": names})
	iss.Offset = d.src.Location()
	return AppendIssues(nil, iss)
}

func (d *decoder) duplicate(key string) error {
	iss := newIssue(CodeDuplicateKey, d.path.Pointer(), map[string]any{"key": key})
	iss.Offset = d.src.Location()
	return AppendIssues(nil, iss)
}
