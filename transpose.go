package ndskema

import (
	eng "github.com/reoring/ndskema/internal/engine"
)

// rows pivots a sequence of positional rows into one buffer per declared
// kind. Each row is pushed into the columns as it is read.
func (d *decoder) rows(s *Schema, tok Token) (Value, error) {
	if err := d.expect(tok, eng.KindBeginArray); err != nil {
		return nil, err
	}
	cols := make([]buffer, len(s.kinds))
	for i, k := range s.kinds {
		cols[i] = newBuffer(k, false)
	}
	for r := 0; ; r++ {
		if err := d.ctx.Err(); err != nil {
			return nil, err
		}
		t, err := d.next()
		if err != nil {
			return nil, err
		}
		if t.Kind == eng.KindEndArray {
			break
		}
		d.path.index(r)
		if err := d.positionalRow(cols, t); err != nil {
			return nil, err
		}
		d.path.pop()
	}

	out := make(List, len(cols))
	for i, c := range cols {
		v, err := c.finish()
		if err != nil {
			d.path.index(i)
			return nil, d.fail(err)
		}
		out[i] = v
	}
	return out, nil
}

func (d *decoder) positionalRow(cols []buffer, tok Token) error {
	if err := d.expect(tok, eng.KindBeginArray); err != nil {
		return err
	}
	for i := 0; ; i++ {
		t, err := d.next()
		if err != nil {
			return err
		}
		if t.Kind == eng.KindEndArray {
			if i < len(cols) {
				return d.exhausted(len(cols), i)
			}
			return nil
		}
		if i >= len(cols) {
			if err := eng.Skip(d.src, t); err != nil {
				return d.fail(err)
			}
			continue
		}
		d.path.index(i)
		if err := cols[i].append(d.src, t); err != nil {
			return d.fail(err)
		}
		d.path.pop()
	}
}

// keyedRows pivots a sequence of objects into one buffer per declared
// column. Every row must carry every declared column; unknown keys are
// skipped and a declared key repeated within one row is an error.
func (d *decoder) keyedRows(s *Schema, tok Token) (Value, error) {
	if err := d.expect(tok, eng.KindBeginArray); err != nil {
		return nil, err
	}
	cols := make([]buffer, len(s.columns))
	for i, c := range s.columns {
		cols[i] = newBuffer(c.Kind, false)
	}
	seen := make([]bool, len(cols))
	for r := 0; ; r++ {
		if err := d.ctx.Err(); err != nil {
			return nil, err
		}
		t, err := d.next()
		if err != nil {
			return nil, err
		}
		if t.Kind == eng.KindEndArray {
			break
		}
		d.path.index(r)
		clear(seen)
		if err := d.keyedRow(s, cols, seen, t); err != nil {
			return nil, err
		}
		if missing := missingNames(seen, func(i int) string { return s.columns[i].Name }); len(missing) > 0 {
			return nil, d.missing(missing)
		}
		d.path.pop()
	}

	m := newMap(len(cols))
	for i, c := range cols {
		v, err := c.finish()
		if err != nil {
			d.path.field(s.columns[i].Name)
			return nil, d.fail(err)
		}
		m.set(s.columns[i].Name, v)
	}
	return m, nil
}

func (d *decoder) keyedRow(s *Schema, cols []buffer, seen []bool, tok Token) error {
	if err := d.expect(tok, eng.KindBeginObject); err != nil {
		return err
	}
	for {
		kt, err := d.next()
		if err != nil {
			return err
		}
		if kt.Kind == eng.KindEndObject {
			return nil
		}
		vt, err := d.next()
		if err != nil {
			return err
		}
		i, ok := s.index[kt.String]
		if !ok {
			if err := eng.Skip(d.src, vt); err != nil {
				return d.fail(err)
			}
			continue
		}
		d.path.field(kt.String)
		if seen[i] {
			return d.duplicate(kt.String)
		}
		if err := cols[i].append(d.src, vt); err != nil {
			return d.fail(err)
		}
		seen[i] = true
		d.path.pop()
	}
}
