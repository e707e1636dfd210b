package engine

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

// Frames tracks container nesting for drivers whose underlying tokenizer
// does not distinguish object keys from string values (encoding/json and
// go-json both report keys as plain strings).
type Frames struct {
	stack []frame
}

// BeginObject records a '{'.
func (f *Frames) BeginObject() {
	f.stack = append(f.stack, frame{kind: kindObject, expectingKey: true})
}

// BeginArray records a '['.
func (f *Frames) BeginArray() {
	f.stack = append(f.stack, frame{kind: kindArray})
}

// End records a '}' or ']'; the closed container counts as a value of its parent.
func (f *Frames) End() {
	if n := len(f.stack); n > 0 {
		f.stack = f.stack[:n-1]
	}
	f.valueDone()
}

// StringKind classifies a string token as a key or a string value.
func (f *Frames) StringKind() Kind {
	if n := len(f.stack); n > 0 {
		top := &f.stack[n-1]
		if top.kind == kindObject && top.expectingKey {
			top.expectingKey = false
			return KindKey
		}
	}
	f.valueDone()
	return KindString
}

// Scalar records a non-string scalar value.
func (f *Frames) Scalar() { f.valueDone() }

// Depth returns the number of open containers.
func (f *Frames) Depth() int { return len(f.stack) }

func (f *Frames) valueDone() {
	if n := len(f.stack); n > 0 {
		top := &f.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}
