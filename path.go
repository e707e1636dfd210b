package ndskema

import (
	"strconv"
	"strings"
)

// pathRef tracks the JSON Pointer of the value being decoded. Segments are
// pushed on entry and popped on exit; the pointer string is only rendered
// when an issue needs it.
type pathRef struct {
	parts []string
}

func (p *pathRef) field(name string) {
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	p.parts = append(p.parts, pointerEscaper.Replace(name))
}

func (p *pathRef) index(i int) { p.parts = append(p.parts, strconv.Itoa(i)) }

func (p *pathRef) pop() {
	if n := len(p.parts); n > 0 {
		p.parts = p.parts[:n-1]
	}
}

func (p *pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// lastSegment returns the unescaped final segment of a JSON Pointer.
func lastSegment(p string) string {
	i := strings.LastIndexByte(p, '/')
	return pointerUnescaper.Replace(p[i+1:])
}
