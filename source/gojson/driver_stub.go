//go:build !gojson

package gojson

import (
	"io"

	"github.com/reoring/ndskema"
	jsonsrc "github.com/reoring/ndskema/source/json"
)

// Driver returns a stub driver description when gojson tag is not enabled.
// It delegates to the encoding/json-based source directly to avoid recursion.
func Driver() ndskema.JSONDriver { return stub{} }

type stub struct{}

func (stub) NewReader(r io.Reader) ndskema.Source { return jsonsrc.NewReader(r) }
func (stub) NewBytes(b []byte) ndskema.Source     { return jsonsrc.NewBytes(b) }
func (stub) Name() string                         { return "encoding/json (gojson stub)" }
