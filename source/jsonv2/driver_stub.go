//go:build !goexperiment.jsonv2

package jsonv2

import (
	"io"

	"github.com/reoring/ndskema"
	jsonsrc "github.com/reoring/ndskema/source/json"
)

// Driver returns a fallback driver when the jsonv2 experiment is not enabled.
// It delegates to the default encoding/json-based source.
func Driver() ndskema.JSONDriver { return driverStub{} }

type driverStub struct{}

func (driverStub) NewReader(r io.Reader) ndskema.Source { return jsonsrc.NewReader(r) }
func (driverStub) NewBytes(b []byte) ndskema.Source     { return jsonsrc.NewBytes(b) }
func (driverStub) Name() string                         { return "encoding/json (jsonv2 stub)" }
