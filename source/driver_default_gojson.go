// Package source switches the global JSON driver to go-json when imported
// for side effects.
package source

import (
	"github.com/reoring/ndskema"
	drvgojson "github.com/reoring/ndskema/source/gojson"
)

// init in a separate package to avoid import cycle in root. This sets go-json as default driver.
func init() { ndskema.SetJSONDriver(drvgojson.Driver()) }
