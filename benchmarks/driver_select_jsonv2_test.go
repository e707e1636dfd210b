//go:build goexperiment.jsonv2 && !gojson

package ndskema_test

import (
	"github.com/reoring/ndskema"
	drv "github.com/reoring/ndskema/source/jsonv2"
)

func init() {
	ndskema.SetJSONDriver(drv.Driver())
}
