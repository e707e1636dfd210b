//go:build gojson

package ndskema_test

import (
	"github.com/reoring/ndskema"
	drv "github.com/reoring/ndskema/source/gojson"
)

func init() {
	ndskema.SetJSONDriver(drv.Driver())
}
