// Package source installs the go-json driver as the default JSON driver when
// imported for side effects:
//
//	import _ "github.com/reoring/skema/source"
package source

import (
	"github.com/reoring/skema"
	drvgojson "github.com/reoring/skema/source/gojson"
)

func init() { skema.SetJSONDriver(drvgojson.Driver()) }
