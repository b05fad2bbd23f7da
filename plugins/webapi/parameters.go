package webapi

import (
	"github.com/iotaledger/hive.go/configuration"
)

// ParametersDefinition contains the definition of the parameters used by the web API plugin.
type ParametersDefinition struct {
	// BindAddress defines the bind address of the web API.
	BindAddress string `default:"127.0.0.1:8080" usage:"the bind address of the web API"`
}

// Parameters contains the parameters used by the web API plugin.
var Parameters = &ParametersDefinition{}

func init() {
	configuration.BindParameters(Parameters, "webapi")
}
