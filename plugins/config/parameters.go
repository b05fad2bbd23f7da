package config

import (
	"github.com/iotaledger/hive.go/configuration"
)

// ParametersDefinition contains the definition of the node wide configuration parameters.
type ParametersDefinition struct {
	// DisablePlugins contains the names of the plugins that shall be disabled.
	DisablePlugins []string `usage:"a list of plugins that shall be disabled"`
	// EnablePlugins contains the names of the plugins that shall be enabled.
	EnablePlugins []string `usage:"a list of plugins that shall be enabled"`
}

// Parameters contains the node wide configuration parameters.
var Parameters = &ParametersDefinition{}

func init() {
	configuration.BindParameters(Parameters, "node")
}
