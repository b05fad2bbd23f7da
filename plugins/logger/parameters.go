package logger

import (
	"github.com/iotaledger/hive.go/configuration"
)

// ParametersDefinition contains the definition of the parameters read by the global logger.
type ParametersDefinition struct {
	// Level is the minimum enabled logging level.
	Level string `default:"info" usage:"the minimum enabled logging level"`
	// DisableCaller stops annotating logs with the calling function's file name and line number.
	DisableCaller bool `default:"true" usage:"stop annotating logs with the calling function's file name and line number"`
	// DisableStacktrace disables automatic stacktrace capturing.
	DisableStacktrace bool `default:"false" usage:"disable automatic stacktrace capturing"`
	// Encoding sets the logger's encoding.
	Encoding string `default:"console" usage:"sets the logger's encoding. valid values are 'json' and 'console'"`
	// OutputPaths is a list of URLs, file paths or stdout/stderr to write logging output to.
	OutputPaths []string `default:"stdout,tanglenode.log" usage:"a list of URLs, file paths or stdout/stderr to write logging output to"`
	// DisableEvents prevents log messages from being raced as events.
	DisableEvents bool `default:"true" usage:"prevents log messages from being raced as events"`
}

// Parameters contains the parameters read by the global logger.
var Parameters = &ParametersDefinition{}

func init() {
	configuration.BindParameters(Parameters, "logger")
}
