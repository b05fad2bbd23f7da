package websocket

import (
	"github.com/iotaledger/hive.go/configuration"
)

// ParametersDefinition contains the definition of the parameters used by the websocket endpoint plugin.
type ParametersDefinition struct {
	// PublishTransactions defines whether newly stored transactions are streamed as well.
	PublishTransactions bool `default:"false" usage:"whether newly stored transactions are streamed to the websocket clients"`
}

// Parameters contains the parameters used by the websocket endpoint plugin.
var Parameters = &ParametersDefinition{}

func init() {
	configuration.BindParameters(Parameters, "webapi.websocket")
}
