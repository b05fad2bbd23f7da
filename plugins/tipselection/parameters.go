package tipselection

import (
	"github.com/iotaledger/hive.go/configuration"
)

// ParametersDefinition contains the definition of the parameters used by the tip selection plugin.
type ParametersDefinition struct {
	// MaxDepth is the number of milestones below the latest solid milestone that a tip may reference.
	MaxDepth uint32 `default:"15" usage:"the number of milestones below the latest solid milestone that a tip may reference"`
	// BelowMaxDepthTransactionLimit is the number of transactions the max depth check analyzes before it gives up.
	BelowMaxDepthTransactionLimit int `default:"20000" usage:"the number of transactions the max depth check analyzes before it rejects a tip"`
}

// Parameters contains the parameters used by the tip selection plugin.
var Parameters = &ParametersDefinition{}

func init() {
	configuration.BindParameters(Parameters, "tipselection")
}
