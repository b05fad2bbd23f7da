package ledger

import (
	"github.com/iotaledger/hive.go/configuration"
)

// ParametersDefinition contains the definition of the parameters used by the ledger plugin.
type ParametersDefinition struct {
	// SnapshotFile is the path of the file with the initial balances.
	SnapshotFile string `default:"snapshot.txt" usage:"path to the file with the initial balances, one ADDRESS;BALANCE per line"`
}

// Parameters contains the parameters used by the ledger plugin.
var Parameters = &ParametersDefinition{}

func init() {
	configuration.BindParameters(Parameters, "ledger")
}
