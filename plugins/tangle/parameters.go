package tangle

import (
	"time"

	"github.com/iotaledger/hive.go/configuration"
)

// ParametersDefinition contains the definition of the parameters used by the tangle plugin.
type ParametersDefinition struct {
	// TransactionCacheSize defines how many decoded transactions are kept in memory.
	TransactionCacheSize int `default:"50000" usage:"the number of decoded transactions that are kept in memory"`
	// MaxAnalyzedTransactions defines how many transactions a single solidity check analyzes before it gives up.
	MaxAnalyzedTransactions int `default:"50000" usage:"the maximum number of transactions analyzed by a single solidity check, 0 disables the limit"`
	// SolidifierWorkerCount defines the number of concurrent solidity checks of incoming transactions.
	SolidifierWorkerCount int `default:"4" usage:"the number of concurrent solidity checks of incoming transactions"`
	// SolidifierQueueSize defines how many solidity checks may wait for a worker.
	SolidifierQueueSize int `default:"10000" usage:"the number of solidity checks that may wait for a worker"`
	// RequestTTL defines how long a missing transaction stays requested without being reported missing again.
	RequestTTL time.Duration `default:"1m" usage:"how long a missing transaction stays requested without being reported missing again"`
}

// Parameters contains the parameters used by the tangle plugin.
var Parameters = &ParametersDefinition{}

func init() {
	configuration.BindParameters(Parameters, "tangle")
}
