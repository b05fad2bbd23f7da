package milestonetracker

import (
	"time"

	"github.com/iotaledger/hive.go/configuration"
)

// ParametersDefinition contains the definition of the parameters used by the milestone tracker plugin.
type ParametersDefinition struct {
	// Coordinator is the address of the coordinator.
	Coordinator string `default:"KPWCHICGJZXKE9GSUDXZYUAPLHAKAHYHDXNPHENTERYMMBQOPSQIDENXKLKCEYCPVTZQLEEJVYJZV9BWU" usage:"the address of the coordinator"`
	// SecurityLevel is the security level of the coordinator signatures.
	SecurityLevel int `default:"1" usage:"the security level of the coordinator signatures"`
	// NumberOfKeysInMilestone is the depth of the Merkle tree of the coordinator.
	NumberOfKeysInMilestone int `default:"20" usage:"the depth of the Merkle tree of the coordinator"`
	// SignatureMode is the sponge the coordinator signs with.
	SignatureMode string `default:"CURLP27" usage:"the sponge the coordinator signs with: CURLP27, CURLP81 or KERL"`
	// StartIndex is the index of the milestone that the initial balances belong to.
	StartIndex uint32 `default:"0" usage:"the index of the milestone that the initial balances belong to"`
	// Testnet enables the testnet behavior of the milestone validation.
	Testnet bool `default:"false" usage:"start in testnet mode"`
	// DontValidateTestnetMilestoneSig disables the coordinator signature check in testnet mode.
	DontValidateTestnetMilestoneSig bool `default:"false" usage:"disable coordinator validation on testnet"`
	// RescanInterval is the pause between two runs of the milestone loops.
	RescanInterval time.Duration `default:"5s" usage:"the pause between two scans for new milestones"`
	// LedgerPollInterval is how often the solid milestone loop checks whether the ledger is initialized.
	LedgerPollInterval time.Duration `default:"1s" usage:"how often the solid milestone tracker checks whether the ledger is initialized"`
}

// Parameters contains the parameters used by the milestone tracker plugin.
var Parameters = &ParametersDefinition{}

func init() {
	configuration.BindParameters(Parameters, "milestone")
}
