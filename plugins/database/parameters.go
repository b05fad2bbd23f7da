package database

import (
	"time"

	"github.com/iotaledger/hive.go/configuration"
)

// ParametersDefinition contains the definition of the parameters used by the database plugin.
type ParametersDefinition struct {
	// Directory defines the directory of the database.
	Directory string `default:"mainnetdb" usage:"path to the database folder"`
	// InMemory defines whether to use an in-memory database.
	InMemory bool `default:"false" usage:"whether the database is only kept in memory and not persisted"`
	// Dirty overrides the dirty flag of the database.
	Dirty string `default:"" usage:"set the dirty flag of the database"`
	// GCInterval defines how often the garbage collection of the database runs while the node is running.
	GCInterval time.Duration `default:"10m" usage:"the interval of the database garbage collection, 0 disables it"`
}

// Parameters contains the parameters used by the database plugin.
var Parameters = &ParametersDefinition{}

func init() {
	configuration.BindParameters(Parameters, "database")
}
