package zeromq

import (
	"github.com/iotaledger/hive.go/configuration"
)

// ParametersDefinition contains the definition of the parameters used by the zeromq plugin.
type ParametersDefinition struct {
	// BindAddress is the address the PUB socket binds to.
	BindAddress string `default:"tcp://*:5556" usage:"the bind address of the ZeroMQ publisher"`
	// WorkerCount is the number of workers that write to the socket.
	WorkerCount int `default:"1" usage:"the number of workers that write to the socket"`
	// QueueSize is the number of notifications that may wait for a worker before they are dropped.
	QueueSize int `default:"1000" usage:"the number of notifications that may wait before they are dropped"`
	// PublishTransactions enables the "tx" topic.
	PublishTransactions bool `default:"true" usage:"publish every stored transaction"`
}

// Parameters contains the parameters used by the zeromq plugin.
var Parameters = &ParametersDefinition{}

func init() {
	configuration.BindParameters(Parameters, "zmq")
}
