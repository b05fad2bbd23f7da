package main

import (
	"github.com/iotaledger/hive.go/node"

	"github.com/iotaledger/tanglenode/plugins"
)

func main() {
	node.Run(
		plugins.Core,
		plugins.WebAPI,
	)
}
