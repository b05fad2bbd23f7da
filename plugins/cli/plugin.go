// Package cli is a plugin that prints the banner and handles the version and usage flags of the node.
package cli

import (
	"fmt"
	"os"

	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/node"
	flag "github.com/spf13/pflag"
	"go.uber.org/dig"
)

const (
	// PluginName is the name of the CLI plugin.
	PluginName = "CLI"

	// AppName is the name of the node software.
	AppName = "tanglenode"
	// AppVersion is the version of the node software.
	AppVersion = "v0.1.0"
)

var (
	// Plugin is the plugin instance of the CLI plugin.
	Plugin *node.Plugin

	version = flag.BoolP("version", "v", false, "prints the version of the node software")
)

func init() {
	Plugin = node.NewPlugin(PluginName, nil, node.Enabled, configure)

	flag.Usage = printUsage

	Plugin.Events.Init.Attach(events.NewClosure(func(_ *node.Plugin, _ *dig.Container) {
		if *version {
			fmt.Println(AppName + " " + AppVersion)
			os.Exit(0)
		}
	}))
}

func configure(plugin *node.Plugin) {
	fmt.Printf("\n   %s %s\n   milestone consensus for the IOTA tangle\n\n", AppName, AppVersion)

	plugin.LogInfof("%s started, version %s", AppName, AppVersion)
}
