// Package config is a plugin that loads the configuration file and the command line flags of the node.
package config

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/configuration"
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/node"
	flag "github.com/spf13/pflag"
	"go.uber.org/dig"
)

// PluginName is the name of the config plugin.
const PluginName = "Config"

var (
	// Plugin is the plugin instance of the config plugin.
	Plugin *node.Plugin

	// flags
	configFile          = flag.StringP("config", "c", "config.json", "file path of the config file")
	skipConfigAvailable = flag.Bool("skip-config", false, "skip config file availability check")
)

func init() {
	Plugin = node.NewPlugin(PluginName, nil, node.Enabled)

	Plugin.Events.Init.Attach(events.NewClosure(func(_ *node.Plugin, container *dig.Container) {
		config, err := fetch()
		if err != nil {
			// the global logger is not initialized at this stage
			fmt.Println(err.Error())
			fmt.Println("no config file present, terminating the node. please use the provided config.default.json to create a config.json.")
			// the daemon is not running yet, so we just exit
			os.Exit(1)
		}

		if err := container.Provide(func() *configuration.Configuration {
			return config
		}); err != nil {
			Plugin.Panic(err)
		}
	}))
}

// fetch parses the command line, reads the config file and updates all bound parameters. Values given on the command
// line take precedence over the values of the config file.
func fetch() (*configuration.Configuration, error) {
	flag.Parse()

	config := configuration.New()
	if err := config.LoadFile(*configFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) || !*skipConfigAvailable {
			return nil, errors.Errorf("failed to load config file %s: %w", *configFile, err)
		}
	}
	if err := config.LoadFlagSet(flag.CommandLine); err != nil {
		return nil, errors.Errorf("failed to load command line flags: %w", err)
	}
	config.UpdateBoundParameters()

	for _, pluginName := range Parameters.DisablePlugins {
		node.DisabledPlugins[node.GetPluginIdentifier(pluginName)] = true
	}
	for _, pluginName := range Parameters.EnablePlugins {
		node.EnabledPlugins[node.GetPluginIdentifier(pluginName)] = true
	}

	return config, nil
}
