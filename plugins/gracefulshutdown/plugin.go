// Package gracefulshutdown is a plugin that shuts the node down on SIGINT and SIGTERM and kills it if the background
// workers do not terminate in time.
package gracefulshutdown

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/node"
)

// PluginName is the name of the graceful shutdown plugin.
const PluginName = "GracefulShutdown"

// Plugin is the plugin instance of the graceful shutdown plugin.
var Plugin *node.Plugin

func init() {
	Plugin = node.NewPlugin(PluginName, nil, node.Enabled, configure)
}

func configure(plugin *node.Plugin) {
	gracefulStop := make(chan os.Signal, 1)
	signal.Notify(gracefulStop, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-gracefulStop

		plugin.LogWarnf("Received shutdown request - waiting (max %s) to finish processing ...", Parameters.WaitToKillTime)

		go func() {
			start := time.Now()
			for x := range time.Tick(time.Second) {
				elapsed := x.Sub(start)

				if elapsed <= Parameters.WaitToKillTime {
					processList := ""
					runningBackgroundWorkers := daemon.GetRunningBackgroundWorkers()
					if len(runningBackgroundWorkers) >= 1 {
						processList = "(" + strings.Join(runningBackgroundWorkers, ", ") + ") "
					}
					plugin.LogWarnf("Received shutdown request - waiting (max %s) to finish processing %s...", (Parameters.WaitToKillTime - elapsed).Truncate(time.Second), processList)
				} else {
					plugin.LogError("Background processes did not terminate in time! Forcing shutdown ...")
					os.Exit(1)
				}
			}
		}()

		daemon.Shutdown()
	}()
}
