// Package webapi is a plugin that runs the HTTP server of the web API. The endpoints are registered by the plugins
// in its subpackages.
package webapi

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/node"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/dig"

	"github.com/iotaledger/tanglenode/packages/shutdown"
)

// PluginName is the name of the web API plugin.
const PluginName = "WebAPI"

type dependencies struct {
	dig.In

	Server *echo.Echo
}

var (
	// Plugin is the plugin instance of the web API plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)

	plugLog *logger.Logger
)

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure, run)

	Plugin.Events.Init.Attach(events.NewClosure(func(_ *node.Plugin, container *dig.Container) {
		if err := container.Provide(newServer); err != nil {
			Plugin.Panic(err)
		}
	}))
}

func newServer() *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true
	server.Logger.SetLevel(log.OFF)
	server.Use(middleware.Recover())

	return server
}

func configure(plugin *node.Plugin) {
	plugLog = logger.NewLogger(plugin.Name)

	deps.Server.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		message := err.Error()

		var httpError *echo.HTTPError
		if errors.As(err, &httpError) {
			code = httpError.Code
			if msg, ok := httpError.Message.(string); ok {
				message = msg
			}
		}

		if c.Response().Committed {
			return
		}
		if err := c.JSON(code, ErrorResponse{Error: message}); err != nil {
			plugLog.Warnf("failed to send error response: %s", err)
		}
	}
}

func run(plugin *node.Plugin) {
	plugin.LogInfof("Starting %s ...", PluginName)
	if err := daemon.BackgroundWorker("WebAPI Server", worker, shutdown.PriorityWebAPI); err != nil {
		plugin.Panicf("Error starting as daemon: %s", err)
	}
}

func worker(ctx context.Context) {
	defer plugLog.Infof("Stopping %s ... done", PluginName)

	stopped := make(chan struct{})
	go func() {
		plugLog.Infof("%s started, bind-address=%s", PluginName, Parameters.BindAddress)
		if err := deps.Server.Start(Parameters.BindAddress); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				plugLog.Errorf("Error serving: %s", err)
			}
			close(stopped)
		}
	}()

	// stop if we are shutting down or the server could not be started
	select {
	case <-ctx.Done():
	case <-stopped:
	}

	plugLog.Infof("Stopping %s ...", PluginName)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := deps.Server.Shutdown(shutdownCtx); err != nil {
		plugLog.Errorf("Error stopping: %s", err)
	}
}
