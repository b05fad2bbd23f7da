// Package prometheus is a plugin that exports the metrics of the node to prometheus.
package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/node"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"github.com/iotaledger/tanglenode/packages/ledger"
	"github.com/iotaledger/tanglenode/packages/metrics"
	"github.com/iotaledger/tanglenode/packages/milestone"
	"github.com/iotaledger/tanglenode/packages/requester"
	"github.com/iotaledger/tanglenode/packages/shutdown"
	"github.com/iotaledger/tanglenode/packages/tipselection"
)

// PluginName is the name of the prometheus plugin.
const PluginName = "Prometheus"

type dependencies struct {
	dig.In

	Tracker   *milestone.Tracker
	Ledger    *ledger.Ledger
	TipPool   *tipselection.TipPool
	Requester *requester.Requester
}

var (
	// Plugin is the plugin instance of the prometheus plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)

	registry = prometheus.NewRegistry()
)

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure, run)
}

func configure(plugin *node.Plugin) {
	for name, err := range map[string]error{
		"milestone": metrics.RegisterMilestoneMetrics(registry, trackerSource{deps.Tracker}),
		"ledger":    metrics.RegisterLedgerMetrics(registry, deps.Ledger),
		"tips":      metrics.RegisterTipMetrics(registry, deps.TipPool),
		"requests":  metrics.RegisterRequestMetrics(registry, deps.Requester),
	} {
		if err != nil {
			plugin.LogFatalf("Failed to register %s metrics: %s", name, err)
		}
	}

	if Parameters.ProcessMetrics {
		if err := metrics.RegisterProcessMetrics(registry); err != nil {
			plugin.LogFatalf("Failed to register process metrics: %s", err)
		}
	}
	if Parameters.GoMetrics {
		registry.MustRegister(prometheus.NewGoCollector())
	}
}

func run(plugin *node.Plugin) {
	plugin.LogInfo("Starting Prometheus exporter ...")

	if err := daemon.BackgroundWorker("Prometheus exporter", func(ctx context.Context) {
		plugin.LogInfo("Starting Prometheus exporter ... done")

		engine := gin.New()
		engine.Use(gin.Recovery())
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		})))

		server := &http.Server{Addr: Parameters.BindAddress, Handler: engine}
		go func() {
			plugin.LogInfof("You can now access the Prometheus exporter using: http://%s/metrics", Parameters.BindAddress)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				plugin.LogErrorf("Stopping Prometheus exporter due to an error: %s", err)
			}
		}()

		<-ctx.Done()
		plugin.LogInfo("Stopping Prometheus exporter ...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			plugin.LogError(err)
		}
		plugin.LogInfo("Stopping Prometheus exporter ... done")
	}, shutdown.PriorityPrometheus); err != nil {
		plugin.Panicf("Failed to start as daemon: %s", err)
	}
}

// trackerSource exposes the milestone pointers of the tracker together with its analysis rate.
type trackerSource struct {
	tracker *milestone.Tracker
}

func (t trackerSource) LatestMilestoneIndex() uint32 {
	return t.tracker.State().LatestMilestoneIndex()
}

func (t trackerSource) LatestSolidMilestoneIndex() uint32 {
	return t.tracker.State().LatestSolidMilestoneIndex()
}

func (t trackerSource) CandidatesAnalyzedPerMinute() int64 {
	return t.tracker.CandidatesAnalyzedPerMinute()
}
