// Package database is a plugin that opens the database of the node and manages its lifetime.
package database

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/node"
	"go.uber.org/dig"

	"github.com/iotaledger/tanglenode/packages/database"
	"github.com/iotaledger/tanglenode/packages/shutdown"
)

// PluginName is the name of the database plugin.
const PluginName = "Database"

type dependencies struct {
	dig.In

	DB    database.DB
	Store kvstore.KVStore
}

var (
	// Plugin is the plugin instance of the database plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)

	health *healthMarker
)

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure, run)

	Plugin.Events.Init.Attach(events.NewClosure(func(_ *node.Plugin, container *dig.Container) {
		if err := container.Provide(openDatabase); err != nil {
			Plugin.Panic(err)
		}

		if err := container.Provide(func(db database.DB) kvstore.KVStore {
			return db.NewStore()
		}); err != nil {
			Plugin.Panic(err)
		}
	}))
}

func openDatabase() database.DB {
	db, err := database.Open(Parameters.Directory, Parameters.InMemory)
	if err != nil {
		Plugin.LogFatalf("Unable to open the database, please delete the database folder. Error: %s", err)
	}

	return db
}

func configure(plugin *node.Plugin) {
	var err error
	if health, err = newHealthMarker(deps.Store); err != nil {
		plugin.LogFatalf("Failed to create health marker: %s", err)
	}

	if err = database.CheckDatabaseVersion(deps.Store); err != nil {
		if errors.Is(err, database.ErrDBVersionIncompatible) {
			plugin.LogFatalf("The database scheme was updated. Please delete the database folder. %s", err)
		}
		plugin.LogFatalf("Failed to check database version: %s", err)
	}

	if !Parameters.InMemory {
		switch Parameters.Dirty {
		case "true":
			health.markUnhealthy()
		case "false":
			health.markHealthy()
		case "":
		default:
			plugin.LogWarnf("Invalid database.dirty flag: %s", Parameters.Dirty)
		}
	}

	if health.isUnhealthy() {
		plugin.LogFatal("The database is marked as not properly shutdown/corrupted, please delete the database folder and restart.")
	}

	// run GC up on startup
	runDatabaseGC(plugin)
}

func run(plugin *node.Plugin) {
	if err := daemon.BackgroundWorker(PluginName, func(ctx context.Context) {
		manageDBLifetime(ctx, plugin)
	}, shutdown.PriorityDatabase); err != nil {
		plugin.Panicf("Failed to start as daemon: %s", err)
	}
}

// manageDBLifetime marks the database as dirty while the node is running and runs the periodic garbage collection.
// Up on shutdown it runs the GC a last time and closes the database.
func manageDBLifetime(ctx context.Context, plugin *node.Plugin) {
	// the database is only marked as dirty from within a background worker, so it is only marked if the node actually
	// started up properly
	health.markUnhealthy()

	var gcTicker <-chan time.Time
	if Parameters.GCInterval > 0 && deps.DB.RequiresGC() {
		ticker := time.NewTicker(Parameters.GCInterval)
		defer ticker.Stop()
		gcTicker = ticker.C
	}

	for running := true; running; {
		select {
		case <-gcTicker:
			runDatabaseGC(plugin)
		case <-ctx.Done():
			running = false
		}
	}

	runDatabaseGC(plugin)
	health.markHealthy()

	plugin.LogInfo("Syncing database to disk...")
	if err := deps.DB.Close(); err != nil {
		plugin.LogErrorf("Failed to flush the database: %s", err)
	}
	plugin.LogInfo("Syncing database to disk... done")
}

func runDatabaseGC(plugin *node.Plugin) {
	if !deps.DB.RequiresGC() {
		return
	}

	plugin.LogInfo("Running database garbage collection...")
	start := time.Now()
	if err := deps.DB.GC(); err != nil {
		plugin.LogWarnf("Database garbage collection failed: %s", err)
		return
	}
	plugin.LogInfof("Database garbage collection done, took %v...", time.Since(start))
}
