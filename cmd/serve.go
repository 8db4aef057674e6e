package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gm-rewards/access"
	"gm-rewards/bank"
	"gm-rewards/config"
	"gm-rewards/cycles"
	"gm-rewards/db"
	"gm-rewards/handlers"
	"gm-rewards/journal"
	"gm-rewards/leveling"
	"gm-rewards/logger"
	"gm-rewards/metrics"
	"gm-rewards/migrate"
	"gm-rewards/models"
	"gm-rewards/registry"
	"gm-rewards/repository"
	"gm-rewards/rewards"
	"gm-rewards/routers"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun()
		},
	}
}

func logEvents(events []models.Event) {
	for _, e := range events {
		logger.Logger.Debug("Committed event",
			zap.Uint64("block", e.Block),
			zap.String("type", string(e.Type)),
			zap.String("account", e.Account),
			zap.Uint64("token_id", e.TokenID),
			zap.Uint64("cycle_id", e.CycleID),
			zap.String("amount", e.Amount.String()),
		)
	}
}

func serveRun() error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	logger.Logger.Info("Starting rewards server...")

	// Connect to LevelDB
	ldb, err := db.NewLevelDB(cfg.LevelDB.Path)
	if err != nil {
		logger.Logger.Error("Failed to open leveldb", zap.Error(err))
		return err
	}
	defer ldb.Close()

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		logger.Logger.Error("Failed to open event journal", zap.Error(err))
		return err
	}
	defer j.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store := repository.NewStore(ldb)
	store.OnCommit(logEvents)
	store.OnCommit(m.Observe)
	store.OnCommit(j.Record)

	version, err := migrate.Run(store, cfg)
	if err != nil {
		logger.Logger.Error("Failed to migrate store", zap.Error(err))
		return err
	}
	logger.Logger.Info("Store ready", zap.Int("schema_version", version))

	h := buildHandler(store, cfg, j)

	// Setup router
	r := mux.NewRouter()
	routers.RegisterRoutes(r, h)
	routers.RegisterMetrics(r, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Error("Server stopped", zap.Error(err))
		}
	}()

	logger.Logger.Info("Server running on port", zap.Int("port", cfg.Server.Port))

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Logger.Info("Shutdown signal received, exiting...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Warn("Graceful shutdown failed", zap.Error(err))
	}
	_ = logger.Logger.Sync()
	return nil
}

// buildHandler wires the services over store
func buildHandler(store *repository.Store, cfg *config.Config, j *journal.Journal) *handlers.Handler {
	acl := access.New(store)
	b := bank.New(store)
	nodes := registry.New(store)
	oracle := cycles.New(store, b, cfg.Rewards.Vault)
	engine := leveling.NewEngine(store, nodes, b, leveling.ParticipationRecord{}, leveling.Config{
		Collector:            cfg.Leveling.Collector,
		RequireParticipation: cfg.Leveling.RequireParticipation,
	})
	ledger := rewards.NewLedger(store, engine, oracle, b, oracle.Vault())
	return handlers.NewHandler(engine, ledger, nodes, oracle, b, acl, j)
}
