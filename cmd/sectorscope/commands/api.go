package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrenlab/sectorscope/internal/api"
	"github.com/wrenlab/sectorscope/internal/api/handlers"
	"github.com/wrenlab/sectorscope/internal/scheduler"
	"github.com/wrenlab/sectorscope/internal/scheduler/jobs"
	"github.com/wrenlab/sectorscope/internal/scoring"
	"github.com/wrenlab/sectorscope/pkg/database"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the HTTP server exposing the scoring pipeline.

Endpoints:
  GET  /                            - Service info
  GET  /health                      - Health check
  GET  /api/scores                  - Ranked sector scores
  GET  /api/scores/summary          - Top/bottom sectors and drivers
  GET  /api/sectors                 - Sector list with ETF tickers
  GET  /api/sectors/{name}          - One sector's breakdown
  GET  /api/sectors/{name}/history  - Persisted score history
  GET  /api/data/quality            - Per-source health
  GET  /api/cache/info              - Cache entry counts and size
  POST /api/cache/clear             - Drop all cache entries, then re-warm
  WS   /ws/scores                   - Live score pushes on refresh

Example:
  go run ./cmd/sectorscope api
  go run ./cmd/sectorscope api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log

	// Snapshot persistence is optional: only wired when DATABASE_URL is set.
	var snapshots *scoring.SnapshotRepo
	if a.cfg.Database.URL != "" {
		db, err := database.New(a.cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		snapshots = scoring.NewSnapshotRepo(db, log)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := snapshots.EnsureSchema(ctx); err != nil {
			cancel()
			return err
		}
		cancel()
		log.Info("Snapshot persistence enabled")
	}

	hub := api.NewHub(log)

	// The refresh job doubles as the post-clear cache re-warm, so it is
	// built even when the cron scheduler is disabled.
	refresh := jobs.NewRefreshJob(a.engine, hub, snapshots, a.cfg.Scheduler.RefreshSpec, log)

	router := api.NewRouter(
		handlers.NewScoresHandler(a.engine, snapshots, log),
		handlers.NewCacheHandler(a.store, refresh, log),
		handlers.NewQualityHandler(a.monitor, log),
		hub,
		log,
	)

	server := api.New(a.cfg, log, router)

	// Background refresh keeps the cache warm and feeds the websocket.
	var sched *scheduler.Scheduler
	if a.cfg.Scheduler.Enabled {
		sched = scheduler.New(log)
		if err := sched.AddJob(refresh); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
