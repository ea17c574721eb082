package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmoraes/brewlake/internal/api"
	"github.com/dmoraes/brewlake/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the read API server",
	Long: `Start the HTTP API over gold metrics, quality reports, and
run history.

Endpoints:
  GET  /health               - Health check
  GET  /api/metrics          - Known metric names
  GET  /api/metrics/{name}   - Latest results for one metric
  GET  /api/quality/latest   - Latest quality report
  GET  /api/runs/latest      - Latest pipeline run
  POST /api/pipeline/run     - Trigger a pipeline run

Example:
  go run ./cmd/brewlake api
  go run ./cmd/brewlake api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides config)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== brewlake API server ===")

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	metricsHandler := handlers.NewMetricsHandler(d.goldRepo, d.cache, d.log)
	qualityHandler := handlers.NewQualityHandler(d.qualityRepo, d.log)
	runsHandler := handlers.NewRunsHandler(d.runRepo, d.log)
	pipelineHandler := handlers.NewPipelineHandler(d.orchestrator, d.log)

	router := api.NewRouter(metricsHandler, qualityHandler, runsHandler, pipelineHandler, d.log)
	server := api.New(d.cfg, d.log, router)

	// Serve until interrupted
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
