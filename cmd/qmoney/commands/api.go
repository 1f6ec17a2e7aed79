package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/qmoney/internal/api"
	"github.com/wonny/qmoney/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health               - Health check
  POST /api/returns          - 연환산 수익률 계산
  GET  /api/reports/latest   - 마지막 리포트 (Redis)
  GET  /api/runs             - 실행 이력 (PostgreSQL)
  GET  /api/runs/{id}        - 실행 상세

Example:
  go run ./cmd/qmoney api
  go run ./cmd/qmoney api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), "=== qmoney API Server ===")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Wire config, engine and stores
	a, err := newApp(ctx, appOptions{persistence: true})
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	// 2. Create handlers
	h := api.Handlers{
		Health:  handlers.NewHealthHandler(a.db, a.redis, a.quotes.Name()),
		Returns: handlers.NewReturnsHandler(a.engine, a.publisher, a.cfg.Engine.Workers, a.log),
		Reports: handlers.NewReportsHandler(a.store, a.runHistory(), a.log),
	}

	// 3. Create router and server
	router := api.NewRouter(h, a.cfg.API, a.log)
	server := api.New(a.cfg, a.log, router)

	// 4. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Fprintln(cmd.OutOrStdout(), "\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	// in-flight batches get the engine's grace period to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Engine.ShutdownGrace+5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.log.Info("API server stopped")
	return nil
}
