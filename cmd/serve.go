package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/tagging-fight-cli/api"
	"github.com/user/tagging-fight-cli/cache"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve saved fights over a read-only HTTP API",
	Long: `Serve saved fights as JSON:

  GET /healthz                  liveness and database status
  GET /metrics                  Prometheus metrics
  GET /fights                   list (?athlete_id=&limit=&offset=)
  GET /fights/{id}              fight with its rounds
  GET /fights/{id}/strikes      stored strikes
  GET /fights/{id}/report       stored statistics report

Reports are cached in Redis when redis_addr is configured, in memory otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var kv cache.KVStore = cache.NewMemoryKVStore()
		if cfg.RedisAddr != "" {
			rkv, err := cache.DialRedis(ctx, cfg.RedisAddr)
			if err != nil {
				return fmt.Errorf("failed to connect to redis: %w", err)
			}
			defer rkv.Close()
			kv = rkv
			appLog.Info("report cache enabled", zap.String("redis_addr", cfg.RedisAddr))
		}
		reports := cache.NewReports(kv, cfg.CacheTTL(), appLog)

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           api.NewServer(store, reports, appLog).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			appLog.Info("api listening", zap.String("addr", cfg.Addr), zap.String("db_driver", cfg.DBDriver))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("api server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		appLog.Info("shutting down api")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down api: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
