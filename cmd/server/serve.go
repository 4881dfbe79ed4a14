package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"volunteermatch/internal/platform/config"
	"volunteermatch/internal/platform/httpserver"
	"volunteermatch/internal/platform/metrics"
	httptransport "volunteermatch/internal/transport/http"
)

var serveMemory bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves POST /graphql, GET /health and GET /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := newStore(ctx, cfg, serveMemory)
		if err != nil {
			return err
		}

		registry := metrics.New()
		router := httptransport.NewRouter(httptransport.RouterOptions{
			Schema:         newSchema(cfg, store, registry),
			Metrics:        registry.Handler(),
			Logger:         log,
			RequestTimeout: cfg.RequestTimeout,
		})
		srv := httpserver.New(cfg.ServerAddr, router, cfg.RequestTimeout)

		errCh := make(chan error, 1)
		go func() {
			log.Info("starting server", "addr", cfg.ServerAddr, "table", cfg.TableName, "memory", serveMemory)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (env: SERVER_ADDR)")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "Use an in-memory store instead of DynamoDB")
	if err := viper.BindPFlag(config.KeyServerAddr, serveCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
}
