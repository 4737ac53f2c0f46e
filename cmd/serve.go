package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mediconnect/assistant/internal/config"
	"github.com/mediconnect/assistant/internal/services"
	"github.com/mediconnect/assistant/pkg/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func serveCMD() *cobra.Command {
	var serveAddr string
	var cfgPath string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the assistant HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(cfgPath); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger.Setup(config.GetLogLevel(), config.GetLogFormat())

			addr := serveAddr
			if addr == "" {
				addr = config.GetServerAddr()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, addr)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from SERVER_ADDR or :8080)")
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config.yaml)")

	return serve
}

func run(ctx context.Context, addr string) error {
	svc, err := services.InitializeServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	// No WriteTimeout: responses are long-lived streams with per-write deadlines.
	server := &http.Server{
		Addr:              addr,
		Handler:           setupRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Int("active_streams", svc.GetConnectionManager().GetStreamCount()).Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return nil
}
