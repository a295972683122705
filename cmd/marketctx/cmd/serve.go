package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API, MCP endpoint and scheduler",
	Long:  `Starts the HTTP server (REST under /api, MCP at /mcp) and the news purge and session sweep loops. Ctrl+C shuts down gracefully.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	for _, key := range a.Config.ValidateRequired() {
		a.Logger.Warn().Str("key", key).Msg("Required setting missing")
	}

	a.StartScheduler()
	srv := server.NewServer(a)

	common.PrintBanner(a.Config, a.Logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	a.Logger.Info().
		Str("addr", srv.Addr()).
		Msg("Server ready")

	// Wait for interrupt signal or a listener failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case <-sigChan:
		a.Logger.Info().Msg("Shutdown signal received")
	case runErr = <-errCh:
		a.Logger.Error().Err(runErr).Msg("HTTP server failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	a.Close()
	common.PrintShutdownBanner(a.Logger)
	return runErr
}
