package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// GracefulShutdown blocks until SIGINT/SIGTERM, then drains the HTTP server
// and flushes the telemetry pipeline before signalling done.
func GracefulShutdown(srv *http.Server, otelShutdown func(context.Context) error, logger *zap.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("Shutting down gracefully, press Ctrl+C again to force")

	stop() // Allow Ctrl+C to force shutdown

	// In-flight requests get 5 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if otelShutdown != nil {
		if err := otelShutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to shut down telemetry providers", zap.Error(err))
		}
	}

	logger.Info("Server exiting")

	done <- true
}
