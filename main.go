package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/novamart/admin-console/internal/pkg/config"
	"github.com/novamart/admin-console/internal/server"
	"github.com/novamart/admin-console/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		stdlog.Fatal(err)
	}
}

func run() error {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		stdlog.Println("Warning: Error loading .env file, using environment variables")
	}

	// Initialize logger
	if err := logger.Init(zapcore.InfoLevel, zap.String("service", "admin-console")); err != nil {
		return err
	}
	log := logger.Log
	defer log.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize observability
	otelShutdown, err := server.InitObservability("admin-console", ":"+cfg.MetricsPort, log)
	if err != nil {
		return err
	}

	// Create server
	srv, err := server.New(cfg, log)
	if err != nil {
		return err
	}
	defer srv.Close()

	// Rehydrate the session before accepting traffic. Requests arriving
	// right after startup must see a settled session state.
	srv.Initialize(context.Background())

	// Setup router
	router, err := server.SetupRouter(srv)
	if err != nil {
		return err
	}
	srv.SetRouter(router)

	// Start pprof server (on separate port, not exposed publicly)
	server.StartPprofServer(":"+cfg.PprofPort, log)

	// Create HTTP server
	httpServer := srv.HTTPServer()

	// Setup graceful shutdown
	done := make(chan bool, 1)
	go server.GracefulShutdown(httpServer, otelShutdown, log, done)

	// Start server
	g := new(errgroup.Group)
	g.Go(func() error {
		log.Info("Server starting", zap.String("port", cfg.ServerPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("Server error", zap.Error(err))
	}

	// Wait for graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")

	return nil
}
