package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/novamart/admin-console/internal/app/credstore"
	"github.com/novamart/admin-console/internal/app/domain/session"
	"github.com/novamart/admin-console/internal/app/domain/settings"
	"github.com/novamart/admin-console/internal/app/notify"
	"github.com/novamart/admin-console/internal/app/observability/metrics"
	"github.com/novamart/admin-console/internal/pkg/config"
	"github.com/novamart/admin-console/internal/pkg/platform"
)

const flashTTL = time.Minute

// Server holds the dependencies for the console process.
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	creds    *credstore.Store
	api      *platform.Client
	sessions *session.StoreImpl
	flashes  *notify.FlashCenter
	prefs    settings.PreferencesRepo
	router   http.Handler
}

// New creates a Server with all dependencies wired: the credential store is
// opened and migrated, the platform client built, and the session store
// constructed over both.
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	creds, err := credstore.Open(cfg.CredStore.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	api := platform.NewClient(cfg.Platform.BaseURL, logger)
	api.SetMetrics(metrics.Get())
	flashes := notify.NewFlashCenter(flashTTL, logger)
	sessions := session.NewStore(creds, api, flashes, cfg, metrics.Get(), logger)
	prefs := settings.NewSQLitePreferencesRepo(creds.DB(), logger)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		creds:    creds,
		api:      api,
		sessions: sessions,
		flashes:  flashes,
		prefs:    prefs,
	}, nil
}

// Initialize runs the session rehydration pass. It must complete before the
// listener starts so route resolution never observes an uninitialized session.
func (s *Server) Initialize(ctx context.Context) {
	s.sessions.Initialize(ctx)
}

// HTTPServer creates and configures the HTTP server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// SetRouter sets the HTTP router/handler
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

// Sessions returns the process-wide session store.
func (s *Server) Sessions() *session.StoreImpl {
	return s.sessions
}

// GetLogger returns the logger instance
func (s *Server) GetLogger() *zap.Logger {
	return s.logger
}

// GetConfig returns the configuration
func (s *Server) GetConfig() *config.Config {
	return s.cfg
}

// Close closes all server resources
func (s *Server) Close() {
	if s.creds != nil {
		if err := s.creds.Close(); err != nil {
			s.logger.Warn("Failed to close credential store", zap.Error(err))
		}
	}
}
