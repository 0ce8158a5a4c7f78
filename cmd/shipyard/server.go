package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/artpar/shipyard/internal/shell/api"
	"github.com/artpar/shipyard/internal/shell/keys"
	"github.com/artpar/shipyard/internal/shell/projects"
	"github.com/artpar/shipyard/internal/shell/seed"
	"github.com/artpar/shipyard/internal/shell/store"
	"github.com/artpar/shipyard/internal/shell/workers"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitDatabaseError   = 2
	ExitHTTPServerError = 3
	ExitSeedError       = 4
)

// =============================================================================
// Server
// =============================================================================

// Server wires the store, setup queue and HTTP API together.
type Server struct {
	config     *Config
	store      store.Store
	queue      *workers.SetupQueue
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a new server with all dependencies.
func NewServer(cfg *Config, logger *slog.Logger) (*Server, error) {
	if dir := filepath.Dir(cfg.Database.DSN); cfg.Database.DSN != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &ServerError{Op: "NewServer", Err: err, ExitCode: ExitDatabaseError}
		}
	}

	s, err := store.NewSQLiteStore(cfg.Database.DSN)
	if err != nil {
		return nil, &ServerError{Op: "NewServer", Err: err, ExitCode: ExitDatabaseError}
	}

	keySvc, err := keys.NewService(s, []byte(cfg.Keys.EncryptionKey), logger)
	if err != nil {
		s.Close()
		return nil, &ServerError{Op: "NewServer", Err: err, ExitCode: ExitConfigError}
	}
	if cfg.Keys.EncryptionKey == "" {
		logger.Warn("keys.encryption_key not set, private keys are stored unencrypted")
	}

	if cfg.Database.SeedFile != "" {
		fixture, err := seed.LoadFile(cfg.Database.SeedFile)
		if err == nil {
			_, err = seed.NewSeeder(s, keySvc, logger).Apply(context.Background(), fixture)
		}
		if err != nil {
			s.Close()
			return nil, &ServerError{Op: "Seed", Err: err, ExitCode: ExitSeedError}
		}
	}

	queue := workers.NewSetupQueue(workers.NewProjectSetup(s, logger).Run, workers.SetupQueueConfig{
		Workers:     cfg.Setup.Workers,
		QueueSize:   cfg.Setup.QueueSize,
		TaskTimeout: cfg.Setup.TaskTimeout,
	}, logger)

	projectSvc := projects.NewService(s, queue, cfg.Projects.ItemsPerPage, logger)
	handler := api.NewHandler(projectSvc, keySvc, s, logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		store:      s,
		queue:      queue,
		httpServer: httpServer,
		logger:     logger,
	}, nil
}

// Start runs the server until a shutdown signal, a listener error or ctx ends.
func (s *Server) Start(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	s.queue.Start()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		s.Shutdown(context.Background())
		return &ServerError{
			Op:       "Start",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	// Drain setup tasks before the store goes away.
	s.queue.Stop()

	if err := s.store.Close(); err != nil {
		s.logger.Error("database close error", "error", err)
	}

	s.logger.Info("shutdown complete")
	return nil
}

// =============================================================================
// Server Error
// =============================================================================

// ServerError represents an error during server operation.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
