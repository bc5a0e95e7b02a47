package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/docket/internal/api"
	"github.com/JaimeStill/docket/internal/config"
	"github.com/JaimeStill/docket/internal/infrastructure"
)

type server struct {
	cfg    *config.Config
	infra  *infrastructure.Infrastructure
	http   *http.Server
	logger *slog.Logger
}

func newServer(cfg *config.Config) (*server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	router.Mount(apiModule)

	return &server{
		cfg:   cfg,
		infra: infra,
		http: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router,
			ReadTimeout:       cfg.Server.ReadTimeoutDuration(),
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeoutDuration(),
			WriteTimeout:      cfg.Server.WriteTimeoutDuration(),
		},
		logger: infra.Logger.With("system", "http"),
	}, nil
}

// run serves until ctx is cancelled or the listener fails, then drains
// in-flight requests and stops the shared systems.
func (s *server) run(ctx context.Context) error {
	if err := s.infra.Start(); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.logger.Info("all subsystems ready")
	}()

	failed := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.http.Addr, "version", s.cfg.Version)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown requested")
	case serveErr = <-failed:
		s.logger.Error("server error", "error", serveErr)
	}

	timeout := s.cfg.Server.ShutdownTimeoutDuration()
	drain, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.http.Shutdown(drain); err != nil {
		s.logger.Error("http shutdown", "error", err)
	}

	return errors.Join(serveErr, s.infra.Lifecycle.Shutdown(timeout))
}
