package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/greenfelt/casino/internal/session"
	"github.com/greenfelt/casino/internal/store"
)

// Server ties the HTTP API, the event hub and the game service together.
type Server struct {
	config   *Config
	logger   *log.Logger
	sessions *session.Manager
	hub      *Hub
	service  *GameService
}

// New creates a server over the given account store.
func New(config *Config, accounts store.Store, logger *log.Logger, opts ...ServiceOption) *Server {
	hub := NewHub(logger)
	return &Server{
		config:   config,
		logger:   logger.WithPrefix("server"),
		sessions: session.NewManager([]byte(config.Server.SessionSecret), config.SessionTTL(), nil),
		hub:      hub,
		service:  NewGameService(accounts, config, logger, hub, opts...),
	}
}

// Run serves the API until ctx is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.ListenAddress(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := s.hub.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		s.logger.Info("Listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	return group.Wait()
}
