// Package server provides a mock PMS backend: the REST endpoints the
// placement client calls, served from any backend.API, plus WebSocket and
// SSE streams of every change it makes.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/placement/internal/server/events"
	"github.com/agentstation/placement/internal/server/events/adapters"
	"github.com/agentstation/placement/internal/server/sse"
	ws "github.com/agentstation/placement/internal/server/websocket"
	"github.com/agentstation/placement/pkg/backend"
	"github.com/agentstation/placement/pkg/errors"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	api            backend.API
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	startOnce      sync.Once
	startTime      time.Time
}

// New creates a new server instance serving api.
func New(api backend.API, cfg Config, logger *zerolog.Logger) (*Server, error) {
	if api == nil {
		return nil, errors.NewConfigError("server", "backend API is required", nil)
	}
	if cfg.AuthEnabled && cfg.APIKey == "" {
		return nil, errors.NewConfigError("server", "auth enabled without an API key", nil)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))
	logger.Debug().Int("subscribers", broker.SubscriberCount()).Msg("Transports subscribed to event broker")

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		api:            api,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true // Allow all origins for WebSocket
			},
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}, nil
}

// Start starts background services (broker, WebSocket hub, SSE
// broadcaster). Calling it more than once has no further effect.
func (s *Server) Start() {
	s.startOnce.Do(func() {
		s.wg.Add(3)
		go func() {
			defer s.wg.Done()
			s.broker.Run(s.ctx)
		}()
		go func() {
			defer s.wg.Done()
			s.wsHub.Run(s.ctx)
		}()
		go func() {
			defer s.wg.Done()
			s.sseBroadcaster.Run(s.ctx)
		}()
		s.logger.Debug().Msg("Background services started")
	})
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// HTTPServer returns an http.Server bound to the configured address and
// timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Shutdown stops background services and waits for them until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("Background services shut down successfully")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	}
}

// WSHub returns the WebSocket hub.
func (s *Server) WSHub() *ws.Hub {
	return s.wsHub
}

// SSEBroadcaster returns the SSE broadcaster.
func (s *Server) SSEBroadcaster() *sse.Broadcaster {
	return s.sseBroadcaster
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
