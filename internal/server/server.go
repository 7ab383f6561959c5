package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/shatter/internal/core/catalog"
	"github.com/zeusync/shatter/internal/core/events/bus"
	"github.com/zeusync/shatter/internal/core/observability/log"
	"github.com/zeusync/shatter/internal/core/session"
	"github.com/zeusync/shatter/internal/core/world"
)

// Server hosts game sessions over websocket, one session per connection.
type Server struct {
	config        Config
	sessionConfig session.Config
	worldConfig   world.Config
	catalog       *catalog.Catalog
	bus           bus.EventBus
	logger        log.Log

	upgrader websocket.Upgrader
	http     *http.Server

	// Client management
	mu          sync.Mutex
	clients     map[string]*client
	clientCount int64 // atomic

	// Server state
	running int32 // atomic bool
	closed  int32 // atomic bool
	addr    atomic.Value

	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// NewServer creates a server. Nothing listens until Run.
func NewServer(
	config Config,
	sessionConfig session.Config,
	worldConfig world.Config,
	levels *catalog.Catalog,
	eventBus bus.EventBus,
	logger log.Log,
) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := sessionConfig.Validate(); err != nil {
		return nil, err
	}
	if err := worldConfig.Validate(); err != nil {
		return nil, err
	}
	if levels == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "nil level catalog")
	}
	if eventBus == nil {
		eventBus = bus.New()
	}
	if logger == nil {
		logger = log.Nop()
	}

	s := &Server{
		config:        config,
		sessionConfig: sessionConfig,
		worldConfig:   worldConfig,
		catalog:       levels,
		bus:           eventBus,
		logger:        logger.With(log.Component("server")),
		clients:       make(map[string]*client),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.http = &http.Server{
		Addr:              config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	s.logger.Info("Server created",
		log.String("listen_addr", config.Addr),
		log.Int("max_sessions", config.MaxSessions),
		log.Int("levels", len(levels.Levels())))
	return s, nil
}

// Run listens on the configured address and serves until ctx is done or
// serving fails. Open sessions are closed on the way out.
func (s *Server) Run(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}
	defer atomic.StoreInt32(&s.running, 0)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancelMu.Lock()
	s.cancel = cancel
	s.cancelMu.Unlock()
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		s.logger.Error("Failed to create listener", log.Error(err))
		return errors.Wrap(ErrListenerFailed, err.Error())
	}
	s.addr.Store(ln.Addr().String())
	s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve http")
		}
		return nil
	})
	g.Go(func() error {
		s.reap(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Stopping server")
		if atomic.LoadInt32(&s.closed) == 1 {
			// Close already shut the listener and connections.
			return nil
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		s.closeClients()
		return s.http.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	s.logger.Info("Server stopped", log.Error(err))
	return err
}

// Close stops a running server, making Run return, and refuses future runs.
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil // Already closed
	}
	s.logger.Info("Closing server")
	s.cancelMu.Lock()
	cancel := s.cancel
	s.cancelMu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.closeClients()
	return s.http.Close()
}

// Addr is the address Run is listening on.
func (s *Server) Addr() string {
	addr, _ := s.addr.Load().(string)
	return addr
}

// Sessions counts connected clients.
func (s *Server) Sessions() int {
	return int(atomic.LoadInt64(&s.clientCount))
}

func (s *Server) register(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) >= s.config.MaxSessions {
		return false
	}
	s.clients[c.id] = c
	atomic.StoreInt64(&s.clientCount, int64(len(s.clients)))
	return true
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	delete(s.clients, c.id)
	atomic.StoreInt64(&s.clientCount, int64(len(s.clients)))
	s.mu.Unlock()
}

func (s *Server) snapshotClients() []*client {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out
}

func (s *Server) closeClients() {
	for _, c := range s.snapshotClients() {
		c.close()
	}
}

// reap closes sessions that have been silent for longer than IdleTimeout.
func (s *Server) reap(ctx context.Context) {
	ticker := time.NewTicker(s.config.ReapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, c := range s.snapshotClients() {
				if idle := now.Sub(c.lastSeen()); idle > s.config.IdleTimeout {
					s.logger.Info("Reaping idle session",
						log.Session(c.id),
						log.Duration("idle", idle))
					c.close()
				}
			}
		}
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range s.config.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
