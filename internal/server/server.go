package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/thruflo/logo/internal/config"
	"github.com/thruflo/logo/internal/logging"
	"github.com/thruflo/logo/internal/session"
)

// cleanupInterval is how often stale rate limit entries are dropped.
const cleanupInterval = time.Minute

// Server accepts TCP connections and runs one session per connection.
type Server struct {
	host        string
	port        int
	readTimeout time.Duration
	session     session.Options
	limiter     *rateLimiter
	log         *logging.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	started  bool
	closing  bool
	ready    chan struct{}

	wg sync.WaitGroup
}

// Config holds server configuration options.
type Config struct {
	Host        string
	Port        int
	ReadTimeout time.Duration // per-line idle timeout, 0 disables
	RateLimit   RateLimitConfig
	Session     session.Options // template for every connection; ID is ignored
	Logger      *logging.Logger
}

// NewServer creates a new Server instance.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Session.Width <= 0 || cfg.Session.Height <= 0 {
		return nil, errors.New("session canvas size is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Server{
		host:        cfg.Host,
		port:        cfg.Port,
		readTimeout: cfg.ReadTimeout,
		session:     cfg.Session,
		limiter:     newRateLimiter(cfg.RateLimit),
		log:         logger.With("transport", "tcp"),
		conns:       make(map[net.Conn]struct{}),
		ready:       make(chan struct{}),
	}, nil
}

// ConfigFromConfig translates the loaded configuration into server options
// for the TCP listener.
func ConfigFromConfig(cfg *config.Config, logger *logging.Logger) (*Config, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	opts, err := session.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts.Logger = logger
	return &Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		ReadTimeout: cfg.Server.ReadTimeout,
		RateLimit: RateLimitConfig{
			MaxConnections: cfg.Server.RateLimit.MaxConnections,
			Window:         cfg.Server.RateLimit.Window,
		},
		Session: opts,
		Logger:  logger,
	}, nil
}

// NewServerFromConfig creates a new Server from the loaded configuration.
func NewServerFromConfig(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	c, err := ConfigFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewServer(c)
}

// NewWebSocketServerFromConfig creates the WebSocket transport from the
// loaded configuration. cfg.WebSocket must be set.
func NewWebSocketServerFromConfig(cfg *config.Config, logger *logging.Logger) (*WebSocketServer, error) {
	if cfg != nil && cfg.WebSocket == nil {
		return nil, errors.New("websocket config is required")
	}
	c, err := ConfigFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Port = cfg.WebSocket.Port
	return NewWebSocketServer(c)
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Ready is closed once the server is listening. It stays open if Start
// fails, so waiters should also watch Start's error.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Start listens and serves connections until ctx is cancelled or Stop is
// called. It returns nil after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("server already started")
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	s.started = true
	close(s.ready)
	s.mu.Unlock()

	s.log.Info("listening", "addr", listener.Addr().String())

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-serveCtx.Done()
		s.Stop()
	}()
	go s.cleanupLimiter(serveCtx)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.isClosing() {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		s.serve(serveCtx, conn)
	}
}

// Stop closes the listener and every open connection, then waits for all
// sessions to finish.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.started || s.closing {
		s.mu.Unlock()
		s.wg.Wait()
		return nil
	}
	s.closing = true

	var err error
	if s.listener != nil {
		if cerr := s.listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = fmt.Errorf("failed to close listener: %w", cerr)
		}
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("stopped")
	return err
}

// ListenAddr returns the actual address the server is listening on.
// Useful when port 0 is used to get an available port.
// Returns empty string if not started.
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ActiveSessions returns the number of connections currently being served.
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// serve admits conn and runs its session in a new goroutine.
func (s *Server) serve(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	ip := extractIP(conn.RemoteAddr())

	if result := s.limiter.check(ip); !result.Allowed {
		s.log.Warn("connection rejected: rate limit exceeded",
			"remote", remote, "attempts", result.Attempts, "retry_after", result.RetryAfter)
		conn.Close()
		return
	}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.release(conn)

		opts := s.session
		opts.ID = ""
		opts.Logger = s.log.With("remote", remote)

		sess, err := session.New(opts)
		if err != nil {
			s.log.Error("failed to create session", "remote", remote, "error", err)
			return
		}

		var r io.Reader = conn
		if s.readTimeout > 0 {
			r = &deadlineReader{conn: conn, timeout: s.readTimeout}
		}

		if err := sess.Run(ctx, r, conn); err != nil && !isClosedConn(err) {
			s.log.Warn("session terminated", "session", sess.ID(), "remote", remote, "error", err)
		}
	}()
}

func (s *Server) release(conn net.Conn) {
	conn.Close()
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) cleanupLimiter(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.cleanup()
		}
	}
}

// deadlineReader refreshes the read deadline before every read so an idle
// client is disconnected after timeout.
type deadlineReader struct {
	conn    net.Conn
	timeout time.Duration
}

func (d *deadlineReader) Read(p []byte) (int, error) {
	if err := d.conn.SetReadDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, err
	}
	return d.conn.Read(p)
}

// isClosedConn reports errors caused by the server closing the connection.
func isClosedConn(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
