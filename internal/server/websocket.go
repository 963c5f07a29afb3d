package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thruflo/logo/internal/logging"
	"github.com/thruflo/logo/internal/session"
)

// WebSocketPath is the endpoint that upgrades to the logo protocol.
const WebSocketPath = "/ws"

// WebSocketServer serves the logo protocol over WebSocket text messages.
type WebSocketServer struct {
	host     string
	port     int
	session  session.Options
	limiter  *rateLimiter
	log      *logging.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	conns    map[*websocket.Conn]struct{}
	started  bool
	closing  bool
	ready    chan struct{}

	wg sync.WaitGroup
}

// NewWebSocketServer creates a WebSocket transport from the same options as
// the TCP server.
func NewWebSocketServer(cfg *Config) (*WebSocketServer, error) {
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

	return &WebSocketServer{
		host:    cfg.Host,
		port:    cfg.Port,
		session: cfg.Session,
		limiter: newRateLimiter(cfg.RateLimit),
		log:     logger.With("transport", "websocket"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
		ready: make(chan struct{}),
	}, nil
}

// Ready is closed once the server is listening. It stays open if Start
// fails, so waiters should also watch Start's error.
func (s *WebSocketServer) Ready() <-chan struct{} {
	return s.ready
}

// Start serves HTTP until ctx is cancelled or Stop is called.
func (s *WebSocketServer) Start(ctx context.Context) error {
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

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc(WebSocketPath, s.handleWS)

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return serveCtx },
	}
	s.server = srv
	s.started = true
	close(s.ready)
	s.mu.Unlock()

	s.log.Info("listening", "addr", listener.Addr().String(), "path", WebSocketPath)

	go func() {
		<-serveCtx.Done()
		s.Stop()
	}()

	err = srv.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop shuts down the HTTP server, closes every WebSocket and waits for
// their sessions to end.
func (s *WebSocketServer) Stop() error {
	s.mu.Lock()
	if !s.started || s.closing {
		s.mu.Unlock()
		s.wg.Wait()
		return nil
	}
	s.closing = true
	srv := s.server
	// hijacked connections are not tracked by http.Server.Shutdown
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := srv.Shutdown(ctx)
	s.wg.Wait()
	if err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}

// ListenAddr returns the actual address the server is listening on.
// Returns empty string if not started.
func (s *WebSocketServer) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ActiveSessions returns the number of open WebSocket sessions.
func (s *WebSocketServer) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *WebSocketServer) handleWS(w http.ResponseWriter, r *http.Request) {
	ip := hostOnly(r.RemoteAddr)
	if result := s.limiter.check(ip); !result.Allowed {
		s.log.Warn("connection rejected: rate limit exceeded",
			"remote", r.RemoteAddr, "attempts", result.Attempts, "retry_after", result.RetryAfter)
		w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
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

	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		s.wg.Done()
	}()

	opts := s.session
	opts.ID = ""
	opts.Logger = s.log.With("remote", r.RemoteAddr)

	sess, err := session.New(opts)
	if err != nil {
		s.log.Error("failed to create session", "remote", r.RemoteAddr, "error", err)
		return
	}

	stream := &wsStream{conn: conn}
	if err := sess.Run(r.Context(), stream, stream); err != nil && !isClosedConn(err) {
		s.log.Warn("session terminated", "session", sess.ID(), "remote", r.RemoteAddr, "error", err)
	}

	if sess.State() == session.Ended {
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), deadline)
	}
}

// wsStream turns a WebSocket into the byte stream a session expects. Each
// incoming text message is one line; each session write is one message.
type wsStream struct {
	conn *websocket.Conn
	buf  []byte
}

func (w *wsStream) Read(p []byte) (int, error) {
	for len(w.buf) == 0 {
		_, msg, err := w.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return 0, io.EOF
			}
			return 0, err
		}
		if !bytes.HasSuffix(msg, []byte("\n")) {
			msg = append(msg, '\r', '\n')
		}
		w.buf = msg
	}

	n := copy(p, w.buf)
	w.buf = w.buf[n:]
	return n, nil
}

func (w *wsStream) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}
