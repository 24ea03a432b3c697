package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/JackWithOneEye/pcviewer/internal/database"
	"github.com/JackWithOneEye/pcviewer/internal/engine"
	"github.com/JackWithOneEye/pcviewer/internal/httplog"
	"github.com/JackWithOneEye/pcviewer/internal/metrics"
	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const journalTimeout = 2 * time.Second

type ServerConfig interface {
	Host() string
	Port() uint
	SessionIdleTimeout() time.Duration
}

// Server accepts viewer connections and runs one Session per connection.
type Server struct {
	cfg      ServerConfig
	engine   engine.Engine
	registry *Registry
	journal  database.DatabaseService
	log      zerolog.Logger

	http     *http.Server
	listener net.Listener

	// ctx outlives every session; cancelled when Shutdown gives up waiting.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewServer(cfg ServerConfig, eng engine.Engine, registry *Registry, journal database.DatabaseService) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		engine:   eng,
		registry: registry,
		journal:  journal,
		log:      log.With().Str("component", "stream").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.http = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host(), strconv.FormatUint(uint64(cfg.Port()), 10)),
		Handler:           s.registerRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), httplog.Middleware(s.log))

	// the viewer connects to ws://host:port with no path
	r.GET("/", s.playHandler)
	r.GET("/ws", s.playHandler)

	return r
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Listen binds the configured address. Bind errors surface here, before any
// connection is accepted.
func (s *Server) Listen() error {
	if s.listener != nil {
		return errors.New("server is already listening")
	}
	l, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", s.http.Addr, err)
	}
	s.listener = l
	s.log.Info().Str("addr", l.Addr().String()).Msg("websocket server listening")
	return nil
}

// Addr is nil until Listen succeeds.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve blocks in the accept loop until Shutdown; it then returns
// http.ErrServerClosed.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}
	return s.http.Serve(s.listener)
}

func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Shutdown stops accepting, sends every live session a going-away close and
// waits for the sessions to finish. When ctx expires first the remaining
// transports are dropped.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	err := s.http.Shutdown(ctx)
	s.registry.closeAll(websocket.StatusGoingAway, "server shutting down")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.cancel()
		<-done
		if err == nil {
			err = ctx.Err()
		}
	}
	s.cancel()
	return err
}

// track reserves a slot for a session goroutine unless shutdown has begun.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Server) shuttingDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) playHandler(c *gin.Context) {
	if !s.track() {
		c.String(http.StatusServiceUnavailable, "server is shutting down")
		return
	}
	defer s.wg.Done()

	w := c.Writer
	r := c.Request
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// viewer assets come from a different port, so the origin never matches
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("could not open websocket")
		return
	}
	defer socket.CloseNow()

	sess := newSession(socket, r.RemoteAddr, s.log)
	s.registry.Add(sess)
	metrics.SessionsActive.Inc()
	metrics.SessionsTotal.Inc()
	sess.log.Info().Msg("client connected")

	err = s.handshake(sess)
	if err == nil {
		err = sess.serve(s.ctx, s.engine, s.cfg.SessionIdleTimeout())
	}
	s.endSession(sess, err)
}

func (s *Server) handshake(sess *Session) error {
	payload, err := s.engine.Handshake()
	if err != nil {
		return fmt.Errorf("encode init: %w", err)
	}
	return sess.write(s.ctx, payload)
}

// endSession deregisters sess exactly once and journals it.
func (s *Server) endSession(sess *Session, err error) {
	if !s.registry.Remove(sess) {
		return
	}
	metrics.SessionsActive.Dec()
	duration := time.Since(sess.connected)
	metrics.SessionDuration.Observe(duration.Seconds())

	level := zerolog.WarnLevel
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		level = zerolog.InfoLevel
	default:
		if s.shuttingDown() {
			level = zerolog.InfoLevel
		}
	}
	sess.log.WithLevel(level).Err(err).
		Dur("duration", duration).
		Int64("frames", sess.frames.Load()).
		Msg("client disconnected")

	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	rec := database.SessionRecord{
		ID:             sess.id,
		RemoteAddr:     sess.remote,
		ConnectedAt:    sess.connected,
		DisconnectedAt: time.Now(),
		FramesServed:   sess.frames.Load(),
		Commands:       sess.commands.Load(),
	}
	if err := s.journal.WriteSession(ctx, rec); err != nil {
		sess.log.Error().Err(err).Msg("could not journal session")
	}
}
