package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrServerClosed is returned by Serve after Shutdown or Stop.
	ErrServerClosed = errors.New("relay: server closed")

	errAlreadyServing = errors.New("relay: server already has a listener")
)

// BindError reports that the listen address could not be bound.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("relay: bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// Options tune the per-connection behaviour. Zero values disable the limit.
type Options struct {
	MaxMessageBytes int64
	IdleTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server accepts engine connections and answers one JSON response per JSON request.
type Server struct {
	registry *Registry
	opts     Options
	log      *zap.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	listener net.Listener
	conns    map[*conn]struct{}
	closing  atomic.Bool
	wg       sync.WaitGroup
}

// NewServer creates a server dispatching through registry.
func NewServer(registry *Registry, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		registry: registry,
		opts:     opts,
		log:      logger,
		baseCtx:  ctx,
		cancel:   cancel,
		conns:    make(map[*conn]struct{}),
	}
}

// Start binds addr and serves it in the background. It returns once the
// listener is bound; a busy or invalid address yields a *BindError.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return &BindError{Addr: addr, Err: err}
	}
	if err := s.setListener(ln); err != nil {
		_ = ln.Close()
		return err
	}

	s.log.Info("relay listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := s.serve(ln); err != nil && !errors.Is(err, ErrServerClosed) {
			s.log.Error("relay stopped accepting", zap.Error(err))
		}
	}()
	return nil
}

// Serve accepts connections on ln until Shutdown. Each connection is handled
// on its own goroutine.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.setListener(ln); err != nil {
		_ = ln.Close()
		return err
	}
	return s.serve(ln)
}

// Addr returns the bound address, or nil before Start/Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Metrics returns the registry counters.
func (s *Server) Metrics() *Metrics {
	return s.registry.Metrics()
}

func (s *Server) setListener(ln net.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing.Load() {
		return ErrServerClosed
	}
	if s.listener != nil {
		return errAlreadyServing
	}
	s.listener = ln
	s.registry.freeze()
	return nil
}

func (s *Server) serve(ln net.Listener) error {
	var backoff time.Duration
	for {
		rwc, err := ln.Accept()
		if err != nil {
			if s.closing.Load() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff *= 2
			}
			if backoff > time.Second {
				backoff = time.Second
			}
			s.log.Error("accept failed; retrying", zap.Error(err), zap.Duration("backoff", backoff))
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		c := s.newConn(rwc)
		if !s.trackConn(c) {
			_ = rwc.Close()
			return ErrServerClosed
		}
		go c.serve()
	}
}

func (s *Server) trackConn(c *conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrackConn(c *conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.wg.Done()
}

// Shutdown stops accepting, closes the listener and lets in-flight exchanges
// finish. Connections waiting for their next request are interrupted. If ctx
// expires first, remaining connections are closed, their handlers' contexts
// are cancelled and ctx.Err() is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing.Store(true)
	var lnErr error
	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			lnErr = err
		}
	}
	for c := range s.conns {
		c.interruptIfIdle()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		s.log.Info("relay stopped")
		return lnErr
	case <-ctx.Done():
		s.cancel()
		s.mu.Lock()
		for c := range s.conns {
			_ = c.rwc.Close()
		}
		s.mu.Unlock()
		s.log.Warn("relay shutdown timed out; closed remaining connections")
		return ctx.Err()
	}
}

// Stop shuts the server down within the configured ShutdownTimeout (unbounded when zero).
func (s *Server) Stop() error {
	ctx := context.Background()
	if s.opts.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ShutdownTimeout)
		defer cancel()
	}
	return s.Shutdown(ctx)
}
