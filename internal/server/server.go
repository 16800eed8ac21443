// Package server runs the HTTP listener and coordinates graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// State is a phase of the server lifecycle.
type State int32

const (
	StateStarting State = iota
	StateServing
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateServing:
		return "serving"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

const readHeaderTimeout = 10 * time.Second

// Config holds listener and shutdown settings.
type Config struct {
	Addr string
	// ShutdownTimeout bounds the drain phase. Zero waits for in-flight
	// requests indefinitely.
	ShutdownTimeout time.Duration
}

// Server serves HTTP until told to stop, then drains in-flight requests and
// releases its closers.
type Server struct {
	cfg        Config
	httpServer *http.Server
	logger     *slog.Logger
	closers    []io.Closer
	state      atomic.Int32
}

// New creates a Server. Closers are closed in order once draining finishes.
func New(cfg Config, handler http.Handler, logger *slog.Logger, closers ...io.Closer) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		logger:  logger,
		closers: closers,
	}
}

// State reports the current lifecycle phase.
func (s *Server) State() State {
	return State(s.state.Load())
}

func (s *Server) setState(state State) {
	s.state.Store(int32(state))
	s.logger.Debug("server state changed", "state", state.String())
}

// Listen binds the configured address.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return ln, nil
}

// Serve accepts connections on ln until a signal arrives, ctx is cancelled
// or serving fails. It then stops accepting, waits for in-flight requests
// and runs the closers. A second signal while draining closes the remaining
// connections immediately.
func (s *Server) Serve(ctx context.Context, ln net.Listener, signals <-chan os.Signal) error {
	s.setState(StateServing)
	s.logger.Info("listening", "addr", ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case sig := <-signals:
			s.logger.Info("shutdown signal received", "signal", sig.String())
		case <-gctx.Done():
			s.logger.Info("server context done, shutting down")
		}
		return s.drain(signals)
	})

	err := g.Wait()
	if closeErr := s.close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	s.setState(StateStopped)
	s.logger.Info("server stopped")
	return err
}

func (s *Server) drain(signals <-chan os.Signal) error {
	s.setState(StateDraining)

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.cfg.ShutdownTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	defer cancel()

	go func() {
		select {
		case sig := <-signals:
			s.logger.Warn("second signal received, closing remaining connections", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown interrupted, forcing close", "error", err)
		if err := s.httpServer.Close(); err != nil {
			return fmt.Errorf("failed to close server: %w", err)
		}
	}

	return nil
}

func (s *Server) close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Error("failed to release resource", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
