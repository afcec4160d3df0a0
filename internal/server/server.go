// Package server implements the HTTP control surface of the studiolink bridge.
//
// The server owns the listener lifecycle and the shared request-visible
// state: the diagnostic ring buffer and the compile status tracker. Handlers
// read that state or defer mutations onto the host control goroutine; they
// never touch host-only state from an HTTP worker.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	apimetric "go.opentelemetry.io/otel/metric"

	"github.com/studiolink/studiolink/errs"
	"github.com/studiolink/studiolink/internal/compilestate"
	"github.com/studiolink/studiolink/internal/host"
	"github.com/studiolink/studiolink/internal/logbuf"
)

const (
	serverName    = "studiolink"
	serverVersion = "1.0.0"

	readHeaderTimeout = 5 * time.Second
)

// Options configures a control server.
type Options struct {
	Host       host.Host
	Dispatcher host.Dispatcher
	Logger     *log.Logger
	// LogCapacity bounds the diagnostic buffer; <=0 selects the default.
	LogCapacity int
	// ShutdownTimeout bounds how long Stop waits for the serve loop.
	ShutdownTimeout time.Duration
	// Meter enables request/deferred-call counters when set.
	Meter apimetric.Meter
}

// Server is the long-lived HTTP control endpoint embedded in the host.
type Server struct {
	host            host.Host
	dispatcher      host.Dispatcher
	logger          *log.Logger
	buffer          *logbuf.Buffer
	tracker         *compilestate.Tracker
	metrics         *serverMetrics
	shutdownTimeout time.Duration

	mu           sync.Mutex
	listener     net.Listener
	httpServer   *http.Server
	serveLoop    *conc.WaitGroup
	running      bool
	unsubLogs    func()
	unsubCompile func()
}

// New constructs a stopped server. Start binds the listener.
func New(opts Options) (*Server, error) {
	if opts.Host == nil {
		return nil, errs.New("server/new", errs.CodeInvalid, errs.WithMessage("host required"))
	}
	if opts.Dispatcher == nil {
		return nil, errs.New("server/new", errs.CodeInvalid, errs.WithMessage("dispatcher required"))
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Server{
		host:            opts.Host,
		dispatcher:      opts.Dispatcher,
		logger:          logger,
		buffer:          logbuf.New(opts.LogCapacity),
		tracker:         compilestate.NewTracker(),
		metrics:         newServerMetrics(opts.Meter),
		shutdownTimeout: timeout,
	}, nil
}

// Start binds the loopback listener on port and launches the serve loop.
// Bind failures are logged and returned; the server stays stopped and does
// not retry. Calling Start while running is a logged no-op.
func (s *Server) Start(port int) error {
	s.mu.Lock()
	if s.running {
		addr := s.listener.Addr()
		s.mu.Unlock()
		s.logger.Printf("control server already running on %s", addr)
		return nil
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		s.mu.Unlock()
		bindErr := errs.New("server/start", errs.CodeBind,
			errs.WithMessage(fmt.Sprintf("bind port %d", port)),
			errs.WithCause(err))
		s.logger.Printf("control server start failed: %v", bindErr)
		return bindErr
	}

	httpServer := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.listener = listener
	s.httpServer = httpServer
	s.serveLoop = new(conc.WaitGroup)
	s.running = true
	s.unsubLogs = s.host.SubscribeLogs(s.onLogEvent)
	s.unsubCompile = s.host.SubscribeCompile(s.onCompileEvent)
	loop := s.serveLoop
	s.mu.Unlock()

	loop.Go(func() {
		err := httpServer.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			s.logger.Print("listener closed")
			return
		}
		if err != nil {
			s.logger.Printf("serve loop ended: %v",
				errs.New("server/serve", errs.CodeTransient, errs.WithCause(err)))
		}
	})

	s.logger.Printf("control server listening on %s", listener.Addr())
	return nil
}

// Stop tears down the listener and unregisters host observers. It waits for
// the serve loop up to the configured timeout, then force-closes; a second
// Stop is a no-op.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	httpServer := s.httpServer
	loop := s.serveLoop
	unsubLogs := s.unsubLogs
	unsubCompile := s.unsubCompile
	s.running = false
	s.listener = nil
	s.httpServer = nil
	s.serveLoop = nil
	s.unsubLogs = nil
	s.unsubCompile = nil
	s.mu.Unlock()

	if unsubLogs != nil {
		unsubLogs()
	}
	if unsubCompile != nil {
		unsubCompile()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		s.logger.Printf("graceful shutdown timed out, forcing close: %v", err)
		_ = httpServer.Close()
	}
	loop.Wait()
	s.logger.Print("control server stopped")
}

// Running reports whether the listener is live.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Addr returns the bound listener address, or "" when stopped. With port 0
// this exposes the kernel-assigned port.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) onLogEvent(entry logbuf.Entry) {
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	s.buffer.Append(entry)
	s.metrics.recordLogEvent(context.Background(), entry.Severity.String())
}

func (s *Server) onCompileEvent(ev host.CompileEvent) {
	switch ev.Kind {
	case host.CompileStarted:
		s.tracker.Begin()
	case host.CompileUnitFinished:
		s.tracker.UnitFinished(ev.Unit, ev.Messages)
	case host.CompileFinished:
		s.tracker.Finish()
	}
}

// Buffer exposes the diagnostic buffer for embedding hosts that feed it
// directly.
func (s *Server) Buffer() *logbuf.Buffer { return s.buffer }
