package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/muurk/nfcprofile/internal/logging"
	"github.com/muurk/nfcprofile/internal/tracker"
	"github.com/muurk/nfcprofile/internal/urls"
)

var (
	// ErrNoBridge is returned when a write is requested with no bridge connected.
	ErrNoBridge = errors.New("no tag bridge connected")
	// ErrBridgeGone is reported for writes pending on a bridge that disconnected.
	ErrBridgeGone = errors.New("tag bridge disconnected")
)

// Invoker handles a profile key read from a tag.
type Invoker interface {
	Invoke(key string) (*tracker.Transition, error)
}

// Config holds the server configuration
type Config struct {
	Host         string
	Port         int
	CertPath     string // TLS is enabled when both paths are set
	KeyPath      string
	WriteTimeout time.Duration // default timeout for POST /write
}

type pendingWrite struct {
	bridge *bridge
	result chan WriteResult
}

// Server accepts websocket connections from NFC tag bridges. Tag reads are
// handed to the Invoker; tag writes are sent to the most recently connected
// bridge and complete asynchronously.
type Server struct {
	config     *Config
	invoker    Invoker
	tlsConfig  *tls.Config
	upgrader   websocket.Upgrader
	httpServer *http.Server
	listener   net.Listener
	wg         sync.WaitGroup

	mu      sync.Mutex
	bridges []*bridge
	pending map[string]pendingWrite
}

// New creates a new Server instance
func New(config *Config, invoker Invoker) (*Server, error) {
	var tlsConfig *tls.Config
	if config.CertPath != "" && config.KeyPath != "" {
		var err error
		tlsConfig, err = NewTLSConfig(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 30 * time.Second
	}

	return &Server{
		config:    config,
		invoker:   invoker,
		tlsConfig: tlsConfig,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		pending: make(map[string]pendingWrite),
	}, nil
}

// Listen binds the listening socket. Start calls it when needed.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start serves until ctx is cancelled, a shutdown signal arrives or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	logging.Info("Starting tag bridge server",
		zap.String("addr", s.listener.Addr().String()),
		zap.Any("tls_info", GetTLSInfo(s.tlsConfig)),
	)

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		err := s.httpServer.Serve(s.listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errChan <- err
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
	case <-ctx.Done():
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			logging.Error("Error stopping HTTP server", zap.Error(err))
		}
	}

	// Hijacked websocket connections are not closed by http.Server.
	s.mu.Lock()
	for _, b := range s.bridges {
		logging.Info("Closing bridge connection", zap.String("remote_addr", b.remoteAddr))
		_ = b.conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()
	return nil
}

// ActiveBridges returns the number of connected bridges
func (s *Server) ActiveBridges() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bridges)
}

func (s *Server) addBridge(b *bridge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bridges = append(s.bridges, b)
}

// removeBridge drops b and fails every write still waiting on it.
func (s *Server) removeBridge(b *bridge) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, other := range s.bridges {
		if other == b {
			s.bridges = append(s.bridges[:i], s.bridges[i+1:]...)
			break
		}
	}
	for id, p := range s.pending {
		if p.bridge == b {
			p.result <- WriteResult{ID: id, OK: false, Err: ErrBridgeGone.Error()}
			delete(s.pending, id)
		}
	}
}

// RequestWrite asks the newest bridge to write payload to a tag. The
// result arrives on the returned channel, which receives exactly one value.
func (s *Server) RequestWrite(id string, payload []byte) (<-chan WriteResult, error) {
	s.mu.Lock()
	if len(s.bridges) == 0 {
		s.mu.Unlock()
		return nil, ErrNoBridge
	}
	b := s.bridges[len(s.bridges)-1]
	ch := make(chan WriteResult, 1)
	s.pending[id] = pendingWrite{bridge: b, result: ch}
	s.mu.Unlock()

	if err := b.enqueue(Message{Type: TypeWrite, ID: id, Payload: payload}); err != nil {
		s.cancelWrite(id)
		return nil, err
	}
	return ch, nil
}

func (s *Server) cancelWrite(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

func (s *Server) completeWrite(res WriteResult) {
	s.mu.Lock()
	p, ok := s.pending[res.ID]
	delete(s.pending, res.ID)
	s.mu.Unlock()

	if !ok {
		logging.Warn("Write result for unknown request", zap.String("id", res.ID))
		return
	}
	p.result <- res
}

// WriteTag writes the tag URI for key and waits for the bridge to report
// the outcome.
func (s *Server) WriteTag(ctx context.Context, key string) (*WriteResult, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate write id: %w", err)
	}

	ch, err := s.RequestWrite(id, []byte(urls.TagURI(key)))
	if err != nil {
		return nil, err
	}

	select {
	case res := <-ch:
		logging.Info("Tag write finished", zap.String("profile", key), zap.Bool("ok", res.OK), zap.String("error", res.Err))
		return &res, nil
	case <-ctx.Done():
		s.cancelWrite(id)
		return nil, ctx.Err()
	}
}
