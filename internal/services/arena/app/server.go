// Package server assembles and runs the arena service process: journal
// store, token gateway, engine replay, event sinks, and the HTTP
// surface.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/louisbranch/stakepot/internal/platform/timeouts"
	arenahttp "github.com/louisbranch/stakepot/internal/services/arena/api/http"
	"github.com/louisbranch/stakepot/internal/services/arena/auth"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/token"
	"github.com/louisbranch/stakepot/internal/services/arena/engine"
	"github.com/louisbranch/stakepot/internal/services/arena/notify"
	"github.com/louisbranch/stakepot/internal/services/arena/storage/sqlite"
)

// Config defines the inputs for the arena service process.
type Config struct {
	HTTPAddr string
	DBPath   string
	// NATSURL enables the NATS event sink when set.
	NATSURL string
	// Grants configures access grant verification. The key is
	// mandatory; the arena never serves unauthenticated mutations.
	Grants auth.Config
	// Gateway overrides the default in-process vault. Local runs and
	// tests seed a token.Vault; chain-backed custody plugs in here.
	Gateway token.Gateway

	Settings engine.Settings

	AllowedOrigins    []string
	RequestsPerMinute int
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the arena HTTP process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	store           *sqlite.Store
	natsConn        *nats.Conn
}

// NewServer builds a configured arena server.
func NewServer(config Config) (*Server, error) {
	return NewServerWithContext(context.Background(), config)
}

// NewServerWithContext builds a configured arena server. The context
// bounds journal replay.
func NewServerWithContext(ctx context.Context, config Config) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if len(config.Grants.Key) == 0 {
		return nil, errors.New("grant verification key is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	store, err := sqlite.Open(config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open journal store: %w", err)
	}

	gateway := config.Gateway
	if gateway == nil {
		gateway = token.NewVault()
	}

	feed := arenahttp.NewFeed()
	sinks := []notify.Sink{feed}
	var natsConn *nats.Conn
	if url := strings.TrimSpace(config.NATSURL); url != "" {
		natsConn, err = nats.Connect(url)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		sinks = append(sinks, notify.NewNATSPublisher(natsConn, ""))
	}

	eng, err := engine.New(engine.Options{
		Journal:  store,
		Gateway:  gateway,
		Notifier: notify.NewFanout(sinks...),
		Settings: config.Settings,
	})
	if err != nil {
		closeDeps(store, natsConn)
		return nil, fmt.Errorf("build engine: %w", err)
	}
	if err := eng.Replay(ctx); err != nil {
		closeDeps(store, natsConn)
		return nil, fmt.Errorf("replay journal: %w", err)
	}
	feed.Advance(eng.LastSeq())

	handler := arenahttp.NewHandler(arenahttp.Config{
		Engine:            eng,
		Grants:            config.Grants,
		Feed:              feed,
		AllowedOrigins:    config.AllowedOrigins,
		RequestsPerMinute: config.RequestsPerMinute,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           otelhttp.NewHandler(handler, "arena"),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer:      httpServer,
		store:           store,
		natsConn:        natsConn,
	}, nil
}

// Run creates and serves an arena server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServerWithContext(ctx, config)
	if err != nil {
		return fmt.Errorf("init arena server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve arena: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("arena server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Infof("arena server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	closeDeps(s.store, s.natsConn)
}

func closeDeps(store *sqlite.Store, natsConn *nats.Conn) {
	if natsConn != nil {
		natsConn.Close()
	}
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		log.Warnf("arena: close journal store: %v", err)
	}
}
