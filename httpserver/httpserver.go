package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/circleci/mongoprofiler/o11y"
	"github.com/circleci/mongoprofiler/system"
)

const (
	defaultTimeout       = 55 * time.Second
	defaultShutdownGrace = 10 * time.Second
)

type Config struct {
	// Name identifies the server in traces and metrics.
	Name    string
	Addr    string
	Handler http.Handler

	// Optional
	// Network is any network net.Listen accepts, defaulting to tcp.
	Network string
	// ReadTimeout and WriteTimeout default to 55s.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// ShutdownGrace is how long in flight requests get to finish, defaulting to 10s.
	ShutdownGrace time.Duration
}

func (c *Config) setDefaults() {
	if c.Network == "" {
		c.Network = "tcp"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaultTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = defaultTimeout
	}
	if c.ShutdownGrace == 0 {
		c.ShutdownGrace = defaultShutdownGrace
	}
}

type HTTPServer struct {
	listener *trackedListener
	server   *http.Server
	grace    time.Duration
}

// New starts listening straight away, so the address is known before Serve is called.
func New(ctx context.Context, cfg Config) (s *HTTPServer, err error) {
	_, span := o11y.StartSpan(ctx, "server: new-server "+cfg.Name)
	defer o11y.End(span, &err)

	cfg.setDefaults()
	span.AddField("server_name", cfg.Name)
	span.AddField("network", cfg.Network)

	ln, err := net.Listen(cfg.Network, cfg.Addr)
	if err != nil {
		return nil, err
	}
	span.AddField("address", ln.Addr().String())

	return &HTTPServer{
		listener: &trackedListener{Listener: ln, name: cfg.Name},
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      cfg.Handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		grace: cfg.ShutdownGrace,
	}, nil
}

// Serve blocks until ctx is done, then shuts the server down.
func (s *HTTPServer) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := s.server.Serve(s.listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	return g.Wait()
}

// MetricsProducer reports the connection gauges of the listener.
func (s *HTTPServer) MetricsProducer() system.MetricProducer {
	return s.listener
}

func (s *HTTPServer) Addr() string {
	return s.listener.Addr().String()
}
