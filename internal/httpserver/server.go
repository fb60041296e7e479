package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ShutdownTimeout bounds how long in-flight requests get to finish.
var ShutdownTimeout = 10 * time.Second

// Server serves the landing page API until its context ends or the process is signalled.
type Server struct {
	inner  *http.Server
	logger *slog.Logger
}

// New constructs a server listening on port. upstreamTimeout is the longest a
// handler may wait on Twitch, so writes are allowed a little longer than that.
func New(port int, handler http.Handler, upstreamTimeout time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	writeTimeout := 10 * time.Second
	if upstreamTimeout > 0 {
		// Token issuance and the video listing may both hit the timeout.
		writeTimeout = 2*upstreamTimeout + 5*time.Second
	}
	return &Server{
		inner: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// Addr reports the listen address.
func (s *Server) Addr() string {
	return s.inner.Addr
}

// WriteTimeout reports the effective write timeout.
func (s *Server) WriteTimeout() time.Duration {
	return s.inner.WriteTimeout
}

// Run serves until ctx is done, SIGINT/SIGTERM arrives or the listener fails,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- s.inner.ListenAndServe()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		s.logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.inner.Shutdown(shutdownCtx)
}
