package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tristendillon/minireact/core/config"
	"github.com/tristendillon/minireact/core/logger"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the metrics endpoint while a watch session runs.
type Server struct {
	Config *config.Config
	mux    *http.ServeMux
}

func NewServer(cfg *config.Config, metrics http.Handler) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	return &Server{Config: cfg, mux: mux}
}

func (s *Server) Addr() string {
	return net.JoinHostPort(s.Config.Server.Host, strconv.Itoa(s.Config.Server.Port))
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Serving metrics on http://%s/metrics", s.Addr())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down metrics server: %w", err)
	}
	logger.Debug("Metrics server stopped")
	return nil
}
