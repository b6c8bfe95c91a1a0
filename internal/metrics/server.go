package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the scrape endpoint and a liveness check on their own
// HTTP listener, independent of any other part of the scan engine.
type Server struct {
	httpServer *http.Server
}

// NewServer builds a Server bound to host:port. Passing port 0 lets the
// caller resolve a free port first via net.Listen and report it back; this
// type assumes the caller has already picked a concrete address.
func NewServer(host string, port int) *Server {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", healthCheck).Methods("GET")

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      r,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// ListenAndServe blocks serving the metrics endpoint until Shutdown is
// called. It returns nil on a clean shutdown.
func (s *Server) ListenAndServe() error {
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the metrics listener, waiting up to the
// context's deadline for in-flight scrapes to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
