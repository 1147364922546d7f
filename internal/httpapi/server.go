package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/miradors/internal/httpapi/middleware"
	"github.com/hamed0406/miradors/internal/repo"
)

// Server is the read-only status API: liveness, the last cycle report and
// Prometheus metrics.
type Server struct {
	Logger  *zap.Logger
	Reports repo.ReportStore
	Metrics http.Handler // optional; /metrics is not mounted when nil
	APIKeys []string
}

func NewServer(l *zap.Logger, reports repo.ReportStore, metrics http.Handler, apiKeys []string) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Reports: reports, Metrics: metrics, APIKeys: apiKeys}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.With(apimw.RequireAny(apimw.Keys{Public: s.APIKeys})).Get("/api/status", s.handleStatus)

	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rep, ok, err := s.Reports.Latest(r.Context())
	if err != nil {
		s.Logger.Warn("status_read_error", zap.Error(err))
		http.Error(w, "status unavailable", http.StatusInternalServerError)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rep)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully
// with a 5-second timeout. A clean shutdown returns nil.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	srvErrCh := make(chan error, 1)
	go func() {
		s.Logger.Info("status_listen", zap.String("addr", addr))
		srvErrCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-srvErrCh
	s.Logger.Info("status_stopped")
	return nil
}
