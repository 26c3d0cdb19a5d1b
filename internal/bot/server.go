package bot

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StatusServer exposes the persisted status over HTTP while the poll loop
// runs. It is read-only; all mutation happens through cycles.
type StatusServer struct {
	srv *http.Server
}

func NewStatusServer(addr string, status *StatusFile, respLog *ResponseLogger) *StatusServer {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		st, err := status.Read()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(st)
	})

	r.Get("/responses", func(w http.ResponseWriter, req *http.Request) {
		cutoff := time.Now().Add(-24 * time.Hour)
		if v := req.URL.Query().Get("since"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				cutoff = t
			}
		}
		entries, err := respLog.Recent(cutoff)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	})

	return &StatusServer{srv: &http.Server{Addr: addr, Handler: r}}
}

// Start serves until the listener fails; meant to run in its own goroutine.
func (s *StatusServer) Start() {
	slog.Info("[StatusServer] Listening", slog.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("[StatusServer] Server stopped", slog.String("error", err.Error()))
	}
}

func (s *StatusServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
