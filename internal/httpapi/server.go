package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeengine/internal/domain"
	apimw "github.com/hamed0406/uptimeengine/internal/httpapi/middleware"
	"github.com/hamed0406/uptimeengine/internal/repo"
	"github.com/hamed0406/uptimeengine/internal/scheduler"
	"github.com/hamed0406/uptimeengine/internal/validate"
)

// CycleRunner runs one check cycle on demand.
type CycleRunner interface {
	RunCycle(ctx context.Context) scheduler.CycleReport
}

// Server is the engine's operations surface: health, metrics and a
// read-only view of the stored checks.
type Server struct {
	Logger   *zap.Logger
	Store    repo.RecordStore
	Engine   CycleRunner
	Gatherer prometheus.Gatherer
}

func NewServer(l *zap.Logger, store repo.RecordStore, engine CycleRunner, g prometheus.Gatherer) *Server {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return &Server{Logger: l, Store: store, Engine: engine, Gatherer: g}
}

func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, publicRPM, publicBurst, adminRPM, adminBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.accessLog)
	if len(allowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "X-API-Key", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(apimw.RateLimit(publicRPM, publicBurst))
			r.Use(apimw.RequireAny(keys))
			r.Get("/checks", s.handleListChecks)
			r.Get("/checks/{id}", s.handleGetCheck)
		})
		r.Group(func(r chi.Router) {
			r.Use(apimw.RateLimit(adminRPM, adminBurst))
			r.Use(apimw.RequireAdmin(keys))
			r.Post("/admin/cycle", s.handleRunCycle)
		})
	})

	return r
}

// HTTPServer wraps h with the timeouts used for the ops listener.
func HTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       5 * time.Second,
		// a forced cycle can take as long as the slowest probe
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := s.Store.List(ctx, domain.ChecksCollection); err != nil {
		s.Logger.Warn("readyz_store_error", zap.Error(err))
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// CheckView is a stored check as seen by the engine: the validated form, or
// the reasons the engine skips it.
type CheckView struct {
	ID       string        `json:"id"`
	Valid    bool          `json:"valid"`
	Check    *domain.Check `json:"check,omitempty"`
	Problems []string      `json:"problems,omitempty"`
}

func view(id string, rec domain.Record) CheckView {
	c, err := validate.Check(rec)
	if err != nil {
		v := CheckView{ID: id}
		for _, e := range multierr.Errors(err) {
			v.Problems = append(v.Problems, e.Error())
		}
		return v
	}
	return CheckView{ID: id, Valid: true, Check: &c}
}

func (s *Server) handleListChecks(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Store.List(r.Context(), domain.ChecksCollection)
	if err != nil {
		s.Logger.Warn("api_list_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	out := make([]CheckView, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Store.Read(r.Context(), domain.ChecksCollection, id)
		if errors.Is(err, repo.ErrNotFound) {
			// deleted between list and read
			continue
		}
		if err != nil {
			s.Logger.Warn("api_read_error", zap.String("check_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "read error")
			return
		}
		out = append(out, view(id, rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCheck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.Store.Read(r.Context(), domain.ChecksCollection, id)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
		return
	case err != nil:
		s.Logger.Warn("api_read_error", zap.String("check_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "read error")
		return
	}
	writeJSON(w, http.StatusOK, view(id, rec))
}

type cycleResponse struct {
	Listed        int   `json:"listed"`
	ReadErrors    int   `json:"readErrors"`
	Invalid       int   `json:"invalid"`
	Probed        int   `json:"probed"`
	Up            int   `json:"up"`
	Down          int   `json:"down"`
	PersistErrors int   `json:"persistErrors"`
	Alerts        int   `json:"alerts"`
	AlertErrors   int   `json:"alertErrors"`
	DurationMS    int64 `json:"durationMs"`
}

func (s *Server) handleRunCycle(w http.ResponseWriter, r *http.Request) {
	if s.Engine == nil {
		writeError(w, http.StatusServiceUnavailable, "engine not running")
		return
	}
	rep := s.Engine.RunCycle(r.Context())
	s.Logger.Info("api_cycle_forced", zap.Int("probed", rep.Probed))
	writeJSON(w, http.StatusOK, cycleResponse{
		Listed:        rep.Listed,
		ReadErrors:    rep.ReadErrors,
		Invalid:       rep.Invalid,
		Probed:        rep.Probed,
		Up:            rep.Up,
		Down:          rep.Down,
		PersistErrors: rep.PersistErrors,
		Alerts:        rep.Alerts,
		AlertErrors:   rep.AlertErrors,
		DurationMS:    rep.Duration.Milliseconds(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
