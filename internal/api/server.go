package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/survivor-stats/internal/metrics"
	"github.com/JakeFAU/survivor-stats/internal/store"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// Reader is the read side of survivor.Repository.
type Reader interface {
	Seasons(ctx context.Context) ([]survivor.SeasonStats, error)
	Contestants(ctx context.Context, filter survivor.ContestantFilter) ([]survivor.Contestant, error)
	Episodes(ctx context.Context, season *int) ([]survivor.Episode, error)
}

// Server wires HTTP handlers to a Reader.
type Server struct {
	router chi.Router
	repo   Reader
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(repo Reader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{repo: repo, logger: logger}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(30 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/seasons", s.listSeasons)
		r.Route("/seasons/{number}", func(r chi.Router) {
			r.Get("/", s.getSeason)
			r.Get("/contestants", s.seasonContestants)
			r.Get("/episodes", s.seasonEpisodes)
		})
		r.Get("/contestants", s.listContestants)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz reports ready once the store answers, even before the first build.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.repo.Seasons(r.Context()); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("store not ready", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) listSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := s.repo.Seasons(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, seasons)
}

func (s *Server) getSeason(w http.ResponseWriter, r *http.Request) {
	n, ok := seasonParam(w, r)
	if !ok {
		return
	}
	seasons, err := s.repo.Seasons(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}
	stats, err := store.FindSeason(seasons, n)
	if err != nil {
		writeError(w, http.StatusNotFound, "season not found")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) seasonContestants(w http.ResponseWriter, r *http.Request) {
	n, ok := seasonParam(w, r)
	if !ok {
		return
	}
	contestants, err := s.repo.Contestants(r.Context(), survivor.ContestantFilter{Season: &n})
	if err != nil {
		s.storeError(w, err)
		return
	}
	if len(contestants) == 0 {
		writeError(w, http.StatusNotFound, "season not found")
		return
	}
	writeJSON(w, http.StatusOK, contestants)
}

func (s *Server) seasonEpisodes(w http.ResponseWriter, r *http.Request) {
	n, ok := seasonParam(w, r)
	if !ok {
		return
	}
	episodes, err := s.repo.Episodes(r.Context(), &n)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if len(episodes) == 0 {
		writeError(w, http.StatusNotFound, "season not found")
		return
	}
	writeJSON(w, http.StatusOK, episodes)
}

func (s *Server) listContestants(w http.ResponseWriter, r *http.Request) {
	var filter survivor.ContestantFilter
	q := r.URL.Query()
	for _, f := range []struct {
		key string
		dst **bool
	}{
		{"finalist", &filter.Finalist},
		{"winner", &filter.Winner},
		{"jury", &filter.Jury},
	} {
		raw := q.Get(f.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, f.key+" must be a boolean")
			return
		}
		*f.dst = &v
	}
	contestants, err := s.repo.Contestants(r.Context(), filter)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if contestants == nil {
		contestants = []survivor.Contestant{}
	}
	writeJSON(w, http.StatusOK, contestants)
}

func seasonParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "season number must be a positive integer")
		return 0, false
	}
	return n, true
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "dataset has not been built")
		return
	}
	s.logger.Error("store read failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		reqID, _ := r.Context().Value(requestIDKey{}).(string)
		s.logger.Info("request completed",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
