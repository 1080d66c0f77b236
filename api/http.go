// Package api is the read-only HTTP API over saved fights.
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/tagging-fight-cli/cache"
	"github.com/user/tagging-fight-cli/pkg/logger"
)

// Store is everything the handlers read.
type Store interface {
	Pinger
	FightReader
}

// Server wires HTTP routes.
type Server struct {
	healthHandler *HealthHandler
	fightsHandler *FightsHandler
	logger        *zap.Logger
}

// NewServer creates the API server. reports may be nil to disable caching.
func NewServer(store Store, reports *cache.Reports, log *zap.Logger) *Server {
	return &Server{
		healthHandler: NewHealthHandler(store),
		fightsHandler: NewFightsHandler(store, reports, 0),
		logger:        logger.OrNop(log),
	}
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /fights", MetricsMiddleware(s.fightsHandler.HandleList, "fights"))
	mux.HandleFunc("GET /fights/{id}", MetricsMiddleware(s.fightsHandler.HandleGet, "fight"))
	mux.HandleFunc("GET /fights/{id}/strikes", MetricsMiddleware(s.fightsHandler.HandleStrikes, "fight_strikes"))
	mux.HandleFunc("GET /fights/{id}/report", MetricsMiddleware(s.fightsHandler.HandleReport, "fight_report"))
}

// Handler returns a mux with every route registered and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		mux.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
