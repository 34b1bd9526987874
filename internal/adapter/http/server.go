package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-radar/internal/domain"
	"github.com/couchcryptid/storm-radar/internal/observability"
	"github.com/couchcryptid/storm-radar/internal/pipeline"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const fetchFailedMessage = "Failed to fetch radar data"

// SnapshotService is what the API needs from the pipeline.
type SnapshotService interface {
	Snapshot(ctx context.Context) (*pipeline.Entry, error)
	Fallback() domain.Dataset
	CheckReadiness(ctx context.Context) error
}

// Server exposes the radar API alongside health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	svc        SnapshotService
	metrics    *observability.Metrics
	logger     *slog.Logger
	clock      clockwork.Clock
}

// NewServer creates an HTTP server. Cross-origin requests are accepted from
// allowedOrigins only, with credentials.
func NewServer(addr string, svc SnapshotService, allowedOrigins []string, metrics *observability.Metrics, logger *slog.Logger) *Server {
	r := mux.NewRouter()

	s := &Server{
		svc:     svc,
		metrics: metrics,
		logger:  logger,
		clock:   clockwork.NewRealClock(),
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/radar-data", s.handleRadarData).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/healthz", sharedobs.LivenessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/readyz", sharedobs.ReadinessHandler(svc)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowCredentials(),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger}),
		handlers.PrintRecoveryStack(true),
	)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      recovery(cors(r)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type errorResponse struct {
	Error    string                    `json:"error"`
	Fallback bool                      `json:"fallback,omitempty"`
	Data     *domain.FeatureCollection `json:"data,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleRadarData(w http.ResponseWriter, r *http.Request) {
	var box *domain.BBox
	if raw := r.URL.Query().Get("bbox"); raw != "" {
		b, err := domain.ParseBBox(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		box = &b
	}

	entry, err := s.svc.Snapshot(r.Context())
	if err != nil {
		s.metrics.HandlerFailures.Inc()
		s.logger.Error("radar data request failed", "error", err)
		fc := s.svc.Fallback().FeatureCollection()
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:    fetchFailedMessage,
			Fallback: true,
			Data:     &fc,
		})
		return
	}

	resp := entry.Response
	if box != nil {
		if resp, err = entry.Within(*box); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, resp.FeatureCollection())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "OK", Timestamp: s.clock.Now().UTC()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

// recoveryLogger routes gorilla's recovered panics into slog.
type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error("http handler panic", "panic", fmt.Sprint(v...))
}
