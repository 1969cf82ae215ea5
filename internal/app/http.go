package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"herbar/client/internal/util"
)

type requestIDKey struct{}

// StatusServer exposes the controller's health, its view state and the
// prometheus collectors.
type StatusServer struct {
	controller *Controller
	gatherer   prometheus.Gatherer
	logger     *slog.Logger
}

func NewStatusServer(controller *Controller, gatherer prometheus.Gatherer, logger *slog.Logger) *StatusServer {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusServer{controller: controller, gatherer: gatherer, logger: logger}
}

func (s *StatusServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	mux.HandleFunc("GET /api/ready", s.handleReady)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return s.withMiddleware(mux)
}

func (s *StatusServer) handleReady(w http.ResponseWriter, r *http.Request) {
	stage := s.controller.Stage()
	status, code := "ready", http.StatusOK
	if stage != StageReady {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"ok":     stage == StageReady,
		"status": status,
		"stage":  stage.String(),
	})
}

func (s *StatusServer) handleState(w http.ResponseWriter, r *http.Request) {
	if s.controller.Stage() != StageReady {
		writeError(w, http.StatusServiceUnavailable, "NOT_READY", "Controller is not ready", map[string]any{
			"stage": s.controller.Stage().String(),
		})
		return
	}
	visible := s.controller.Visible()
	names := make([]string, 0, len(visible))
	for _, rec := range visible {
		names = append(names, rec.Name)
	}
	notes := s.controller.Notifications()
	messages := make([]map[string]any, 0, len(notes))
	for _, n := range notes {
		messages = append(messages, map[string]any{"id": n.ID, "class": n.Class, "message": n.Message, "count": n.Count})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"url":           s.controller.URL(),
		"visible":       names,
		"count":         len(names),
		"notifications": messages,
	})
}

func (s *StatusServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = util.NewID("req")
		}
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		writer.Header().Set("X-Request-ID", requestID)
		writer.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(writer, r)

		s.logger.Debug("http request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", writer.status,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}
