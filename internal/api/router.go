package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmoraes/brewlake/internal/api/handlers"
	"github.com/dmoraes/brewlake/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
// All routing lives in this function.
func NewRouter(
	metricsHandler *handlers.MetricsHandler,
	qualityHandler *handlers.QualityHandler,
	runsHandler *handlers.RunsHandler,
	pipelineHandler *handlers.PipelineHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Gold metrics
	api.HandleFunc("/metrics", metricsHandler.ListMetrics).Methods("GET")
	api.HandleFunc("/metrics/{name}", metricsHandler.GetMetric).Methods("GET")

	// Quality reports and run history
	api.HandleFunc("/quality/latest", qualityHandler.GetLatest).Methods("GET")
	api.HandleFunc("/runs/latest", runsHandler.GetLatest).Methods("GET")

	// Pipeline trigger
	api.HandleFunc("/pipeline/run", pipelineHandler.TriggerRun).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "brewlake-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
