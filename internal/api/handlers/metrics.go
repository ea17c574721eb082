package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmoraes/brewlake/internal/contracts"
	"github.com/dmoraes/brewlake/pkg/logger"
	"github.com/dmoraes/brewlake/pkg/redis"
)

// metricCacheTTL keeps reads cheap between pipeline runs; the pipeline
// runs daily so a short TTL only bounds staleness after manual triggers
const metricCacheTTL = 60 * time.Second

// MetricsHandler serves gold metric results
type MetricsHandler struct {
	goldRepo contracts.GoldRepository
	cache    *redis.Cache
	logger   *logger.Logger
}

// NewMetricsHandler creates a new metrics handler. A nil cache
// disables caching.
func NewMetricsHandler(goldRepo contracts.GoldRepository, cache *redis.Cache, log *logger.Logger) *MetricsHandler {
	return &MetricsHandler{
		goldRepo: goldRepo,
		cache:    cache,
		logger:   log,
	}
}

// MetricResponse wraps one metric's result rows
type MetricResponse struct {
	Metric  string                   `json:"metric"`
	Count   int                      `json:"count"`
	Results []contracts.MetricResult `json:"results"`
}

// GetMetric returns the latest run's rows for one metric
// GET /api/metrics/{name}
func (h *MetricsHandler) GetMetric(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := mux.Vars(r)["name"]

	if !contracts.IsValidMetric(name) {
		respondError(w, http.StatusNotFound, "Unknown metric: "+name)
		return
	}

	var results []contracts.MetricResult
	fetch := func() (interface{}, error) {
		return h.goldRepo.GetByMetric(ctx, name)
	}

	var err error
	if h.cache != nil {
		err = h.cache.GetOrSet(ctx, redis.MetricKey(name), &results, metricCacheTTL, fetch)
	} else {
		results, err = h.goldRepo.GetByMetric(ctx, name)
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get metric results")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve metric results")
		return
	}

	respondJSON(w, http.StatusOK, MetricResponse{
		Metric:  name,
		Count:   len(results),
		Results: results,
	})
}

// ListMetrics returns the known metric names
// GET /api/metrics
func (h *MetricsHandler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"metrics": contracts.AllMetrics(),
	})
}
