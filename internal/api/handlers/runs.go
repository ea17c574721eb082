package handlers

import (
	"net/http"

	"github.com/dmoraes/brewlake/internal/contracts"
	"github.com/dmoraes/brewlake/pkg/logger"
)

// RunsHandler serves pipeline run history
type RunsHandler struct {
	runRepo contracts.RunRepository
	logger  *logger.Logger
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(runRepo contracts.RunRepository, log *logger.Logger) *RunsHandler {
	return &RunsHandler{
		runRepo: runRepo,
		logger:  log,
	}
}

// GetLatest returns the most recent pipeline run
// GET /api/runs/latest
func (h *RunsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	run, err := h.runRepo.GetLatest(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve latest run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}
