package handlers

import (
	"net/http"

	"github.com/dmoraes/brewlake/internal/contracts"
	"github.com/dmoraes/brewlake/pkg/logger"
)

// QualityHandler serves quality gate reports
type QualityHandler struct {
	qualityRepo contracts.QualityRepository
	logger      *logger.Logger
}

// NewQualityHandler creates a new quality handler
func NewQualityHandler(qualityRepo contracts.QualityRepository, log *logger.Logger) *QualityHandler {
	return &QualityHandler{
		qualityRepo: qualityRepo,
		logger:      log,
	}
}

// GetLatest returns the most recent quality report
// GET /api/quality/latest
func (h *QualityHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.qualityRepo.GetLatest(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get quality report")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve quality report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
