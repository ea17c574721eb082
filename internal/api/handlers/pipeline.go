package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmoraes/brewlake/internal/pipeline"
	"github.com/dmoraes/brewlake/pkg/logger"
)

// runTimeout bounds a triggered run; a full crawl plus aggregation
// finishes well inside this
const runTimeout = 30 * time.Minute

// PipelineHandler triggers pipeline runs over HTTP
type PipelineHandler struct {
	orchestrator *pipeline.Orchestrator
	logger       *logger.Logger
}

// NewPipelineHandler creates a new pipeline trigger handler
func NewPipelineHandler(orchestrator *pipeline.Orchestrator, log *logger.Logger) *PipelineHandler {
	return &PipelineHandler{
		orchestrator: orchestrator,
		logger:       log,
	}
}

// TriggerRequest represents a pipeline trigger request
type TriggerRequest struct {
	SkipIngest     bool `json:"skip_ingest"`
	DryRun         bool `json:"dry_run"`
	ForceAggregate bool `json:"force_aggregate"`
}

// TriggerResponse represents a pipeline trigger response
type TriggerResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// TriggerRun starts a pipeline run in the background
// POST /api/pipeline/run
func (h *PipelineHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	// An empty body means default options
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	runID := pipeline.GenerateRunID()
	config := pipeline.RunConfig{
		RunID:          runID,
		SkipIngest:     req.SkipIngest,
		DryRun:         req.DryRun,
		ForceAggregate: req.ForceAggregate,
	}

	// The run outlives the HTTP request; outcome lands in run history
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		if _, err := h.orchestrator.Run(ctx, config); err != nil {
			h.logger.WithField("run_id", runID).WithError(err).Error("Triggered pipeline run failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, TriggerResponse{
		RunID:  runID,
		Status: "started",
	})
}
