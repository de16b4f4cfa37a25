package handlers

import (
	"net/http"

	"github.com/wrenlab/sectorscope/internal/quality"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// QualityHandler serves the data quality endpoint.
type QualityHandler struct {
	monitor *quality.Monitor
	logger  *logger.Logger
}

// NewQualityHandler creates a quality handler.
func NewQualityHandler(monitor *quality.Monitor, log *logger.Logger) *QualityHandler {
	return &QualityHandler{
		monitor: monitor,
		logger:  log,
	}
}

// GetQuality probes all sources and returns per-source statuses plus the
// worst-of overall status.
// GET /api/data/quality
func (h *QualityHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	report := h.monitor.Check(r.Context())
	respondJSON(w, http.StatusOK, report)
}
