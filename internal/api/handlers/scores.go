package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/internal/scoring"
	"github.com/wrenlab/sectorscope/internal/sectors"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// ScoresHandler serves the scoring endpoints.
type ScoresHandler struct {
	engine    *scoring.Engine
	snapshots *scoring.SnapshotRepo // nil when no database is configured
	logger    *logger.Logger
}

// NewScoresHandler creates a scores handler. snapshots may be nil.
func NewScoresHandler(engine *scoring.Engine, snapshots *scoring.SnapshotRepo, log *logger.Logger) *ScoresHandler {
	return &ScoresHandler{
		engine:    engine,
		snapshots: snapshots,
		logger:    log,
	}
}

// GetScores returns the full ranked score list.
// GET /api/scores?refresh=false&momentum=0.25&valuation=0.2&...
func (h *ScoresHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	weights, refresh := scoreParams(r)

	res, err := h.engine.Score(r.Context(), weights, refresh)
	if err != nil {
		h.respondScoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// GetSummary returns the condensed top/bottom view.
// GET /api/scores/summary
func (h *ScoresHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	weights, refresh := scoreParams(r)

	summary, err := h.engine.Summarize(r.Context(), weights, refresh)
	if err != nil {
		h.respondScoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// GetSectors returns the fixed sector list with ETF tickers.
// GET /api/sectors
func (h *ScoresHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Sector contracts.Sector `json:"sector"`
		ETF    string           `json:"etf"`
	}
	out := make([]entry, 0, sectors.Count())
	for _, s := range sectors.All() {
		out = append(out, entry{Sector: s, ETF: sectors.ETF(s)})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"sectors": out})
}

// GetSector returns one sector's score breakdown.
// GET /api/sectors/{name}
func (h *ScoresHandler) GetSector(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	sector, ok := sectors.ByName(name)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown sector: "+name)
		return
	}

	weights, refresh := scoreParams(r)
	res, err := h.engine.Score(r.Context(), weights, refresh)
	if err != nil {
		h.respondScoreError(w, err)
		return
	}

	for _, sc := range res.Scores {
		if sc.Sector == sector {
			respondJSON(w, http.StatusOK, sc)
			return
		}
	}
	respondError(w, http.StatusNotFound, "no score for sector: "+name)
}

// GetSectorHistory returns persisted score snapshots for one sector.
// GET /api/sectors/{name}/history?limit=30
func (h *ScoresHandler) GetSectorHistory(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		respondError(w, http.StatusNotImplemented, "score history requires a configured database")
		return
	}

	name := mux.Vars(r)["name"]
	sector, ok := sectors.ByName(name)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown sector: "+name)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	points, err := h.snapshots.History(r.Context(), sector, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load score history")
		respondError(w, http.StatusInternalServerError, "Failed to load score history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sector":  sector,
		"history": points,
	})
}

func (h *ScoresHandler) respondScoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, scoring.ErrNoData) {
		respondError(w, http.StatusServiceUnavailable, "no data available")
		return
	}
	h.logger.WithError(err).Error("Scoring failed")
	respondError(w, http.StatusInternalServerError, "Scoring failed")
}

// scoreParams extracts weights and the refresh flag from query parameters.
// Weight keys are exactly the five indicator names; unknown keys and
// negative values are ignored, and the engine renormalizes.
func scoreParams(r *http.Request) (contracts.Weights, bool) {
	q := r.URL.Query()

	raw := make(map[string]float64)
	for _, ind := range contracts.Indicators() {
		v := q.Get(string(ind))
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		raw[string(ind)] = f
	}

	refresh, _ := strconv.ParseBool(q.Get("refresh"))
	return contracts.ParseWeights(raw), refresh
}
