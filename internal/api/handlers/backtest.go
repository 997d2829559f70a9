package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/harshul/nsequant/internal/contracts"
	"github.com/harshul/nsequant/internal/engine"
	"github.com/harshul/nsequant/internal/report"
	"github.com/harshul/nsequant/internal/strategyconfig"
	"github.com/harshul/nsequant/pkg/logger"
)

// BacktestHandler handles backtest API endpoints
// ⭐ SSOT: backtest API handlers live in this struct only
type BacktestHandler struct {
	engine   *engine.Engine
	runRepo  contracts.RunRepository
	strategy *strategyconfig.Config
	logger   *logger.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(eng *engine.Engine, runRepo contracts.RunRepository, strategy *strategyconfig.Config, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{
		engine:   eng,
		runRepo:  runRepo,
		strategy: strategy,
		logger:   log,
	}
}

// RunRequest represents a backtest run request
type RunRequest struct {
	FromYear        int    `json:"from_year"`
	ToYear          int    `json:"to_year"`
	MaxUniverseSize int    `json:"max_universe_size"` // default: strategy file
	PortfolioSize   int    `json:"portfolio_size"`    // default: strategy file
	Metric          string `json:"metric"`            // default: strategy file
	SmoothingDays   int    `json:"smoothing_days"`
}

// RunResponse represents a completed backtest run
type RunResponse struct {
	ID             int64                     `json:"id"`
	Summary        contracts.Summary         `json:"summary"`
	Periods        int                       `json:"periods"`
	Skipped        []contracts.SkippedPeriod `json:"skipped,omitempty"`
	DurationMillis int64                     `json:"duration_ms"`
}

// Run executes a backtest synchronously and persists the result
// POST /api/backtests
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Strategy file values, overridable per request field.
	if req.MaxUniverseSize == 0 {
		req.MaxUniverseSize = h.strategy.Universe.MaxSize
	}
	if req.PortfolioSize == 0 {
		req.PortfolioSize = h.strategy.Portfolio.Size
	}
	if req.Metric == "" {
		req.Metric = string(h.strategy.Ranking.Metric)
	}

	cfg := engine.Config{
		FromYear:        req.FromYear,
		ToYear:          req.ToYear,
		MaxUniverseSize: req.MaxUniverseSize,
		PortfolioSize:   req.PortfolioSize,
		Metric:          contracts.RankMetric(req.Metric),
		SmoothingDays:   req.SmoothingDays,
		InitialValue:    h.strategy.Portfolio.InitialValue,
		KeepAnchorRow:   h.strategy.Calendar.KeepAnchorRow,
	}
	if err := cfg.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.engine.Run(ctx, cfg)
	if err != nil {
		if errors.Is(err, contracts.ErrNoData) || errors.Is(err, contracts.ErrEmptySeries) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.WithError(err).Error("Backtest failed")
		respondError(w, http.StatusInternalServerError, "Backtest failed")
		return
	}

	run := result.ToRun()
	run.ConfigHash, err = strategyconfig.Hash(h.strategy.EffectiveFor(cfg))
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash run config")
		respondError(w, http.StatusInternalServerError, "Failed to save run")
		return
	}
	id, err := h.runRepo.SaveRun(ctx, run)
	if err != nil {
		h.logger.WithError(err).Error("Failed to save run")
		respondError(w, http.StatusInternalServerError, "Failed to save run")
		return
	}

	respondJSON(w, http.StatusCreated, RunResponse{
		ID:             id,
		Summary:        result.Summary,
		Periods:        len(result.Periods),
		Skipped:        result.Skipped,
		DurationMillis: result.Duration.Milliseconds(),
	})
}

// Get returns a persisted run with its full series
// GET /api/backtests/{id}
func (h *BacktestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid run id")
		return
	}

	run, err := h.runRepo.GetRun(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// List returns recent runs, newest first
// GET /api/backtests?limit=20
func (h *BacktestHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	runs, err := h.runRepo.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		respondError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    runs,
	})
}

// SeriesCSV streams a run's value series as CSV
// GET /api/backtests/{id}/series.csv
func (h *BacktestHandler) SeriesCSV(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid run id")
		return
	}

	run, err := h.runRepo.GetRun(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	if err := report.WriteSeriesCSV(w, run.Series); err != nil {
		h.logger.WithError(err).Error("Failed to stream series CSV")
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
