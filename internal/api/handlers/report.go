package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/storepulse/backend/internal/contracts"
	"github.com/wonny/storepulse/backend/internal/delta"
	"github.com/wonny/storepulse/backend/internal/report"
	"github.com/wonny/storepulse/backend/pkg/logger"
)

const defaultTopN = 10

// ReportHandler serves scoring and reporting endpoints.
// ⭐ SSOT: 리포트 API 핸들러는 이 구조체에서만
type ReportHandler struct {
	service *report.Service
	logger  *logger.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service *report.Service, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  log,
	}
}

// scoreRequest is the POST /api/score body.
type scoreRequest struct {
	Records []contracts.RawRecord `json:"records"`

	// Cutoff is the as-of instant for mover comparison; defaults to now.
	Cutoff string `json:"cutoff,omitempty"`
}

// ScoreBatch scores a batch of raw records and returns the full derived
// report. Partial success: rejected records are listed, not fatal.
// POST /api/score
func (h *ReportHandler) ScoreBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Records) == 0 {
		respondError(w, http.StatusBadRequest, "No records provided")
		return
	}

	cutoff := time.Now().UTC()
	if req.Cutoff != "" {
		parsed, err := time.Parse(time.RFC3339, req.Cutoff)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid cutoff: "+err.Error())
			return
		}
		cutoff = parsed.UTC()
	}

	rep, err := h.service.BuildReport(ctx, req.Records, cutoff)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build report")
		respondError(w, http.StatusInternalServerError, "Failed to build report")
		return
	}

	payload := map[string]interface{}{
		"success": true,
		"data":    rep,
	}
	if msg := rep.RejectionMessage(); msg != "" {
		payload["warning"] = msg
	}

	respondJSON(w, http.StatusOK, payload)
}

// trendsRequest is the POST /api/trends body: the records to aggregate plus
// optional filters.
type trendsRequest struct {
	Records        []contracts.RawRecord `json:"records"`
	StoreID        string                `json:"store_id,omitempty"`
	ExcludePeriods []string              `json:"exclude_periods,omitempty"`
}

// GetTrends aggregates submissions into monthly buckets per store.
// POST /api/trends
func (h *ReportHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req trendsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rep, err := h.service.BuildReport(ctx, req.Records, time.Now().UTC())
	if err != nil {
		h.logger.WithError(err).Error("Failed to aggregate trends")
		respondError(w, http.StatusInternalServerError, "Failed to aggregate trends")
		return
	}

	excluded := make(map[string]bool, len(req.ExcludePeriods))
	for _, p := range req.ExcludePeriods {
		excluded[strings.TrimSpace(p)] = true
	}

	buckets := make([]contracts.MonthlyBucket, 0, len(rep.Buckets))
	for _, b := range rep.Buckets {
		if excluded[b.Period] {
			continue
		}
		if req.StoreID != "" && b.StoreID != req.StoreID {
			continue
		}
		buckets = append(buckets, b)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"count":   len(buckets),
			"buckets": buckets,
		},
	})
}

// moversRequest is the POST /api/movers body.
type moversRequest struct {
	Records []contracts.RawRecord `json:"records"`
	Cutoff  string                `json:"cutoff,omitempty"`
	Top     int                   `json:"top,omitempty"`
}

// GetMovers ranks stores by period-over-period change as of the cutoff.
// POST /api/movers?top=10
func (h *ReportHandler) GetMovers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req moversRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cutoff := time.Now().UTC()
	if req.Cutoff != "" {
		parsed, err := time.Parse(time.RFC3339, req.Cutoff)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid cutoff: "+err.Error())
			return
		}
		cutoff = parsed.UTC()
	}

	top := req.Top
	if raw := r.URL.Query().Get("top"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid top parameter")
			return
		}
		top = parsed
	}
	if top <= 0 {
		top = defaultTopN
	}

	rep, err := h.service.BuildReport(ctx, req.Records, cutoff)
	if err != nil {
		h.logger.WithError(err).Error("Failed to rank movers")
		respondError(w, http.StatusInternalServerError, "Failed to rank movers")
		return
	}

	movers := delta.TopN(rep.Movers, top)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"cutoff": cutoff.Format(time.RFC3339),
			"movers": movers,
		},
	})
}

// GetRubric returns the active rubric and its version hash.
// GET /api/rubric
func (h *ReportHandler) GetRubric(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"rubric_hash": h.service.RubricHash(),
		},
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
