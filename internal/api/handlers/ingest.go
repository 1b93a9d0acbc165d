package handlers

import (
	"net/http"
	"time"

	"github.com/wonny/storepulse/backend/internal/feed"
	"github.com/wonny/storepulse/backend/pkg/logger"
)

// IngestHandler triggers submission ingestion from the external feed.
type IngestHandler struct {
	client *feed.Client
	repo   *feed.Repository
	logger *logger.Logger
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(client *feed.Client, repo *feed.Repository, log *logger.Logger) *IngestHandler {
	return &IngestHandler{
		client: client,
		repo:   repo,
		logger: log,
	}
}

// Ingest fetches raw submissions for a time window and stores them.
// POST /api/ingest?since=RFC3339&until=RFC3339
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	until := time.Now().UTC()
	since := until.AddDate(0, 0, -1)

	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid since: "+err.Error())
			return
		}
		since = parsed.UTC()
	}
	if raw := r.URL.Query().Get("until"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid until: "+err.Error())
			return
		}
		until = parsed.UTC()
	}
	if !since.Before(until) {
		respondError(w, http.StatusBadRequest, "since must be before until")
		return
	}

	records, err := h.client.FetchSubmissions(ctx, since, until)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch submissions")
		respondError(w, http.StatusBadGateway, "Failed to fetch submissions")
		return
	}

	if err := h.repo.SaveBatch(ctx, records); err != nil {
		h.logger.WithError(err).Error("Failed to store submissions")
		respondError(w, http.StatusInternalServerError, "Failed to store submissions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"since": since.Format(time.RFC3339),
			"until": until.Format(time.RFC3339),
			"count": len(records),
		},
	})
}
