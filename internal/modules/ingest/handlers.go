package ingest

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler handles HTTP requests for the ingestion gateway
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new ingest handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "ingest").Logger(),
	}
}

// HandleIngestMetrics accepts a batch of metric observations
func (h *Handler) HandleIngestMetrics(w http.ResponseWriter, r *http.Request) {
	var req MetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Metrics) == 0 {
		h.writeError(w, http.StatusBadRequest, "metrics array is required")
		return
	}

	resp, err := h.service.IngestMetrics(req.Metrics)
	if err != nil {
		h.log.Error().Err(err).Msg("Metric ingest failed")
		h.writeError(w, http.StatusInternalServerError, "ingest failed")
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HandleIngestEvents accepts a batch of events
func (h *Handler) HandleIngestEvents(w http.ResponseWriter, r *http.Request) {
	var req EventsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Events) == 0 {
		h.writeError(w, http.StatusBadRequest, "events array is required")
		return
	}

	resp, err := h.service.IngestEvents(req.Events)
	if err != nil {
		h.log.Error().Err(err).Msg("Event ingest failed")
		h.writeError(w, http.StatusInternalServerError, "ingest failed")
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
