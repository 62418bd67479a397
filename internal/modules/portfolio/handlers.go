package portfolio

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/oneglance/internal/domain"
)

// Handler handles HTTP requests for portfolio positions
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetSummary returns the valued portfolio summary
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetSummary()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build portfolio summary")
		h.writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// HandleAddPosition records a purchase lot
func (h *Handler) HandleAddPosition(w http.ResponseWriter, r *http.Request) {
	var req AddPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	position, err := h.service.AddPosition(req)
	if err != nil {
		switch {
		case domain.IsValidation(err):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrAssetNotFound):
			h.writeError(w, http.StatusNotFound, "asset not registered")
		default:
			h.log.Error().Err(err).Msg("Failed to add position")
			h.writeError(w, http.StatusInternalServerError, "failed to add position")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, position)
}

// HandleRemovePosition deletes a purchase lot by id
func (h *Handler) HandleRemovePosition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid position id")
		return
	}

	deleted, err := h.service.RemovePosition(id)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to delete position")
		h.writeError(w, http.StatusInternalServerError, "failed to delete position")
		return
	}
	if !deleted {
		h.writeError(w, http.StatusNotFound, "position not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
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
