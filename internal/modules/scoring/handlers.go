package scoring

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Handler handles HTTP requests for the scoring engine
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new scoring handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "scoring").Logger(),
	}
}

// HandleCompute runs a full scoring pass for today and returns the
// batch summary. An optional ?date=YYYY-MM-DD re-runs a past date.
func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now().UTC()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	summary, err := h.service.ComputeAll(r.Context(), asOf)
	if err != nil {
		h.log.Error().Err(err).Msg("Scoring pass failed")
		h.writeError(w, http.StatusInternalServerError, "scoring pass failed")
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
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
