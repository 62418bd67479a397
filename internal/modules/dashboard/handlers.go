package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/oneglance/internal/domain"
)

// Handler handles HTTP requests for the presentation views
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new dashboard handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "dashboard").Logger(),
	}
}

// HandleOverview returns the one-glance dashboard
func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build dashboard")
		h.writeError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	h.writeJSON(w, http.StatusOK, overview)
}

// HandleAssetDetail returns the drill-down view for one symbol
func (h *Handler) HandleAssetDetail(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	detail, err := h.service.Detail(symbol)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			h.writeError(w, http.StatusNotFound, "asset not registered")
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to build asset detail")
		h.writeError(w, http.StatusInternalServerError, "failed to build asset detail")
		return
	}
	h.writeJSON(w, http.StatusOK, detail)
}

// HandleTimeline returns an asset's merged metric/event history.
// ?range=Nd controls the window, default 30d.
func (h *Handler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	days, ok := h.parseRange(w, r, 30)
	if !ok {
		return
	}

	entries, err := h.service.Timeline(symbol, days)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			h.writeError(w, http.StatusNotFound, "asset not registered")
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to build timeline")
		h.writeError(w, http.StatusInternalServerError, "failed to build timeline")
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// HandleMetricsRange returns an asset's raw snapshots for ?range=Nd,
// default 30d
func (h *Handler) HandleMetricsRange(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	days, ok := h.parseRange(w, r, 30)
	if !ok {
		return
	}

	history, err := h.service.MetricsRange(symbol, days)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			h.writeError(w, http.StatusNotFound, "asset not registered")
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to fetch metrics range")
		h.writeError(w, http.StatusInternalServerError, "failed to fetch metrics")
		return
	}
	h.writeJSON(w, http.StatusOK, history)
}

func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("range")
	if raw == "" {
		return fallback, true
	}
	days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
	if err != nil || days < 1 || days > 365 {
		h.writeError(w, http.StatusBadRequest, "invalid range, expected Nd with 1 <= N <= 365")
		return 0, false
	}
	return days, true
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
