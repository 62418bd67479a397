package registry

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles registry HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new registry handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "registry").Logger(),
	}
}

// HandleListAssets returns all active assets with their source mappings
func (h *Handler) HandleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.repo.GetActive()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if assets == nil {
		assets = []AssetWithSource{}
	}
	h.writeJSON(w, http.StatusOK, assets)
}

// HandleAddAsset adds an asset to the watchlist (or reactivates it)
func (h *Handler) HandleAddAsset(w http.ResponseWriter, r *http.Request) {
	var req AddAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Symbol) == "" || strings.TrimSpace(req.Name) == "" {
		h.writeError(w, http.StatusBadRequest, "symbol and name are required")
		return
	}

	asset, err := h.repo.Add(req, TrackingWatchlist)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.Info().Str("symbol", asset.Symbol).Msg("Asset added to watchlist")
	h.writeJSON(w, http.StatusCreated, asset)
}

// HandleRemoveAsset deactivates an asset. History is preserved.
func (h *Handler) HandleRemoveAsset(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	removed, err := h.repo.Deactivate(symbol)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		h.writeError(w, http.StatusNotFound, "asset not found: "+symbol)
		return
	}

	h.log.Info().Str("symbol", symbol).Msg("Asset deactivated")
	h.writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
