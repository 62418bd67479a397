package thesis

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/oneglance/internal/modules/registry"
)

// Handler handles HTTP requests for thesis notes
type Handler struct {
	repo         *Repository
	registryRepo *registry.Repository
	log          zerolog.Logger
}

// NewHandler creates a new thesis handler
func NewHandler(repo *Repository, registryRepo *registry.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo:         repo,
		registryRepo: registryRepo,
		log:          log.With().Str("handler", "thesis").Logger(),
	}
}

// HandleGetNote returns the thesis note for a symbol
func (h *Handler) HandleGetNote(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.resolveSymbol(w, r)
	if !ok {
		return
	}

	note, err := h.repo.Get(asset.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch thesis note")
		h.writeError(w, http.StatusInternalServerError, "failed to fetch note")
		return
	}
	if note == nil {
		h.writeError(w, http.StatusNotFound, "no thesis note for this asset")
		return
	}

	h.writeJSON(w, http.StatusOK, note)
}

// HandleSaveNote creates or replaces the thesis note for a symbol
func (h *Handler) HandleSaveNote(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.resolveSymbol(w, r)
	if !ok {
		return
	}

	var req SaveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.repo.Upsert(asset.ID, req); err != nil {
		h.log.Error().Err(err).Msg("Failed to save thesis note")
		h.writeError(w, http.StatusInternalServerError, "failed to save note")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) resolveSymbol(w http.ResponseWriter, r *http.Request) (*registry.Asset, bool) {
	symbol := chi.URLParam(r, "symbol")
	asset, err := h.registryRepo.GetBySymbol(symbol)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve symbol")
		h.writeError(w, http.StatusInternalServerError, "failed to resolve symbol")
		return nil, false
	}
	if asset == nil {
		h.writeError(w, http.StatusNotFound, "asset not registered")
		return nil, false
	}
	return asset, true
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
