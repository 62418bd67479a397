package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// SearchMatch is one candidate symbol from an external provider. The
// caller picks a match and adds it through the regular add endpoint.
type SearchMatch struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Kind     string `json:"type,omitempty"`
}

// Searcher finds candidate symbols at an external provider
type Searcher interface {
	SearchSymbols(ctx context.Context, query string) ([]SearchMatch, error)
}

// SearchHandler serves symbol lookup for asset classes that have a
// provider with a search API
type SearchHandler struct {
	searcher Searcher
	log      zerolog.Logger
}

// NewSearchHandler creates a search handler
func NewSearchHandler(searcher Searcher, log zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		searcher: searcher,
		log:      log.With().Str("handler", "registry_search").Logger(),
	}
}

// HandleSearch looks up candidate symbols for ?query=
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	matches, err := h.searcher.SearchSymbols(r.Context(), query)
	if err != nil {
		h.log.Error().Err(err).Str("query", query).Msg("Symbol search failed")
		h.writeError(w, http.StatusBadGateway, "symbol search failed")
		return
	}
	if matches == nil {
		matches = []SearchMatch{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": matches,
	})
}

func (h *SearchHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *SearchHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
