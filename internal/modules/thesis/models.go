package thesis

// Note is the operator's standing investment thesis for one asset.
// Exactly one note exists per asset; saving again overwrites.
type Note struct {
	AssetID    int64   `json:"asset_id"`
	Thesis     *string `json:"thesis,omitempty"`
	Risks      *string `json:"risks,omitempty"`
	Catalyst90 *string `json:"catalyst_90d,omitempty"`
	Catalyst12 *string `json:"catalyst_12m,omitempty"`
	DCAPlan    *string `json:"dca_plan,omitempty"`
	UpdatedAt  string  `json:"updated_at"`
}

// SaveNoteRequest is the payload for saving a thesis note
type SaveNoteRequest struct {
	Thesis     *string `json:"thesis,omitempty"`
	Risks      *string `json:"risks,omitempty"`
	Catalyst90 *string `json:"catalyst_90d,omitempty"`
	Catalyst12 *string `json:"catalyst_12m,omitempty"`
	DCAPlan    *string `json:"dca_plan,omitempty"`
}
