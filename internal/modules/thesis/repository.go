package thesis

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Repository handles thesis note database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new thesis repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "thesis").Logger(),
	}
}

// Get returns the note for an asset, or nil when none has been written
func (r *Repository) Get(assetID int64) (*Note, error) {
	row := r.db.QueryRow(`
		SELECT asset_id, thesis, risks, catalyst_90d, catalyst_12m, dca_plan, updated_at
		FROM thesis_notes WHERE asset_id = ?`,
		assetID,
	)

	var n Note
	var thesis, risks, cat90, cat12, dca sql.NullString
	err := row.Scan(&n.AssetID, &thesis, &risks, &cat90, &cat12, &dca, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan thesis note: %w", err)
	}

	n.Thesis = nullable(thesis)
	n.Risks = nullable(risks)
	n.Catalyst90 = nullable(cat90)
	n.Catalyst12 = nullable(cat12)
	n.DCAPlan = nullable(dca)
	return &n, nil
}

// Upsert writes the note for an asset, replacing any prior note
func (r *Repository) Upsert(assetID int64, req SaveNoteRequest) error {
	_, err := r.db.Exec(`
		INSERT INTO thesis_notes (asset_id, thesis, risks, catalyst_90d, catalyst_12m, dca_plan, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(asset_id) DO UPDATE SET
			thesis = excluded.thesis,
			risks = excluded.risks,
			catalyst_90d = excluded.catalyst_90d,
			catalyst_12m = excluded.catalyst_12m,
			dca_plan = excluded.dca_plan,
			updated_at = datetime('now')`,
		assetID, req.Thesis, req.Risks, req.Catalyst90, req.Catalyst12, req.DCAPlan,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert thesis note for asset %d: %w", assetID, err)
	}
	return nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
