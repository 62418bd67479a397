package scoring

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/oneglance/internal/database"
)

// Repository handles score database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new scoring repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "scoring").Logger(),
	}
}

// Upsert writes the score row for (asset, date), overwriting any prior
// row for the same pair. A duplicate run for the same date therefore
// produces the same end state, not duplicate rows. Each row is written
// in its own transaction so a failed asset never leaves a partial row
// behind for readers.
func (r *Repository) Upsert(s Score) error {
	flagsJSON, err := json.Marshal(s.Flags)
	if err != nil {
		return fmt.Errorf("failed to marshal flags: %w", err)
	}

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO scores
				(asset_id, date, fundamentals_score, tokenomics_score, momentum_score, total_score, status, flags)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(asset_id, date) DO UPDATE SET
				fundamentals_score = excluded.fundamentals_score,
				tokenomics_score = excluded.tokenomics_score,
				momentum_score = excluded.momentum_score,
				total_score = excluded.total_score,
				status = excluded.status,
				flags = excluded.flags,
				created_at = datetime('now')`,
			s.AssetID, s.Date, s.Fundamentals, s.Tokenomics, s.Momentum,
			s.Total, string(s.Status), string(flagsJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert score for asset %d on %s: %w", s.AssetID, s.Date, err)
		}
		return nil
	})
}

const scoreColumns = `asset_id, date, fundamentals_score, tokenomics_score, momentum_score, total_score, status, flags`

// GetLatest returns the most recent score for an asset, or nil when the
// asset has not been scored yet
func (r *Repository) GetLatest(assetID int64) (*Score, error) {
	row := r.db.QueryRow(
		"SELECT "+scoreColumns+" FROM scores WHERE asset_id = ? ORDER BY date DESC LIMIT 1",
		assetID,
	)
	return scanScore(row)
}

// GetByDate returns the score for an exact (asset, date) pair, or nil
func (r *Repository) GetByDate(assetID int64, date string) (*Score, error) {
	row := r.db.QueryRow(
		"SELECT "+scoreColumns+" FROM scores WHERE asset_id = ? AND date = ?",
		assetID, date,
	)
	return scanScore(row)
}

// PreviousStatus returns the status of the most recent score strictly
// before the given date, or nil when there is none. Used only for the
// status-change comparison; the numeric score never reads prior output.
func (r *Repository) PreviousStatus(assetID int64, beforeDate string) (*Status, error) {
	row := r.db.QueryRow(
		"SELECT status FROM scores WHERE asset_id = ? AND date < ? ORDER BY date DESC LIMIT 1",
		assetID, beforeDate,
	)

	var status string
	err := row.Scan(&status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query previous status: %w", err)
	}

	s := Status(status)
	return &s, nil
}

// CountByDate returns the number of score rows for a date
func (r *Repository) CountByDate(date string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM scores WHERE date = ?", date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scores: %w", err)
	}
	return count, nil
}

func scanScore(row *sql.Row) (*Score, error) {
	var s Score
	var status, flagsJSON string

	err := row.Scan(&s.AssetID, &s.Date, &s.Fundamentals, &s.Tokenomics, &s.Momentum,
		&s.Total, &status, &flagsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan score: %w", err)
	}

	s.Status = Status(status)
	if err := json.Unmarshal([]byte(flagsJSON), &s.Flags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flags: %w", err)
	}
	return &s, nil
}
