package events

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles event database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

const eventColumns = `id, asset_id, event_hash, timestamp, type, title, url, severity, summary`

// NewRepository creates a new events repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "events").Logger(),
	}
}

// Insert stores an event, deduplicating on content hash.
// Returns true when a row was created, false when an identical event
// already existed.
func (r *Repository) Insert(e Event) (bool, error) {
	res, err := r.db.Exec(`
		INSERT INTO events (asset_id, event_hash, timestamp, type, title, url, severity, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_hash) DO NOTHING`,
		e.AssetID, e.Hash, e.Timestamp.UTC().Format(time.RFC3339),
		string(e.Type), e.Title, e.URL, e.Severity, e.Summary,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert event %s: %w", e.Title, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

// Recent returns the newest events for an asset, newest first
func (r *Repository) Recent(assetID int64, limit int) ([]Event, error) {
	rows, err := r.db.Query(
		"SELECT "+eventColumns+" FROM events WHERE asset_id = ? ORDER BY timestamp DESC LIMIT ?",
		assetID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Window returns all events for an asset with a timestamp at or after
// `since`, newest first. Used by the scoring engine's trailing windows.
func (r *Repository) Window(assetID int64, since time.Time) ([]Event, error) {
	rows, err := r.db.Query(
		"SELECT "+eventColumns+" FROM events WHERE asset_id = ? AND timestamp >= ? ORDER BY timestamp DESC",
		assetID, since.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query event window: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var result []Event
	for rows.Next() {
		var e Event
		var ts string
		var url, summary sql.NullString
		var typ string

		err := rows.Scan(&e.ID, &e.AssetID, &e.Hash, &ts, &typ, &e.Title, &url, &e.Severity, &summary)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event timestamp %q: %w", ts, err)
		}
		e.Timestamp = parsed
		e.Type = Type(typ)
		if url.Valid {
			v := url.String
			e.URL = &v
		}
		if summary.Valid {
			v := summary.String
			e.Summary = &v
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return result, nil
}
