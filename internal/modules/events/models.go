package events

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Type classifies a notable occurrence on an asset's timeline
type Type string

const (
	TypeGovernance Type = "GOVERNANCE"
	TypeUnlock     Type = "UNLOCK"
	TypeExploit    Type = "EXPLOIT"
	TypeRelease    Type = "RELEASE"
	TypeWhale      Type = "WHALE"
	TypeRegulation Type = "REGULATION"
)

// KnownTypes lists every accepted event type
var KnownTypes = map[Type]bool{
	TypeGovernance: true,
	TypeUnlock:     true,
	TypeExploit:    true,
	TypeRelease:    true,
	TypeWhale:      true,
	TypeRegulation: true,
}

// Severity levels, 1 (info) to 5 (critical)
const (
	SeverityInfo     = 1
	SeverityLow      = 2
	SeverityMedium   = 3
	SeverityHigh     = 4
	SeverityCritical = 5
)

// Event is a deduplicated timeline entry for an asset. Events are
// immutable once created; the content hash keeps re-fetches from the
// same external source from producing duplicate rows.
type Event struct {
	ID        int64     `json:"id"`
	AssetID   int64     `json:"asset_id"`
	Hash      string    `json:"event_hash"`
	Timestamp time.Time `json:"timestamp"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	URL       *string   `json:"url,omitempty"`
	Severity  int       `json:"severity"`
	Summary   *string   `json:"summary,omitempty"`
}

// Hash computes the content hash identifying an event. It covers the
// event's semantic identity (asset, type, title, timestamp) so the same
// occurrence fetched twice hashes identically.
func Hash(assetID int64, eventType Type, title string, timestamp time.Time) string {
	content := fmt.Sprintf("%d:%s:%s:%s", assetID, eventType, title, timestamp.UTC().Format(time.RFC3339))
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
