package domain

import "github.com/spec-kit/storefront/internal/docstore"

// BackupVersion is the bundle format version.
const BackupVersion = "1.0"

// BackupBundle is the persisted and downloadable snapshot format.
type BackupBundle struct {
	ID        string                         `json:"id,omitempty"`
	Timestamp string                         `json:"timestamp"`
	Version   string                         `json:"version"`
	Data      map[string][]docstore.Document `json:"data"`
}

// BackupSummary is a history entry without the payload.
type BackupSummary struct {
	ID          string         `json:"id"`
	Timestamp   string         `json:"timestamp"`
	Version     string         `json:"version"`
	RecordCount map[string]int `json:"recordCount"`
}
