package domain

import "time"

// HistoryEntry is an immutable record prepended to a complaint's history when
// a transition carries additional detail. Absent fields are omitted from the
// stored document, never written as empty strings.
type HistoryEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	File        *string   `json:"file,omitempty"`
	Description *string   `json:"description,omitempty"`
	Comment     *string   `json:"comment,omitempty"`
	Location    *string   `json:"location,omitempty"`
}
