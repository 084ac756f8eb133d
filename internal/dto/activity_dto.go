package dto

import "time"

// ActivityDateLayout renders dates without any zone designator.
const ActivityDateLayout = "2006-01-02T15:04:05"

// ExportedActivity is the wire form of one entry in the activities document.
type ExportedActivity struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Location string `json:"location"`
}

// ExportResult summarises a single export run.
type ExportResult struct {
	RunID        string    `json:"run_id"`
	OutputPath   string    `json:"output_path"`
	Records      int       `json:"records"`
	Bytes        int       `json:"bytes"`
	Checksum     string    `json:"checksum"`
	GeneratedAt  time.Time `json:"generated_at"`
	MirroredRows int64     `json:"mirrored_rows"`
	Cached       bool      `json:"cached"`
	Announced    bool      `json:"announced"`
}

// ExportedEvent is announced to subscribers after a document has been written.
type ExportedEvent struct {
	RunID       string    `json:"run_id"`
	OutputPath  string    `json:"output_path"`
	Records     int       `json:"records"`
	Checksum    string    `json:"checksum"`
	GeneratedAt time.Time `json:"generated_at"`
}

// CachedDocumentMeta describes the document stored next to the cached payload.
type CachedDocumentMeta struct {
	RunID       string    `json:"run_id"`
	Checksum    string    `json:"checksum"`
	Records     int       `json:"records"`
	GeneratedAt time.Time `json:"generated_at"`
}
