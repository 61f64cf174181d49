package scans

import "time"

// Status enum: terminal outcome of one scan request.
type Status string

const (
	StatusMatchFound      Status = "match_found"
	StatusVerifiedResult  Status = "verified_result"
	StatusCommunityResult Status = "community_result"
	StatusAIAnalysis      Status = "ai_analysis"
	StatusNotArt          Status = "not_art"
)

// ScanEvent is one row in the append-only scan ledger. Every completed
// scan records exactly one event, including not_art outcomes (nil artwork).
type ScanEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ArtworkID *string   `json:"artwork_id,omitempty"`
	ImageURL  string    `json:"image_url"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary rekap aktivitas scan untuk admin analytics.
type Summary struct {
	TotalScans  int `json:"total_scans"`
	Matched     int `json:"matched"`
	UniqueUsers int `json:"unique_users"`
}
