// package models defines the data model for the playlist conversion service
package models

import "fmt"

// Playlist represents an extracted playlist from a source platform.
//
// Track order mirrors the playlist's display order and is semantically
// meaningful. A Playlist is immutable after extraction.
type Playlist struct {
	URL      string        `json:"url"`      // Source playlist URL
	Platform string        `json:"platform"` // Platform tag, e.g. "spotify" or "apple-music"
	Name     string        `json:"name"`     // Display name
	Tracks   []SourceTrack `json:"tracks"`   // Ordered by Position, 0-based
}

// Total returns the number of tracks in the playlist.
func (p *Playlist) Total() int {
	return len(p.Tracks)
}

// Validate checks that track positions are 0-based, gap-free, and unique.
func (p *Playlist) Validate() error {
	for i, track := range p.Tracks {
		if track.Position != i {
			return fmt.Errorf("track %q has position %d, want %d", track.Name, track.Position, i)
		}
	}
	return nil
}

// SourceTrack represents a single track within a source playlist.
type SourceTrack struct {
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`      // Ordered, primary artist first
	DurationSec int      `json:"duration_sec"` // 0 when unknown
	Position    int      `json:"position"`     // 0-based, stable across batches
}

// MatchCandidate represents a track found on the target platform.
// Candidates are transient; they are never persisted.
type MatchCandidate struct {
	Title       string `json:"title"`
	Uploader    string `json:"uploader"` // Display name of the uploader/channel
	URL         string `json:"url"`
	DurationSec int    `json:"duration_sec,omitempty"` // 0 when the platform did not expose one
}

// TrackStatus categorizes the per-track outcome of a batch invocation.
type TrackStatus string

const (
	StatusMatched     TrackStatus = "matched"
	StatusNoMatch     TrackStatus = "no_match"
	StatusFailed      TrackStatus = "failed"
	StatusRateLimited TrackStatus = "rate_limited"
)

// TrackResult is the outcome of converting a single SourceTrack.
//
// Match is present iff Success is true. A no-match is a normal outcome, not
// an error: Status is [StatusNoMatch] and Error carries a human-readable
// explanation for the client's failure row.
type TrackResult struct {
	Source  SourceTrack     `json:"source"`
	Match   *MatchCandidate `json:"match,omitempty"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Status  TrackStatus     `json:"status"`
}

// BatchCursor describes the [Start, End) window of one batch over the full
// track list. It is recomputed on every request and never persisted
// server-side; the client supplies the next start index.
//
// Invariant: 0 <= Start <= End <= Total and HasMore == (End < Total).
type BatchCursor struct {
	Start   int  `json:"start"`    // Inclusive
	End     int  `json:"end"`      // Exclusive
	Total   int  `json:"total"`    // Total tracks in the playlist
	HasMore bool `json:"has_more"` // End < Total
}
