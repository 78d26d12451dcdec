// Package models defines the data transfer objects shared by the conversion pipeline.
//
// The types fall into three groups:
//
// 1. Source-side data produced by extraction:
//   - [Playlist] : An extracted playlist with its ordered track listing
//   - [SourceTrack] : A single track with its stable playlist position
//
// 2. Target-side data produced by matching:
//   - [MatchCandidate] : A candidate track found on the target platform
//   - [TrackResult] : The per-track outcome of one batch invocation
//
// 3. Pagination:
//   - [BatchCursor] : The [start, end) window over an ordered track list
//
// None of these types are persisted as-is; the playlist extraction cache in
// internal/repositories serializes [Playlist] values keyed by source URL, and
// everything else lives for the duration of a single request.
package models
