// Package extract pulls playlist metadata and track listings out of source
// platforms through a live browser session.
//
// Each platform implements [Extractor]; [Registry.Lookup] selects one by URL
// pattern. Extraction is a side-effecting operation against a
// session-exclusive automation handle: extractors never acquire or release
// the session themselves, so one session can serve both extraction and
// matching within a single request.
//
// Track listings are read in display order and validated to have 0-based,
// gap-free positions before they leave this package.
package extract
