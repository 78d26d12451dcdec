// Package repositories implements SQLite-backed storage for the playlist
// extraction cache.
//
// Extraction is the most expensive step of a conversion (a full page load
// plus DOM scraping inside a browser session), and clients page through a
// playlist across many requests. Caching the extracted playlist by source
// URL lets every window after the first skip extraction entirely. Entries
// expire after a TTL: the cache holds extraction results only, never
// conversion outcomes.
package repositories
