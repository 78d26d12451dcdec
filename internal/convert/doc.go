// Package convert orchestrates playlist conversion over bounded, resumable
// batch windows.
//
// One conversion request acquires a single browser session, extracts (or
// reuses a cached) playlist, matches each track in the requested window
// sequentially, and releases the session unconditionally. Per-track failures
// are captured into that track's result and never abort the batch; only
// session-level failures (initialization, extraction) fail the whole
// request.
//
// The batch cursor is recomputed on every request from the client-supplied
// start index; the server keeps no cursor state. Rate limiting observed
// during a window is aggregated into an advisory batch flag; the window is
// always finished, and backing off is the caller's decision.
package convert
