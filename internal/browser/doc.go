// Package browser owns the lifecycle of browser-automation sessions.
//
// # Resource model
//
// A browser instance is expensive (a full headless Chrome) and its automation
// handle is not safe for concurrent use, so sessions are handed out
// exclusively. [Manager] enforces a configurable capacity (default 1) with a
// slot semaphore: acquisition beyond capacity waits, bounded by the caller's
// deadline and the configured acquire timeout, rather than spawning unbounded
// instances.
//
// [Manager.WithSession] is the only way to obtain a [Session]. It guarantees
// the underlying driver is torn down exactly once on every exit path of the
// wrapped function, including panics.
//
// # Session states
//
// A session moves through uninitialized → acquired → in_use → released.
// The in_use transition happens on the first automation action; released is
// terminal and further actions fail with [shared.ErrSessionReleased].
//
// # Rate-limit detection
//
// Sessions carry a sticky rate-limit signal. It is set by the session itself
// when navigation latency exceeds the configured threshold, or by callers
// (via [Session.SignalRateLimit]) when page content matches a throttling
// marker. The signal is advisory: it is surfaced to the batch caller, never
// silently retried.
//
// The [Driver] interface isolates the one chromedp-backed implementation so
// that everything above it can be exercised with a fake driver in tests.
package browser
