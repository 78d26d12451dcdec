package browser

import "context"

// Driver abstracts a live browser-automation handle.
//
// Implementations are not safe for concurrent use; a Driver is always owned
// by exactly one [Session].
type Driver interface {
	// Navigate loads the given URL and blocks until the page's document is ready.
	Navigate(ctx context.Context, url string) error

	// WaitReady blocks until an element matching the CSS selector is present.
	WaitReady(ctx context.Context, selector string) error

	// Evaluate runs a JavaScript expression in the page and unmarshals its
	// JSON-serializable result into out. Pass nil to discard the result.
	Evaluate(ctx context.Context, expr string, out any) error

	// Close quits the browser instance. Close is idempotent.
	Close() error
}

// DriverFactory creates a fresh Driver. A factory failure means the browser
// could not be started and is fatal to the request that needed it.
type DriverFactory func(ctx context.Context) (Driver, error)
