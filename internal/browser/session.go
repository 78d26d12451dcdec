package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/playlift/playlift/internal/shared"
)

// State represents the lifecycle state of a [Session].
type State string

const (
	StateUninitialized State = "uninitialized"
	StateAcquired      State = "acquired"
	StateInUse         State = "in_use"
	StateReleased      State = "released"
)

// Detection configures how a session recognizes platform throttling.
type Detection struct {
	// Markers are lowercase substrings searched for in page text.
	Markers []string
	// LatencyThreshold flags navigations slower than this as throttled.
	// Zero disables latency-based detection.
	LatencyThreshold time.Duration
}

// Session is an exclusive handle to one browser-automation instance.
//
// Sessions are produced by [Manager.WithSession] and must not outlive the
// wrapped function. All automation goes through the session so that state
// checks and throttling detection apply uniformly.
type Session struct {
	id        string
	drv       Driver
	detection Detection

	mu          sync.Mutex
	state       State
	releaseOnce sync.Once
	rateLimited bool
	retryHint   time.Duration
}

// NewSession wraps a live driver in an acquired session.
//
// Exposed so tests can drive the pipeline with a fake [Driver]; production
// code obtains sessions through [Manager.WithSession].
func NewSession(drv Driver, detection Detection) *Session {
	return &Session{
		id:        shared.GenerateID(),
		drv:       drv,
		detection: detection,
		state:     StateAcquired,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// begin marks the session in use, failing if it has been released.
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateReleased {
		return shared.ErrSessionReleased
	}
	s.state = StateInUse
	return nil
}

// Navigate loads a URL through the underlying driver.
//
// Navigation latency above the detection threshold sets the rate-limit
// signal: throttled platforms typically degrade into long page loads before
// they start returning error pages.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.begin(); err != nil {
		return err
	}

	start := time.Now()
	err := s.drv.Navigate(ctx, url)
	elapsed := time.Since(start)

	if s.detection.LatencyThreshold > 0 && elapsed > s.detection.LatencyThreshold {
		s.SignalRateLimit(0)
	}
	return err
}

// WaitReady blocks until an element matching the selector is present.
func (s *Session) WaitReady(ctx context.Context, selector string) error {
	if err := s.begin(); err != nil {
		return err
	}
	return s.drv.WaitReady(ctx, selector)
}

// Evaluate runs a JavaScript expression in the current page.
func (s *Session) Evaluate(ctx context.Context, expr string, out any) error {
	if err := s.begin(); err != nil {
		return err
	}
	return s.drv.Evaluate(ctx, expr, out)
}

// CheckThrottled inspects the current page text for throttling markers and
// sets the rate-limit signal when one is found. Returns whether the page
// looks throttled. Evaluation errors are swallowed: detection is best-effort
// and must not fail the operation that asked.
func (s *Session) CheckThrottled(ctx context.Context) bool {
	if len(s.detection.Markers) == 0 {
		return false
	}
	if err := s.begin(); err != nil {
		return false
	}

	var text string
	if err := s.drv.Evaluate(ctx, "document.body ? document.body.innerText : ''", &text); err != nil {
		return false
	}

	text = strings.ToLower(text)
	for _, marker := range s.detection.Markers {
		if marker != "" && strings.Contains(text, strings.ToLower(marker)) {
			s.SignalRateLimit(0)
			return true
		}
	}
	return false
}

// SignalRateLimit marks the session as rate limited. The flag is sticky for
// the session's lifetime. A non-zero hint suggests how long the caller
// should back off; it is advisory only.
func (s *Session) SignalRateLimit(hint time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateLimited = true
	if hint > s.retryHint {
		s.retryHint = hint
	}
}

// RateLimitSignal reports whether throttling was observed on this session
// and the largest retry hint recorded, if any.
func (s *Session) RateLimitSignal() (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rateLimited, s.retryHint
}

// release tears down the driver. Guaranteed to run the teardown at most
// once; subsequent calls are no-ops.
func (s *Session) release() error {
	var err error
	s.releaseOnce.Do(func() {
		s.mu.Lock()
		s.state = StateReleased
		s.mu.Unlock()
		if closeErr := s.drv.Close(); closeErr != nil {
			err = fmt.Errorf("closing browser driver: %w", closeErr)
		}
	})
	return err
}
