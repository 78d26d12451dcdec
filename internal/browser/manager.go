package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/playlift/playlift/internal/shared"
)

const defaultAcquireTimeout = 60 * time.Second

// Manager hands out exclusive browser sessions up to a fixed capacity.
type Manager struct {
	factory        DriverFactory
	slots          chan struct{}
	acquireTimeout time.Duration
	detection      Detection
	logger         *log.Logger
}

// Option configures a [Manager].
type Option func(*Manager)

// WithCapacity sets the maximum number of concurrent sessions. Values below
// one are treated as one.
func WithCapacity(n int) Option {
	return func(m *Manager) {
		if n < 1 {
			n = 1
		}
		m.slots = make(chan struct{}, n)
	}
}

// WithAcquireTimeout bounds how long a caller may wait for a session slot.
func WithAcquireTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.acquireTimeout = d
		}
	}
}

// WithDetection sets the throttling detection configuration applied to every
// session.
func WithDetection(d Detection) Option {
	return func(m *Manager) {
		m.detection = d
	}
}

// WithManagerLogger sets the logger used for session lifecycle events.
func WithManagerLogger(l *log.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager creates a session manager around the given driver factory.
// Capacity defaults to 1: one full browser instance is expensive enough that
// serializing independent requests is the deliberate default.
func NewManager(factory DriverFactory, opts ...Option) *Manager {
	m := &Manager{
		factory:        factory,
		slots:          make(chan struct{}, 1),
		acquireTimeout: defaultAcquireTimeout,
		logger:         shared.NewLogger(nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Capacity returns the maximum number of concurrent sessions.
func (m *Manager) Capacity() int {
	return cap(m.slots)
}

// WithSession acquires a session slot, starts a browser, runs fn with the
// live session, and releases everything on every exit path of fn, including
// panics.
//
// Slot acquisition waits up to the acquire timeout or the caller's deadline,
// whichever ends first. Driver startup failure is reported as
// [shared.ErrSessionInit] and nothing downstream runs.
func (m *Manager) WithSession(ctx context.Context, fn func(*Session) error) error {
	waitCtx, cancel := context.WithTimeout(ctx, m.acquireTimeout)
	defer cancel()

	select {
	case m.slots <- struct{}{}:
	case <-waitCtx.Done():
		return fmt.Errorf("%w: waited %s for a session slot: %v", shared.ErrSessionAcquire, m.acquireTimeout, waitCtx.Err())
	}
	defer func() { <-m.slots }()

	drv, err := m.factory(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSessionInit, err)
	}

	sess := NewSession(drv, m.detection)
	m.logger.Debug("session acquired", "session_id", sess.ID())

	defer func() {
		if err := sess.release(); err != nil {
			m.logger.Warn("session teardown failed", "session_id", sess.ID(), "error", err)
		} else {
			m.logger.Debug("session released", "session_id", sess.ID())
		}
	}()

	return fn(sess)
}
