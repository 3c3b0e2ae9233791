// Package testutil provides test doubles shared across packages: a
// steppable clock and an event recorder.
package testutil

import (
	"sync"
	"time"

	"github.com/mescon/Composelab/internal/clock"
	"github.com/mescon/Composelab/internal/domain"
	"github.com/mescon/Composelab/internal/eventbus"
)

// =============================================================================
// MockClock - Testable time abstraction
// =============================================================================

// MockClock implements clock.Clock with manual time. Callbacks run
// synchronously on the goroutine that calls Advance or FireAll.
type MockClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*pendingFunc
}

type pendingFunc struct {
	executeAt time.Time
	fn        func()
	done      bool // fired or stopped
}

// MockTimer implements clock.Timer for MockClock.
type MockTimer struct {
	clock *MockClock
	pf    *pendingFunc
}

// Compile-time assertion that MockClock implements clock.Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock starting at the current wall time.
func NewMockClock() *MockClock {
	return &MockClock{now: time.Now()}
}

// NewMockClockAt creates a MockClock starting at t.
func NewMockClockAt(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *MockClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	pf := &pendingFunc{executeAt: m.now.Add(d), fn: f}
	m.pending = append(m.pending, pf)
	return &MockTimer{clock: m, pf: pf}
}

// Advance moves time forward by d, firing due callbacks in schedule order.
// Time is moved to each callback's due time before it runs, so a callback
// that schedules another one within the window (a repeating ticker) fires
// again in the same call. Returns the number of callbacks executed.
func (m *MockClock) Advance(d time.Duration) int {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	executed := 0
	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return executed
		}
		next.done = true
		m.now = next.executeAt
		m.mu.Unlock()

		next.fn()
		executed++
	}
}

// nextDueLocked returns the earliest pending callback due at or before target.
func (m *MockClock) nextDueLocked(target time.Time) *pendingFunc {
	var next *pendingFunc
	for _, pf := range m.pending {
		if pf.done || pf.executeAt.After(target) {
			continue
		}
		if next == nil || pf.executeAt.Before(next.executeAt) {
			next = pf
		}
	}
	return next
}

// FireAll runs every callback pending right now, regardless of due time.
// Callbacks they schedule are left pending. Returns the number executed.
func (m *MockClock) FireAll() int {
	m.mu.Lock()
	var toExecute []func()
	for _, pf := range m.pending {
		if !pf.done {
			toExecute = append(toExecute, pf.fn)
			pf.done = true
		}
	}
	m.mu.Unlock()

	for _, fn := range toExecute {
		fn()
	}
	return len(toExecute)
}

// PendingCount returns the number of callbacks neither fired nor stopped.
func (m *MockClock) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, pf := range m.pending {
		if !pf.done {
			count++
		}
	}
	return count
}

func (t *MockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.pf.done {
		return false
	}
	t.pf.done = true
	return true
}

// =============================================================================
// LeakyClock - timers that cannot be cancelled
// =============================================================================

// LeakyClock wraps MockClock but its timers ignore Stop and report that
// the callback is already running. It simulates the race where a timer
// fires concurrently with its cancellation.
type LeakyClock struct {
	*MockClock
}

// NewLeakyClock returns a LeakyClock over a fresh MockClock.
func NewLeakyClock() *LeakyClock {
	return &LeakyClock{MockClock: NewMockClock()}
}

func (l *LeakyClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	l.MockClock.AfterFunc(d, f)
	return leakyTimer{}
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

// =============================================================================
// RecordingPublisher - captures published events
// =============================================================================

// RecordingPublisher implements eventbus.Publisher by storing events in order.
// Subscribe is accepted and ignored.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

var _ eventbus.Publisher = (*RecordingPublisher)(nil)

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Subscribe(domain.EventType, func(domain.Event)) {}

// Events returns a copy of everything published so far.
func (p *RecordingPublisher) Events() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Event, len(p.events))
	copy(out, p.events)
	return out
}

// Types returns the event types published so far, in order.
func (p *RecordingPublisher) Types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

// Count returns how many events of type et were published.
func (p *RecordingPublisher) Count(et domain.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.EventType == et {
			n++
		}
	}
	return n
}
