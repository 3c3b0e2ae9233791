package widgets

import (
	"sync"
	"time"

	"github.com/mescon/Composelab/internal/clock"
	"github.com/mescon/Composelab/internal/domain"
	"github.com/mescon/Composelab/internal/eventbus"
	"github.com/mescon/Composelab/internal/logger"
)

// State is the stopwatch state machine position.
type State string

const (
	Stopped State = "stopped"
	Running State = "running"
)

// StopwatchConfig configures a Stopwatch. Zero values select defaults:
// a one-second interval and the real clock. Publisher may be nil.
type StopwatchConfig struct {
	Seed      int
	Interval  time.Duration
	Clock     clock.Clock
	Publisher eventbus.Publisher
}

// Stopwatch counts whole seconds while running.
type Stopwatch struct {
	mu        sync.Mutex
	clk       clock.Clock
	interval  time.Duration
	publisher eventbus.Publisher

	elapsed int
	state   State

	// generation identifies the live ticker. A tick carrying any other
	// value was cancelled and must not apply.
	generation uint64
	timer      clock.Timer
	// next is when the armed tick is due. Each tick is scheduled from the
	// previous due time so callback latency does not accumulate.
	next       time.Time
	closed     bool
	discarded  uint64
}

// StopwatchSnapshot is the rendered state of a Stopwatch, including which
// buttons are enabled.
type StopwatchSnapshot struct {
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Display        string `json:"display"`
	State          State  `json:"state"`
	Running        bool   `json:"running"`
	CanStart       bool   `json:"can_start"`
	CanStop        bool   `json:"can_stop"`
	CanReset       bool   `json:"can_reset"`
}

func NewStopwatch(cfg StopwatchConfig) *Stopwatch {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	seed := cfg.Seed
	if seed < 0 {
		seed = 0
	}
	return &Stopwatch{
		clk:       clock.Default(cfg.Clock),
		interval:  interval,
		publisher: cfg.Publisher,
		elapsed:   seed,
		state:     Stopped,
	}
}

// Start moves Stopped to Running and arms the ticker. It returns false and
// changes nothing when already running or closed.
func (s *Stopwatch) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state == Running {
		return false
	}
	s.state = Running
	s.generation++
	s.next = s.clk.Now().Add(s.interval)
	s.armLocked(s.generation)
	s.publishLocked(domain.StopwatchStarted)
	return true
}

// Stop moves Running to Stopped and cancels the ticker. It returns false when
// already stopped.
func (s *Stopwatch) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return false
	}
	s.haltLocked()
	s.publishLocked(domain.StopwatchStopped)
	return true
}

// Reset stops the stopwatch from any state and zeroes the elapsed time.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.haltLocked()
	s.elapsed = 0
	s.publishLocked(domain.StopwatchReset)
}

// Close cancels the ticker for good. Later Start calls are no-ops; Reset and
// reads keep working.
func (s *Stopwatch) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	wasRunning := s.state == Running
	s.haltLocked()
	s.closed = true
	if wasRunning {
		s.publishLocked(domain.StopwatchStopped)
	}
}

func (s *Stopwatch) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *Stopwatch) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Stopwatch) IsRunning() bool {
	return s.State() == Running
}

// Interval returns the tick period.
func (s *Stopwatch) Interval() time.Duration {
	return s.interval
}

// DiscardedTicks counts ticks that fired after their ticker was cancelled.
func (s *Stopwatch) DiscardedTicks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discarded
}

func (s *Stopwatch) Snapshot() StopwatchSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Stopwatch) snapshotLocked() StopwatchSnapshot {
	running := s.state == Running
	return StopwatchSnapshot{
		ElapsedSeconds: s.elapsed,
		Display:        FormatElapsed(s.elapsed),
		State:          s.state,
		Running:        running,
		CanStart:       !running && !s.closed,
		CanStop:        running,
		CanReset:       true,
	}
}

func (s *Stopwatch) armLocked(gen uint64) {
	d := s.next.Sub(s.clk.Now())
	if d < 0 {
		d = 0
	}
	s.timer = s.clk.AfterFunc(d, func() {
		s.tick(gen)
	})
}

func (s *Stopwatch) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || s.state != Running {
		s.discarded++
		logger.Debugf("Stopwatch: discarded stale tick (generation %d, current %d)", gen, s.generation)
		return
	}
	s.elapsed++
	s.next = s.next.Add(s.interval)
	s.armLocked(gen)
	s.publishLocked(domain.StopwatchTicked)
}

// haltLocked leaves Running: the generation bump invalidates any tick
// already in flight, and the pending timer is stopped.
func (s *Stopwatch) haltLocked() {
	s.state = Stopped
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Stopwatch) publishLocked(et domain.EventType) {
	if s.publisher == nil {
		return
	}
	snap := s.snapshotLocked()
	if err := s.publisher.Publish(domain.Event{
		AggregateType: domain.AggregateStopwatch,
		AggregateID:   domain.AggregateStopwatch,
		EventType:     et,
		EventData: map[string]interface{}{
			"elapsed_seconds": snap.ElapsedSeconds,
			"display":         snap.Display,
			"running":         snap.Running,
		},
	}); err != nil {
		logger.Errorf("Failed to publish %s: %v", et, err)
	}
}
