package widgets

import (
	"fmt"
	"sync"

	"github.com/mescon/Composelab/internal/domain"
	"github.com/mescon/Composelab/internal/eventbus"
	"github.com/mescon/Composelab/internal/logger"
)

// Counter is an integer that can be incremented or reset to zero.
type Counter struct {
	mu        sync.Mutex
	count     int
	publisher eventbus.Publisher
}

// CounterSnapshot is the rendered state of a Counter.
type CounterSnapshot struct {
	Count int    `json:"count"`
	Label string `json:"label"`
}

// NewCounter returns a counter at zero. pub may be nil.
func NewCounter(pub eventbus.Publisher) *Counter {
	return &Counter{publisher: pub}
}

// Increment adds one and returns the new count.
func (c *Counter) Increment() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	c.publishLocked(domain.CounterIncremented)
	return c.count
}

// Reset sets the count back to zero.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count = 0
	c.publishLocked(domain.CounterReset)
}

func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Label is the text shown next to the counter buttons.
func (c *Counter) Label() string {
	return counterLabel(c.Count())
}

func (c *Counter) Snapshot() CounterSnapshot {
	n := c.Count()
	return CounterSnapshot{Count: n, Label: counterLabel(n)}
}

func counterLabel(n int) string {
	return fmt.Sprintf("Count: %d", n)
}

func (c *Counter) publishLocked(et domain.EventType) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(domain.Event{
		AggregateType: domain.AggregateCounter,
		AggregateID:   domain.AggregateCounter,
		EventType:     et,
		EventData:     map[string]interface{}{"count": c.count},
	}); err != nil {
		logger.Errorf("Failed to publish %s: %v", et, err)
	}
}
