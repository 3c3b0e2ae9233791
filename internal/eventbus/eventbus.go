package eventbus

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mescon/Composelab/internal/domain"
	"github.com/mescon/Composelab/internal/logger"
)

// subscriberBuffer is the channel depth per subscriber. Events beyond it are dropped.
const subscriberBuffer = 100

// Publisher defines the interface for publishing events.
// Widgets depend on this rather than on *EventBus so tests can record events.
type Publisher interface {
	Publish(event domain.Event) error
	Subscribe(eventType domain.EventType, handler func(domain.Event))
}

// Ensure EventBus implements Publisher
var _ Publisher = (*EventBus)(nil)

// EventBus fans widget events out to in-process subscribers.
// Events live only in memory; nothing is persisted.
type EventBus struct {
	subscribers map[domain.EventType][]chan domain.Event
	mu          sync.RWMutex
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	dropped     atomic.Uint64
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[domain.EventType][]chan domain.Event),
		stopChan:    make(chan struct{}),
	}
}

// Publish stamps the event with an ID and timestamp when missing and delivers
// it to every subscriber of its type. Delivery never blocks the caller.
func (eb *EventBus) Publish(event domain.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	logger.Debugf("EventBus: Publishing event %s (ID: %s, Aggregate: %s)", event.EventType, event.ID, event.AggregateType)

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, ch := range eb.subscribers[event.EventType] {
		select {
		case ch <- event:
		default:
			eb.dropped.Add(1)
			logger.Warnf("EventBus: subscriber buffer full, dropped %s", event.EventType)
		}
	}

	return nil
}

// Subscribe registers handler for eventType. Handlers for one subscription run
// sequentially on a dedicated goroutine, in publish order.
func (eb *EventBus) Subscribe(eventType domain.EventType, handler func(domain.Event)) {
	ch := make(chan domain.Event, subscriberBuffer)

	eb.mu.Lock()
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	eb.mu.Unlock()

	eb.wg.Add(1)
	go func() {
		defer eb.wg.Done()
		for {
			select {
			case event := <-ch:
				handler(event)
			case <-eb.stopChan:
				return
			}
		}
	}()
}

// SubscribeAll registers handler for every known event type.
func (eb *EventBus) SubscribeAll(handler func(domain.Event)) {
	for _, et := range domain.AllEventTypes {
		eb.Subscribe(et, handler)
	}
}

// SubscriberCount returns the number of subscriptions for eventType.
func (eb *EventBus) SubscriberCount(eventType domain.EventType) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers[eventType])
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (eb *EventBus) Dropped() uint64 {
	return eb.dropped.Load()
}

// Shutdown stops all subscriber goroutines and waits for them to finish.
// It is safe to call more than once.
func (eb *EventBus) Shutdown() {
	eb.stopOnce.Do(func() {
		close(eb.stopChan)
	})
	eb.wg.Wait()
	logger.Infof("EventBus shutdown complete")
}
