package widgets

import (
	"sync"

	"github.com/mescon/Composelab/internal/domain"
	"github.com/mescon/Composelab/internal/eventbus"
	"github.com/mescon/Composelab/internal/logger"
)

type Color string

const (
	Red  Color = "red"
	Blue Color = "blue"
)

// ColorToggle is the round "Click Me" button that flips between red and blue.
type ColorToggle struct {
	mu        sync.Mutex
	color     Color
	publisher eventbus.Publisher
}

type ColorSnapshot struct {
	Color Color `json:"color"`
}

// NewColorToggle starts red.
func NewColorToggle(pub eventbus.Publisher) *ColorToggle {
	return &ColorToggle{color: Red, publisher: pub}
}

// Toggle flips the color and returns the new one.
func (t *ColorToggle) Toggle() Color {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.color == Red {
		t.color = Blue
	} else {
		t.color = Red
	}

	if t.publisher != nil {
		if err := t.publisher.Publish(domain.Event{
			AggregateType: domain.AggregateColor,
			AggregateID:   domain.AggregateColor,
			EventType:     domain.ColorToggled,
			EventData:     map[string]interface{}{"color": string(t.color)},
		}); err != nil {
			logger.Errorf("Failed to publish %s: %v", domain.ColorToggled, err)
		}
	}
	return t.color
}

func (t *ColorToggle) Color() Color {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.color
}

func (t *ColorToggle) Snapshot() ColorSnapshot {
	return ColorSnapshot{Color: t.Color()}
}
