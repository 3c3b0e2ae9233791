package domain

import (
	"time"
)

type EventType string

const (
	CounterIncremented EventType = "CounterIncremented"
	CounterReset       EventType = "CounterReset"

	StopwatchStarted EventType = "StopwatchStarted"
	StopwatchStopped EventType = "StopwatchStopped"
	StopwatchReset   EventType = "StopwatchReset"
	StopwatchTicked  EventType = "StopwatchTicked"

	ColorToggled EventType = "ColorToggled"

	// Emitted by the scheduler before it resets the board
	ScheduledReset EventType = "ScheduledReset"
)

// AllEventTypes lists every event a board can emit, in declaration order.
var AllEventTypes = []EventType{
	CounterIncremented,
	CounterReset,
	StopwatchStarted,
	StopwatchStopped,
	StopwatchReset,
	StopwatchTicked,
	ColorToggled,
	ScheduledReset,
}

// Aggregate types identify which widget an event belongs to.
const (
	AggregateCounter   = "counter"
	AggregateStopwatch = "stopwatch"
	AggregateColor     = "color"
	AggregateBoard     = "board"
)

type Event struct {
	ID            string                 `json:"id"`
	AggregateType string                 `json:"aggregate_type"`
	AggregateID   string                 `json:"aggregate_id"`
	EventType     EventType              `json:"event_type"`
	EventData     map[string]interface{} `json:"event_data"`
	CreatedAt     time.Time              `json:"created_at"`
}

// =============================================================================
// Type-safe event data accessors
// =============================================================================

// GetString extracts a string field from EventData.
func (e *Event) GetString(key string) (string, bool) {
	if e.EventData == nil {
		return "", false
	}
	v, ok := e.EventData[key].(string)
	return v, ok
}

// GetStringOr extracts a string field or returns the default value.
func (e *Event) GetStringOr(key, defaultVal string) string {
	if v, ok := e.GetString(key); ok {
		return v
	}
	return defaultVal
}

// GetInt64 extracts an integer field from EventData.
// Handles int, int64 and float64 (JSON decoding produces float64).
func (e *Event) GetInt64(key string) (int64, bool) {
	if e.EventData == nil {
		return 0, false
	}
	switch v := e.EventData[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// GetInt64Or extracts an integer field or returns the default value.
func (e *Event) GetInt64Or(key string, defaultVal int64) int64 {
	if v, ok := e.GetInt64(key); ok {
		return v
	}
	return defaultVal
}

// GetBool extracts a bool field from EventData.
func (e *Event) GetBool(key string) (bool, bool) {
	if e.EventData == nil {
		return false, false
	}
	v, ok := e.EventData[key].(bool)
	return v, ok
}

// GetBoolOr extracts a bool field or returns the default value.
func (e *Event) GetBoolOr(key string, defaultVal bool) bool {
	if v, ok := e.GetBool(key); ok {
		return v
	}
	return defaultVal
}
