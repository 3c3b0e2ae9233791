package widgets

import (
	"errors"
	"fmt"
	"time"

	"github.com/mescon/Composelab/internal/clock"
	"github.com/mescon/Composelab/internal/eventbus"
)

// Action names a button press. The same names are used by the HTTP routes
// and by WebSocket clients.
type Action string

const (
	ActionCounterIncrement Action = "counter.increment"
	ActionCounterReset     Action = "counter.reset"
	ActionStopwatchStart   Action = "stopwatch.start"
	ActionStopwatchStop    Action = "stopwatch.stop"
	ActionStopwatchReset   Action = "stopwatch.reset"
	ActionColorToggle      Action = "color.toggle"
)

// ErrUnknownAction is returned by Dispatch for an action it does not know.
var ErrUnknownAction = errors.New("unknown action")

// BoardConfig configures the widgets of one screen.
type BoardConfig struct {
	StopwatchSeed int
	TickInterval  time.Duration
	Clock         clock.Clock
	Publisher     eventbus.Publisher
}

// Board is one screen: a counter, a stopwatch and a color toggle. The
// widgets are independent of each other.
type Board struct {
	Counter   *Counter
	Stopwatch *Stopwatch
	Color     *ColorToggle
}

// BoardView is the full derived display of a Board.
type BoardView struct {
	Counter   CounterSnapshot   `json:"counter"`
	Stopwatch StopwatchSnapshot `json:"stopwatch"`
	Color     ColorSnapshot     `json:"color"`
}

func NewBoard(cfg BoardConfig) *Board {
	return &Board{
		Counter: NewCounter(cfg.Publisher),
		Stopwatch: NewStopwatch(StopwatchConfig{
			Seed:      cfg.StopwatchSeed,
			Interval:  cfg.TickInterval,
			Clock:     cfg.Clock,
			Publisher: cfg.Publisher,
		}),
		Color: NewColorToggle(cfg.Publisher),
	}
}

func (b *Board) View() BoardView {
	return BoardView{
		Counter:   b.Counter.Snapshot(),
		Stopwatch: b.Stopwatch.Snapshot(),
		Color:     b.Color.Snapshot(),
	}
}

// Dispatch performs action. changed is false when the action was a no-op,
// such as starting a stopwatch that is already running.
func (b *Board) Dispatch(action Action) (changed bool, err error) {
	switch action {
	case ActionCounterIncrement:
		b.Counter.Increment()
		return true, nil
	case ActionCounterReset:
		b.Counter.Reset()
		return true, nil
	case ActionStopwatchStart:
		return b.Stopwatch.Start(), nil
	case ActionStopwatchStop:
		return b.Stopwatch.Stop(), nil
	case ActionStopwatchReset:
		b.Stopwatch.Reset()
		return true, nil
	case ActionColorToggle:
		b.Color.Toggle()
		return true, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// ResetAll resets the counter and the stopwatch. The color is left alone.
func (b *Board) ResetAll() {
	b.Counter.Reset()
	b.Stopwatch.Reset()
}

// Close unmounts the board, cancelling the stopwatch ticker.
func (b *Board) Close() {
	b.Stopwatch.Close()
}
