// Package widgets holds the state controllers behind the demo screen: a
// click counter, a stopwatch and a color toggle, grouped per screen in a
// Board.
//
// Each controller owns its state and is mutated only through its methods.
// Every mutation publishes a domain event so displays can re-render from a
// fresh snapshot; no display keeps state of its own.
//
// The stopwatch ticks through a clock.Clock. Each time it enters Running it
// arms a one-shot timer chain tagged with a new generation number. Leaving
// Running bumps the generation, so a tick that was already in flight sees a
// stale generation and is dropped instead of incrementing the time.
package widgets
