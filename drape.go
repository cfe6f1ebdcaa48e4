package drape

import (
	"errors"
	"math"
	"sync/atomic"
)

// ErrNotReady reports that a component was used before the values it depends
// on were populated, e.g. sizing geometry against a camera whose projection
// has not been configured. It is returned during scene setup and is always
// fatal there; per-frame code never returns it.
var ErrNotReady = errors.New("drape: not ready")

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default mesh tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// RunState tracks a Choreo through its lifecycle. Transitions only move
// forward: Uninitialized -> Ready -> Running -> Disposed.
type RunState uint8

const (
	StateUninitialized RunState = iota // constructed, resources not yet registered
	StateReady                         // resources registered, no frame stepped yet
	StateRunning                       // at least one frame stepped
	StateDisposed                      // resources released; all calls are no-ops
)

// String returns the state name for logs and test failures.
func (s RunState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Signal is a lock-free float64 shared between the producer of the control
// value (a scroll handler, key poller, or scripted tween) and the simulation
// loop, which samples it once per frame. The zero value reads as 0.
type Signal struct {
	bits atomic.Uint64
}

// Store publishes a new control value. Values are stored as-is; consumers
// clamp to the range they need.
func (s *Signal) Store(v float64) {
	s.bits.Store(math.Float64bits(v))
}

// Load returns the most recently stored control value.
func (s *Signal) Load() float64 {
	return math.Float64frombits(s.bits.Load())
}

// Clamp01 limits v to [0, 1]. NaN clamps to 0.
func Clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
