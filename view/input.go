package view

import (
	"github.com/hajimehoshi/ebiten/v2"

	drape "github.com/ProfMoriartey/3d-demo"
)

// Input accumulates the control signal from the mouse wheel or held keys.
// The value persists across frames, so a wheel flick nudges the curtain
// rather than snapping it.
type Input struct {
	// PerNotch is the signal change for one wheel notch.
	PerNotch float64
	// KeyRate is the signal change per second while a direction key is held.
	KeyRate float64
	// Keys switches from the wheel to left/right arrows (or A/D).
	Keys bool
	// Direction, with Keys, reports the held direction itself: -1 while
	// left is held, 1 while right, 0 otherwise. Motor scenes feed this
	// straight into the hinge drive instead of integrating a level.
	Direction bool

	value float64
}

// Read polls the active device and returns the updated signal, clamped to
// [0, 1] except in Direction mode. Call once per tick with the tick duration.
func (in *Input) Read(dt float64) float64 {
	if in.Keys {
		dir := 0.0
		if ebiten.IsKeyPressed(ebiten.KeyRight) || ebiten.IsKeyPressed(ebiten.KeyD) {
			dir++
		}
		if ebiten.IsKeyPressed(ebiten.KeyLeft) || ebiten.IsKeyPressed(ebiten.KeyA) {
			dir--
		}
		if in.Direction {
			in.value = dir
			return dir
		}
		if dir != 0 {
			in.value = drape.Clamp01(in.value + dir*in.KeyRate*dt)
		}
		return in.value
	}

	_, wheelY := ebiten.Wheel()
	if wheelY != 0 {
		in.value = drape.Clamp01(in.value + wheelY*in.PerNotch)
	}
	return in.value
}
