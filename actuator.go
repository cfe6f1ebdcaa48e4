package drape

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tanema/gween/ease"
)

// Actuator converts the per-frame control signal into kinematic motion. The
// step loop drives every registered actuator once per frame, in registration
// order, before the world steps.
type Actuator interface {
	// Drive applies the signal for this frame. Implementations clamp or
	// snap the value to the range they work in; callers pass it raw.
	Drive(signal float64)
}

// easeValue evaluates fn as a normalized s-curve, both input and output in
// [0, 1]. Nil fn means ease.OutCubic, which is exactly 1-(1-t)^3 and hits
// both endpoints.
func easeValue(fn ease.TweenFunc, t float64) float64 {
	if fn == nil {
		fn = ease.OutCubic
	}
	return float64(fn(float32(t), 0, 1, 1))
}

// SlideActuator translates a rod along the world X axis in proportion to the
// eased control signal: signal 0 holds Start, signal 1 holds Start displaced
// by Direction*Distance. The pose is overwritten absolutely every frame, so
// a stale signal simply holds position rather than drifting.
type SlideActuator struct {
	// Scene and Mesh locate the rod's render mesh; either may be unset.
	Scene *Scene
	Mesh  MeshID
	// Body is the rod's kinematic collider; nil in visuals-only mode.
	Body Body

	// Start is the rest position at signal 0.
	Start mgl64.Vec3
	// Direction is the sign of travel along X, +1 or -1.
	Direction float64
	// Distance is the full travel at signal 1, in world units.
	Distance float64
	// Ease shapes the motion; nil means ease.OutCubic.
	Ease ease.TweenFunc
}

// Drive clamps the signal to [0,1], eases it, and snaps mesh and body to the
// resulting pose. The body's velocities are zeroed after the overwrite so the
// solver never infers a huge implicit velocity from the teleport, and the
// body is woken so resting contacts re-evaluate against the new pose.
func (a *SlideActuator) Drive(signal float64) {
	s := easeValue(a.Ease, Clamp01(signal))
	pos := a.Start
	pos[0] += a.Direction * a.Distance * s

	if a.Scene != nil {
		if m := a.Scene.Mesh(a.Mesh); m != nil {
			m.Position = pos
		}
	}
	if a.Body != nil {
		_, rot := a.Body.Transform()
		a.Body.SetTransform(pos, rot)
		a.Body.SetVelocity(mgl64.Vec3{}, mgl64.Vec3{})
		a.Body.Activate()
	}
}

// MotorActuator runs a hinge motor from a three-state drive value. Keyboard
// input produces exactly -1, 0, or 1; analog sources are snapped to the
// nearest of the three.
type MotorActuator struct {
	Hinge Hinge
	// Speed is the target angular rate at full drive, radians per second.
	Speed float64
	// MaxTorque caps the motor every frame, including when braking at
	// drive 0.
	MaxTorque float64
}

// Drive snaps the value and re-targets the motor. Drive 0 keeps the motor
// engaged at rate 0, braking the hinge instead of letting it swing.
func (a *MotorActuator) Drive(value float64) {
	if a.Hinge == nil {
		return
	}
	a.Hinge.EnableMotor(a.Speed*snapDrive(value), a.MaxTorque)
}

// snapDrive maps v to the nearest of -1, 0, 1. Ties at ±0.5 round away from
// zero; NaN reads as 0.
func snapDrive(v float64) float64 {
	switch {
	case v >= 0.5:
		return 1
	case v <= -0.5:
		return -1
	default:
		return 0
	}
}
