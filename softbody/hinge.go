package softbody

import "github.com/go-gl/mathgl/mgl64"

// HingeConfig describes a single-axis hinge that pins BodyB to a pivot and
// lets it rotate only about Axis.
type HingeConfig struct {
	// BodyA carries the pivot. It may be nil, which fixes the pivot and
	// axis in world space. The hinge never moves BodyA; a dynamic BodyA is
	// treated as if it were kinematic.
	BodyA *Body
	// BodyB is the swinging body. Must be dynamic.
	BodyB *Body

	// Pivot is the hinge point in world space at creation time.
	Pivot mgl64.Vec3
	// Axis is the rotation axis in world space at creation time.
	// Normalized internally; zero means +Y.
	Axis mgl64.Vec3

	// MaxTorque caps the motor. Zero disables the motor entirely and the
	// hinge swings freely.
	MaxTorque float64
}

// Hinge constrains BodyB to rotate about an axis through a pivot, with an
// optional velocity motor. The motor targets an angular rate and applies up
// to MaxTorque to reach it; rate 0 with a running motor acts as a brake.
type Hinge struct {
	bodyA *Body
	bodyB *Body

	pivotWorld mgl64.Vec3 // used when bodyA is nil
	axisWorld  mgl64.Vec3
	localPivot mgl64.Vec3 // pivot in bodyA's frame
	localAxis  mgl64.Vec3 // axis in bodyA's frame
	anchorB    mgl64.Vec3 // pivot in bodyB's frame

	inertia   float64 // bodyB's moment about the hinge axis through the pivot
	maxTorque float64
	rate      float64

	angle float64
}

// NewHinge creates a hinge and registers it with the world. BodyB is marked
// hinged: the world integrator leaves it to the hinge, and it never sleeps.
func (w *World) NewHinge(cfg HingeConfig) *Hinge {
	axis := cfg.Axis
	if axis == (mgl64.Vec3{}) {
		axis = mgl64.Vec3{0, 1, 0}
	}
	axis = axis.Normalize()

	h := &Hinge{
		bodyA:      cfg.BodyA,
		bodyB:      cfg.BodyB,
		pivotWorld: cfg.Pivot,
		axisWorld:  axis,
		maxTorque:  cfg.MaxTorque,
	}
	if cfg.BodyA != nil {
		invA := cfg.BodyA.rotation.Inverse()
		h.localPivot = invA.Rotate(cfg.Pivot.Sub(cfg.BodyA.position))
		h.localAxis = invA.Rotate(axis)
	}

	b := cfg.BodyB
	h.anchorB = b.rotation.Inverse().Rotate(cfg.Pivot.Sub(b.position))
	h.inertia = boxInertiaAboutAxis(b, axis, cfg.Pivot)
	if h.inertia < 1e-9 {
		h.inertia = 1e-9
	}
	b.hinged = true

	w.hinges = append(w.hinges, h)
	return h
}

// boxInertiaAboutAxis is the box's moment of inertia about a unit axis
// through pivot: the principal-axis box inertia plus the parallel-axis term
// for the pivot offset.
func boxInertiaAboutAxis(b *Body, axis, pivot mgl64.Vec3) float64 {
	he := b.halfExtents
	iCom := b.mass / 3 * (axis.X()*axis.X()*(he.Y()*he.Y()+he.Z()*he.Z()) +
		axis.Y()*axis.Y()*(he.X()*he.X()+he.Z()*he.Z()) +
		axis.Z()*axis.Z()*(he.X()*he.X()+he.Y()*he.Y()))

	r := b.position.Sub(pivot)
	perp := r.Sub(axis.Mul(r.Dot(axis)))
	return iCom + b.mass*perp.Dot(perp)
}

// SetMotorRate sets the motor's target angular speed in radians per second.
// With MaxTorque zero this has no effect.
func (h *Hinge) SetMotorRate(rate float64) {
	h.rate = rate
}

// EnableMotor sets both the target angular speed and the torque cap in one
// call. Rate 0 with a positive torque brakes the hinge; torque 0 releases it
// to swing freely.
func (h *Hinge) EnableMotor(rate, maxTorque float64) {
	h.rate = rate
	h.maxTorque = maxTorque
}

// MotorRate returns the current target angular speed.
func (h *Hinge) MotorRate() float64 {
	return h.rate
}

// Angle returns the accumulated rotation in radians since creation, signed
// about the hinge axis.
func (h *Hinge) Angle() float64 {
	return h.angle
}

// pivotAndAxis returns the current hinge frame, following BodyA if present.
func (h *Hinge) pivotAndAxis() (mgl64.Vec3, mgl64.Vec3) {
	if h.bodyA == nil {
		return h.pivotWorld, h.axisWorld
	}
	pivot := h.bodyA.position.Add(h.bodyA.rotation.Rotate(h.localPivot))
	axis := h.bodyA.rotation.Rotate(h.localAxis)
	return pivot, axis
}

// solve advances BodyB by one substep: project its spin onto the axis, apply
// gravity torque and the clamped motor impulse, integrate the rotation, then
// re-pin the anchor to the pivot and refresh the linear velocity from the
// positional change.
func (h *Hinge) solve(dt float64, gravity mgl64.Vec3) {
	b := h.bodyB
	if b == nil || b.invMass == 0 {
		return
	}
	pivot, axis := h.pivotAndAxis()

	// Hinge admits one rotational degree of freedom.
	w := b.angVel.Dot(axis)

	// Gravity torque about the axis makes a free hinge swing.
	r := b.position.Sub(pivot)
	torque := r.Cross(gravity.Mul(b.mass))
	w += torque.Dot(axis) / h.inertia * dt

	// Motor: impulse toward the target rate, clamped by what MaxTorque can
	// deliver in one substep.
	if h.maxTorque > 0 {
		jMax := h.maxTorque * dt
		j := (h.rate - w) * h.inertia
		if j > jMax {
			j = jMax
		} else if j < -jMax {
			j = -jMax
		}
		w += j / h.inertia
	}

	b.angVel = axis.Mul(w)

	spun := w * dt
	if spun != 0 {
		spin := mgl64.QuatRotate(spun, axis)
		b.rotation = spin.Mul(b.rotation).Normalize()
	}
	h.angle += spun

	prev := b.position
	b.position = pivot.Sub(b.rotation.Rotate(h.anchorB))
	b.linVel = b.position.Sub(prev).Mul(1 / dt)
}
