package softbody

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Sleep thresholds: a dynamic body sleeps after staying below both speed
// limits for sleepFrames consecutive Steps.
const (
	sleepLinearSpeed  = 0.05
	sleepAngularSpeed = 0.05
	sleepFrames       = 45
)

// BodyConfig describes a rigid box body.
type BodyConfig struct {
	// Mass in kilograms. Zero makes the body kinematic: the solver never
	// integrates it and it only moves via SetTransform.
	Mass float64
	// HalfExtents are the box's half sizes along its local axes.
	HalfExtents mgl64.Vec3

	Position mgl64.Vec3
	// Rotation defaults to identity when left zero.
	Rotation mgl64.Quat

	// Group and Mask filter collisions; see filterMatch. Zero values mean
	// group 1, mask -1 (collide with everything).
	Group, Mask int
}

// Body is a rigid box. All mutation happens on the stepping goroutine.
type Body struct {
	invMass     float64
	mass        float64
	halfExtents mgl64.Vec3

	position mgl64.Vec3
	rotation mgl64.Quat
	linVel   mgl64.Vec3
	angVel   mgl64.Vec3

	group, mask int

	hinged      bool
	sleeping    bool
	stillFrames int
}

// NewBody creates a body and registers it with the world.
func (w *World) NewBody(cfg BodyConfig) *Body {
	b := &Body{
		mass:        cfg.Mass,
		halfExtents: cfg.HalfExtents,
		position:    cfg.Position,
		rotation:    cfg.Rotation,
		group:       cfg.Group,
		mask:        cfg.Mask,
	}
	if cfg.Mass > 0 {
		b.invMass = 1 / cfg.Mass
	}
	if b.rotation == (mgl64.Quat{}) {
		b.rotation = mgl64.QuatIdent()
	}
	if b.group == 0 {
		b.group = 1
	}
	if b.mask == 0 {
		b.mask = -1
	}
	w.bodies = append(w.bodies, b)
	return b
}

// Kinematic reports whether the body has zero mass and is driven externally.
func (b *Body) Kinematic() bool {
	return b.invMass == 0
}

// Mass returns the body's mass (zero for kinematic bodies).
func (b *Body) Mass() float64 {
	return b.mass
}

// HalfExtents returns the box's half sizes.
func (b *Body) HalfExtents() mgl64.Vec3 {
	return b.halfExtents
}

// Transform returns the body's world position and orientation.
func (b *Body) Transform() (mgl64.Vec3, mgl64.Quat) {
	return b.position, b.rotation
}

// SetTransform overwrites the body's pose. Kinematic drivers call this every
// frame; it does not touch velocities, so pair it with SetVelocity to avoid
// the solver inheriting a stale implicit velocity.
func (b *Body) SetTransform(p mgl64.Vec3, q mgl64.Quat) {
	b.position = p
	b.rotation = q.Normalize()
}

// Velocity returns the linear and angular velocity.
func (b *Body) Velocity() (linear, angular mgl64.Vec3) {
	return b.linVel, b.angVel
}

// SetVelocity overwrites both velocities.
func (b *Body) SetVelocity(linear, angular mgl64.Vec3) {
	b.linVel = linear
	b.angVel = angular
}

// Activate wakes a sleeping body and resets its stillness counter.
func (b *Body) Activate() {
	b.sleeping = false
	b.stillFrames = 0
}

// Sleeping reports whether the solver has parked the body.
func (b *Body) Sleeping() bool {
	return b.sleeping
}

// updateSleep advances the sleep counter once per Step. Kinematic and hinged
// bodies never sleep; their motion comes from outside the integrator.
func (b *Body) updateSleep() {
	if b.invMass == 0 || b.hinged || b.sleeping {
		return
	}
	if b.linVel.Len() < sleepLinearSpeed && b.angVel.Len() < sleepAngularSpeed {
		b.stillFrames++
		if b.stillFrames >= sleepFrames {
			b.sleeping = true
			b.linVel = mgl64.Vec3{}
			b.angVel = mgl64.Vec3{}
		}
	} else {
		b.stillFrames = 0
	}
}

// worldExtents returns the half sizes of the body's world-space AABB: the
// local box extents re-expanded through the absolute rotation matrix.
func (b *Body) worldExtents() mgl64.Vec3 {
	m := b.rotation.Mat4()
	var ext mgl64.Vec3
	for row := 0; row < 3; row++ {
		ext[row] = math.Abs(m.At(row, 0))*b.halfExtents.X() +
			math.Abs(m.At(row, 1))*b.halfExtents.Y() +
			math.Abs(m.At(row, 2))*b.halfExtents.Z()
	}
	return ext
}

// closestLocalPoint clamps a world point into the body's local frame against
// the box surface expanded by margin. Returns the local point and whether the
// input was inside the expanded box.
func (b *Body) closestLocalPoint(world mgl64.Vec3, margin float64) (mgl64.Vec3, bool) {
	local := b.rotation.Inverse().Rotate(world.Sub(b.position))
	he := b.halfExtents.Add(mgl64.Vec3{margin, margin, margin})

	inside := true
	for k := 0; k < 3; k++ {
		if local[k] > he[k] {
			local[k] = he[k]
			inside = false
		} else if local[k] < -he[k] {
			local[k] = -he[k]
			inside = false
		}
	}
	return local, inside
}

// pushOut moves a penetrating local point to the expanded box surface along
// the axis of least penetration. Returns the world-space surface point and
// the outward face normal.
func (b *Body) pushOut(local mgl64.Vec3, margin float64) (point, normal mgl64.Vec3) {
	he := b.halfExtents.Add(mgl64.Vec3{margin, margin, margin})

	axis, best := 0, math.Inf(1)
	for k := 0; k < 3; k++ {
		pen := he[k] - math.Abs(local[k])
		if pen < best {
			best = pen
			axis = k
		}
	}
	var face mgl64.Vec3
	if local[axis] >= 0 {
		local[axis] = he[axis]
		face[axis] = 1
	} else {
		local[axis] = -he[axis]
		face[axis] = -1
	}
	return b.position.Add(b.rotation.Rotate(local)), b.rotation.Rotate(face)
}
