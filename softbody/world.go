// Package softbody is a small position-based-dynamics engine for cloth
// draped over rigid boxes: deformable grid patches with stretch, shear, and
// bend constraints, kinematic and dynamic box bodies, and a motorized hinge.
//
// It exists to serve drape's scenes and keeps to demo-engine fidelity: cloth
// collides with boxes and the ground via positional pushout, dynamic boxes
// collide with each other as axis-aligned boxes, and box rotation comes only
// from hinges, never from contacts.
package softbody

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Collision filter semantics: two objects collide when each one's group
// intersects the other's mask. Groups are bitfields; mask -1 collides with
// every group.
func filterMatch(groupA, maskA, groupB, maskB int) bool {
	return groupA&maskB != 0 && groupB&maskA != 0
}

// WorldConfig configures a World. Zero values select the defaults noted on
// each field.
type WorldConfig struct {
	// Gravity is the acceleration applied to dynamic bodies and patch
	// nodes. Zero means {0, -9.8, 0}; use HasGravity to force zero gravity.
	Gravity mgl64.Vec3
	// HasGravity marks Gravity as explicitly set, so a zero vector means
	// "no gravity" rather than "use the default".
	HasGravity bool

	// GroundY is the height of an infinite ground plane. Only used when
	// GroundEnabled is true.
	GroundY       float64
	GroundEnabled bool
}

// World owns every body, patch, and hinge and steps them together.
type World struct {
	gravity       mgl64.Vec3
	groundY       float64
	groundEnabled bool

	bodies  []*Body
	patches []*Patch
	hinges  []*Hinge
}

// NewWorld creates an empty world.
func NewWorld(cfg WorldConfig) *World {
	g := cfg.Gravity
	if !cfg.HasGravity && g == (mgl64.Vec3{}) {
		g = mgl64.Vec3{0, -9.8, 0}
	}
	return &World{
		gravity:       g,
		groundY:       cfg.GroundY,
		groundEnabled: cfg.GroundEnabled,
	}
}

// Gravity returns the world's gravity vector.
func (w *World) Gravity() mgl64.Vec3 {
	return w.gravity
}

// Step advances the simulation by dt seconds split into substeps equal
// slices. Patch force accumulators are consumed by this call and cleared
// before it returns. dt <= 0 or substeps <= 0 is a no-op.
func (w *World) Step(dt float64, substeps int) {
	if dt <= 0 || substeps <= 0 {
		return
	}
	h := dt / float64(substeps)

	for s := 0; s < substeps; s++ {
		for _, b := range w.bodies {
			w.integrateBody(b, h)
		}
		for _, hg := range w.hinges {
			hg.solve(h, w.gravity)
		}
		w.collideBodies(h)
		for _, p := range w.patches {
			p.substep(h, w)
		}
	}

	for _, p := range w.patches {
		p.clearForces()
	}
	for _, b := range w.bodies {
		b.updateSleep()
	}
}

// integrateBody advances one dynamic body by symplectic Euler. Kinematic,
// sleeping, and hinged bodies are skipped: kinematic bodies move only via
// SetTransform, hinged bodies are integrated by their hinge.
func (w *World) integrateBody(b *Body, h float64) {
	if b.invMass == 0 || b.sleeping || b.hinged {
		return
	}
	b.linVel = b.linVel.Add(w.gravity.Mul(h))
	b.position = b.position.Add(b.linVel.Mul(h))
	if wl := b.angVel.Len(); wl > 1e-12 {
		spin := mgl64.QuatRotate(wl*h, b.angVel.Mul(1/wl))
		b.rotation = spin.Mul(b.rotation).Normalize()
	}
}

// collideBodies resolves ground contacts and pairwise overlaps between
// bodies. Boxes are treated as world-space AABBs (rotated extents expanded),
// separated along the axis of least penetration. Contact wakes sleepers.
func (w *World) collideBodies(h float64) {
	if w.groundEnabled {
		for _, b := range w.bodies {
			if b.invMass == 0 || b.sleeping {
				continue
			}
			ext := b.worldExtents()
			bottom := b.position.Y() - ext.Y()
			if bottom < w.groundY {
				b.position = b.position.Add(mgl64.Vec3{0, w.groundY - bottom, 0})
				if b.linVel.Y() < 0 {
					b.linVel = mgl64.Vec3{b.linVel.X() * groundFriction, 0, b.linVel.Z() * groundFriction}
				}
			}
		}
	}

	for i := 0; i < len(w.bodies); i++ {
		for j := i + 1; j < len(w.bodies); j++ {
			w.collidePair(w.bodies[i], w.bodies[j], h)
		}
	}
}

const groundFriction = 0.92

// collidePair separates two overlapping bodies. At least one side must be
// movable (dynamic, not hinged); a hinged or kinematic side acts as an
// immovable pusher that transfers escape velocity to the other body.
func (w *World) collidePair(a, b *Body, h float64) {
	if !filterMatch(a.group, a.mask, b.group, b.mask) {
		return
	}
	aMovable := a.invMass > 0 && !a.hinged
	bMovable := b.invMass > 0 && !b.hinged
	if !aMovable && !bMovable {
		return
	}

	extA := a.worldExtents()
	extB := b.worldExtents()
	d := b.position.Sub(a.position)

	var pen mgl64.Vec3
	for k := 0; k < 3; k++ {
		overlap := extA[k] + extB[k] - math.Abs(d[k])
		if overlap <= 0 {
			return
		}
		pen[k] = overlap
	}

	// Separate along the axis of least penetration.
	axis := 0
	if pen[1] < pen[axis] {
		axis = 1
	}
	if pen[2] < pen[axis] {
		axis = 2
	}
	var n mgl64.Vec3
	if d[axis] >= 0 {
		n[axis] = 1
	} else {
		n[axis] = -1
	}
	push := n.Mul(pen[axis])

	a.Activate()
	b.Activate()

	switch {
	case aMovable && bMovable:
		a.position = a.position.Sub(push.Mul(0.5))
		b.position = b.position.Add(push.Mul(0.5))
		stopApproach(a, b, n)
	case bMovable:
		b.position = b.position.Add(push)
		// Inherit the pusher's speed so a swinging arm knocks bricks
		// instead of silently teleporting them.
		b.linVel = b.linVel.Add(n.Mul(pen[axis] / h))
	default:
		a.position = a.position.Sub(push)
		a.linVel = a.linVel.Sub(n.Mul(pen[axis] / h))
	}
}

// stopApproach removes the closing velocity between two bodies along n.
func stopApproach(a, b *Body, n mgl64.Vec3) {
	rel := b.linVel.Sub(a.linVel).Dot(n)
	if rel >= 0 {
		return
	}
	half := n.Mul(rel / 2)
	a.linVel = a.linVel.Add(half)
	b.linVel = b.linVel.Sub(half)
}

// groundClearance returns how far p sits above the ground plane, or +Inf
// when no ground is configured.
func (w *World) groundClearance(p mgl64.Vec3) float64 {
	if !w.groundEnabled {
		return math.Inf(1)
	}
	return p.Y() - w.groundY
}
