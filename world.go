package drape

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ProfMoriartey/3d-demo/softbody"
)

// World is the choreography's port to a physics engine. Scene constructors
// create bodies, patches, and hinges through it during setup, and the step
// loop advances it once per frame. A nil World is a valid degraded mode:
// constructors then build meshes at rest geometry and the loop skips
// simulation and sync.
//
// Handles returned by one World must not be passed to another; mixed handles
// are ignored, never resolved.
type World interface {
	CreateBody(BodyDef) Body
	CreatePatch(PatchDef) Patch
	CreateHinge(HingeDef) Hinge
	// Step advances the simulation by dt seconds split into substeps equal
	// slices. dt <= 0 or substeps <= 0 must be a no-op.
	Step(dt float64, substeps int)
}

// Body is a rigid box handle. Zero-mass bodies are kinematic: the engine
// never integrates them, so an actuator that overwrites the pose must also
// zero the velocities or the solver will infer a stale implicit velocity.
type Body interface {
	Transform() (mgl64.Vec3, mgl64.Quat)
	SetTransform(pos mgl64.Vec3, rot mgl64.Quat)
	Velocity() (linear, angular mgl64.Vec3)
	SetVelocity(linear, angular mgl64.Vec3)
	// Activate wakes the body so the solver re-evaluates contacts on the
	// next step. Called after every external pose change.
	Activate()
	Kinematic() bool
}

// Patch is a deformable surface handle. Node indices follow GridIndex order
// and are index-aligned with the vertices of the mesh built for the patch.
type Patch interface {
	NodeCount() int
	NodePosition(i int) mgl64.Vec3
	// AddForce accumulates a force on node i for the next Step only;
	// per-frame forces are re-applied every frame.
	AddForce(i int, f mgl64.Vec3)
	// Anchor binds node i to a body at the node's current offset in the
	// body's frame. Influence in [0,1]: 1 pins the node to the body exactly,
	// fractions blend simulated and bound positions.
	Anchor(i int, body Body, influence float64)
}

// Hinge is a single-axis joint handle with a velocity motor.
type Hinge interface {
	// EnableMotor targets an angular rate (radians per second) applying up
	// to maxTorque. Rate 0 with positive torque brakes; torque 0 frees the
	// hinge to swing.
	EnableMotor(rate, maxTorque float64)
	// Angle is the accumulated signed rotation since creation.
	Angle() float64
}

// BodyDef describes a rigid box. Zero Group/Mask mean group 1, mask -1
// (collide with everything); zero Rotation means identity.
type BodyDef struct {
	// Mass in kilograms; zero makes the body kinematic.
	Mass        float64
	HalfExtents mgl64.Vec3
	Position    mgl64.Vec3
	Rotation    mgl64.Quat
	Group, Mask int
}

// PatchDef describes a deformable patch spanning the quadrilateral
// Corner00-Corner10-Corner01-Corner11, as a (SegX+1) x (SegY+1) node grid.
// Zero iteration counts, margin, and damping take the engine defaults;
// negative Damping disables damping entirely.
type PatchDef struct {
	Corner00, Corner10, Corner01, Corner11 mgl64.Vec3

	SegX, SegY int
	// Mass is the total patch mass, spread evenly over the nodes. Zero pins
	// every node (a static drape).
	Mass float64

	PositionIterations int
	VelocityIterations int
	Margin             float64
	Damping            float64

	Group, Mask int
}

// HingeDef describes a hinge pinning BodyB to a pivot on BodyA. Nil BodyA
// fixes the pivot and axis in world space. Zero Axis means +Y. MaxTorque
// zero leaves the motor off.
type HingeDef struct {
	BodyA, BodyB Body
	Pivot        mgl64.Vec3
	Axis         mgl64.Vec3
	MaxTorque    float64
}

// softWorld adapts the in-repo softbody engine to the World port.
type softWorld struct {
	w *softbody.World
}

// NewSoftWorld creates a physics world from tuning values. Nil tuning uses
// DefaultTuning. Gravity is t.Gravity downward along -Y.
func NewSoftWorld(t *Tuning) World {
	if t == nil {
		t = DefaultTuning()
	}
	return &softWorld{w: softbody.NewWorld(softbody.WorldConfig{
		HasGravity:    true,
		Gravity:       mgl64.Vec3{0, -t.Gravity, 0},
		GroundY:       t.GroundY,
		GroundEnabled: t.GroundEnabled,
	})}
}

// NewSoftWorldFrom wraps an already-configured softbody world, for callers
// that need engine options the tuning file does not cover.
func NewSoftWorldFrom(w *softbody.World) World {
	return &softWorld{w: w}
}

func (sw *softWorld) CreateBody(def BodyDef) Body {
	return sw.w.NewBody(softbody.BodyConfig{
		Mass:        def.Mass,
		HalfExtents: def.HalfExtents,
		Position:    def.Position,
		Rotation:    def.Rotation,
		Group:       def.Group,
		Mask:        def.Mask,
	})
}

func (sw *softWorld) CreatePatch(def PatchDef) Patch {
	return &softPatch{p: sw.w.NewPatch(softbody.PatchConfig{
		Corner00:           def.Corner00,
		Corner10:           def.Corner10,
		Corner01:           def.Corner01,
		Corner11:           def.Corner11,
		SegX:               def.SegX,
		SegY:               def.SegY,
		Mass:               def.Mass,
		PositionIterations: def.PositionIterations,
		VelocityIterations: def.VelocityIterations,
		Margin:             def.Margin,
		Damping:            def.Damping,
		Group:              def.Group,
		Mask:               def.Mask,
	})}
}

func (sw *softWorld) CreateHinge(def HingeDef) Hinge {
	bodyB, ok := def.BodyB.(*softbody.Body)
	if !ok {
		return nil
	}
	var bodyA *softbody.Body
	if def.BodyA != nil {
		bodyA, _ = def.BodyA.(*softbody.Body)
	}
	return sw.w.NewHinge(softbody.HingeConfig{
		BodyA:     bodyA,
		BodyB:     bodyB,
		Pivot:     def.Pivot,
		Axis:      def.Axis,
		MaxTorque: def.MaxTorque,
	})
}

func (sw *softWorld) Step(dt float64, substeps int) {
	sw.w.Step(dt, substeps)
}

// softPatch wraps the engine patch so Anchor can accept the port's Body.
type softPatch struct {
	p *softbody.Patch
}

func (sp *softPatch) NodeCount() int                { return sp.p.NodeCount() }
func (sp *softPatch) NodePosition(i int) mgl64.Vec3 { return sp.p.NodePosition(i) }
func (sp *softPatch) AddForce(i int, f mgl64.Vec3)  { sp.p.AddForce(i, f) }

func (sp *softPatch) Anchor(i int, body Body, influence float64) {
	if b, ok := body.(*softbody.Body); ok {
		sp.p.Anchor(i, b, influence)
	}
}
