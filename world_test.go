package drape

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSoftWorldBodyRoundTrip(t *testing.T) {
	w := NewSoftWorld(nil)
	b := w.CreateBody(BodyDef{
		Mass:        0,
		HalfExtents: mgl64.Vec3{1, 0.1, 0.1},
		Position:    mgl64.Vec3{2, 3, 0},
	})
	if !b.Kinematic() {
		t.Fatal("zero-mass body should be kinematic")
	}

	b.SetTransform(mgl64.Vec3{-1, 3, 0}, mgl64.QuatIdent())
	b.SetVelocity(mgl64.Vec3{}, mgl64.Vec3{})
	b.Activate()

	pos, _ := b.Transform()
	if !approxVec3(pos, mgl64.Vec3{-1, 3, 0}, epsilon) {
		t.Errorf("pose overwrite lost: %v", pos)
	}
}

func TestSoftWorldPatchMatchesGridOrder(t *testing.T) {
	w := NewSoftWorld(&Tuning{})
	p := w.CreatePatch(PatchDef{
		Corner00: mgl64.Vec3{-1, 1, 0},
		Corner10: mgl64.Vec3{1, 1, 0},
		Corner01: mgl64.Vec3{-1, -1, 0},
		Corner11: mgl64.Vec3{1, -1, 0},
		SegX:     3,
		SegY:     2,
		Mass:     1,
	})

	if got, want := p.NodeCount(), 4*3; got != want {
		t.Fatalf("NodeCount = %d, want %d", got, want)
	}
	if got := p.NodePosition(GridIndex(0, 0, 3)); !approxVec3(got, mgl64.Vec3{-1, 1, 0}, epsilon) {
		t.Errorf("node(0,0) = %v, want corner00", got)
	}
	if got := p.NodePosition(GridIndex(3, 2, 3)); !approxVec3(got, mgl64.Vec3{1, -1, 0}, epsilon) {
		t.Errorf("node(segX,segY) = %v, want corner11", got)
	}
}

func TestSoftWorldHingeMotorTurns(t *testing.T) {
	w := NewSoftWorld(&Tuning{})
	arm := w.CreateBody(BodyDef{
		Mass:        1,
		HalfExtents: mgl64.Vec3{1, 0.05, 0.05},
		Position:    mgl64.Vec3{1, 1, 0},
	})
	h := w.CreateHinge(HingeDef{
		BodyB:     arm,
		Pivot:     mgl64.Vec3{0, 1, 0},
		Axis:      mgl64.Vec3{0, 1, 0},
		MaxTorque: 20,
	})
	if h == nil {
		t.Fatal("CreateHinge returned nil for a same-world body")
	}

	h.EnableMotor(2, 20)
	for i := 0; i < 30; i++ {
		w.Step(1.0/60.0, 10)
	}

	if h.Angle() <= 0 {
		t.Errorf("motor did not turn the arm: angle = %f", h.Angle())
	}
	pos, _ := arm.Transform()
	if !approxEqual(pos.Sub(mgl64.Vec3{0, 1, 0}).Len(), 1, 1e-9) {
		t.Errorf("arm left its orbit: %v", pos)
	}
}

// stubBody stands in for a handle from some other engine.
type stubBody struct{}

func (stubBody) Transform() (mgl64.Vec3, mgl64.Quat) { return mgl64.Vec3{}, mgl64.QuatIdent() }

func (stubBody) SetTransform(mgl64.Vec3, mgl64.Quat) {}

func (stubBody) Velocity() (linear, angular mgl64.Vec3) { return mgl64.Vec3{}, mgl64.Vec3{} }

func (stubBody) SetVelocity(linear, angular mgl64.Vec3) {}

func (stubBody) Activate() {}

func (stubBody) Kinematic() bool { return true }

func TestSoftWorldIgnoresForeignHandles(t *testing.T) {
	w := NewSoftWorld(&Tuning{})

	if h := w.CreateHinge(HingeDef{BodyB: stubBody{}}); h != nil {
		t.Error("CreateHinge accepted a foreign body")
	}

	p := w.CreatePatch(PatchDef{
		Corner00: mgl64.Vec3{-1, 1, 0},
		Corner10: mgl64.Vec3{1, 1, 0},
		Corner01: mgl64.Vec3{-1, -1, 0},
		Corner11: mgl64.Vec3{1, -1, 0},
		SegX:     2,
		SegY:     2,
		Mass:     1,
	})
	p.Anchor(0, stubBody{}, 1)

	// The foreign anchor was dropped, so in zero gravity nothing moves.
	before := p.NodePosition(0)
	w.Step(1.0/60.0, 10)
	if !approxVec3(p.NodePosition(0), before, epsilon) {
		t.Errorf("foreign anchor affected node 0: %v", p.NodePosition(0))
	}
}
