package drape

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestClothRigRequiresReadyCamera(t *testing.T) {
	if _, err := NewClothRig(nil, ClothRigConfig{}); !errors.Is(err, ErrNotReady) {
		t.Fatalf("missing camera error = %v, want ErrNotReady", err)
	}
	if _, err := NewClothRig(nil, ClothRigConfig{Camera: &Camera{}}); !errors.Is(err, ErrNotReady) {
		t.Fatalf("unset camera error = %v, want ErrNotReady", err)
	}
}

func TestClothRigLayout(t *testing.T) {
	rig, err := NewClothRig(nil, ClothRigConfig{Camera: testCamera()})
	if err != nil {
		t.Fatal(err)
	}

	if rig.Choreo.State() != StateReady {
		t.Fatalf("state = %v, want %v", rig.Choreo.State(), StateReady)
	}
	if !approxEqual(rig.GroundY, -rig.ViewHeight/2, epsilon) {
		t.Fatalf("ground y = %v, want %v", rig.GroundY, -rig.ViewHeight/2)
	}

	if len(rig.Bricks) != 15 || len(rig.BrickMeshes) != 15 {
		t.Fatalf("brick wall = %d bodies / %d meshes, want 15 each", len(rig.Bricks), len(rig.BrickMeshes))
	}
	for i, b := range rig.Bricks {
		if b != nil {
			t.Fatalf("brick %d has a body without a world", i)
		}
	}
	if rig.Pole != nil || rig.Arm != nil || rig.Hinge != nil {
		t.Fatal("degraded rig should have no bodies or hinge")
	}

	scene := rig.Choreo.Scene()
	// Pole, arm, cloth, 15 bricks.
	if scene.Len() != 18 {
		t.Fatalf("scene has %d meshes, want 18", scene.Len())
	}
	arm := scene.Mesh(rig.ArmMesh)
	if arm == nil {
		t.Fatal("arm mesh missing")
	}
	if arm.Position.Y() <= 0 {
		t.Fatalf("arm sits at y = %v, want above view center", arm.Position.Y())
	}

	// No bricks below the floor at rest.
	for _, id := range rig.BrickMeshes {
		if y := scene.Mesh(id).Position.Y(); y < rig.GroundY {
			t.Fatalf("brick mesh at y = %v below ground %v", y, rig.GroundY)
		}
	}
}

func TestClothRigBrickGrid(t *testing.T) {
	rig, err := NewClothRig(nil, ClothRigConfig{Camera: testCamera(), BrickRows: 2, BrickCols: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(rig.Bricks) != 6 {
		t.Fatalf("brick count = %d, want 6", len(rig.Bricks))
	}
}

func TestClothRigMotorSpinsArm(t *testing.T) {
	tn := DefaultTuning()
	world := NewSoftWorld(tn)
	rig, err := NewClothRig(world, ClothRigConfig{Camera: testCamera(), Tuning: tn})
	if err != nil {
		t.Fatal(err)
	}

	scene := rig.Choreo.Scene()
	clothMesh := scene.Mesh(rig.Choreo.PatchMesh(rig.Cloth))
	cornerRest := clothMesh.PositionAt(0)

	rig.Choreo.Signal().Store(1)
	prev := rig.Hinge.Angle()
	for i := 0; i < 120; i++ {
		rig.Choreo.Step(1.0 / 60.0)
		a := rig.Hinge.Angle()
		if a < prev-epsilon {
			t.Fatalf("hinge angle decreased from %v to %v at frame %d under drive 1", prev, a, i)
		}
		prev = a
	}
	if prev < 0.5 {
		t.Fatalf("hinge angle after 2s of drive = %v, want well past 0.5", prev)
	}

	// The arm mesh mirrors the body and the pinned cloth corner follows it
	// out of the rest plane.
	armPos, armRot := rig.Arm.Transform()
	armMesh := scene.Mesh(rig.ArmMesh)
	if !approxVec3(armMesh.Position, armPos, epsilon) {
		t.Fatalf("arm mesh at %v, body at %v", armMesh.Position, armPos)
	}
	if armMesh.Rotation != armRot {
		t.Fatalf("arm mesh rotation %v, body %v", armMesh.Rotation, armRot)
	}
	corner := clothMesh.PositionAt(0)
	if math.Abs(corner.Z()-cornerRest.Z()) < 0.1 {
		t.Fatalf("pinned corner stayed near rest plane: %v vs %v", corner, cornerRest)
	}
}

func TestClothRigMotorBrakesAtZeroDrive(t *testing.T) {
	tn := DefaultTuning()
	world := NewSoftWorld(tn)
	rig, err := NewClothRig(world, ClothRigConfig{Camera: testCamera(), Tuning: tn})
	if err != nil {
		t.Fatal(err)
	}

	rig.Choreo.Signal().Store(1)
	for i := 0; i < 60; i++ {
		rig.Choreo.Step(1.0 / 60.0)
	}
	rig.Choreo.Signal().Store(0)
	for i := 0; i < 60; i++ {
		rig.Choreo.Step(1.0 / 60.0)
	}

	held := rig.Hinge.Angle()
	rig.Choreo.Step(1.0 / 60.0)
	if got := rig.Hinge.Angle(); !approxEqual(got, held, 1e-6) {
		t.Fatalf("braked hinge crept from %v to %v", held, got)
	}
	if _, ang := rig.Arm.Velocity(); ang.Len() > 1e-6 {
		t.Fatalf("arm angular velocity = %v after braking, want zero", ang)
	}
}

func TestClothRigBricksRestOnGround(t *testing.T) {
	cam := testCamera()
	_, h, err := cam.ViewSize(8)
	if err != nil {
		t.Fatal(err)
	}
	tn := DefaultTuning()
	tn.GroundEnabled = true
	tn.GroundY = -h / 2

	world := NewSoftWorld(tn)
	rig, err := NewClothRig(world, ClothRigConfig{Camera: cam, Tuning: tn})
	if err != nil {
		t.Fatal(err)
	}

	rests := make([]mgl64.Vec3, len(rig.Bricks))
	for i, b := range rig.Bricks {
		rests[i], _ = b.Transform()
	}

	for i := 0; i < 90; i++ {
		rig.Choreo.Step(1.0 / 60.0)
	}

	scene := rig.Choreo.Scene()
	for i, b := range rig.Bricks {
		pos, _ := b.Transform()
		if pos.Y() < rig.GroundY {
			t.Fatalf("brick %d sank to y = %v below ground %v", i, pos.Y(), rig.GroundY)
		}
		if d := pos.Sub(rests[i]).Len(); d > 0.2 {
			t.Fatalf("brick %d drifted %v from rest", i, d)
		}
		if got := scene.Mesh(rig.BrickMeshes[i]).Position; !approxVec3(got, pos, epsilon) {
			t.Fatalf("brick %d mesh at %v, body at %v", i, got, pos)
		}
	}
}

func TestClothRigExternalMirrors(t *testing.T) {
	world := NewSoftWorld(nil) // ground disabled: bricks fall freely
	rig, err := NewClothRig(world, ClothRigConfig{Camera: testCamera(), ExternalMirrors: true})
	if err != nil {
		t.Fatal(err)
	}

	scene := rig.Choreo.Scene()
	meshRest := scene.Mesh(rig.BrickMeshes[0]).Position
	for i := 0; i < 30; i++ {
		rig.Choreo.Step(1.0 / 60.0)
	}

	pos, _ := rig.Bricks[0].Transform()
	if pos.Y() >= meshRest.Y() {
		t.Fatalf("brick body did not fall: y = %v", pos.Y())
	}
	if got := scene.Mesh(rig.BrickMeshes[0]).Position; got != meshRest {
		t.Fatalf("brick mesh moved to %v with external mirrors", got)
	}
}

func TestClothRigDegradedDrive(t *testing.T) {
	rig, err := NewClothRig(nil, ClothRigConfig{Camera: testCamera()})
	if err != nil {
		t.Fatal(err)
	}

	rig.Choreo.Signal().Store(-1)
	frame := rig.Choreo.Step(1.0 / 60.0)
	if frame.Stepped {
		t.Fatal("stepped without a world")
	}
	if frame.Signal != 0 {
		t.Fatalf("reported signal = %v, want clamped 0", frame.Signal)
	}
}
