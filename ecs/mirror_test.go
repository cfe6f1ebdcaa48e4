package ecs

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"

	drape "github.com/ProfMoriartey/3d-demo"
)

func TestMirrorCopiesBodyPose(t *testing.T) {
	ecsWorld := donburi.NewWorld()
	sim := drape.NewSoftWorld(nil)

	he := mgl64.Vec3{0.5, 0.5, 0.5}
	body := sim.CreateBody(drape.BodyDef{Mass: 1, HalfExtents: he, Position: mgl64.Vec3{0, 5, 0}})
	scene := drape.NewScene()
	mesh := drape.NewBoxMesh("brick", he)
	mesh.Position = mgl64.Vec3{0, 5, 0}
	id := scene.Add(mesh)

	Attach(ecsWorld, body, scene, id)

	for i := 0; i < 30; i++ {
		sim.Step(1.0/60.0, 10)
	}
	Mirror(ecsWorld)

	pos, rot := body.Transform()
	if pos.Y() >= 5 {
		t.Fatalf("body did not fall: y = %v", pos.Y())
	}
	if mesh.Position != pos {
		t.Fatalf("mesh at %v, body at %v", mesh.Position, pos)
	}
	if mesh.Rotation != rot {
		t.Fatalf("mesh rotation %v, body %v", mesh.Rotation, rot)
	}
}

func TestMirrorSkipsMissingCollaborators(t *testing.T) {
	ecsWorld := donburi.NewWorld()
	scene := drape.NewScene()
	mesh := drape.NewBoxMesh("orphan", mgl64.Vec3{1, 1, 1})
	rest := mgl64.Vec3{2, 2, 2}
	mesh.Position = rest
	id := scene.Add(mesh)

	Attach(ecsWorld, nil, scene, id)

	sim := drape.NewSoftWorld(nil)
	body := sim.CreateBody(drape.BodyDef{Mass: 1, HalfExtents: mgl64.Vec3{1, 1, 1}})
	Attach(ecsWorld, body, nil, 0)
	Attach(ecsWorld, body, scene, drape.MeshID(99))

	Mirror(ecsWorld)

	if mesh.Position != rest {
		t.Fatalf("nil-body entry moved its mesh to %v", mesh.Position)
	}
}

func TestFrameEventsReachSubscribers(t *testing.T) {
	ecsWorld := donburi.NewWorld()

	var received []drape.Frame
	FrameEventType.Subscribe(ecsWorld, func(w donburi.World, f drape.Frame) {
		received = append(received, f)
	})

	PublishFrame(ecsWorld, drape.Frame{State: drape.StateRunning, Opening: 0.5})
	PublishFrame(ecsWorld, drape.Frame{State: drape.StateRunning, Opening: 1})

	// Events are queued until processed.
	if len(received) != 0 {
		t.Fatalf("events delivered before ProcessEvents: %d", len(received))
	}
	FrameEventType.ProcessEvents(ecsWorld)

	if len(received) != 2 {
		t.Fatalf("expected 2 frame events, got %d", len(received))
	}
	if received[0].Opening != 0.5 || received[1].Opening != 1 {
		t.Fatalf("frame events out of order: %+v", received)
	}
}

func TestAttachRigMirrorsExternally(t *testing.T) {
	cam := &drape.Camera{
		FOV:      math.Pi / 3,
		Aspect:   16.0 / 9.0,
		Position: mgl64.Vec3{0, 0, 8},
	}
	sim := drape.NewSoftWorld(nil)
	rig, err := drape.NewClothRig(sim, drape.ClothRigConfig{Camera: cam, ExternalMirrors: true})
	if err != nil {
		t.Fatal(err)
	}

	ecsWorld := donburi.NewWorld()
	entities := AttachRig(ecsWorld, rig)
	if want := 1 + len(rig.Bricks); len(entities) != want {
		t.Fatalf("attached %d entities, want %d", len(entities), want)
	}

	// Without a ground plane the bricks fall; only the ECS pass moves meshes.
	scene := rig.Choreo.Scene()
	rest := scene.Mesh(rig.BrickMeshes[0]).Position
	for i := 0; i < 30; i++ {
		rig.Choreo.Step(1.0 / 60.0)
	}
	if got := scene.Mesh(rig.BrickMeshes[0]).Position; got != rest {
		t.Fatalf("choreo moved an externally mirrored mesh to %v", got)
	}

	Mirror(ecsWorld)
	pos, _ := rig.Bricks[0].Transform()
	if got := scene.Mesh(rig.BrickMeshes[0]).Position; got != pos {
		t.Fatalf("mesh at %v after Mirror, body at %v", got, pos)
	}
	if pos.Y() >= rest.Y() {
		t.Fatalf("brick did not fall: y = %v", pos.Y())
	}
}
