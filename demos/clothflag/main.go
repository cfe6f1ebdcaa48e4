// clothflag pins a cloth sheet to a motor-driven arm hinged on a pole, next
// to a wall of loose bricks. Hold the left/right arrow keys (or A/D) to swing
// the arm: the cloth trails the motion and the arm can sweep through the wall,
// scattering bricks across the ground. Body poses are mirrored onto their
// meshes through the Donburi adapter rather than the choreo's built-in sync.
// Press S for a screenshot.
package main

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"

	drape "github.com/ProfMoriartey/3d-demo"
	"github.com/ProfMoriartey/3d-demo/ecs"
	"github.com/ProfMoriartey/3d-demo/view"
)

const (
	screenW = 1280
	screenH = 720

	cameraDepth = 16.0

	brickRows = 4
	brickCols = 6
)

func main() {
	cam := drape.Camera{
		FOV:      math.Pi / 3,
		Aspect:   float64(screenW) / float64(screenH),
		Position: mgl64.Vec3{0, 0, cameraDepth},
	}

	// The rig stacks its bricks on a floor at the bottom of the view, so the
	// world's ground plane has to sit at the same height.
	_, viewH, err := cam.ViewSize(cameraDepth)
	if err != nil {
		log.Fatal(err)
	}
	tn := drape.DefaultTuning()
	tn.GroundEnabled = true
	tn.GroundY = -viewH / 2

	world := drape.NewSoftWorld(tn)
	rig, err := drape.NewClothRig(world, drape.ClothRigConfig{
		Camera:          &cam,
		Tuning:          tn,
		BrickRows:       brickRows,
		BrickCols:       brickCols,
		ExternalMirrors: true,
	})
	if err != nil {
		log.Fatal(err)
	}

	ecsWorld := donburi.NewWorld()
	ecs.AttachRig(ecsWorld, rig)

	err = view.Run(rig.Choreo, view.Config{
		Title:        "Drape — Cloth Flag",
		Width:        screenW,
		Height:       screenH,
		Camera:       cam,
		KeyDrive:     true,
		KeyDirection: true,
		Overlay:      true,
		OnFrame: func(f drape.Frame) {
			ecs.PublishFrame(ecsWorld, f)
			ecs.FrameEventType.ProcessEvents(ecsWorld)
			ecs.Mirror(ecsWorld)
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
