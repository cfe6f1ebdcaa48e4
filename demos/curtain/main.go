// curtain hangs two cloth panels from kinematic rods and slides them apart
// with the mouse wheel. Scroll down to draw the curtain open: the panels sag
// behind the rods and fade out as the stage behind them is revealed. All
// geometry is procedural and sized from the camera frustum, so the effect
// fills the window at any aspect ratio. Press S for a screenshot.
package main

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	drape "github.com/ProfMoriartey/3d-demo"
	"github.com/ProfMoriartey/3d-demo/view"
)

const (
	screenW = 1280
	screenH = 720

	// Camera sits on the +Z axis looking at the origin; the curtain hangs in
	// the z=0 plane, so this is also the frustum-fit distance.
	cameraDepth = 14.0

	scrollNotch = 0.06
)

func main() {
	cam := drape.Camera{
		FOV:      math.Pi / 3,
		Aspect:   float64(screenW) / float64(screenH),
		Position: mgl64.Vec3{0, 0, cameraDepth},
	}

	tn := drape.DefaultTuning()
	world := drape.NewSoftWorld(tn)

	cur, err := drape.NewCurtain(world, drape.CurtainConfig{
		Camera: &cam,
		Tuning: tn,
	})
	if err != nil {
		log.Fatal(err)
	}

	err = view.Run(cur.Choreo, view.Config{
		Title:          "Drape — Curtain",
		Width:          screenW,
		Height:         screenH,
		Camera:         cam,
		ScrollPerNotch: scrollNotch,
		Overlay:        true,
	})
	if err != nil {
		log.Fatal(err)
	}
}
