// Package drape choreographs soft-body curtain and cloth scenes: it sizes
// deformable patches to a camera frustum, drives kinematic anchors from an
// external control signal, steps a physics world, and mirrors the simulated
// node positions back into renderable vertex buffers every frame.
//
// The package is display-free. A scene is advanced by calling [Choreo.Step]
// with the frame's elapsed time; the returned [Frame] reports which meshes
// changed so a presenter can re-upload them. The ebiten presenter lives in
// the view subpackage, and a headless driver lives in cmd/drapesim.
//
// # Quick start
//
//	world := drape.NewSoftWorld(drape.DefaultTuning())
//	cam := drape.Camera{
//		FOV: math.Pi / 3, Aspect: 16.0 / 9.0,
//		Position: mgl64.Vec3{0, 0, 14},
//	}
//	curtain, err := drape.NewCurtain(world, drape.CurtainConfig{Camera: &cam})
//	if err != nil {
//		log.Fatal(err)
//	}
//	curtain.Choreo.Signal().Store(0.3) // e.g. from a scroll listener
//	frame := curtain.Choreo.Step(1.0 / 60.0)
//
// # Scenes
//
// Two scene constructors cover the shipped demos: [NewCurtain] builds two
// cloth panels hanging from rods that slide apart as the control signal
// rises, and [NewClothRig] builds a cloth pinned to a motor-driven arm on a
// pole, plus a wall of loose bricks. Both accept a nil world and then degrade
// to visuals-only mode: meshes keep their rest geometry, kinematic rod meshes
// still follow the signal, and nothing is simulated.
//
// # Physics
//
// The solver is consumed through the [World], [Body], [Patch], and [Hinge]
// interfaces. [NewSoftWorld] wraps the bundled position-based-dynamics
// engine from the softbody subpackage; tests substitute lightweight fakes.
//
// Vector math uses [mgl64] throughout.
//
// [mgl64]: https://github.com/go-gl/mathgl
package drape
