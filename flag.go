package drape

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	flagClothColor = Color{0.93, 0.78, 0.2, 1}
	flagPoleColor  = Color{0.45, 0.45, 0.5, 1}
	flagBrickColor = Color{0.62, 0.32, 0.18, 1}
)

// ClothRigConfig sizes a motorized flag rig against a camera frustum.
type ClothRigConfig struct {
	// Camera supplies the frustum the rig is fitted to. Required.
	Camera *Camera
	// Depth is the camera-to-rig distance. Zero means the distance from the
	// camera position to its target.
	Depth float64
	// Tuning overrides solver and motor parameters. Nil means defaults.
	Tuning *Tuning

	// Brick wall dimensions. Zero values mean 3 rows by 5 columns.
	BrickRows, BrickCols int

	// ExternalMirrors skips body-to-mesh mirror registration so an outer
	// system (the ecs adapter) can own the sync instead.
	ExternalMirrors bool
}

// ClothRig is a flag on a motorized arm: a kinematic pole carries a dynamic
// arm on a vertical-axis hinge, a cloth hangs from the arm pinned at its two
// top corners plus one softer mid binding, and a wall of loose bricks stands
// beside it. The control signal snaps to {-1, 0, 1} and drives the hinge
// motor, so motion comes out of the constraint solver rather than a pose
// overwrite.
type ClothRig struct {
	Choreo *Choreo
	Cloth  PatchID
	Hinge  Hinge

	// Pole and Arm are nil when built without a physics world.
	Pole, Arm Body
	ArmMesh   MeshID

	Bricks      []Body
	BrickMeshes []MeshID

	ViewWidth, ViewHeight float64
	// GroundY is the floor height the bricks were stacked on. Worlds created
	// separately should enable their ground plane at this height.
	GroundY float64
}

// NewClothRig lays out the rig against cfg.Camera and registers every part
// with a new Choreo. A nil world degrades to visuals only: meshes are built
// at rest geometry and nothing simulates.
func NewClothRig(world World, cfg ClothRigConfig) (*ClothRig, error) {
	tn := cfg.Tuning
	if tn == nil {
		tn = DefaultTuning()
	}
	if cfg.Camera == nil {
		return nil, fmt.Errorf("cloth rig layout: no camera: %w", ErrNotReady)
	}
	depth := cfg.Depth
	if depth <= 0 {
		depth = cfg.Camera.Position.Sub(cfg.Camera.Target).Len()
	}
	w, h, err := cfg.Camera.ViewSize(depth)
	if err != nil {
		return nil, fmt.Errorf("cloth rig layout: %w", err)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("cloth rig layout: degenerate view %gx%g: %w", w, h, ErrNotReady)
	}
	if world == nil {
		log.Printf("cloth rig: no physics world, rendering static geometry")
	}

	rows, cols := cfg.BrickRows, cfg.BrickCols
	if rows <= 0 {
		rows = 3
	}
	if cols <= 0 {
		cols = 5
	}

	c := NewChoreo(world)
	c.SetSubsteps(tn.Substeps)
	scene := c.Scene()

	rig := &ClothRig{
		Choreo:     c,
		ViewWidth:  w,
		ViewHeight: h,
		GroundY:    -h / 2,
	}

	// Pole stands on the ground at quarter view width left of center; the
	// arm hinges off its top and sweeps around the vertical axis.
	poleHE := mgl64.Vec3{0.015 * w, 0.3 * h, 0.015 * w}
	polePos := mgl64.Vec3{-w / 4, rig.GroundY + poleHE.Y(), 0}
	poleTop := polePos.Y() + poleHE.Y()

	armHE := mgl64.Vec3{0.12 * w, 0.015 * h, 0.015 * h}
	pivot := mgl64.Vec3{polePos.X(), poleTop, 0}
	armPos := mgl64.Vec3{polePos.X() + armHE.X(), poleTop, 0}

	if world != nil {
		rig.Pole = world.CreateBody(BodyDef{HalfExtents: poleHE, Position: polePos})
		rig.Arm = world.CreateBody(BodyDef{Mass: tn.ArmMass, HalfExtents: armHE, Position: armPos})
		rig.Hinge = world.CreateHinge(HingeDef{
			BodyA:     rig.Pole,
			BodyB:     rig.Arm,
			Pivot:     pivot,
			Axis:      mgl64.Vec3{0, 1, 0},
			MaxTorque: tn.MotorTorque,
		})
	}

	poleMesh := NewBoxMesh("flag pole", poleHE)
	poleMesh.Color = flagPoleColor
	poleMesh.Position = polePos
	scene.Add(poleMesh)

	armMesh := NewBoxMesh("flag arm", armHE)
	armMesh.Color = flagPoleColor
	armMesh.Position = armPos
	rig.ArmMesh = scene.Add(armMesh)
	if rig.Arm != nil && !cfg.ExternalMirrors {
		c.Mirror(rig.Arm, rig.ArmMesh)
	}

	c.AddActuator(&MotorActuator{
		Hinge:     rig.Hinge,
		Speed:     tn.MotorSpeed,
		MaxTorque: tn.MotorTorque,
	})

	// Cloth top edge rides just below the arm so unpinned top nodes stay
	// clear of the arm's collision volume.
	clothX0 := polePos.X() + 0.02*w
	clothTop := poleTop - 0.035*h
	pcfg := PatchConfig{
		Name:               "flag cloth",
		Corner00:           mgl64.Vec3{clothX0, clothTop, 0},
		Corner10:           mgl64.Vec3{clothX0 + 0.2*w, clothTop, 0},
		Corner01:           mgl64.Vec3{clothX0, clothTop - 0.25*h, 0},
		Corner11:           mgl64.Vec3{clothX0 + 0.2*w, clothTop - 0.25*h, 0},
		SegX:               tn.SegX,
		SegY:               tn.SegY,
		Mass:               tn.PatchMass,
		PositionIterations: tn.PositionIterations,
		VelocityIterations: tn.VelocityIterations,
		Margin:             tn.CollisionMargin,
		Damping:            tn.Damping,
		Color:              flagClothColor,
	}
	if world == nil {
		rig.Cloth, err = c.addStaticPatch(pcfg)
	} else {
		pcfg.Anchors = []AnchorSpec{
			{Node: GridIndex(0, 0, tn.SegX), Body: rig.Arm, Influence: 1},
			{Node: GridIndex(tn.SegX, 0, tn.SegX), Body: rig.Arm, Influence: 1},
			{Node: GridIndex(tn.SegX/2, 0, tn.SegX), Body: rig.Arm, Influence: tn.MidAnchorInfluence},
		}
		rig.Cloth, err = c.BuildPatch(pcfg)
	}
	if err != nil {
		return nil, err
	}

	// Brick wall: dynamic boxes stacked in resting contact on the ground,
	// right of center, mirrored onto their meshes every frame.
	brickHE := mgl64.Vec3{0.035 * w, 0.02 * h, 0.025 * w}
	gap := 0.004 * w
	wallWidth := float64(cols)*2*brickHE.X() + float64(cols-1)*gap
	wallX0 := 0.2*w - wallWidth/2 + brickHE.X()
	for r := 0; r < rows; r++ {
		for col := 0; col < cols; col++ {
			pos := mgl64.Vec3{
				wallX0 + float64(col)*(2*brickHE.X()+gap),
				rig.GroundY + brickHE.Y() + float64(r)*2*brickHE.Y(),
				0,
			}
			var b Body
			if world != nil {
				b = world.CreateBody(BodyDef{Mass: 0.5, HalfExtents: brickHE, Position: pos})
			}

			m := NewBoxMesh(fmt.Sprintf("brick %d,%d", r, col), brickHE)
			m.Color = flagBrickColor
			m.Position = pos
			id := scene.Add(m)

			rig.Bricks = append(rig.Bricks, b)
			rig.BrickMeshes = append(rig.BrickMeshes, id)
			if b != nil && !cfg.ExternalMirrors {
				c.Mirror(b, id)
			}
		}
	}

	return rig, nil
}
