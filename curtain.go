package drape

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	curtainPanelColor = Color{0.52, 0.09, 0.12, 1}
	curtainRodColor   = Color{0.55, 0.55, 0.58, 1}
)

// CurtainConfig sizes a two-panel curtain against a camera frustum.
type CurtainConfig struct {
	// Camera supplies the frustum the curtain is fitted to. Required.
	Camera *Camera
	// Depth is the camera-to-curtain distance. Zero means the distance from
	// the camera position to its target.
	Depth float64
	// Tuning overrides solver and travel parameters. Nil means defaults.
	Tuning *Tuning
}

// Curtain is a two-panel drape filling the view: one cloth panel per half,
// each hung from a kinematic rod that slides outward as the control signal
// rises. Signal 0 parks both rods at their start positions fully closed;
// signal 1 slides each rod a full half-view outward and fades the drapery.
type Curtain struct {
	Choreo *Choreo

	Left, Right       PatchID
	LeftRod, RightRod MeshID

	// Rod bodies are nil when built without a physics world.
	LeftRodBody, RightRodBody Body

	SlideDistance         float64
	ViewWidth, ViewHeight float64
}

// NewCurtain lays out the curtain against cfg.Camera and registers every
// part with a new Choreo. The camera must be ready before any geometry can
// be sized. A nil world degrades to visuals only: panels render at their
// rest geometry and the rod meshes still slide, but nothing simulates.
func NewCurtain(world World, cfg CurtainConfig) (*Curtain, error) {
	tn := cfg.Tuning
	if tn == nil {
		tn = DefaultTuning()
	}
	if cfg.Camera == nil {
		return nil, fmt.Errorf("curtain layout: no camera: %w", ErrNotReady)
	}
	depth := cfg.Depth
	if depth <= 0 {
		depth = cfg.Camera.Position.Sub(cfg.Camera.Target).Len()
	}
	w, h, err := cfg.Camera.ViewSize(depth)
	if err != nil {
		return nil, fmt.Errorf("curtain layout: %w", err)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("curtain layout: degenerate view %gx%g: %w", w, h, ErrNotReady)
	}
	if world == nil {
		log.Printf("curtain: no physics world, rendering static geometry")
	}

	c := NewChoreo(world)
	c.SetSubsteps(tn.Substeps)
	scene := c.Scene()

	cur := &Curtain{
		Choreo:        c,
		SlideDistance: (w / 2) * tn.SlideFraction,
		ViewWidth:     w,
		ViewHeight:    h,
	}

	// Each rod spans its half of the view along the top edge. Sliding a full
	// half-width clears the rod's inner end to the view border.
	rodHE := mgl64.Vec3{w / 4, 0.02 * h, 0.02 * h}
	top := h / 2
	for _, side := range []struct {
		name      string
		direction float64
		rodX      float64
		innerX    float64
		outerX    float64
	}{
		{"left", -1, -w / 4, 0, -w / 2},
		{"right", +1, w / 4, 0, w / 2},
	} {
		rodPos := mgl64.Vec3{side.rodX, top, 0}
		var rod Body
		if world != nil {
			rod = world.CreateBody(BodyDef{HalfExtents: rodHE, Position: rodPos})
		}

		rodMesh := NewBoxMesh("curtain rod "+side.name, rodHE)
		rodMesh.Color = curtainRodColor
		rodMesh.Position = rodPos
		rodID := scene.Add(rodMesh)

		c.AddActuator(&SlideActuator{
			Scene:     scene,
			Mesh:      rodID,
			Body:      rod,
			Start:     rodPos,
			Direction: side.direction,
			Distance:  cur.SlideDistance,
		})

		pcfg := PatchConfig{
			Name:               "curtain " + side.name,
			Corner00:           mgl64.Vec3{side.outerX, top, 0},
			Corner10:           mgl64.Vec3{side.innerX, top, 0},
			Corner01:           mgl64.Vec3{side.outerX, -top, 0},
			Corner11:           mgl64.Vec3{side.innerX, -top, 0},
			SegX:               tn.SegX,
			SegY:               tn.SegY,
			Mass:               tn.PatchMass,
			PositionIterations: tn.PositionIterations,
			VelocityIterations: tn.VelocityIterations,
			Margin:             tn.CollisionMargin,
			Damping:            tn.Damping,
			Color:              curtainPanelColor,
		}

		var id PatchID
		if world == nil {
			id, err = c.addStaticPatch(pcfg)
		} else {
			for ix := 0; ix <= tn.SegX; ix++ {
				pcfg.Anchors = append(pcfg.Anchors, AnchorSpec{
					Node:      GridIndex(ix, 0, tn.SegX),
					Body:      rod,
					Influence: tn.AnchorInfluence,
				})
			}
			id, err = c.BuildPatch(pcfg)
		}
		if err != nil {
			return nil, err
		}

		// The seam edge is the panel's inner (view center) edge: Corner10 is
		// the inner top corner, so the seam columns end at ix = segX.
		c.AddSeamForce(SeamForce{
			Patch:     id,
			Nodes:     seamColumnNodes(tn.SegX, tn.SegY, tn.SeamColumns),
			Direction: mgl64.Vec3{side.direction, 0, 0},
			Magnitude: tn.SeamForce,
		})

		c.Fade(c.PatchMesh(id), rodID)

		if side.direction < 0 {
			cur.Left, cur.LeftRod, cur.LeftRodBody = id, rodID, rod
		} else {
			cur.Right, cur.RightRod, cur.RightRodBody = id, rodID, rod
		}
	}

	return cur, nil
}

// seamColumnNodes returns the node indices of the cols grid columns nearest
// the seam edge at ix = segX. The anchored top row is omitted: its nodes are
// corrected toward the rod after forces apply, so pushing them is wasted.
func seamColumnNodes(segX, segY, cols int) []int {
	if cols <= 0 {
		return nil
	}
	if cols > segX+1 {
		cols = segX + 1
	}
	nodes := make([]int, 0, cols*segY)
	for k := 0; k < cols; k++ {
		ix := segX - k
		for iy := 1; iy <= segY; iy++ {
			nodes = append(nodes, GridIndex(ix, iy, segX))
		}
	}
	return nodes
}
