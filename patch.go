package drape

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// PatchID indexes the choreo's patch registry. IDs are dense, assigned in
// build order, and stay valid for the life of the choreo.
type PatchID int

// AnchorSpec binds one patch node to a rigid body at build time. Bindings
// are immutable once the patch is built.
type AnchorSpec struct {
	// Node is the grid node index, in GridIndex order.
	Node int
	// Body is the anchor target, created in the same world as the patch.
	Body Body
	// Influence in [0,1]: 1 pins the node to the body exactly every step,
	// lower values let it sag toward the simulated position.
	Influence float64
}

// PatchConfig describes one deformable patch and its render mesh.
type PatchConfig struct {
	// Name labels the mesh in logs and overlays.
	Name string

	// Corners span the patch quadrilateral; see NewPatchMesh for the
	// ix/iy convention.
	Corner00, Corner10, Corner01, Corner11 mgl64.Vec3

	// SegX and SegY are segment counts per axis; values below 1 are
	// raised to 1. The mesh gets (SegX+1)*(SegY+1) vertices, one per node.
	SegX, SegY int
	// Mass is the total patch mass. Zero pins every node.
	Mass float64

	// Solver knobs; zero values take the engine defaults.
	PositionIterations int
	VelocityIterations int
	Margin             float64
	Damping            float64

	// Group and Mask filter collisions; zero values mean group 1, mask -1.
	Group, Mask int

	Anchors []AnchorSpec

	// Color tints the mesh; the zero value means white.
	Color Color
}

// BuildPatch creates the soft patch in the world, a mesh whose vertex buffer
// is index-aligned with the patch nodes, and the anchor bindings, then
// registers the pair and returns its id.
//
// Setup fails fast: a nil world or scene, corners that were never sized, or
// an invalid anchor return ErrNotReady (wrapped) before anything is created.
// After a successful build, per-frame code never returns errors.
func (c *Choreo) BuildPatch(cfg PatchConfig) (PatchID, error) {
	if c.world == nil || c.scene == nil {
		return -1, fmt.Errorf("build patch %q: no world: %w", cfg.Name, ErrNotReady)
	}
	if degenerateCorners(cfg.Corner00, cfg.Corner10, cfg.Corner01, cfg.Corner11) {
		return -1, fmt.Errorf("build patch %q: corners not sized: %w", cfg.Name, ErrNotReady)
	}
	if cfg.SegX < 1 {
		cfg.SegX = 1
	}
	if cfg.SegY < 1 {
		cfg.SegY = 1
	}
	nodes := (cfg.SegX + 1) * (cfg.SegY + 1)
	for _, a := range cfg.Anchors {
		if a.Body == nil || a.Node < 0 || a.Node >= nodes {
			return -1, fmt.Errorf("build patch %q: anchor node %d: %w", cfg.Name, a.Node, ErrNotReady)
		}
	}

	p := c.world.CreatePatch(PatchDef{
		Corner00:           cfg.Corner00,
		Corner10:           cfg.Corner10,
		Corner01:           cfg.Corner01,
		Corner11:           cfg.Corner11,
		SegX:               cfg.SegX,
		SegY:               cfg.SegY,
		Mass:               cfg.Mass,
		PositionIterations: cfg.PositionIterations,
		VelocityIterations: cfg.VelocityIterations,
		Margin:             cfg.Margin,
		Damping:            cfg.Damping,
		Group:              cfg.Group,
		Mask:               cfg.Mask,
	})
	for _, a := range cfg.Anchors {
		p.Anchor(a.Node, a.Body, a.Influence)
	}

	return c.addPatch(p, c.scene.Add(patchMeshFor(cfg))), nil
}

// addStaticPatch registers a mesh-only entry for the degraded visuals-only
// mode: the patch renders at its built geometry and the sync pass skips it.
func (c *Choreo) addStaticPatch(cfg PatchConfig) (PatchID, error) {
	if c.scene == nil {
		return -1, fmt.Errorf("static patch %q: %w", cfg.Name, ErrNotReady)
	}
	if degenerateCorners(cfg.Corner00, cfg.Corner10, cfg.Corner01, cfg.Corner11) {
		return -1, fmt.Errorf("static patch %q: corners not sized: %w", cfg.Name, ErrNotReady)
	}
	return c.addPatch(nil, c.scene.Add(patchMeshFor(cfg))), nil
}

// patchMeshFor builds the render mesh for a patch config.
func patchMeshFor(cfg PatchConfig) *Mesh {
	m := NewPatchMesh(cfg.Name, cfg.Corner00, cfg.Corner10, cfg.Corner01, cfg.Corner11, cfg.SegX, cfg.SegY)
	if cfg.Color != (Color{}) {
		m.Color = cfg.Color
	}
	return m
}

// degenerateCorners reports whether the quad was never sized: all four
// corners on the same point, which is what uncomputed layout produces.
func degenerateCorners(c00, c10, c01, c11 mgl64.Vec3) bool {
	return c00 == c10 && c00 == c01 && c00 == c11
}
