package softbody

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Constraint stiffnesses per kind. Structural edges hold the weave together,
// shear edges resist skewing, bend edges (skip-one) resist creasing.
const (
	stretchStiffness = 1.0
	shearStiffness   = 0.9
	bendStiffness    = 0.5
)

// PatchConfig describes a deformable grid patch.
type PatchConfig struct {
	// Corner00 is the node at (ix=0, iy=0), Corner10 at (ix=SegX, iy=0),
	// Corner01 at (ix=0, iy=SegY), Corner11 at (ix=SegX, iy=SegY). Node
	// positions interpolate bilinearly between them.
	Corner00, Corner10, Corner01, Corner11 mgl64.Vec3

	// SegX and SegY are the segment counts per axis; the patch has
	// (SegX+1) * (SegY+1) nodes. Values below 1 are raised to 1.
	SegX, SegY int

	// Mass is the total patch mass, spread evenly over the nodes. Zero or
	// negative pins every node (a static sheet).
	Mass float64

	// PositionIterations is the constraint projection count per substep
	// (default 8). VelocityIterations is the contact velocity cleanup
	// count per substep (default 1).
	PositionIterations int
	VelocityIterations int

	// Margin is the collision skin distance between nodes and body
	// surfaces (default 0.05).
	Margin float64

	// Damping is the exponential velocity damping rate (default 0.15).
	// Exactly zero keeps the default; negative disables damping.
	Damping float64

	// Group and Mask filter which bodies the patch collides with. Zero
	// values mean group 1, mask -1.
	Group, Mask int
}

type patchNode struct {
	pos     mgl64.Vec3
	prev    mgl64.Vec3
	vel     mgl64.Vec3
	force   mgl64.Vec3
	invMass float64
}

type constraint struct {
	i1, i2    int
	rest      float64
	stiffness float64
}

type anchor struct {
	node      int
	body      *Body
	local     mgl64.Vec3 // offset in the body's frame, captured at bind time
	influence float64
}

// Patch is a deformable grid of mass nodes joined by distance constraints,
// solved position-based. Node indices are row-major: iy*(SegX+1) + ix.
type Patch struct {
	segX, segY int

	nodes       []patchNode
	constraints []constraint
	anchors     []anchor

	structuralCount int
	shearCount      int
	bendCount       int

	posIterations int
	velIterations int
	margin        float64
	damping       float64
	group, mask   int
}

// NewPatch builds a patch from cfg and registers it with the world.
func (w *World) NewPatch(cfg PatchConfig) *Patch {
	segX, segY := cfg.SegX, cfg.SegY
	if segX < 1 {
		segX = 1
	}
	if segY < 1 {
		segY = 1
	}

	p := &Patch{
		segX:          segX,
		segY:          segY,
		posIterations: cfg.PositionIterations,
		velIterations: cfg.VelocityIterations,
		margin:        cfg.Margin,
		damping:       cfg.Damping,
		group:         cfg.Group,
		mask:          cfg.Mask,
	}
	if p.posIterations <= 0 {
		p.posIterations = 8
	}
	if p.velIterations <= 0 {
		p.velIterations = 1
	}
	if p.margin <= 0 {
		p.margin = 0.05
	}
	if p.damping == 0 {
		p.damping = 0.15
	} else if p.damping < 0 {
		p.damping = 0
	}
	if p.group == 0 {
		p.group = 1
	}
	if p.mask == 0 {
		p.mask = -1
	}

	vcols := segX + 1
	vrows := segY + 1
	p.nodes = make([]patchNode, vcols*vrows)

	var invMass float64
	if cfg.Mass > 0 {
		invMass = float64(len(p.nodes)) / cfg.Mass
	}

	for iy := 0; iy < vrows; iy++ {
		ty := float64(iy) / float64(segY)
		left := vec3Lerp(cfg.Corner00, cfg.Corner01, ty)
		right := vec3Lerp(cfg.Corner10, cfg.Corner11, ty)
		for ix := 0; ix < vcols; ix++ {
			tx := float64(ix) / float64(segX)
			pos := vec3Lerp(left, right, tx)
			n := &p.nodes[p.NodeIndex(ix, iy)]
			n.pos = pos
			n.prev = pos
			n.invMass = invMass
		}
	}

	p.buildConstraints()
	w.patches = append(w.patches, p)
	return p
}

// buildConstraints wires the grid: structural neighbors first, then shear
// diagonals, then skip-one bend links, each at rest length from the build
// geometry.
func (p *Patch) buildConstraints() {
	link := func(i1, i2 int, stiffness float64) {
		p.constraints = append(p.constraints, constraint{
			i1: i1, i2: i2,
			rest:      p.nodes[i2].pos.Sub(p.nodes[i1].pos).Len(),
			stiffness: stiffness,
		})
	}

	vcols := p.segX + 1
	vrows := p.segY + 1

	for iy := 0; iy < vrows; iy++ {
		for ix := 0; ix < vcols; ix++ {
			i := p.NodeIndex(ix, iy)
			if ix+1 < vcols {
				link(i, p.NodeIndex(ix+1, iy), stretchStiffness)
			}
			if iy+1 < vrows {
				link(i, p.NodeIndex(ix, iy+1), stretchStiffness)
			}
		}
	}
	p.structuralCount = len(p.constraints)

	for iy := 0; iy < vrows-1; iy++ {
		for ix := 0; ix < vcols-1; ix++ {
			link(p.NodeIndex(ix, iy), p.NodeIndex(ix+1, iy+1), shearStiffness)
			link(p.NodeIndex(ix+1, iy), p.NodeIndex(ix, iy+1), shearStiffness)
		}
	}
	p.shearCount = len(p.constraints) - p.structuralCount

	for iy := 0; iy < vrows; iy++ {
		for ix := 0; ix < vcols; ix++ {
			i := p.NodeIndex(ix, iy)
			if ix+2 < vcols {
				link(i, p.NodeIndex(ix+2, iy), bendStiffness)
			}
			if iy+2 < vrows {
				link(i, p.NodeIndex(ix, iy+2), bendStiffness)
			}
		}
	}
	p.bendCount = len(p.constraints) - p.structuralCount - p.shearCount
}

// NodeIndex returns the node index for grid coordinates (ix, iy).
func (p *Patch) NodeIndex(ix, iy int) int {
	return iy*(p.segX+1) + ix
}

// NodeCount returns the number of nodes, (SegX+1) * (SegY+1).
func (p *Patch) NodeCount() int {
	return len(p.nodes)
}

// Segments returns the segment counts the patch was built with.
func (p *Patch) Segments() (segX, segY int) {
	return p.segX, p.segY
}

// NodePosition returns node i's current world position.
func (p *Patch) NodePosition(i int) mgl64.Vec3 {
	return p.nodes[i].pos
}

// NodeVelocity returns node i's current velocity.
func (p *Patch) NodeVelocity(i int) mgl64.Vec3 {
	return p.nodes[i].vel
}

// AddForce accumulates a force on node i for the next Step. The accumulator
// is cleared when Step returns, so per-frame forces must be re-applied every
// frame.
func (p *Patch) AddForce(i int, f mgl64.Vec3) {
	p.nodes[i].force = p.nodes[i].force.Add(f)
}

// Anchor binds node i to follow a body. The node's current offset in the
// body's frame is captured now and re-targeted every substep; influence in
// (0, 1] is how strongly the node is pulled to the target each substep, with
// 1 meaning it lands exactly on it. Influence outside (0, 1] is clamped.
func (p *Patch) Anchor(i int, b *Body, influence float64) {
	if influence > 1 || math.IsNaN(influence) {
		influence = 1
	} else if influence <= 0 {
		influence = 0
	}
	local := b.rotation.Inverse().Rotate(p.nodes[i].pos.Sub(b.position))
	p.anchors = append(p.anchors, anchor{node: i, body: b, local: local, influence: influence})
}

// AnchorCount returns the number of anchor bindings.
func (p *Patch) AnchorCount() int {
	return len(p.anchors)
}

// anchoredTo reports whether node i is bound to b. Collision between a node
// and its own anchor body is disabled, since the binding usually places the
// node on or inside that body and pushout would fight the anchor every
// substep.
func (p *Patch) anchoredTo(i int, b *Body) bool {
	for _, a := range p.anchors {
		if a.node == i && a.body == b {
			return true
		}
	}
	return false
}

// substep advances the patch by h seconds: integrate, project constraints,
// re-assert anchors, resolve collisions, then derive velocities from the
// positional change (the PBD velocity update).
func (p *Patch) substep(h float64, w *World) {
	damp := math.Exp(-h * p.damping)
	for i := range p.nodes {
		n := &p.nodes[i]
		n.prev = n.pos
		if n.invMass == 0 {
			continue
		}
		n.vel = n.vel.Mul(damp)
		n.vel = n.vel.Add(w.gravity.Mul(h))
		n.vel = n.vel.Add(n.force.Mul(n.invMass * h))
		n.pos = n.pos.Add(n.vel.Mul(h))
	}

	for it := 0; it < p.posIterations; it++ {
		p.projectConstraints()
	}
	p.applyAnchors()
	p.collide(w)

	invH := 1 / h
	for i := range p.nodes {
		n := &p.nodes[i]
		n.vel = n.pos.Sub(n.prev).Mul(invH)
	}

	for it := 0; it < p.velIterations; it++ {
		p.cancelContactVelocity(w)
	}
}

// projectConstraints runs one Gauss-Seidel pass over all distance
// constraints, moving each pair toward its rest length weighted by inverse
// mass and stiffness.
func (p *Patch) projectConstraints() {
	for ci := range p.constraints {
		c := &p.constraints[ci]
		n1 := &p.nodes[c.i1]
		n2 := &p.nodes[c.i2]

		sum := n1.invMass + n2.invMass
		if sum == 0 {
			continue
		}

		d := n2.pos.Sub(n1.pos)
		l := d.Len()
		if l < 1e-12 {
			continue
		}
		corr := d.Mul(c.stiffness * (l - c.rest) / (l * sum))
		n1.pos = n1.pos.Add(corr.Mul(n1.invMass))
		n2.pos = n2.pos.Sub(corr.Mul(n2.invMass))
	}
}

// applyAnchors pulls bound nodes toward their body-frame targets. Runs after
// constraint projection so full-influence anchors land exactly on the rod.
func (p *Patch) applyAnchors() {
	for _, a := range p.anchors {
		target := a.body.position.Add(a.body.rotation.Rotate(a.local))
		n := &p.nodes[a.node]
		n.pos = vec3Lerp(n.pos, target, a.influence)
	}
}

// collide pushes nodes out of filtered bodies and off the ground plane.
func (p *Patch) collide(w *World) {
	for i := range p.nodes {
		n := &p.nodes[i]
		if n.invMass == 0 {
			continue
		}
		for _, b := range w.bodies {
			if !filterMatch(p.group, p.mask, b.group, b.mask) || p.anchoredTo(i, b) {
				continue
			}
			if local, inside := b.closestLocalPoint(n.pos, p.margin); inside {
				n.pos, _ = b.pushOut(local, p.margin)
			}
		}
		if clearance := w.groundClearance(n.pos); clearance < p.margin {
			n.pos = mgl64.Vec3{n.pos.X(), n.pos.Y() + (p.margin - clearance), n.pos.Z()}
		}
	}
}

// cancelContactVelocity removes the velocity component pointing into a body
// surface for nodes resting within the collision margin, which stops contact
// jitter from the positional pushout.
func (p *Patch) cancelContactVelocity(w *World) {
	for i := range p.nodes {
		n := &p.nodes[i]
		if n.invMass == 0 {
			continue
		}
		for _, b := range w.bodies {
			if !filterMatch(p.group, p.mask, b.group, b.mask) || p.anchoredTo(i, b) {
				continue
			}
			local, inside := b.closestLocalPoint(n.pos, p.margin*1.5)
			if !inside {
				continue
			}
			_, normal := b.pushOut(local, p.margin*1.5)
			if into := n.vel.Dot(normal); into < 0 {
				n.vel = n.vel.Sub(normal.Mul(into))
			}
		}
	}
}

// clearForces zeroes every node's force accumulator.
func (p *Patch) clearForces() {
	for i := range p.nodes {
		p.nodes[i].force = mgl64.Vec3{}
	}
}

// vec3Lerp interpolates a -> b by t.
func vec3Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
