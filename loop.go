package drape

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tanema/gween/ease"
)

// Frame reports what one Step did. Values describe this frame only; nothing
// in it is cumulative.
type Frame struct {
	// State after the step.
	State RunState
	// Signal is the control value sampled this frame, clamped to [0,1].
	Signal float64
	// Opening is the eased signal, the "percent open" observable. Fading
	// meshes hold alpha 1-Opening.
	Opening float64
	// Stepped reports whether the physics world advanced. False in
	// visuals-only mode and for dt <= 0.
	Stepped bool
	// Dirty lists the meshes whose vertex buffers were rewritten, in patch
	// registration order. The slice is reused: valid until the next Step.
	Dirty []MeshID
}

// SeamForce pushes a set of patch nodes in a fixed direction each frame,
// scaled by the eased control value. It exists to help under-constrained
// seam columns follow the rods; it is a tuning nudge, not a constraint, and
// Magnitude 0 disables it.
type SeamForce struct {
	Patch PatchID
	// Nodes lists the node indices to push; out-of-range entries are
	// skipped.
	Nodes []int
	// Direction is the push direction, not normalized by the loop.
	Direction mgl64.Vec3
	// Magnitude is the force per node at eased signal 1.
	Magnitude float64
}

// patchEntry associates an engine patch with its render mesh. A nil patch
// is a visuals-only entry: the mesh renders at its built geometry and the
// sync pass skips it.
type patchEntry struct {
	patch Patch
	mesh  MeshID
}

// mirrorEntry copies a rigid body's pose onto a mesh every frame.
type mirrorEntry struct {
	body Body
	mesh MeshID
}

// Choreo owns one choreography instance: the scene, the engine world port,
// and everything registered against them. All methods must be called from
// the single frame goroutine; see Signal for the one cross-goroutine value.
//
// The zero Choreo is unusable; NewChoreo sets up the scene. State moves
// forward only: Uninitialized until the first patch is registered, Ready
// until the first Step, then Running until Dispose.
type Choreo struct {
	world World
	scene *Scene

	signal   Signal
	easeFn   ease.TweenFunc
	substeps int

	state RunState

	actuators []Actuator
	patches   []patchEntry
	mirrors   []mirrorEntry
	fades     []MeshID
	seams     []SeamForce

	dirty []MeshID
}

// NewChoreo creates a choreographer stepping world. A nil world is the
// degraded visuals-only mode: scene constructors then register static
// geometry and Step skips simulation and sync.
func NewChoreo(world World) *Choreo {
	return &Choreo{
		world:    world,
		scene:    NewScene(),
		substeps: DefaultSubsteps,
	}
}

// Scene returns the choreo's scene, or nil after Dispose.
func (c *Choreo) Scene() *Scene {
	return c.scene
}

// Signal returns the shared control value. Input producers store into it
// from their own callbacks; Step samples it once per frame.
func (c *Choreo) Signal() *Signal {
	return &c.signal
}

// State returns the lifecycle state.
func (c *Choreo) State() RunState {
	return c.state
}

// SetEase replaces the easing used for seam forces, fades, and the Opening
// report. Nil restores the default out-cubic. Actuators ease independently.
func (c *Choreo) SetEase(fn ease.TweenFunc) {
	c.easeFn = fn
}

// SetSubsteps overrides the per-frame solver substep count. Values below 1
// are ignored.
func (c *Choreo) SetSubsteps(n int) {
	if n >= 1 {
		c.substeps = n
	}
}

// AddActuator registers an actuator. Actuators run in registration order,
// each receiving the raw (unclamped) signal.
func (c *Choreo) AddActuator(a Actuator) {
	if c.state == StateDisposed || a == nil {
		return
	}
	c.actuators = append(c.actuators, a)
}

// AddSeamForce registers a seam nudge against a built patch.
func (c *Choreo) AddSeamForce(s SeamForce) {
	if c.state == StateDisposed {
		return
	}
	c.seams = append(c.seams, s)
}

// Mirror registers a body whose pose is copied onto mesh after every step.
// Used for dynamic bodies the solver moves (bricks, arm segments); kinematic
// rods are positioned by their actuator instead.
func (c *Choreo) Mirror(body Body, mesh MeshID) {
	if c.state == StateDisposed {
		return
	}
	c.mirrors = append(c.mirrors, mirrorEntry{body: body, mesh: mesh})
}

// Fade registers meshes whose alpha follows 1-Opening, fully visible at
// signal 0 and fully faded at signal 1.
func (c *Choreo) Fade(ids ...MeshID) {
	if c.state == StateDisposed {
		return
	}
	c.fades = append(c.fades, ids...)
}

// addPatch registers a patch entry and unlocks stepping on the first one.
func (c *Choreo) addPatch(p Patch, mesh MeshID) PatchID {
	c.patches = append(c.patches, patchEntry{patch: p, mesh: mesh})
	if c.state == StateUninitialized {
		c.state = StateReady
	}
	return PatchID(len(c.patches) - 1)
}

// PatchMesh returns the mesh built for a patch, or -1 for an unknown id.
func (c *Choreo) PatchMesh(id PatchID) MeshID {
	if id < 0 || int(id) >= len(c.patches) {
		return -1
	}
	return c.patches[id].mesh
}

// patchAt returns the engine handle for id, or nil.
func (c *Choreo) patchAt(id PatchID) Patch {
	if id < 0 || int(id) >= len(c.patches) {
		return nil
	}
	return c.patches[id].patch
}

// Step advances the choreography one frame, in fixed order: sample the
// signal, drive actuators, inject seam forces, step the world, copy node
// positions into vertex buffers and recompute normals, mirror rigid bodies,
// apply fades. A missing collaborator skips its own sub-step for this frame
// only; nothing here panics or retries.
//
// Before the first patch is registered, and after Dispose, Step reports the
// state and does nothing else.
func (c *Choreo) Step(dt float64) Frame {
	if c.state == StateUninitialized || c.state == StateDisposed {
		return Frame{State: c.state}
	}
	c.state = StateRunning

	raw := c.signal.Load()
	clamped := Clamp01(raw)
	eased := easeValue(c.easeFn, clamped)

	for _, a := range c.actuators {
		a.Drive(raw)
	}

	for _, s := range c.seams {
		if s.Magnitude == 0 {
			continue
		}
		p := c.patchAt(s.Patch)
		if p == nil {
			continue
		}
		f := s.Direction.Mul(s.Magnitude * eased)
		for _, n := range s.Nodes {
			if n >= 0 && n < p.NodeCount() {
				p.AddForce(n, f)
			}
		}
	}

	stepped := false
	if c.world != nil && dt > 0 {
		c.world.Step(dt, c.substeps)
		stepped = true
	}

	c.dirty = c.dirty[:0]
	for _, e := range c.patches {
		if e.patch == nil {
			continue
		}
		m := c.scene.Mesh(e.mesh)
		if m == nil {
			continue
		}
		n := e.patch.NodeCount()
		if n*3 != len(m.Positions) {
			continue
		}
		for i := 0; i < n; i++ {
			m.SetPosition(i, e.patch.NodePosition(i))
		}
		m.RecomputeNormals()
		c.dirty = append(c.dirty, e.mesh)
	}

	for _, me := range c.mirrors {
		if me.body == nil {
			continue
		}
		m := c.scene.Mesh(me.mesh)
		if m == nil {
			continue
		}
		pos, rot := me.body.Transform()
		m.Position = pos
		m.Rotation = rot
	}

	if len(c.fades) > 0 {
		alpha := 1 - eased
		for _, id := range c.fades {
			if m := c.scene.Mesh(id); m != nil {
				m.Alpha = alpha
			}
		}
	}

	return Frame{
		State:   c.state,
		Signal:  clamped,
		Opening: eased,
		Stepped: stepped,
		Dirty:   c.dirty,
	}
}

// Dispose releases the choreo. Further Steps are no-ops and registration
// calls are ignored. Safe to call more than once.
func (c *Choreo) Dispose() {
	c.state = StateDisposed
	c.world = nil
	c.scene = nil
	c.actuators = nil
	c.patches = nil
	c.mirrors = nil
	c.fades = nil
	c.seams = nil
	c.dirty = nil
}
