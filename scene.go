package drape

import "github.com/go-gl/mathgl/mgl64"

// Light is a single directional light with an ambient floor, enough for the
// flat shading the presenters do.
type Light struct {
	// Direction points from the light toward the scene. Normalized by users.
	Direction mgl64.Vec3
	// Ambient is the minimum brightness in [0, 1] applied to every face.
	Ambient float64
}

// Scene owns the meshes of one choreography instance. Meshes are held in an
// arena and addressed by MeshID so that simulation code can associate physics
// objects with render objects without back-references on either side.
type Scene struct {
	// Background is the clear color.
	Background Color
	// Light shades the scene. Zero Direction means unlit (full brightness).
	Light Light

	meshes []*Mesh
}

// NewScene creates an empty scene with a dim top-left key light.
func NewScene() *Scene {
	return &Scene{
		Background: Color{0.08, 0.08, 0.1, 1},
		Light: Light{
			Direction: mgl64.Vec3{-0.4, -0.8, -0.45}.Normalize(),
			Ambient:   0.35,
		},
	}
}

// Add appends a mesh to the scene and returns its ID.
func (s *Scene) Add(m *Mesh) MeshID {
	s.meshes = append(s.meshes, m)
	return MeshID(len(s.meshes) - 1)
}

// Mesh returns the mesh for id, or nil if the id is out of range. Per-frame
// code treats a nil result as "skip this step", never as an error.
func (s *Scene) Mesh(id MeshID) *Mesh {
	if id < 0 || int(id) >= len(s.meshes) {
		return nil
	}
	return s.meshes[id]
}

// Meshes returns the arena in draw order. Callers must not reorder it.
func (s *Scene) Meshes() []*Mesh {
	return s.meshes
}

// Len returns the number of meshes.
func (s *Scene) Len() int {
	return len(s.meshes)
}
