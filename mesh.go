package drape

import "github.com/go-gl/mathgl/mgl64"

// MeshID identifies a mesh within a Scene. IDs are dense slice indices,
// assigned in Add order, and stay valid for the life of the scene.
type MeshID int

// Mesh is a renderable triangle list with an editable flat vertex buffer.
//
// Deformable meshes are rewritten in place every frame by the sync step, with
// world-space coordinates baked directly into Positions. Rigid meshes keep
// their rest geometry in Positions and move via the Position/Rotation pose.
type Mesh struct {
	// Name labels the mesh in logs and debug overlays.
	Name string

	// Positions holds one xyz triplet per vertex. Its length is fixed at
	// construction; the sync step mutates values, never the layout.
	Positions []float64
	// Normals holds one xyz triplet per vertex, index-aligned with Positions.
	Normals []float64
	// Indices is the triangle list, three vertex indices per face.
	Indices []uint16

	// Color tints the mesh; Alpha multiplies on top of Color.A.
	Color Color
	Alpha float64
	// Visible excludes the mesh from drawing without removing it.
	Visible bool
	// TwoSided draws back faces too (cloth is visible from both sides).
	TwoSided bool

	// Position and Rotation place rigid meshes in the world. Deformable
	// meshes leave them at the identity pose.
	Position mgl64.Vec3
	Rotation mgl64.Quat

	dirtyPositions bool
	dirtyNormals   bool
}

// NewMesh creates a mesh from raw geometry. Normals are allocated zeroed;
// call RecomputeNormals (or set them directly) before shading matters.
func NewMesh(name string, positions []float64, indices []uint16) *Mesh {
	return &Mesh{
		Name:      name,
		Positions: positions,
		Normals:   make([]float64, len(positions)),
		Indices:   indices,
		Color:     ColorWhite,
		Alpha:     1,
		Visible:   true,
		Rotation:  mgl64.QuatIdent(),
	}
}

// GridIndex returns the vertex index of grid node (ix, iy) for a patch built
// with segX segments per row. Nodes are row-major: index = iy*(segX+1) + ix.
// Patch builders, anchor bindings, and the sync step all rely on this
// ordering staying fixed.
func GridIndex(ix, iy, segX int) int {
	return iy*(segX+1) + ix
}

// NewPatchMesh creates a deformable grid mesh spanning the quadrilateral with
// corners c00 (ix=0, iy=0), c10 (ix=segX, iy=0), c01 (ix=0, iy=segY), and c11.
// Vertices = (segX+1) * (segY+1), interpolated bilinearly between the corners;
// faces are the standard two-triangles-per-cell grid triangulation.
func NewPatchMesh(name string, c00, c10, c01, c11 mgl64.Vec3, segX, segY int) *Mesh {
	if segX < 1 {
		segX = 1
	}
	if segY < 1 {
		segY = 1
	}

	vcols := segX + 1
	vrows := segY + 1
	positions := make([]float64, vcols*vrows*3)
	indices := make([]uint16, segX*segY*6)

	for iy := 0; iy < vrows; iy++ {
		ty := float64(iy) / float64(segY)
		left := lerpVec3(c00, c01, ty)
		right := lerpVec3(c10, c11, ty)
		for ix := 0; ix < vcols; ix++ {
			tx := float64(ix) / float64(segX)
			p := lerpVec3(left, right, tx)
			o := GridIndex(ix, iy, segX) * 3
			positions[o+0] = p.X()
			positions[o+1] = p.Y()
			positions[o+2] = p.Z()
		}
	}

	ii := 0
	for iy := 0; iy < segY; iy++ {
		for ix := 0; ix < segX; ix++ {
			tl := uint16(GridIndex(ix, iy, segX))
			tr := tl + 1
			bl := uint16(GridIndex(ix, iy+1, segX))
			br := bl + 1
			indices[ii+0] = tl
			indices[ii+1] = bl
			indices[ii+2] = tr
			indices[ii+3] = tr
			indices[ii+4] = bl
			indices[ii+5] = br
			ii += 6
		}
	}

	m := NewMesh(name, positions, indices)
	m.TwoSided = true
	m.RecomputeNormals()
	return m
}

// boxFace describes one face of a unit box: the outward normal plus the two
// in-plane axes used to fan out the four corners.
var boxFaces = [6]struct {
	normal, u, v mgl64.Vec3
}{
	{mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}},
	{mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 1, 0}},
	{mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0}},
	{mgl64.Vec3{0, -1, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 1}},
	{mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}},
	{mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0}},
}

// NewBoxMesh creates a rigid box mesh centered on the origin with the given
// half extents. Four vertices per face (24 total) so each face shades flat.
func NewBoxMesh(name string, halfExtents mgl64.Vec3) *Mesh {
	positions := make([]float64, 24*3)
	normals := make([]float64, 24*3)
	indices := make([]uint16, 36)

	for f, face := range boxFaces {
		n := face.normal
		center := scaleVec3(n, halfExtents)
		du := scaleVec3(face.u, halfExtents)
		dv := scaleVec3(face.v, halfExtents)

		corners := [4]mgl64.Vec3{
			center.Sub(du).Sub(dv),
			center.Add(du).Sub(dv),
			center.Add(du).Add(dv),
			center.Sub(du).Add(dv),
		}
		for ci, c := range corners {
			o := (f*4 + ci) * 3
			positions[o+0] = c.X()
			positions[o+1] = c.Y()
			positions[o+2] = c.Z()
			normals[o+0] = n.X()
			normals[o+1] = n.Y()
			normals[o+2] = n.Z()
		}

		base := uint16(f * 4)
		io := f * 6
		indices[io+0] = base
		indices[io+1] = base + 1
		indices[io+2] = base + 2
		indices[io+3] = base
		indices[io+4] = base + 2
		indices[io+5] = base + 3
	}

	m := NewMesh(name, positions, indices)
	m.Normals = normals
	return m
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// PositionAt returns vertex i's local-space position.
func (m *Mesh) PositionAt(i int) mgl64.Vec3 {
	o := i * 3
	return mgl64.Vec3{m.Positions[o], m.Positions[o+1], m.Positions[o+2]}
}

// SetPosition writes vertex i's position and marks the position buffer dirty.
func (m *Mesh) SetPosition(i int, p mgl64.Vec3) {
	o := i * 3
	m.Positions[o+0] = p.X()
	m.Positions[o+1] = p.Y()
	m.Positions[o+2] = p.Z()
	m.dirtyPositions = true
}

// NormalAt returns vertex i's normal.
func (m *Mesh) NormalAt(i int) mgl64.Vec3 {
	o := i * 3
	return mgl64.Vec3{m.Normals[o], m.Normals[o+1], m.Normals[o+2]}
}

// WorldPositionAt returns vertex i's position with the rigid pose applied.
func (m *Mesh) WorldPositionAt(i int) mgl64.Vec3 {
	return m.Rotation.Rotate(m.PositionAt(i)).Add(m.Position)
}

// RecomputeNormals rebuilds per-vertex normals from the current positions by
// accumulating area-weighted face normals, then normalizing. Vertices not
// referenced by any face keep a zero normal. Marks the normal buffer dirty.
func (m *Mesh) RecomputeNormals() {
	for i := range m.Normals {
		m.Normals[i] = 0
	}

	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0 := int(m.Indices[t+0])
		i1 := int(m.Indices[t+1])
		i2 := int(m.Indices[t+2])
		a := m.PositionAt(i0)
		e1 := m.PositionAt(i1).Sub(a)
		e2 := m.PositionAt(i2).Sub(a)
		// Cross product length is twice the face area, so larger faces
		// contribute proportionally more.
		fn := e1.Cross(e2)
		for _, vi := range [3]int{i0, i1, i2} {
			o := vi * 3
			m.Normals[o+0] += fn.X()
			m.Normals[o+1] += fn.Y()
			m.Normals[o+2] += fn.Z()
		}
	}

	for i := 0; i < len(m.Normals); i += 3 {
		n := mgl64.Vec3{m.Normals[i], m.Normals[i+1], m.Normals[i+2]}
		if l := n.Len(); l > 1e-12 {
			m.Normals[i+0] = n.X() / l
			m.Normals[i+1] = n.Y() / l
			m.Normals[i+2] = n.Z() / l
		}
	}
	m.dirtyNormals = true
}

// Dirty reports whether the position and normal buffers changed since the
// last ClearDirty.
func (m *Mesh) Dirty() (positions, normals bool) {
	return m.dirtyPositions, m.dirtyNormals
}

// ClearDirty resets both dirty flags. Presenters call it after uploading.
func (m *Mesh) ClearDirty() {
	m.dirtyPositions = false
	m.dirtyNormals = false
}

// lerpVec3 interpolates a -> b by t.
func lerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// scaleVec3 multiplies components pairwise.
func scaleVec3(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a.X() * b.X(), a.Y() * b.Y(), a.Z() * b.Z()}
}
