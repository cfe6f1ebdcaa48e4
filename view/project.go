package view

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"

	drape "github.com/ProfMoriartey/3d-demo"
)

// maxBatchVerts caps one DrawTriangles call below the uint16 index limit.
// Divisible by 3 so a flush never splits a triangle.
const maxBatchVerts = 65532

// sceneTri is one projected triangle, ready to batch. depth is the mean of
// the three vertex depths and drives the back-to-front paint order.
type sceneTri struct {
	verts [3]ebiten.Vertex
	depth float64
}

// shade returns the flat brightness in [0, 1] for a surface normal under a
// directional light. A zero light direction means unlit: full brightness.
func shade(normal mgl64.Vec3, light drape.Light, twoSided bool) float64 {
	if light.Direction == (mgl64.Vec3{}) {
		return 1
	}
	d := -normal.Dot(light.Direction)
	if twoSided {
		d = math.Abs(d)
	} else if d < 0 {
		d = 0
	}
	return light.Ambient + (1-light.Ambient)*d
}

// appendMeshTriangles projects a mesh into screen space and appends its
// triangles to dst. Triangles with any vertex outside the (0, 1) depth range
// are dropped whole; the scenes keep their geometry well inside the frustum,
// so partial clipping buys nothing.
//
// Vertex colors carry the mesh tint times the per-vertex shade, premultiplied
// by alpha for source-over blending, with UVs parked on the white pixel.
func appendMeshTriangles(dst []sceneTri, m *drape.Mesh, cam drape.Camera, light drape.Light, width, height int) []sceneTri {
	if m == nil || !m.Visible {
		return dst
	}
	alpha := m.Color.A * m.Alpha
	if alpha <= 0 {
		return dst
	}

	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()

	for t := 0; t+2 < len(m.Indices); t += 3 {
		var tri sceneTri
		depth := 0.0
		clipped := false
		for k := 0; k < 3; k++ {
			i := int(m.Indices[t+k])
			win := mgl64.Project(m.WorldPositionAt(i), view, proj, 0, 0, width, height)
			if win.Z() <= 0 || win.Z() >= 1 {
				clipped = true
				break
			}
			depth += win.Z()

			s := shade(m.Rotation.Rotate(m.NormalAt(i)), light, m.TwoSided)
			tri.verts[k] = ebiten.Vertex{
				DstX:   float32(win.X()),
				DstY:   float32(float64(height) - win.Y()),
				SrcX:   0.5,
				SrcY:   0.5,
				ColorR: float32(m.Color.R * s * alpha),
				ColorG: float32(m.Color.G * s * alpha),
				ColorB: float32(m.Color.B * s * alpha),
				ColorA: float32(alpha),
			}
		}
		if clipped {
			continue
		}
		tri.depth = depth / 3
		dst = append(dst, tri)
	}
	return dst
}

// renderer batches projected triangles into DrawTriangles calls. Buffers grow
// to a high-water mark and are reused; steady-state frames allocate nothing.
type renderer struct {
	tris    []sceneTri
	sortBuf []sceneTri
	verts   []ebiten.Vertex
	inds    []uint16
}

// draw projects every visible mesh, depth-sorts the triangles far-to-near,
// and submits them. Painter's order stands in for a depth buffer: with the
// scenes' shallow geometry the per-triangle sort resolves all overlap.
func (r *renderer) draw(screen *ebiten.Image, scene *drape.Scene, cam drape.Camera) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()

	r.tris = r.tris[:0]
	for _, m := range scene.Meshes() {
		r.tris = appendMeshTriangles(r.tris, m, cam, scene.Light, w, h)
	}

	r.sortTriangles()
	r.submit(screen)
}

// triCount returns the number of triangles the last draw submitted.
func (r *renderer) triCount() int {
	return len(r.tris)
}

// triLessOrEqual returns true if a paints before or at the same position as
// b. Farther triangles paint first; >= on equal depth keeps emission order.
func triLessOrEqual(a, b sceneTri) bool {
	return a.depth >= b.depth
}

// sortTriangles sorts r.tris in-place using r.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the buffer's high-water mark.
func (r *renderer) sortTriangles() {
	n := len(r.tris)
	if n <= 1 {
		return
	}
	if cap(r.sortBuf) < n {
		r.sortBuf = make([]sceneTri, n)
	}
	r.sortBuf = r.sortBuf[:n]

	a := r.tris
	b := r.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := lo + width
			if mid > n {
				mid = n
			}
			hi := lo + 2*width
			if hi > n {
				hi = n
			}
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(r.tris, r.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []sceneTri, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if triLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}

// submit flattens the sorted triangles into vertex/index buffers and draws,
// flushing before a batch would overflow the uint16 index space.
func (r *renderer) submit(screen *ebiten.Image) {
	if len(r.tris) == 0 {
		return
	}
	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
	for _, t := range r.tris {
		if len(r.verts)+3 > maxBatchVerts {
			r.flush(screen)
		}
		base := uint16(len(r.verts))
		r.verts = append(r.verts, t.verts[0], t.verts[1], t.verts[2])
		r.inds = append(r.inds, base, base+1, base+2)
	}
	r.flush(screen)
}

// flush issues one DrawTriangles call against the white pixel and resets the
// vertex/index buffers.
func (r *renderer) flush(screen *ebiten.Image) {
	if len(r.verts) == 0 {
		return
	}
	var triOp ebiten.DrawTrianglesOptions
	triOp.Blend = ebiten.BlendSourceOver
	screen.DrawTriangles(r.verts, r.inds, ensureWhitePixel(), &triOp)
	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
}

// whitePixel is the shared 1x1 texture untextured triangles sample, always
// at UV (0.5, 0.5).
var whitePixel *ebiten.Image

// ensureWhitePixel lazily creates the white pixel. Lazy because package init
// must not touch the GPU; tests never reach here.
func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}
