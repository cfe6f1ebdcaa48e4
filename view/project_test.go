package view

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	drape "github.com/ProfMoriartey/3d-demo"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func testCamera() drape.Camera {
	return drape.Camera{
		FOV:      math.Pi / 3,
		Aspect:   16.0 / 9.0,
		Position: mgl64.Vec3{0, 0, 8},
		Target:   mgl64.Vec3{0, 0, 0},
	}
}

// facingPatch builds a 1x1-segment patch on the z=0 plane, square to the
// test camera.
func facingPatch() *drape.Mesh {
	return drape.NewPatchMesh("panel",
		mgl64.Vec3{-1, 1, 0}, mgl64.Vec3{1, 1, 0},
		mgl64.Vec3{-1, -1, 0}, mgl64.Vec3{1, -1, 0}, 1, 1)
}

func TestShadeFollowsLight(t *testing.T) {
	light := drape.Light{Direction: mgl64.Vec3{0, -1, 0}, Ambient: 0.25}
	tests := []struct {
		name     string
		normal   mgl64.Vec3
		twoSided bool
		want     float64
	}{
		{"facing light", mgl64.Vec3{0, 1, 0}, false, 1},
		{"facing away", mgl64.Vec3{0, -1, 0}, false, 0.25},
		{"facing away two-sided", mgl64.Vec3{0, -1, 0}, true, 1},
		{"perpendicular", mgl64.Vec3{1, 0, 0}, false, 0.25},
		{"grazing", mgl64.Vec3{0, math.Sqrt2 / 2, math.Sqrt2 / 2}, false, 0.25 + 0.75*math.Sqrt2/2},
	}
	for _, tt := range tests {
		got := shade(tt.normal, light, tt.twoSided)
		if !approxEqual(got, tt.want, 1e-12) {
			t.Errorf("%s: shade = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestShadeUnlit(t *testing.T) {
	light := drape.Light{}
	for _, n := range []mgl64.Vec3{{0, 1, 0}, {0, -1, 0}, {1, 0, 0}} {
		if got := shade(n, light, false); got != 1 {
			t.Errorf("shade(%v) = %v, want 1 for zero light direction", n, got)
		}
	}
}

func TestAppendMeshTrianglesProjects(t *testing.T) {
	cam := testCamera()
	light := drape.Light{Direction: mgl64.Vec3{0, 0, -1}, Ambient: 0.2}
	m := facingPatch()

	tris := appendMeshTriangles(nil, m, cam, light, 1280, 720)
	if len(tris) != 2 {
		t.Fatalf("triangle count = %d, want 2", len(tris))
	}
	for ti, tri := range tris {
		if tri.depth <= 0 || tri.depth >= 1 {
			t.Errorf("tri %d depth = %v, want inside (0, 1)", ti, tri.depth)
		}
		for vi, v := range tri.verts {
			if v.SrcX != 0.5 || v.SrcY != 0.5 {
				t.Errorf("tri %d vert %d UV = (%v, %v), want white pixel center", ti, vi, v.SrcX, v.SrcY)
			}
			if v.ColorA != 1 {
				t.Errorf("tri %d vert %d alpha = %v, want 1", ti, vi, v.ColorA)
			}
			// The patch faces the light head-on: full brightness everywhere.
			if math.Abs(float64(v.ColorR)-1) > 1e-6 {
				t.Errorf("tri %d vert %d ColorR = %v, want 1", ti, vi, v.ColorR)
			}
		}
	}

	// First vertex of the first triangle is the top-left corner (-1, 1, 0),
	// which lands in the upper-left screen quadrant.
	tl := tris[0].verts[0]
	if tl.DstX >= 640 || tl.DstY >= 360 {
		t.Errorf("top-left corner projected to (%v, %v), want upper-left quadrant", tl.DstX, tl.DstY)
	}
}

func TestAppendMeshTrianglesDropsBehindCamera(t *testing.T) {
	cam := testCamera()
	m := drape.NewPatchMesh("behind",
		mgl64.Vec3{-1, 1, 20}, mgl64.Vec3{1, 1, 20},
		mgl64.Vec3{-1, -1, 20}, mgl64.Vec3{1, -1, 20}, 1, 1)

	tris := appendMeshTriangles(nil, m, cam, drape.Light{}, 1280, 720)
	if len(tris) != 0 {
		t.Fatalf("triangle count = %d, want 0 for geometry behind the camera", len(tris))
	}
}

func TestAppendMeshTrianglesSkipsHidden(t *testing.T) {
	cam := testCamera()
	m := drape.NewBoxMesh("box", mgl64.Vec3{0.5, 0.5, 0.5})

	m.Visible = false
	if tris := appendMeshTriangles(nil, m, cam, drape.Light{}, 1280, 720); len(tris) != 0 {
		t.Errorf("invisible mesh produced %d triangles", len(tris))
	}

	m.Visible = true
	m.Alpha = 0
	if tris := appendMeshTriangles(nil, m, cam, drape.Light{}, 1280, 720); len(tris) != 0 {
		t.Errorf("alpha 0 mesh produced %d triangles", len(tris))
	}
}

func TestAppendMeshTrianglesPremultipliesAlpha(t *testing.T) {
	cam := testCamera()
	m := facingPatch()
	m.Color = drape.Color{R: 1, G: 0.5, B: 0, A: 1}
	m.Alpha = 0.5

	tris := appendMeshTriangles(nil, m, cam, drape.Light{}, 1280, 720)
	if len(tris) != 2 {
		t.Fatalf("triangle count = %d, want 2", len(tris))
	}
	v := tris[0].verts[0]
	checks := []struct {
		name string
		got  float32
		want float64
	}{
		{"ColorR", v.ColorR, 0.5},
		{"ColorG", v.ColorG, 0.25},
		{"ColorB", v.ColorB, 0},
		{"ColorA", v.ColorA, 0.5},
	}
	for _, c := range checks {
		if math.Abs(float64(c.got)-c.want) > 1e-6 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestSortTrianglesFarFirst(t *testing.T) {
	var r renderer
	depths := []float64{0.2, 0.9, 0.5, 0.9, 0.1}
	for i, d := range depths {
		var tri sceneTri
		tri.depth = d
		tri.verts[0].DstX = float32(i) // tag with emission order
		r.tris = append(r.tris, tri)
	}
	r.sortTriangles()

	want := []float64{0.9, 0.9, 0.5, 0.2, 0.1}
	for i, tri := range r.tris {
		if tri.depth != want[i] {
			t.Fatalf("depth[%d] = %v, want %v", i, tri.depth, want[i])
		}
	}
	// Equal depths keep emission order.
	if r.tris[0].verts[0].DstX != 1 || r.tris[1].verts[0].DstX != 3 {
		t.Errorf("equal-depth order = %v, %v, want emission order 1, 3",
			r.tris[0].verts[0].DstX, r.tris[1].verts[0].DstX)
	}
}

func TestSortTrianglesLargeSlice(t *testing.T) {
	var r renderer
	for i := 0; i < 257; i++ {
		r.tris = append(r.tris, sceneTri{depth: float64(i*7919%257) / 257})
	}
	r.sortTriangles()

	for i := 1; i < len(r.tris); i++ {
		if r.tris[i].depth > r.tris[i-1].depth {
			t.Fatalf("depth[%d] = %v after %v, want non-increasing", i, r.tris[i].depth, r.tris[i-1].depth)
		}
	}
}
