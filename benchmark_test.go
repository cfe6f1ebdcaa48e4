package drape

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ProfMoriartey/3d-demo/softbody"
)

const benchDT = 1.0 / 60.0

// setupBenchCurtain builds a curtain on a 16:9 frustum with default tuning.
// physics false leaves the world nil, so only actuators and vertex sync run.
func setupBenchCurtain(b *testing.B, physics bool) *Curtain {
	b.Helper()
	cam := Camera{FOV: math.Pi / 3, Aspect: 16.0 / 9.0, Position: mgl64.Vec3{0, 0, 14}}
	tn := DefaultTuning()
	var world World
	if physics {
		world = NewSoftWorld(tn)
	}
	curtain, err := NewCurtain(world, CurtainConfig{Camera: &cam, Tuning: tn})
	if err != nil {
		b.Fatalf("NewCurtain: %v", err)
	}
	return curtain
}

// setupBenchRig builds the cloth rig with the ground plane at the bottom of
// the view, matching the demo setup.
func setupBenchRig(b *testing.B) *ClothRig {
	b.Helper()
	cam := Camera{FOV: math.Pi / 3, Aspect: 16.0 / 9.0, Position: mgl64.Vec3{0, 0, 14}}
	tn := DefaultTuning()
	_, viewH, err := cam.ViewSize(14)
	if err != nil {
		b.Fatalf("ViewSize: %v", err)
	}
	tn.GroundEnabled = true
	tn.GroundY = -viewH / 2
	rig, err := NewClothRig(NewSoftWorld(tn), ClothRigConfig{Camera: &cam, Tuning: tn})
	if err != nil {
		b.Fatalf("NewClothRig: %v", err)
	}
	return rig
}

// --- Frame Step Benchmarks ---

func BenchmarkCurtainStep_Physics(b *testing.B) {
	curtain := setupBenchCurtain(b, true)
	curtain.Choreo.Signal().Store(0.5)
	curtain.Choreo.Step(benchDT) // warmup

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		curtain.Choreo.Step(benchDT)
	}
}

func BenchmarkCurtainStep_Kinematic(b *testing.B) {
	curtain := setupBenchCurtain(b, false)
	curtain.Choreo.Signal().Store(0.5)
	curtain.Choreo.Step(benchDT) // warmup

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		curtain.Choreo.Step(benchDT)
	}
}

func BenchmarkCurtainStep_SignalSweep(b *testing.B) {
	curtain := setupBenchCurtain(b, true)
	sig := curtain.Choreo.Signal()
	curtain.Choreo.Step(benchDT) // warmup

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		// Keep the rods moving so the cloth never settles.
		sig.Store(float64(i%240) / 239)
		curtain.Choreo.Step(benchDT)
	}
}

func BenchmarkClothRigStep_MotorOn(b *testing.B) {
	rig := setupBenchRig(b)
	rig.Choreo.Signal().Store(1)
	rig.Choreo.Step(benchDT) // warmup

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rig.Choreo.Step(benchDT)
	}
}

// --- Patch Build Benchmarks ---

func benchPatchConfig(segX, segY int) PatchConfig {
	return PatchConfig{
		Name:     "bench",
		Corner00: mgl64.Vec3{-2, 1.5, 0},
		Corner10: mgl64.Vec3{2, 1.5, 0},
		Corner01: mgl64.Vec3{-2, -1.5, 0},
		Corner11: mgl64.Vec3{2, -1.5, 0},
		SegX:     segX,
		SegY:     segY,
		Mass:     2,
	}
}

func BenchmarkBuildPatch_16x12(b *testing.B) {
	cfg := benchPatchConfig(16, 12)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c := NewChoreo(NewSoftWorld(nil))
		if _, err := c.BuildPatch(cfg); err != nil {
			b.Fatalf("BuildPatch: %v", err)
		}
	}
}

func BenchmarkBuildPatch_48x36(b *testing.B) {
	cfg := benchPatchConfig(48, 36)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c := NewChoreo(NewSoftWorld(nil))
		if _, err := c.BuildPatch(cfg); err != nil {
			b.Fatalf("BuildPatch: %v", err)
		}
	}
}

// =============================================================================
// Raw solver baselines: no choreography layer, no easing, no vertex sync.
// These measure the floor, the substep cost for a lone hanging sheet.
// =============================================================================

// buildRawSheet creates a cloth sheet with its top row pinned to a kinematic
// rod, so the sheet hangs instead of free-falling.
func buildRawSheet(segX, segY int) *softbody.World {
	w := softbody.NewWorld(softbody.WorldConfig{})
	p := w.NewPatch(softbody.PatchConfig{
		Corner00: mgl64.Vec3{-1, 1, 0},
		Corner10: mgl64.Vec3{1, 1, 0},
		Corner01: mgl64.Vec3{-1, -1, 0},
		Corner11: mgl64.Vec3{1, -1, 0},
		SegX:     segX,
		SegY:     segY,
		Mass:     2,
	})
	rod := w.NewBody(softbody.BodyConfig{
		HalfExtents: mgl64.Vec3{1, 0.05, 0.05},
		Position:    mgl64.Vec3{0, 1, 0},
	})
	for ix := 0; ix <= segX; ix++ {
		p.Anchor(p.NodeIndex(ix, 0), rod, 1)
	}
	return w
}

func BenchmarkRaw_WorldStep_16x12(b *testing.B) {
	w := buildRawSheet(16, 12)
	w.Step(benchDT, DefaultSubsteps) // warmup

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		w.Step(benchDT, DefaultSubsteps)
	}
}

func BenchmarkRaw_WorldStep_48x36(b *testing.B) {
	w := buildRawSheet(48, 36)
	w.Step(benchDT, DefaultSubsteps) // warmup

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		w.Step(benchDT, DefaultSubsteps)
	}
}

func BenchmarkRaw_RecomputeNormals_48x36(b *testing.B) {
	m := NewPatchMesh("bench",
		mgl64.Vec3{-1, 1, 0}, mgl64.Vec3{1, 1, 0},
		mgl64.Vec3{-1, -1, 0}, mgl64.Vec3{1, -1, 0},
		48, 36)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m.RecomputeNormals()
	}
}
