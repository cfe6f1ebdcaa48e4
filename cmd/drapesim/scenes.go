package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	drape "github.com/ProfMoriartey/3d-demo"
)

// simOptions selects a scene and how to drive its control signal. Exactly one
// signal source applies: a script when script is non-nil, a linear tween to
// target when ramp is set, a held constant otherwise.
type simOptions struct {
	scene     string
	frames    int
	dt        float64
	depth     float64
	camera    drape.Camera
	tuning    *drape.Tuning
	noPhysics bool

	script   *drape.ScriptRunner
	ramp     bool
	target   float64
	over     float64 // tween seconds; 0 means half the run
	constant float64
}

// channel is a named per-frame observable sampled after each step.
type channel struct {
	name   string
	sample func() float64
	data   []float64
}

// simResult holds everything a run produced, index-aligned per frame. The
// signal column records the raw control value, so a motor scene driven at -1
// reads back -1 even though the opening clamps it to 0.
type simResult struct {
	scene    string
	dt       float64
	times    []float64
	signals  []float64
	openings []float64
	channels []channel
	last     drape.Frame
	meshes   int
	elapsed  time.Duration
}

func defaultCamera() drape.Camera {
	return drape.Camera{
		FOV:      math.Pi / 3,
		Aspect:   16.0 / 9.0,
		Position: mgl64.Vec3{0, 0, 14},
	}
}

// simulate builds the scene and steps it for opts.frames fixed-dt frames,
// sampling every channel once per frame.
func simulate(opts simOptions) (*simResult, error) {
	tn := opts.tuning
	if tn == nil {
		tn = drape.DefaultTuning()
	}
	cam := opts.camera
	depth := opts.depth
	if depth <= 0 {
		depth = cam.Position.Sub(cam.Target).Len()
	}

	var choreo *drape.Choreo
	var channels []channel

	switch opts.scene {
	case "curtain":
		var world drape.World
		if !opts.noPhysics {
			world = drape.NewSoftWorld(tn)
		}
		cur, err := drape.NewCurtain(world, drape.CurtainConfig{Camera: &cam, Depth: depth, Tuning: tn})
		if err != nil {
			return nil, err
		}
		choreo = cur.Choreo
		channels = curtainChannels(cur, tn)

	case "clothflag":
		if !opts.noPhysics && !tn.GroundEnabled {
			// The rig stacks its bricks on a floor at the bottom of the
			// view; the world needs its ground plane at the same height.
			_, viewH, err := cam.ViewSize(depth)
			if err != nil {
				return nil, err
			}
			tn.GroundEnabled = true
			tn.GroundY = -viewH / 2
		}
		var world drape.World
		if !opts.noPhysics {
			world = drape.NewSoftWorld(tn)
		}
		rig, err := drape.NewClothRig(world, drape.ClothRigConfig{Camera: &cam, Depth: depth, Tuning: tn})
		if err != nil {
			return nil, err
		}
		choreo = rig.Choreo
		channels = clothRigChannels(rig, tn)

	default:
		return nil, fmt.Errorf("unknown scene: %s (want curtain or clothflag)", opts.scene)
	}

	sig := choreo.Signal()
	var tween *drape.SignalTween
	if opts.script == nil {
		if opts.ramp {
			over := opts.over
			if over <= 0 {
				over = float64(opts.frames) * opts.dt / 2
			}
			tween = drape.TweenSignal(sig, opts.target, float32(over), nil)
		} else {
			sig.Store(opts.constant)
		}
	}

	res := &simResult{scene: opts.scene, dt: opts.dt, channels: channels}
	start := time.Now()
	for f := 0; f < opts.frames; f++ {
		if opts.script != nil {
			opts.script.Step(sig)
		} else if tween != nil {
			tween.Update(float32(opts.dt))
		}
		frame := choreo.Step(opts.dt)

		res.times = append(res.times, float64(f)*opts.dt)
		res.signals = append(res.signals, sig.Load())
		res.openings = append(res.openings, frame.Opening)
		for i := range res.channels {
			ch := &res.channels[i]
			ch.data = append(ch.data, ch.sample())
		}
		res.last = frame
	}
	res.elapsed = time.Since(start)
	res.meshes = choreo.Scene().Len()
	return res, nil
}

// curtainChannels samples the rod meshes and the gap between the two panels'
// inner bottom corners. Closed panels meet at x = 0, so the gap starts near
// zero and approaches the view width as the rods retract.
func curtainChannels(cur *drape.Curtain, tn *drape.Tuning) []channel {
	scene := cur.Choreo.Scene()
	leftRod := scene.Mesh(cur.LeftRod)
	rightRod := scene.Mesh(cur.RightRod)
	left := scene.Mesh(cur.Choreo.PatchMesh(cur.Left))
	right := scene.Mesh(cur.Choreo.PatchMesh(cur.Right))
	corner := drape.GridIndex(tn.SegX, tn.SegY, tn.SegX)

	return []channel{
		{name: "left_rod_x", sample: func() float64 { return leftRod.Position.X() }},
		{name: "right_rod_x", sample: func() float64 { return rightRod.Position.X() }},
		{name: "seam_gap", sample: func() float64 {
			return right.PositionAt(corner).X() - left.PositionAt(corner).X()
		}},
	}
}

// clothRigChannels samples the hinge sweep, the cloth's trailing bottom
// corner, and how many bricks the arm has knocked off the stack. Without a
// physics world every body handle is nil and the channels read zero.
func clothRigChannels(rig *drape.ClothRig, tn *drape.Tuning) []channel {
	scene := rig.Choreo.Scene()
	cloth := scene.Mesh(rig.Choreo.PatchMesh(rig.Cloth))
	tip := drape.GridIndex(tn.SegX, tn.SegY, tn.SegX)

	rest := make([]mgl64.Vec3, len(rig.Bricks))
	for i, b := range rig.Bricks {
		if b != nil {
			pos, _ := b.Transform()
			rest[i] = pos
		}
	}
	moved := 0.01 * rig.ViewHeight

	return []channel{
		{name: "hinge_angle", sample: func() float64 {
			if rig.Hinge == nil {
				return 0
			}
			return rig.Hinge.Angle()
		}},
		{name: "cloth_tip_z", sample: func() float64 {
			return cloth.PositionAt(tip).Z()
		}},
		{name: "bricks_moved", sample: func() float64 {
			n := 0
			for i, b := range rig.Bricks {
				if b == nil {
					continue
				}
				pos, _ := b.Transform()
				if pos.Sub(rest[i]).Len() > moved {
					n++
				}
			}
			return float64(n)
		}},
	}
}

// writeCSV emits one row per frame: the fixed columns, then every channel in
// registration order. Floats use six decimals so runs diff cleanly.
func writeCSV(w io.Writer, res *simResult) error {
	cw := csv.NewWriter(w)
	header := []string{"frame", "time", "signal", "opening"}
	for _, ch := range res.channels {
		header = append(header, ch.name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for f := range res.times {
		row := []string{
			strconv.Itoa(f),
			formatFloat(res.times[f]),
			formatFloat(res.signals[f]),
			formatFloat(res.openings[f]),
		}
		for _, ch := range res.channels {
			row = append(row, formatFloat(ch.data[f]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// renderPlots draws the opening plus every channel as an ascii graph.
func renderPlots(res *simResult, height, width int) string {
	var b strings.Builder
	series := []channel{{name: "opening", data: res.openings}}
	series = append(series, res.channels...)
	for i, ch := range series {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(asciigraph.Plot(ch.data,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(ch.name),
		))
	}
	b.WriteString("\n")
	return b.String()
}
