package drape

import (
	"encoding/json"
	"fmt"
)

// scriptStep is one instruction in a control script.
//
// Actions:
//
//	"set"  - store Value immediately
//	"ramp" - interpolate from the current value to Value over Frames frames
//	"wait" - hold the current value for Frames frames
type scriptStep struct {
	Action string  `json:"action"`
	Value  float64 `json:"value,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type signalScript struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner replays a JSON control script onto a Signal one frame at a
// time, so headless runs can exercise the same drive paths as interactive
// input.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	rampFrom  float64
	rampTo    float64
	rampTotal int
	rampDone  int
	done      bool
}

// LoadSignalScript parses a JSON control script.
func LoadSignalScript(data []byte) (*ScriptRunner, error) {
	var script signalScript
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse signal script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse signal script: no steps")
	}
	return &ScriptRunner{steps: script.Steps}, nil
}

// Done reports whether every step has been consumed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Step advances the script by one frame, storing the scripted value.
func (r *ScriptRunner) Step(signal *Signal) {
	if r.done {
		return
	}
	if r.rampDone < r.rampTotal {
		r.stepRamp(signal)
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	step := r.steps[r.cursor]
	r.cursor++

	switch step.Action {
	case "set":
		signal.Store(step.Value)
	case "ramp":
		n := step.Frames
		if n < 1 {
			n = 1
		}
		r.rampFrom = signal.Load()
		r.rampTo = step.Value
		r.rampTotal = n
		r.rampDone = 0
		r.stepRamp(signal) // this frame is the first ramp frame
	case "wait":
		if step.Frames > 0 {
			r.waitCount = step.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && r.rampDone >= r.rampTotal {
		r.done = true
	}
}

func (r *ScriptRunner) stepRamp(signal *Signal) {
	r.rampDone++
	t := float64(r.rampDone) / float64(r.rampTotal)
	signal.Store(r.rampFrom + (r.rampTo-r.rampFrom)*t)
}
