package drape

import (
	"strings"
	"testing"
)

func TestLoadSignalScriptRejectsMalformedJSON(t *testing.T) {
	_, err := LoadSignalScript([]byte(`{"steps": [`))
	if err == nil {
		t.Fatal("expected parse error for malformed JSON")
	}
	if !strings.Contains(err.Error(), "parse signal script") {
		t.Fatalf("error %q does not name the script parser", err)
	}
}

func TestLoadSignalScriptRejectsEmptyScript(t *testing.T) {
	for _, src := range []string{`{}`, `{"steps": []}`} {
		if _, err := LoadSignalScript([]byte(src)); err == nil {
			t.Fatalf("expected error for script %s", src)
		}
	}
}

func TestScriptSetWaitRampSequence(t *testing.T) {
	r, err := LoadSignalScript([]byte(`{
		"steps": [
			{"action": "set", "value": 0.2},
			{"action": "wait", "frames": 3},
			{"action": "ramp", "value": 1, "frames": 4}
		]
	}`))
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{0.2, 0.2, 0.2, 0.2, 0.4, 0.6, 0.8, 1.0}
	var sig Signal
	for i, w := range want {
		r.Step(&sig)
		if got := sig.Load(); !approxEqual(got, w, epsilon) {
			t.Fatalf("frame %d: signal = %v, want %v", i+1, got, w)
		}
		if r.Done() {
			t.Fatalf("script done early at frame %d", i+1)
		}
	}

	r.Step(&sig)
	if !r.Done() {
		t.Fatal("script not done after draining every step")
	}
	if got := sig.Load(); got != 1.0 {
		t.Fatalf("final signal = %v, want 1", got)
	}
}

func TestScriptDoneAfterFinalSet(t *testing.T) {
	r, err := LoadSignalScript([]byte(`{"steps": [{"action": "set", "value": 0.7}]}`))
	if err != nil {
		t.Fatal(err)
	}

	var sig Signal
	r.Step(&sig)
	if got := sig.Load(); got != 0.7 {
		t.Fatalf("signal = %v, want 0.7", got)
	}
	if !r.Done() {
		t.Fatal("single-step script not done after one frame")
	}

	sig.Store(0.1)
	r.Step(&sig)
	if got := sig.Load(); got != 0.1 {
		t.Fatalf("finished script wrote %v over the signal", got)
	}
}

func TestScriptIgnoresUnknownActions(t *testing.T) {
	r, err := LoadSignalScript([]byte(`{
		"steps": [
			{"action": "screenshot"},
			{"action": "set", "value": 0.5}
		]
	}`))
	if err != nil {
		t.Fatal(err)
	}

	var sig Signal
	r.Step(&sig)
	if got := sig.Load(); got != 0 {
		t.Fatalf("unknown action wrote %v", got)
	}
	r.Step(&sig)
	if got := sig.Load(); got != 0.5 {
		t.Fatalf("signal = %v, want 0.5", got)
	}
	if !r.Done() {
		t.Fatal("script not done")
	}
}

func TestScriptRampFromCurrentValue(t *testing.T) {
	r, err := LoadSignalScript([]byte(`{"steps": [{"action": "ramp", "value": -1, "frames": 2}]}`))
	if err != nil {
		t.Fatal(err)
	}

	// Ramps may leave [0, 1]; the script feeds raw drive values.
	var sig Signal
	r.Step(&sig)
	if got := sig.Load(); !approxEqual(got, -0.5, epsilon) {
		t.Fatalf("first ramp frame = %v, want -0.5", got)
	}
	r.Step(&sig)
	if got := sig.Load(); !approxEqual(got, -1, epsilon) {
		t.Fatalf("second ramp frame = %v, want -1", got)
	}
}

func TestScriptRampClampsZeroFrames(t *testing.T) {
	r, err := LoadSignalScript([]byte(`{"steps": [{"action": "ramp", "value": 1}]}`))
	if err != nil {
		t.Fatal(err)
	}

	var sig Signal
	r.Step(&sig)
	if got := sig.Load(); got != 1 {
		t.Fatalf("zero-frame ramp = %v, want 1", got)
	}
	if !r.Done() {
		t.Fatal("script not done after instant ramp")
	}
}
