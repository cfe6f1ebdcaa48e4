package drape

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// SignalTween animates a Signal toward a target value, standing in for live
// scroll or keyboard input during autoplay demos and headless runs. Call
// Update(dt) once per frame before stepping the choreo; there is no global
// animation manager.
type SignalTween struct {
	tween  *gween.Tween
	signal *Signal
	Done   bool
}

// TweenSignal animates signal from its current value to the target over
// duration seconds. Nil fn means ease.Linear: the choreography applies its
// own easing downstream, so a shaped source would ease twice.
func TweenSignal(signal *Signal, to float64, duration float32, fn ease.TweenFunc) *SignalTween {
	if fn == nil {
		fn = ease.Linear
	}
	return &SignalTween{
		tween:  gween.New(float32(signal.Load()), float32(to), duration, fn),
		signal: signal,
	}
}

// Update advances the tween by dt seconds and stores the new value. Once the
// target is reached, Done is set and further updates do nothing.
func (st *SignalTween) Update(dt float32) {
	if st.Done {
		return
	}
	v, finished := st.tween.Update(dt)
	st.signal.Store(float64(v))
	st.Done = finished
}
