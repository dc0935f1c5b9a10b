package sinew

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ValueTween eases a BlendTree's control value toward a target over time,
// for gameplay code that wants a smooth walk-to-run change rather than a
// per-frame SetValue. Call Update(dt) once per frame before the tree's
// Update.
//
// There is no global tween manager; callers own and update their tweens.
type ValueTween struct {
	tween  *gween.Tween
	target *BlendTree
	Done   bool
}

// TweenValue creates a ValueTween that moves tree's value from its current
// value to `to` over duration seconds using fn.
func TweenValue(tree *BlendTree, to float64, duration float32, fn ease.TweenFunc) *ValueTween {
	if fn == nil {
		fn = ease.Linear
	}
	return &ValueTween{
		tween:  gween.New(float32(tree.Value()), float32(to), duration, fn),
		target: tree,
	}
}

// Update advances the tween by dt seconds and writes the value to the tree.
func (v *ValueTween) Update(dt float32) {
	if v.Done {
		return
	}
	val, finished := v.tween.Update(dt)
	v.target.SetValue(float64(val))
	v.Done = finished
}

// SpeedTween eases an animator layer's playback speed, for slow-motion
// ramps and hit-stop recovery.
type SpeedTween struct {
	tween  *gween.Tween
	target *Animator
	layer  int
	Done   bool
}

// TweenSpeed creates a SpeedTween that moves layer's speed to `to` over
// duration seconds using fn.
func TweenSpeed(a *Animator, layer int, to float64, duration float32, fn ease.TweenFunc) *SpeedTween {
	if fn == nil {
		fn = ease.Linear
	}
	from := 1.0
	if l := a.Layer(layer); l != nil {
		from = l.speed
	}
	return &SpeedTween{
		tween:  gween.New(float32(from), float32(to), duration, fn),
		target: a,
		layer:  layer,
	}
}

// Update advances the tween by dt seconds and applies the speed.
func (s *SpeedTween) Update(dt float32) {
	if s.Done {
		return
	}
	val, finished := s.tween.Update(dt)
	s.target.SetSpeed(s.layer, float64(val))
	s.Done = finished
}
