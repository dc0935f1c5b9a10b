package sinew

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"
)

// AnimationEvent is a clip event raised by an Animator when playback enters
// the event's frame.
type AnimationEvent struct {
	Layer int
	Frame int
	ID    int
}

// AnimatorLayer is one playback cursor. A layer plays one clip, optionally
// crossfading out of the clip that was playing before it, and writes only the
// bones in its mask.
type AnimatorLayer struct {
	clip      *Clip
	time      float64
	speed     float64
	loop      bool
	frame     int
	rootDelta Vec2

	// Fade-out source, captured by Play.
	fadeClip  *Clip
	fadeTime  float64
	fadeSpeed float64
	fadeLoop  bool
	blendTime float64
	weight    float64

	// Set when Play interrupted a crossfade. The layer then fades out of
	// fadePose, its mixed pose at that moment; fadeClip still supplies root
	// motion.
	fadeFrozen bool
	fadePose   [MaxBones]BoneTransform

	mask BoneMask
}

// Clip returns the playing clip, or nil.
func (l *AnimatorLayer) Clip() *Clip { return l.clip }

// FadeClip returns the clip being faded out, or nil.
func (l *AnimatorLayer) FadeClip() *Clip { return l.fadeClip }

// Time returns the playback time in seconds.
func (l *AnimatorLayer) Time() float64 { return l.time }

// BlendTime returns the seconds elapsed in the current crossfade.
func (l *AnimatorLayer) BlendTime() float64 { return l.blendTime }

// Speed returns the playback speed multiplier.
func (l *AnimatorLayer) Speed() float64 { return l.speed }

// Loop reports whether the layer loops its clip.
func (l *AnimatorLayer) Loop() bool { return l.loop }

// Mask returns the bones this layer writes.
func (l *AnimatorLayer) Mask() BoneMask { return l.mask }

// State returns the playback state.
func (l *AnimatorLayer) State() LayerState {
	switch {
	case l.clip == nil:
		return StateIdle
	case l.fadeClip != nil:
		return StateCrossfading
	default:
		return StatePlaying
	}
}

// Animator samples clips on up to MaxLayers layers and produces one local
// transform and one world matrix per bone. All output storage is fixed-size
// and owned by the Animator, so Update does not allocate.
//
// An Animator is not safe for concurrent use. Its Skeleton and Clips are
// read-only and may be shared across animators on other goroutines.
type Animator struct {
	skel       *Skeleton
	layers     [MaxLayers]AnimatorLayer
	layerCount int

	fadeDuration float64
	fadeCurve    ease.TweenFunc

	locals  [MaxBones]BoneTransform
	worlds  [MaxBones]Affine
	sampleA [MaxBones]BoneTransform
	sampleB [MaxBones]BoneTransform

	rootMotion Vec2

	events     [MaxEvents]AnimationEvent
	eventCount int

	debug bool
}

var emptySkeleton = &Skeleton{}

// NewAnimator creates an Animator for skel with layerCount layers, clamped to
// [1, MaxLayers]. Every layer starts idle with all bones masked in, and the
// pose starts at the skeleton's rest pose.
func NewAnimator(skel *Skeleton, layerCount int) *Animator {
	if skel == nil {
		log.Printf("sinew: NewAnimator called with nil skeleton")
		skel = emptySkeleton
	}
	a := &Animator{
		skel:         skel,
		layerCount:   min(max(layerCount, 1), MaxLayers),
		fadeDuration: DefaultFadeDuration,
	}
	for i := range a.layers {
		a.layers[i] = AnimatorLayer{speed: 1, mask: AllBones, frame: -1}
	}
	skel.BindPose(a.locals[:])
	a.Compose()
	return a
}

// Skeleton returns the skeleton this animator poses.
func (a *Animator) Skeleton() *Skeleton { return a.skel }

// LayerCount returns the number of layers.
func (a *Animator) LayerCount() int { return a.layerCount }

// SetDebugMode enables panics on programmer errors. With debug off, the same
// errors are logged and the offending call is ignored.
func (a *Animator) SetDebugMode(enabled bool) { a.debug = enabled }

// SetFadeDuration sets the crossfade window used by subsequent Play calls.
// Zero or negative disables crossfading.
func (a *Animator) SetFadeDuration(seconds float64) { a.fadeDuration = seconds }

// FadeDuration returns the crossfade window in seconds.
func (a *Animator) FadeDuration() float64 { return a.fadeDuration }

// SetFadeCurve shapes the crossfade weight with an easing function. nil
// restores the linear weight clamp(blendTime/fadeDuration, 0, 1).
func (a *Animator) SetFadeCurve(fn ease.TweenFunc) { a.fadeCurve = fn }

// Layer returns layer i, or nil if i is out of range.
func (a *Animator) Layer(i int) *AnimatorLayer {
	if i < 0 || i >= a.layerCount {
		return nil
	}
	return &a.layers[i]
}

func (a *Animator) checkLayer(op string, layer int) bool {
	return debugCheckIndex(a.debug, op, "layer", layer, a.layerCount)
}

// SetBoneMask restricts layer to the bones in mask.
func (a *Animator) SetBoneMask(layer int, mask BoneMask) {
	if !a.checkLayer("SetBoneMask", layer) {
		return
	}
	a.layers[layer].mask = mask
}

// SetSpeed changes a layer's playback speed without restarting it.
func (a *Animator) SetSpeed(layer int, speed float64) {
	if !a.checkLayer("SetSpeed", layer) {
		return
	}
	a.layers[layer].speed = speed
}

// PlayClip plays clip on layer at normal speed, looping if the clip was
// authored to loop.
func (a *Animator) PlayClip(clip *Clip, layer int) {
	loop := clip != nil && clip.IsLooping()
	a.PlayAt(clip, layer, 1, loop, 0)
}

// Play starts clip on layer from its first frame. If the layer is already
// playing, the old clip keeps running from its current time as the fade-out
// source of a crossfade. Playing during a crossfade freezes the layer's
// current mixed pose and fades out of that instead. The pose is resampled
// before Play returns.
func (a *Animator) Play(clip *Clip, layer int, speed float64, loop bool) {
	a.PlayAt(clip, layer, speed, loop, 0)
}

// PlayAt is Play starting at normalizedTime in [0, 1].
func (a *Animator) PlayAt(clip *Clip, layer int, speed float64, loop bool, normalizedTime float64) {
	if !a.checkLayer("Play", layer) {
		return
	}
	if clip == nil {
		a.StopLayer(layer)
		return
	}
	if !debugCheckClip(a.debug, "Play", a.skel, clip) {
		return
	}

	l := &a.layers[layer]
	switch {
	case l.clip == nil || a.fadeDuration <= 0:
		l.fadeClip = nil
		l.fadeFrozen = false
	case l.fadeClip != nil:
		n := a.skel.BoneCount()
		a.sampleLayer(l, a.sampleA[:n])
		copy(l.fadePose[:n], a.sampleA[:n])
		l.fadeFrozen = true
		l.fadeClip, l.fadeTime, l.fadeSpeed, l.fadeLoop = l.clip, l.time, l.speed, l.loop
	default:
		l.fadeFrozen = false
		l.fadeClip, l.fadeTime, l.fadeSpeed, l.fadeLoop = l.clip, l.time, l.speed, l.loop
	}
	l.blendTime = 0
	l.weight = 0

	l.clip = clip
	l.speed = speed
	l.loop = loop
	l.time = clamp(normalizedTime, 0, 1) * clip.Duration()
	l.rootDelta = Vec2{}

	l.frame = clip.frameAt(l.time)
	a.emitEvents(layer, clip, 0, l.frame)

	a.evaluate()
	a.Compose()
}

// Stop clears every layer. The pose holds its last values.
func (a *Animator) Stop() {
	for i := 0; i < a.layerCount; i++ {
		a.stopLayer(i)
	}
	a.rootMotion = Vec2{}
}

// StopLayer clears one layer.
func (a *Animator) StopLayer(layer int) {
	if !a.checkLayer("Stop", layer) {
		return
	}
	a.stopLayer(layer)
}

func (a *Animator) stopLayer(i int) {
	l := &a.layers[i]
	l.clip = nil
	l.fadeClip = nil
	l.fadeFrozen = false
	l.time = 0
	l.blendTime = 0
	l.weight = 0
	l.frame = -1
	l.rootDelta = Vec2{}
}

// Update advances every layer by dt*timeScale seconds (scaled again by each
// layer's speed), resamples the pose, and recomposes world matrices. Call it
// at most once per frame; a second call advances time again.
func (a *Animator) Update(dt, timeScale float64) {
	a.advance(dt, timeScale)
	a.Compose()
}

// UpdateLayer advances a single layer, then resamples and recomposes.
func (a *Animator) UpdateLayer(layer int, dt, timeScale float64) {
	if !a.checkLayer("UpdateLayer", layer) {
		return
	}
	a.stepLayer(layer, dt*timeScale)
	a.evaluate()
	a.Compose()
}

// advance steps and samples every layer without composing world matrices.
func (a *Animator) advance(dt, timeScale float64) {
	step := dt * timeScale
	for i := 0; i < a.layerCount; i++ {
		a.stepLayer(i, step)
	}
	a.evaluate()
}

func (a *Animator) stepLayer(i int, step float64) {
	l := &a.layers[i]
	if l.clip == nil {
		return
	}

	prevTime := l.time
	var wraps int
	l.time, wraps = advanceTime(l.clip, l.time, step*l.speed, l.loop)
	delta := l.clip.rootDelta(prevTime, l.time, wraps)

	if l.fadeClip != nil {
		prevFade := l.fadeTime
		var fadeWraps int
		l.fadeTime, fadeWraps = advanceTime(l.fadeClip, l.fadeTime, step*l.fadeSpeed, l.fadeLoop)
		l.blendTime += step
		if l.blendTime < 0 {
			l.blendTime = 0
		}
		if l.blendTime >= a.fadeDuration {
			l.fadeClip = nil
			l.fadeFrozen = false
		} else {
			old := l.fadeClip.rootDelta(prevFade, l.fadeTime, fadeWraps)
			delta = MixVec2(old, delta, a.fadeWeight(l.blendTime))
		}
	}
	l.rootDelta = delta

	frame := l.clip.frameAt(l.time)
	a.emitCrossed(i, l.clip, l.frame, frame, wraps, l.time < prevTime)
	l.frame = frame
}

// emitCrossed queues the events of every frame entered while moving from
// frame prev to frame cur. Each event fires at most once per step, however
// many loops the step covers.
func (a *Animator) emitCrossed(layer int, clip *Clip, prev, cur, wraps int, backward bool) {
	last := clip.frameCount - 1
	switch {
	case wraps > 1 || wraps < -1:
		a.emitEvents(layer, clip, 0, last)
	case wraps == 1:
		if cur >= prev {
			a.emitEvents(layer, clip, 0, last)
			return
		}
		a.emitEvents(layer, clip, prev+1, last)
		a.emitEvents(layer, clip, 0, cur)
	case wraps == -1:
		if cur <= prev {
			a.emitEvents(layer, clip, 0, last)
			return
		}
		a.emitEvents(layer, clip, 0, prev-1)
		a.emitEvents(layer, clip, cur, last)
	case backward:
		a.emitEvents(layer, clip, cur, prev-1)
	default:
		a.emitEvents(layer, clip, prev+1, cur)
	}
}

// fadeWeight maps elapsed fade time to the weight of the incoming clip:
// 0 is entirely the old pose, 1 entirely the new one.
func (a *Animator) fadeWeight(blendTime float64) float64 {
	if a.fadeDuration <= 0 {
		return 1
	}
	bt := clamp(blendTime, 0, a.fadeDuration)
	if a.fadeCurve == nil {
		return bt / a.fadeDuration
	}
	return clamp(float64(a.fadeCurve(float32(bt), 0, 1, float32(a.fadeDuration))), 0, 1)
}

// evaluate samples every layer into the local pose. Layers run in index
// order and write only their masked bones, so a later layer wins where masks
// overlap.
func (a *Animator) evaluate() {
	n := a.skel.BoneCount()
	a.rootMotion = Vec2{}
	for i := 0; i < a.layerCount; i++ {
		l := &a.layers[i]
		if l.clip == nil {
			continue
		}
		a.sampleLayer(l, a.sampleA[:n])
		for b := 0; b < n; b++ {
			if l.mask.Has(b) {
				a.locals[b] = a.sampleA[b]
			}
		}
		if l.mask.Has(0) {
			a.rootMotion = l.rootDelta
		}
	}
}

// sampleLayer writes l's pose into dst, mixing in the fade-out source while
// a crossfade runs.
func (a *Animator) sampleLayer(l *AnimatorLayer, dst []BoneTransform) {
	EvaluateFrame(l.clip, l.time, dst)
	if l.fadeClip == nil {
		l.weight = 1
		return
	}
	src := a.sampleB[:len(dst)]
	if l.fadeFrozen {
		src = l.fadePose[:len(dst)]
	} else {
		EvaluateFrame(l.fadeClip, l.fadeTime, src)
	}
	w := a.fadeWeight(l.blendTime)
	l.weight = w
	for b := range dst {
		dst[b] = MixTransform(src[b], dst[b], w)
	}
}

// Compose recomputes world matrices from the current local pose. Update does
// this already; call it after editing LocalTransforms directly.
func (a *Animator) Compose() {
	n := a.skel.BoneCount()
	ComposePose(a.skel, a.locals[:n], a.worlds[:n])
}

// --- Queries ---

// IsPlaying reports whether layer has a clip that is still advancing. A
// non-looping clip stops playing when it reaches its last frame, though its
// pose is held.
func (a *Animator) IsPlaying(layer int) bool {
	l := a.Layer(layer)
	if l == nil || l.clip == nil {
		return false
	}
	return l.loop || l.time < l.clip.Duration()
}

// IsPlayingClip reports whether clip is the active clip on layer.
func (a *Animator) IsPlayingClip(layer int, clip *Clip) bool {
	l := a.Layer(layer)
	return l != nil && clip != nil && l.clip == clip
}

// IsLooping reports whether layer loops.
func (a *Animator) IsLooping(layer int) bool {
	l := a.Layer(layer)
	return l != nil && l.loop
}

// IsBlending reports whether layer is crossfading.
func (a *Animator) IsBlending(layer int) bool {
	l := a.Layer(layer)
	return l != nil && l.fadeClip != nil
}

// BlendWeight returns the weight of the incoming clip on layer, from 0 at
// the start of a crossfade to 1 when it completes.
func (a *Animator) BlendWeight(layer int) float64 {
	l := a.Layer(layer)
	if l == nil || l.clip == nil {
		return 0
	}
	if l.fadeClip == nil {
		return 1
	}
	return a.fadeWeight(l.blendTime)
}

// State returns the playback state of layer.
func (a *Animator) State(layer int) LayerState {
	l := a.Layer(layer)
	if l == nil {
		return StateIdle
	}
	return l.State()
}

// Time returns the playback time of layer in seconds.
func (a *Animator) Time(layer int) float64 {
	l := a.Layer(layer)
	if l == nil {
		return 0
	}
	return l.time
}

// NormalizedTime returns playback progress on layer in [0, 1]. It is 0 when
// the layer is idle or the clip has a single frame.
func (a *Animator) NormalizedTime(layer int) float64 {
	l := a.Layer(layer)
	if l == nil || l.clip == nil {
		return 0
	}
	d := l.clip.Duration()
	if d <= 0 {
		return 0
	}
	return clamp(l.time/d, 0, 1)
}

// SetNormalizedTime scrubs layer to n in [0, 1] of the clip's duration and
// resamples immediately. Events between the old and new frame are not raised.
func (a *Animator) SetNormalizedTime(layer int, n float64) {
	if !a.checkLayer("SetNormalizedTime", layer) {
		return
	}
	l := &a.layers[layer]
	if l.clip == nil {
		return
	}
	l.time = clamp(n, 0, 1) * l.clip.Duration()
	l.frame = l.clip.frameAt(l.time)
	l.rootDelta = Vec2{}
	a.evaluate()
	a.Compose()
}

// FrameIndex returns the lower frame sampled on layer, or -1 when idle.
func (a *Animator) FrameIndex(layer int) int {
	l := a.Layer(layer)
	if l == nil || l.clip == nil {
		return -1
	}
	return l.frame
}

// SetFrame jumps layer to the start of frame and resamples.
func (a *Animator) SetFrame(layer, frame int) {
	if !a.checkLayer("SetFrame", layer) {
		return
	}
	l := &a.layers[layer]
	if l.clip == nil {
		return
	}
	frame = min(max(frame, 0), l.clip.frameCount-1)
	l.time = float64(frame) / l.clip.frameRate
	l.frame = frame
	l.rootDelta = Vec2{}
	a.evaluate()
	a.Compose()
}

// --- Outputs ---

// LocalTransforms returns this frame's parent-relative pose, one entry per
// bone. The slice aliases the animator's storage; writes are visible to the
// next Compose.
func (a *Animator) LocalTransforms() []BoneTransform {
	return a.locals[:a.skel.BoneCount()]
}

// WorldMatrices returns one skeleton-space matrix per bone. The slice
// aliases the animator's storage and is valid until the next Update.
func (a *Animator) WorldMatrices() []Affine {
	return a.worlds[:a.skel.BoneCount()]
}

// SkinningMatrices appends per-bone skinning matrices to dst[:0] for GPU
// upload. See SkinPose.
func (a *Animator) SkinningMatrices(dst []mgl32.Mat3) []mgl32.Mat3 {
	return SkinPose(a.skel, a.WorldMatrices(), dst)
}

// RootMotionDelta returns root travel produced by the last Update. It is
// zero unless the layer driving the root bone plays a root-motion clip.
func (a *Animator) RootMotionDelta() Vec2 { return a.rootMotion }

// --- Events ---

// emitEvents queues the clip's events for frames from..to inclusive.
func (a *Animator) emitEvents(layer int, clip *Clip, from, to int) {
	if from > to {
		return
	}
	for _, e := range clip.events {
		if e.Frame >= from && e.Frame <= to {
			a.pushEvent(AnimationEvent{Layer: layer, Frame: e.Frame, ID: e.ID})
		}
	}
}

func (a *Animator) pushEvent(e AnimationEvent) {
	if a.eventCount >= MaxEvents {
		if a.debug {
			debugWarn("event queue full, dropped event %d from layer %d", e.ID, e.Layer)
		}
		return
	}
	a.events[a.eventCount] = e
	a.eventCount++
}

// HasEvents reports whether events are waiting to be polled.
func (a *Animator) HasEvents() bool { return a.eventCount > 0 }

// PollEvent removes and returns the oldest queued event.
func (a *Animator) PollEvent() (AnimationEvent, bool) {
	if a.eventCount == 0 {
		return AnimationEvent{}, false
	}
	e := a.events[0]
	copy(a.events[:], a.events[1:a.eventCount])
	a.eventCount--
	return e, true
}

// ClearEvents drops all queued events.
func (a *Animator) ClearEvents() { a.eventCount = 0 }
