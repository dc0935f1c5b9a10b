package sinew

import "math"

type blendSlot struct {
	animator *Animator
	value    float64
	active   bool
}

// BlendTree is a one-dimensional blend space. Each child Animator plays one
// clip tagged with a position on the control axis; Update mixes the children
// by their distance from the tree's current value and writes the result into
// a target Animator for the bones in the tree's mask.
//
// Weights come from a tent kernel, w = clamp(1 - |childValue - value|, 0, 1),
// and are not renormalized. Space child values one unit apart so neighbouring
// weights sum to 1.
type BlendTree struct {
	skel       *Skeleton
	blends     [MaxBlends]blendSlot
	blendCount int
	mask       BoneMask
	value      float64
	weights    [MaxBlends]float64
	debug      bool
}

// NewBlendTree creates a tree with blendCount child slots, clamped to
// [0, MaxBlends], that writes the bones in mask.
func NewBlendTree(skel *Skeleton, blendCount int, mask BoneMask) *BlendTree {
	t := &BlendTree{
		skel:       skel,
		blendCount: min(max(blendCount, 0), MaxBlends),
		mask:       mask,
	}
	for i := 0; i < t.blendCount; i++ {
		a := NewAnimator(skel, 1)
		a.SetBoneMask(0, mask)
		t.blends[i].animator = a
	}
	if t.skel == nil {
		t.skel = emptySkeleton
	}
	return t
}

// SetDebugMode enables panics on programmer errors for the tree and its
// children.
func (t *BlendTree) SetDebugMode(enabled bool) {
	t.debug = enabled
	for i := 0; i < t.blendCount; i++ {
		t.blends[i].animator.SetDebugMode(enabled)
	}
}

// BlendCount returns the number of child slots.
func (t *BlendTree) BlendCount() int { return t.blendCount }

// Mask returns the bones the tree writes.
func (t *BlendTree) Mask() BoneMask { return t.mask }

// Child returns the Animator in slot, or nil.
func (t *BlendTree) Child(slot int) *Animator {
	if slot < 0 || slot >= t.blendCount {
		return nil
	}
	return t.blends[slot].animator
}

// ChildValue returns the control value slot is tagged with.
func (t *BlendTree) ChildValue(slot int) float64 {
	if slot < 0 || slot >= t.blendCount {
		return 0
	}
	return t.blends[slot].value
}

// Play assigns clip to slot at control value and starts it looping at speed
// from normalizedTime.
func (t *BlendTree) Play(slot int, value float64, clip *Clip, speed, normalizedTime float64) {
	if !debugCheckIndex(t.debug, "BlendTree.Play", "slot", slot, t.blendCount) {
		return
	}
	if clip == nil {
		t.blends[slot].animator.Stop()
		t.blends[slot].active = false
		return
	}
	if !debugCheckClip(t.debug, "BlendTree.Play", t.skel, clip) {
		return
	}
	b := &t.blends[slot]
	b.value = value
	b.active = true
	b.animator.PlayAt(clip, 0, speed, true, normalizedTime)
}

// SetValue sets the position on the control axis.
func (t *BlendTree) SetValue(v float64) { t.value = v }

// Value returns the position on the control axis.
func (t *BlendTree) Value() float64 { return t.value }

// Stop stops every child.
func (t *BlendTree) Stop() {
	for i := 0; i < t.blendCount; i++ {
		t.blends[i].animator.Stop()
		t.blends[i].active = false
	}
}

// IsPlaying reports whether every started child is still playing.
func (t *BlendTree) IsPlaying() bool {
	started := false
	for i := 0; i < t.blendCount; i++ {
		b := &t.blends[i]
		if !b.active {
			continue
		}
		if !b.animator.IsPlaying(0) {
			return false
		}
		started = true
	}
	return started
}

// tentWeight is the kernel used for every child.
func tentWeight(childValue, value float64) float64 {
	return clamp(1-math.Abs(childValue-value), 0, 1)
}

func (t *BlendTree) computeWeights() {
	for i := 0; i < t.blendCount; i++ {
		b := &t.blends[i]
		if !b.active {
			t.weights[i] = 0
			continue
		}
		t.weights[i] = tentWeight(b.value, t.value)
	}
}

// Weights writes each slot's current weight into dst and returns the count
// written. Unstarted slots weigh 0.
func (t *BlendTree) Weights(dst []float64) int {
	t.computeWeights()
	return copy(dst, t.weights[:t.blendCount])
}

// Update advances every started child by dt*timeScale, forwards their events
// to target, and writes the weighted pose of each masked bone into target.
// Bones outside the mask keep whatever target already holds, so trees and
// animator layers with disjoint masks can drive one skeleton together. The
// target's world matrices are recomposed before returning.
func (t *BlendTree) Update(dt, timeScale float64, target *Animator) {
	if t.blendCount == 0 {
		return
	}
	for i := 0; i < t.blendCount; i++ {
		b := &t.blends[i]
		if !b.active {
			continue
		}
		b.animator.advance(dt, timeScale)
		if target == nil {
			b.animator.ClearEvents()
			continue
		}
		for {
			e, ok := b.animator.PollEvent()
			if !ok {
				break
			}
			target.pushEvent(e)
		}
	}
	if target == nil {
		return
	}
	if target.skel.BoneCount() != t.skel.BoneCount() {
		configError(t.debug, "BlendTree.Update: target skeleton %q has %d bones, tree has %d",
			target.skel.Name(), target.skel.BoneCount(), t.skel.BoneCount())
		return
	}

	t.computeWeights()
	n := t.skel.BoneCount()
	for bone := 0; bone < n; bone++ {
		if !t.mask.Has(bone) {
			continue
		}
		var out BoneTransform
		var base float64
		first := true
		for i := 0; i < t.blendCount; i++ {
			w := t.weights[i]
			if w <= 0 {
				continue
			}
			bt := t.blends[i].animator.locals[bone]
			out.Position = out.Position.Add(bt.Position.Scale(w))
			out.Scale = out.Scale.Add(bt.Scale.Scale(w))
			if first {
				base = bt.Rotation
				first = false
			}
			out.Rotation += (base + AngleDelta(base, bt.Rotation)) * w
		}
		if first {
			// No child contributes at this value; hold the target's pose.
			continue
		}
		target.locals[bone] = out
	}

	if t.mask.Has(0) {
		var root Vec2
		for i := 0; i < t.blendCount; i++ {
			if w := t.weights[i]; w > 0 {
				root = root.Add(t.blends[i].animator.rootMotion.Scale(w))
			}
		}
		target.rootMotion = root
	}

	target.Compose()
}
