package sinew

import "math"

// framePair resolves a sample time to the two frames that bracket it and the
// fractional position between them. frameB wraps to 0 after the last frame so
// a looping clip interpolates seamlessly back into its first frame.
func (c *Clip) framePair(time float64) (frameA, frameB int, t float64) {
	if c.frameRate <= 0 || c.frameCount <= 1 {
		return 0, 0, 0
	}
	ff := time * c.frameRate
	if ff < 0 || math.IsNaN(ff) {
		ff = 0
	}
	fl := math.Floor(ff)
	frameA = int(fl)
	t = ff - fl
	if frameA >= c.frameCount {
		frameA = c.frameCount - 1
		t = 0
	}
	frameB = (frameA + 1) % c.frameCount
	return frameA, frameB, t
}

// frameAt returns the frame index sampled at time.
func (c *Clip) frameAt(time float64) int {
	a, _, _ := c.framePair(time)
	return a
}

// EvaluateFrame samples clip at time into dst and returns the lower frame
// index. Each bone mixes the two bracketing frames; rotation takes the short
// way round. For root-motion clips the root position is zeroed, since that
// motion is reported separately. At most min(len(dst), BoneCount) bones are
// written.
func EvaluateFrame(clip *Clip, time float64, dst []BoneTransform) int {
	if clip == nil {
		return 0
	}
	fa, fb, t := clip.framePair(time)
	n := min(len(dst), clip.boneCount)
	rowA := clip.frames[fa*clip.boneCount:]
	rowB := clip.frames[fb*clip.boneCount:]
	for i := 0; i < n; i++ {
		dst[i] = MixTransform(rowA[i], rowB[i], t)
	}
	if n > 0 && clip.IsRootMotion() {
		dst[0].Position = Vec2{}
	}
	return fa
}

// rootKey returns the stored root position of frame f.
func (c *Clip) rootKey(f int) Vec2 {
	return c.frames[f*c.boneCount].Position
}

// rootEnd is where the root would be one frame after the last key if it kept
// its final velocity. The wrap segment of a loop moves toward it instead of
// back to frame 0 so accumulated root motion keeps advancing.
func (c *Clip) rootEnd() Vec2 {
	last := c.rootKey(c.frameCount - 1)
	if c.frameCount < 2 {
		return last
	}
	return last.Add(last.Sub(c.rootKey(c.frameCount - 2)))
}

// rootPosition samples the unwrapped root track at time.
func (c *Clip) rootPosition(time float64) Vec2 {
	if c.frameCount <= 1 || c.frameRate <= 0 {
		return c.rootKey(0)
	}
	fa, fb, t := c.framePair(time)
	if fb == 0 {
		return MixVec2(c.rootKey(fa), c.rootEnd(), t)
	}
	return MixVec2(c.rootKey(fa), c.rootKey(fb), t)
}

// rootDelta returns root travel between two sample times. wraps is the
// signed number of loop points crossed, as reported by advanceTime.
func (c *Clip) rootDelta(from, to float64, wraps int) Vec2 {
	if !c.IsRootMotion() {
		return Vec2{}
	}
	if wraps == 0 {
		return c.rootPosition(to).Sub(c.rootPosition(from))
	}
	cycle := c.rootEnd().Sub(c.rootKey(0))
	if wraps > 0 {
		tail := c.rootEnd().Sub(c.rootPosition(from))
		head := c.rootPosition(to).Sub(c.rootKey(0))
		return tail.Add(head).Add(cycle.Scale(float64(wraps - 1)))
	}
	head := c.rootKey(0).Sub(c.rootPosition(from))
	tail := c.rootPosition(to).Sub(c.rootEnd())
	return head.Add(tail).Add(cycle.Scale(float64(wraps + 1)))
}

// advanceTime moves a playback cursor by delta seconds. Looping clips wrap
// modulo LoopDuration; others clamp to [0, Duration] and hold the last pose.
// The int is the signed number of loop points crossed: positive going
// forward, negative going backward.
func advanceTime(c *Clip, time, delta float64, loop bool) (float64, int) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		delta = 0
	}
	time += delta
	if loop {
		period := c.LoopDuration()
		if period <= 0 {
			return 0, 0
		}
		if time >= period || time < 0 {
			w := math.Floor(time / period)
			time -= w * period
			if time < 0 || time >= period {
				time = 0
			}
			return time, int(w)
		}
		return time, 0
	}
	dur := c.Duration()
	if time > dur {
		time = dur
	}
	if time < 0 {
		time = 0
	}
	return time, 0
}
