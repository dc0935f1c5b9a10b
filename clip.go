package sinew

import (
	"errors"
	"fmt"
)

// ErrInvalidClip is returned when clip data is malformed.
var ErrInvalidClip = errors.New("sinew: invalid clip")

// ErrBoneCountMismatch is returned when a clip and a skeleton disagree on
// the number of bones.
var ErrBoneCountMismatch = errors.New("sinew: bone count mismatch")

// ClipFlags are authoring options stored with a clip.
type ClipFlags uint8

const (
	ClipLooping    ClipFlags = 1 << iota // loop by default when played with PlayClip
	ClipRootMotion                       // root bone translation drives root motion instead of the pose
)

// ClipEvent fires when playback enters Frame.
type ClipEvent struct {
	Frame int
	ID    int
}

// Clip is a fixed-rate sequence of per-bone local transforms. Frames are
// stored frame-major with a stride of BoneCount. Clips are read-only after
// construction and may be shared by any number of animators.
type Clip struct {
	name       string
	frameRate  float64
	frameCount int
	boneCount  int
	flags      ClipFlags
	frames     []BoneTransform
	events     []ClipEvent
}

// NewClip validates and builds a clip. frames must hold frameCount*boneCount
// transforms and is copied.
func NewClip(name string, frameRate float64, frameCount, boneCount int, frames []BoneTransform, flags ClipFlags, events ...ClipEvent) (*Clip, error) {
	switch {
	case frameRate <= 0:
		return nil, fmt.Errorf("%w: %q frame rate %v", ErrInvalidClip, name, frameRate)
	case frameCount < 1:
		return nil, fmt.Errorf("%w: %q has no frames", ErrInvalidClip, name)
	case boneCount < 1 || boneCount > MaxBones:
		return nil, fmt.Errorf("%w: %q bone count %d", ErrInvalidClip, name, boneCount)
	case len(frames) != frameCount*boneCount:
		return nil, fmt.Errorf("%w: %q has %d transforms, want %d", ErrInvalidClip, name, len(frames), frameCount*boneCount)
	}
	for _, e := range events {
		if e.Frame < 0 || e.Frame >= frameCount {
			return nil, fmt.Errorf("%w: %q event %d on frame %d of %d", ErrInvalidClip, name, e.ID, e.Frame, frameCount)
		}
	}

	c := &Clip{
		name:       name,
		frameRate:  frameRate,
		frameCount: frameCount,
		boneCount:  boneCount,
		flags:      flags,
		frames:     make([]BoneTransform, len(frames)),
	}
	copy(c.frames, frames)
	if len(events) > 0 {
		c.events = make([]ClipEvent, len(events))
		copy(c.events, events)
	}
	return c, nil
}

// Name returns the clip's asset name.
func (c *Clip) Name() string { return c.name }

// FrameRate returns the sample rate in frames per second.
func (c *Clip) FrameRate() float64 { return c.frameRate }

// FrameCount returns the number of stored frames.
func (c *Clip) FrameCount() int { return c.frameCount }

// BoneCount returns the frame stride.
func (c *Clip) BoneCount() int { return c.boneCount }

// Flags returns the authoring flags.
func (c *Clip) Flags() ClipFlags { return c.flags }

// IsLooping reports whether the clip was authored to loop.
func (c *Clip) IsLooping() bool { return c.flags&ClipLooping != 0 }

// IsRootMotion reports whether the root bone drives root motion.
func (c *Clip) IsRootMotion() bool { return c.flags&ClipRootMotion != 0 }

// Events returns the clip's events. The slice must not be modified.
func (c *Clip) Events() []ClipEvent { return c.events }

// Duration returns the time of the last frame in seconds. A one-frame clip
// has zero duration.
func (c *Clip) Duration() float64 {
	if c.frameRate <= 0 || c.frameCount < 1 {
		return 0
	}
	return float64(c.frameCount-1) / c.frameRate
}

// LoopDuration returns the period of a looping clip: Duration plus one frame,
// during which the last frame interpolates back into frame 0.
func (c *Clip) LoopDuration() float64 {
	if c.frameRate <= 0 {
		return 0
	}
	return c.Duration() + 1/c.frameRate
}

// Transform returns the stored transform of bone at frame. Out-of-range
// arguments return IdentityTransform.
func (c *Clip) Transform(frame, bone int) BoneTransform {
	if frame < 0 || frame >= c.frameCount || bone < 0 || bone >= c.boneCount {
		return IdentityTransform
	}
	return c.frames[frame*c.boneCount+bone]
}

// Matches reports whether the clip can drive skel.
func (c *Clip) Matches(skel *Skeleton) bool {
	return skel != nil && c.boneCount == skel.BoneCount()
}
