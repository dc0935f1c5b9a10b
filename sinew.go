package sinew

import "math/bits"

// Vec2 is a 2D vector used for bone positions, scales, and root-motion deltas.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// MixVec2 linearly interpolates between a and b. t=0 returns a, t=1 returns b.
func MixVec2(a, b Vec2, t float64) Vec2 {
	return Vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// Engine limits. Output arrays are sized by these so the per-frame path never
// allocates.
const (
	MaxBones  = 64 // bones per skeleton; one BoneMask bit each
	MaxLayers = 2  // layers per Animator
	MaxBlends = 3  // children per BlendTree
	MaxEvents = 4  // queued clip events per Animator between polls
)

// DefaultFadeDuration is the crossfade window, in seconds, applied when Play
// replaces a clip that is already playing.
const DefaultFadeDuration = 0.05

// NoBone is the parent index of the root bone and the result of a failed
// bone lookup.
const NoBone = -1

// BoneMask is a bitset selecting which bones a layer or blend tree writes.
// Bit i corresponds to bone index i.
type BoneMask uint64

// AllBones selects every bone.
const AllBones = ^BoneMask(0)

// Has reports whether bone index i is in the mask.
func (m BoneMask) Has(i int) bool {
	if i < 0 || i >= MaxBones {
		return false
	}
	return m&(1<<uint(i)) != 0
}

// With returns a copy of the mask with bone index i set.
func (m BoneMask) With(i int) BoneMask {
	if i < 0 || i >= MaxBones {
		return m
	}
	return m | 1<<uint(i)
}

// Without returns a copy of the mask with bone index i cleared.
func (m BoneMask) Without(i int) BoneMask {
	if i < 0 || i >= MaxBones {
		return m
	}
	return m &^ (1 << uint(i))
}

// Count returns the number of bones selected.
func (m BoneMask) Count() int {
	return bits.OnesCount64(uint64(m))
}

// LayerState is the playback state of a single animator layer.
type LayerState uint8

const (
	StateIdle        LayerState = iota // no clip assigned
	StatePlaying                       // one active clip
	StateCrossfading                   // active clip plus a fading-out previous clip
)

// String returns the state name.
func (s LayerState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateCrossfading:
		return "crossfading"
	default:
		return "idle"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
