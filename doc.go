// Package sinew is a 2D skeletal animation runtime for [Ebitengine] games.
//
// Sinew samples keyframed bone clips, blends them, and produces one world
// matrix per bone each frame. It does not draw sprites or meshes; hand the
// matrices to your renderer, or to [DrawSkeleton] while debugging.
//
// # Quick start
//
// Load a skeleton and its clips, create an [Animator], and update it once
// per frame:
//
//	lib := sinew.NewLibrary()
//	if err := lib.LoadFS(os.DirFS("assets/hero")); err != nil {
//		log.Fatal(err)
//	}
//	a := sinew.NewAnimator(lib.Skeleton("hero"), 1)
//	a.PlayClip(lib.Clip("idle"), 0)
//
//	// each frame
//	a.Update(1.0/60, 1)
//	for i, m := range a.WorldMatrices() {
//		op.GeoM = m.GeoM()
//		// draw the sprite attached to bone i
//	}
//
// # Skeletons and clips
//
// A [Skeleton] is an immutable bone hierarchy stored parent-first, so a
// single forward pass composes world matrices. A [Clip] is a fixed-rate
// table of per-bone local transforms. Both are read-only once built and may
// be shared by any number of animators on any goroutine.
//
// Rotations are radians. Every rotation blend takes the shortest arc, so
// 170° to -170° passes through 180°.
//
// # Playback
//
// An [Animator] has up to [MaxLayers] layers. Each layer plays one clip and
// writes only the bones in its [BoneMask]; later layers win where masks
// overlap. Calling [Animator.Play] on a busy layer crossfades from the old
// clip over [Animator.FadeDuration] seconds, optionally shaped with a
// [gween] easing function via [Animator.SetFadeCurve].
//
// Looping clips interpolate from their last frame back into frame 0, so a
// clip of N frames at R fps loops every N/R seconds without a hitch.
//
// # Blend trees
//
// A [BlendTree] places up to [MaxBlends] clips on a one-dimensional control
// axis, say idle at 0 and run at 1, and mixes them with a tent kernel.
// Drive the value directly with [BlendTree.SetValue] or ease it with
// [TweenValue].
//
// # Root motion and events
//
// Clips flagged [ClipRootMotion] report root travel through
// [Animator.RootMotionDelta] instead of moving the root bone. Clip events are
// queued when playback enters their frame; drain them with
// [Animator.PollEvent].
//
// # Assets and configuration
//
// [ReadSkeleton] and [ReadClip] decode the binary asset format. A [Library]
// loads a directory of assets and can hot-reload them with [Library.Watch].
// [AnimationSet] describes layers and blend trees in YAML.
//
// # Debug mode
//
// Programmer errors such as an out-of-range layer, or a clip built for a
// different skeleton, are logged and ignored by default. Call
// SetDebugMode(true) on an Animator or BlendTree to panic instead.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package sinew
