// Package ecs provides Donburi components and a system for sinew animators.
//
// Attach [Animator] (and optionally [BlendTree] and [RootMotion]) to an
// entity and call [UpdateAnimators] once per frame. Clip events raised during
// the update are published to [AnimationEventType]; process them with
// events.ProcessAllEvents or AnimationEventType.ProcessEvents.
//
// Usage:
//
//	entity := ecs.NewAnimatedEntity(world, animator)
//	ecs.AnimationEventType.Subscribe(world, onFootstep)
//	...
//	ecs.UpdateAnimators(world, dt, 1)
//	events.ProcessAllEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
