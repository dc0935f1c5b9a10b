package ecs

import (
	"github.com/phanxgames/sinew"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// AnimatorData drives one skeleton. TimeScale multiplies the system's time
// scale for this entity; zero means 1.
type AnimatorData struct {
	Animator  *sinew.Animator
	TimeScale float64
}

// BlendTreeData layers a blend tree over the entity's animator. If Tween is
// set it is advanced before the tree and cleared when done.
type BlendTreeData struct {
	Tree  *sinew.BlendTree
	Tween *sinew.ValueTween
}

// RootMotionData receives the root travel extracted each frame. Total
// accumulates until the game consumes it.
type RootMotionData struct {
	Delta sinew.Vec2
	Total sinew.Vec2
}

// Consume returns the accumulated travel and resets it.
func (r *RootMotionData) Consume() sinew.Vec2 {
	t := r.Total
	r.Total = sinew.Vec2{}
	return t
}

var (
	Animator   = donburi.NewComponentType[AnimatorData]()
	BlendTree  = donburi.NewComponentType[BlendTreeData]()
	RootMotion = donburi.NewComponentType[RootMotionData]()
)

// AnimationEvent is a clip event raised by an entity's animator.
type AnimationEvent struct {
	Entity donburi.Entity
	Layer  int
	Frame  int
	ID     int
}

// AnimationEventType is the Donburi event type for clip events.
var AnimationEventType = events.NewEventType[AnimationEvent]()

// NewAnimatedEntity creates an entity with Animator and RootMotion
// components driving a.
func NewAnimatedEntity(world donburi.World, a *sinew.Animator) donburi.Entity {
	entity := world.Create(Animator, RootMotion)
	Animator.SetValue(world.Entry(entity), AnimatorData{Animator: a})
	return entity
}

// AttachBlendTree adds a BlendTree component to entity.
func AttachBlendTree(world donburi.World, entity donburi.Entity, tree *sinew.BlendTree) {
	entry := world.Entry(entity)
	if !entry.HasComponent(BlendTree) {
		entry.AddComponent(BlendTree)
	}
	BlendTree.SetValue(entry, BlendTreeData{Tree: tree})
}

// UpdateAnimators advances every animated entity by dt*timeScale: animator
// layers first, then the blend tree on top. Root motion is written to the
// RootMotion component and clip events are published to AnimationEventType.
func UpdateAnimators(world donburi.World, dt, timeScale float64) {
	Animator.Each(world, func(e *donburi.Entry) {
		d := Animator.Get(e)
		a := d.Animator
		if a == nil {
			return
		}
		scale := timeScale
		if d.TimeScale != 0 {
			scale *= d.TimeScale
		}

		a.Update(dt, scale)

		if e.HasComponent(BlendTree) {
			bt := BlendTree.Get(e)
			if bt.Tween != nil {
				bt.Tween.Update(float32(dt * scale))
				if bt.Tween.Done {
					bt.Tween = nil
				}
			}
			if bt.Tree != nil {
				bt.Tree.Update(dt, scale, a)
			}
		}

		if e.HasComponent(RootMotion) {
			rm := RootMotion.Get(e)
			rm.Delta = a.RootMotionDelta()
			rm.Total = rm.Total.Add(rm.Delta)
		}

		for {
			ev, ok := a.PollEvent()
			if !ok {
				break
			}
			AnimationEventType.Publish(world, AnimationEvent{
				Entity: e.Entity(),
				Layer:  ev.Layer,
				Frame:  ev.Frame,
				ID:     ev.ID,
			})
		}
	})
}
