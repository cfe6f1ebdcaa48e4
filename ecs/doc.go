// Package ecs mirrors simulation state into a [Donburi] world.
//
// [Attach] registers one entity per rigid body carrying [BodyRef] and
// [MeshRef] components, and [Mirror] copies body poses onto their meshes:
// the same sync the choreography performs internally, exposed as an ECS
// system for applications that already run Donburi. Build rigs with
// ExternalMirrors set so the two sync paths do not race each other.
//
// Frame reports fan out to systems as typed events:
//
//	ecs.PublishFrame(world, choreo.Step(dt))
//	ecs.FrameEventType.ProcessEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
