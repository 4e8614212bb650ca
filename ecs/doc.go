// Package ecs provides ECS adapters for sapling's event system.
//
// The primary adapter is [NewDonburiStore], which bridges sapling collision
// and pointer events into a [Donburi] world as typed events. Subscribe to
// [CollisionEventType] or [PointerEventType] in your ECS systems to receive
// them. Only nodes with a non-zero EntityID produce events.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
