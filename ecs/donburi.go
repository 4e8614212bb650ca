package ecs

import (
	"github.com/phanxgames/sapling"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// CollisionEventType is the Donburi event type for sapling collision events.
// A collision between two entity-backed nodes publishes one event per side.
var CollisionEventType = events.NewEventType[sapling.CollisionEvent]()

// PointerEventType is the Donburi event type for sapling pointer events.
var PointerEventType = events.NewEventType[sapling.PointerEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Events are queued on the world and delivered by ProcessEvents or
// events.ProcessAllEvents.
func NewDonburiStore(world donburi.World) sapling.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitCollision(event sapling.CollisionEvent) {
	CollisionEventType.Publish(s.world, event)
}

func (s *donburiStore) EmitPointer(event sapling.PointerEvent) {
	PointerEventType.Publish(s.world, event)
}
