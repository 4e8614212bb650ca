package sapling

import "github.com/go-gl/mathgl/mgl64"

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, collision and pointer events of nodes with a non-zero
// EntityID are forwarded to the ECS.
type EntityStore interface {
	EmitCollision(event CollisionEvent)
	EmitPointer(event PointerEvent)
}

// CollisionEvent carries one side of a collision for the ECS bridge.
type CollisionEvent struct {
	EntityID      uint32
	OtherEntityID uint32 // 0 when the other node has no entity or is gone
	Force         float64
	Position      mgl64.Vec2
	Normal        mgl64.Vec2
}

// PointerEvent carries a pointer interaction for the ECS bridge.
type PointerEvent struct {
	Action   PointerAction
	EntityID uint32
	Global   mgl64.Vec2
	Local    mgl64.Vec2
	Handled  bool
}

// fireCollision delivers info to the node's hook, then to the scene's
// entity store. The scene is captured first because the hook may dispose n.
func (n *Node) fireCollision(info *CollisionInfo) {
	s := n.scene
	entityID := n.EntityID
	if n.OnCollision != nil {
		n.OnCollision(info)
	}
	if s == nil || s.store == nil || entityID == 0 {
		return
	}
	var other uint32
	if info.Other.alive() {
		other = info.Other.EntityID
	}
	s.store.EmitCollision(CollisionEvent{
		EntityID:      entityID,
		OtherEntityID: other,
		Force:         info.Force,
		Position:      info.Position,
		Normal:        info.Normal,
	})
}
