package sapling

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// PointerAction identifies what a pointer did.
type PointerAction uint8

const (
	PointerDown PointerAction = iota // a button was pressed
	PointerUp                        // a button was released
	PointerMove                      // the pointer moved
)

// String returns a short lower-case name.
func (a PointerAction) String() string {
	switch a {
	case PointerDown:
		return "down"
	case PointerUp:
		return "up"
	case PointerMove:
		return "move"
	default:
		return fmt.Sprintf("PointerAction(%d)", uint8(a))
	}
}

// PointerContext carries pointer event data passed to OnPointer hooks.
type PointerContext struct {
	Node     *Node
	EntityID uint32
	UserData any
	Action   PointerAction
	Screen   mgl64.Vec2 // position on screen
	Global   mgl64.Vec2 // position in world space
	Local    mgl64.Vec2 // position in the node's local space
}

// DispatchPointer converts a screen position to world space with the default
// camera, finds the bodies under it and offers the event to their nodes'
// OnPointer hooks until one returns true. It reports whether the event was
// handled. Scenes without a camera or backend never handle pointers.
func (s *Scene) DispatchPointer(screenX, screenY float64, action PointerAction) bool {
	if !s.enabled || s.camera == nil || s.backend == nil {
		return false
	}
	wx, wy := s.camera.ScreenToWorld(screenX, screenY)
	world := mgl64.Vec2{wx, wy}

	s.hitBuf = s.hitBuf[:0]
	s.backend.QueryPoint(world, func(n *Node) bool {
		s.hitBuf = append(s.hitBuf, n)
		return true
	})

	handled := false
	for _, n := range s.hitBuf {
		if !n.alive() || n.scene != s {
			continue
		}
		ctx := PointerContext{
			Node:     n,
			EntityID: n.EntityID,
			UserData: n.UserData,
			Action:   action,
			Screen:   mgl64.Vec2{screenX, screenY},
			Global:   world,
			Local:    n.GlobalToLocal2D(world),
		}
		entityID := n.EntityID
		if n.OnPointer != nil {
			handled = n.OnPointer(ctx)
		}
		s.emitPointer(entityID, ctx, handled)
		if handled {
			break
		}
	}
	clear(s.hitBuf)
	return handled
}

func (s *Scene) emitPointer(entityID uint32, ctx PointerContext, handled bool) {
	if s.store == nil || entityID == 0 {
		return
	}
	s.store.EmitPointer(PointerEvent{
		Action:   ctx.Action,
		EntityID: entityID,
		Global:   ctx.Global,
		Local:    ctx.Local,
		Handled:  handled,
	})
}
