package sapling

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore is an EntityStore that keeps every event.
type recordingStore struct {
	collisions []CollisionEvent
	pointers   []PointerEvent
}

func (r *recordingStore) EmitCollision(e CollisionEvent) { r.collisions = append(r.collisions, e) }
func (r *recordingStore) EmitPointer(e PointerEvent)     { r.pointers = append(r.pointers, e) }

// newPointerScene returns a scene whose camera maps screen to world 1:1.
func newPointerScene(t *testing.T) *Scene {
	t.Helper()
	s := newTestScene(t)
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.X, cam.Y = 400, 300
	s.SetDefaultCamera(cam)
	return s
}

func TestPointerActionString(t *testing.T) {
	assert.Equal(t, "down", PointerDown.String())
	assert.Equal(t, "up", PointerUp.String())
	assert.Equal(t, "move", PointerMove.String())
	assert.Equal(t, "PointerAction(9)", PointerAction(9).String())
}

func TestDispatchPointerHit(t *testing.T) {
	s := newPointerScene(t)
	n := addBody(t, s, "button", ShapeStatic, 100, 100, Rect{Width: 50, Height: 20})
	n.EntityID = 7
	n.UserData = "payload"

	var got PointerContext
	calls := 0
	n.OnPointer = func(ctx PointerContext) bool {
		calls++
		got = ctx
		return true
	}

	require.True(t, s.DispatchPointer(110, 105, PointerDown))
	assert.Equal(t, 1, calls)
	assert.Same(t, n, got.Node)
	assert.Equal(t, uint32(7), got.EntityID)
	assert.Equal(t, "payload", got.UserData)
	assert.Equal(t, PointerDown, got.Action)
	assertVec2Near(t, "screen", got.Screen, 110, 105)
	assertVec2Near(t, "global", got.Global, 110, 105)
	assertVec2Near(t, "local", got.Local, 10, 5)
}

func TestDispatchPointerMiss(t *testing.T) {
	s := newPointerScene(t)
	n := addBody(t, s, "button", ShapeStatic, 100, 100, Rect{Width: 50, Height: 20})
	n.OnPointer = func(PointerContext) bool {
		t.Error("OnPointer called on a miss")
		return true
	}
	assert.False(t, s.DispatchPointer(10, 10, PointerDown))
}

func TestDispatchPointerUsesCamera(t *testing.T) {
	s := newPointerScene(t)
	s.Camera().Zoom = 2
	n := addBody(t, s, "n", ShapeStatic, 400, 300, Rect{Width: 10, Height: 10})

	var global mgl64.Vec2
	n.OnPointer = func(ctx PointerContext) bool {
		global = ctx.Global
		return true
	}
	// Screen (410, 310) is world (405, 305) at zoom 2 around (400, 300).
	require.True(t, s.DispatchPointer(410, 310, PointerMove))
	assertVec2Near(t, "global", global, 405, 305)
}

func TestDispatchPointerStopsAtFirstHandler(t *testing.T) {
	s := newPointerScene(t)
	var order []string
	for i, name := range []string{"a", "b", "c"} {
		n := addBody(t, s, name, ShapeStatic, 0, 0, Rect{Width: 10, Height: 10})
		handles := i == 1
		n.OnPointer = func(ctx PointerContext) bool {
			order = append(order, ctx.Node.Name)
			return handles
		}
	}

	assert.True(t, s.DispatchPointer(5, 5, PointerUp))
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestDispatchPointerUnhandled(t *testing.T) {
	s := newPointerScene(t)
	addBody(t, s, "silent", ShapeStatic, 0, 0, Rect{Width: 10, Height: 10})
	n := addBody(t, s, "declines", ShapeStatic, 0, 0, Rect{Width: 10, Height: 10})
	n.OnPointer = func(PointerContext) bool { return false }

	assert.False(t, s.DispatchPointer(5, 5, PointerDown))
}

func TestDispatchPointerRequiresCameraAndBackend(t *testing.T) {
	s := newTestScene(t)
	n := addBody(t, s, "n", ShapeStatic, 0, 0, Rect{Width: 10, Height: 10})
	n.OnPointer = func(PointerContext) bool { return true }
	assert.False(t, s.DispatchPointer(5, 5, PointerDown), "no camera")

	empty, err := NewScene(t.Name() + "/empty")
	require.NoError(t, err)
	defer empty.Destroy()
	empty.SetDefaultCamera(NewCamera(Rect{Width: 10, Height: 10}))
	assert.False(t, empty.DispatchPointer(5, 5, PointerDown), "no backend")

	s.SetDefaultCamera(NewCamera(Rect{Width: 10, Height: 10}))
	s.Camera().X, s.Camera().Y = 5, 5
	s.Disable()
	assert.False(t, s.DispatchPointer(5, 5, PointerDown), "disabled")
	s.Enable()
	assert.True(t, s.DispatchPointer(5, 5, PointerDown))
}

func TestDispatchPointerDisposeInHandler(t *testing.T) {
	s := newPointerScene(t)
	a := addBody(t, s, "a", ShapeStatic, 0, 0, Rect{Width: 10, Height: 10})
	b := addBody(t, s, "b", ShapeStatic, 0, 0, Rect{Width: 10, Height: 10})
	a.OnPointer = func(PointerContext) bool {
		b.Dispose()
		return false
	}
	b.OnPointer = func(PointerContext) bool {
		t.Error("disposed node received a pointer event")
		return true
	}

	require.NotPanics(t, func() { s.DispatchPointer(5, 5, PointerDown) })
}

func TestDispatchPointerEmitsToEntityStore(t *testing.T) {
	s := newPointerScene(t)
	store := &recordingStore{}
	s.SetEntityStore(store)

	plain := addBody(t, s, "plain", ShapeStatic, 0, 0, Rect{Width: 10, Height: 10})
	plain.OnPointer = func(PointerContext) bool { return false }
	entity := addBody(t, s, "entity", ShapeStatic, 0, 0, Rect{Width: 10, Height: 10})
	entity.EntityID = 42
	entity.OnPointer = func(PointerContext) bool { return true }

	require.True(t, s.DispatchPointer(3, 4, PointerDown))
	require.Len(t, store.pointers, 1, "nodes without an entity id are not forwarded")
	e := store.pointers[0]
	assert.Equal(t, uint32(42), e.EntityID)
	assert.Equal(t, PointerDown, e.Action)
	assert.True(t, e.Handled)
	assertVec2Near(t, "global", e.Global, 3, 4)
	assertVec2Near(t, "local", e.Local, 3, 4)
}

func TestCollisionEventsReachEntityStore(t *testing.T) {
	s := newTestScene(t)
	store := &recordingStore{}
	s.SetEntityStore(store)

	wall := addBody(t, s, "wall", ShapeStatic, 0, 0, Rect{Width: 10, Height: 10})
	wall.EntityID = 1
	box := addBody(t, s, "box", ShapeDynamic, 6, 1, Rect{Width: 4, Height: 4})
	box.EntityID = 2
	addBody(t, s, "anonymous", ShapeDynamic, 1, 6, Rect{Width: 2, Height: 2})

	s.FixedUpdate()

	byEntity := map[uint32]CollisionEvent{}
	for _, e := range store.collisions {
		if e.OtherEntityID != 0 {
			byEntity[e.EntityID] = e
		}
	}
	require.Len(t, byEntity, 2)
	assert.Equal(t, uint32(2), byEntity[1].OtherEntityID)
	assert.Equal(t, uint32(1), byEntity[2].OtherEntityID)
	assert.Equal(t, mgl64.Vec2{1, 0}, byEntity[2].Normal)
	assert.InDelta(t, 4, byEntity[2].Force, epsilon)

	// The wall also touched the anonymous node, reported with no other entity.
	var anonymous int
	for _, e := range store.collisions {
		if e.EntityID == 1 && e.OtherEntityID == 0 {
			anonymous++
		}
	}
	assert.Equal(t, 1, anonymous)
}
