package sapling

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// BodyHandle is an opaque reference to a body owned by a Backend. It pairs a
// slot index with the slot's generation, so a handle kept after DestroyBody is
// detected instead of aliasing a newer body. The zero value is never valid.
type BodyHandle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h BodyHandle) IsZero() bool {
	return h.gen == 0
}

// String implements fmt.Stringer.
func (h BodyHandle) String() string {
	return fmt.Sprintf("body(%d:%d)", h.index, h.gen)
}

// CollisionInfo describes one collision as seen from the node receiving it.
// It is only valid for the duration of the OnCollision call.
type CollisionInfo struct {
	// Other is the node on the other side of the collision.
	Other *Node
	// Force is the penetration depth along Normal.
	Force float64
	// Position is the center of the overlap region.
	Position mgl64.Vec2
	// Normal points away from the other body, toward the receiving body.
	Normal mgl64.Vec2
}

// QueryFunc receives each node matched by an area query. Returning false
// stops the query.
type QueryFunc func(node *Node) bool

// RayFunc receives each node hit by a ray query, the point where the ray
// enters its shape and the surface normal there. Returning false stops the
// query.
type RayFunc func(node *Node, hit, normal mgl64.Vec2) bool

// Backend is a collision strategy. A Scene owns exactly one and drives it
// from the fixed update. Position and rotation flow from nodes to the
// backend; the backend writes back to nodes only when resolving penetration.
type Backend interface {
	// Step advances collision state by one fixed tick.
	Step(dt float64)
	// PostUpdate runs after every scene has stepped in the current tick.
	PostUpdate(dt float64)

	// CreateBody creates a body for node using shape.
	CreateBody(node *Node, shape Shape) (BodyHandle, error)
	// DestroyBody releases h, removing it from every tracked pair.
	DestroyBody(h BodyHandle) error
	// DebugMesh fills mesh with a wireframe of every tracked body.
	DebugMesh(mesh *DebugMesh)

	UpdatePosition(h BodyHandle, position mgl64.Vec3) error
	UpdateRotation(h BodyHandle, rotation mgl64.Quat) error
	SetLinearVelocity(h BodyHandle, v mgl64.Vec3) error
	SetAngularVelocity(h BodyHandle, v mgl64.Vec3) error
	LinearVelocity(h BodyHandle) (mgl64.Vec3, error)
	AngularVelocity(h BodyHandle) (mgl64.Vec3, error)

	// TestCollision reports whether the global point p is inside h's shape.
	TestCollision(h BodyHandle, p mgl64.Vec2) (bool, error)
	// IsSolid reports whether h pushes dynamic bodies out on contact.
	IsSolid(h BodyHandle) (bool, error)

	QueryPoint(p mgl64.Vec2, fn QueryFunc)
	QueryRange(p mgl64.Vec2, r float64, fn QueryFunc)
	QueryRect(area Rect, fn QueryFunc)
	// QueryAny reports every body hit by ray in no particular order.
	QueryAny(ray Ray2, fn RayFunc)
	// QueryAll reports every body hit by ray ordered by distance from Start.
	QueryAll(ray Ray2, fn RayFunc)
}

// BackendFactory creates a backend for one scene.
type BackendFactory func(logger *zap.Logger) Backend

// --- Backend registry ---

// BackendSimple2D is the name of the built-in broadphase backend.
const BackendSimple2D = "simple2d"

var (
	backendMu        sync.RWMutex
	backendFactories = map[string]BackendFactory{
		BackendSimple2D: func(logger *zap.Logger) Backend { return NewSimpleBackend(logger) },
	}
)

// RegisterBackend makes a backend available by name for WithBackend and
// scene configuration files. Registering an existing name replaces it.
func RegisterBackend(name string, factory BackendFactory) {
	if factory == nil {
		panic("sapling: nil backend factory")
	}
	backendMu.Lock()
	defer backendMu.Unlock()
	backendFactories[name] = factory
}

// Backends returns the sorted names of all registered backends.
func Backends() []string {
	backendMu.RLock()
	defer backendMu.RUnlock()
	names := make([]string, 0, len(backendFactories))
	for name := range backendFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBackend creates the backend registered under name.
func NewBackend(name string, logger *zap.Logger) (Backend, error) {
	f, err := lookupBackend(name)
	if err != nil {
		return nil, err
	}
	return f(logger), nil
}

func lookupBackend(name string) (BackendFactory, error) {
	backendMu.RLock()
	defer backendMu.RUnlock()
	f, ok := backendFactories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return f, nil
}
