package sapling

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTickRate is the number of fixed updates per second scenes and loops
// use unless configured otherwise.
const DefaultTickRate = 30

// SceneOption configures a Scene in NewScene.
type SceneOption func(*Scene) error

// WithLogger sets the scene's logger. The scene adds its name and id fields.
func WithLogger(logger *zap.Logger) SceneOption {
	return func(s *Scene) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// WithBackendFactory sets the factory used to create the collision backend.
func WithBackendFactory(f BackendFactory) SceneOption {
	return func(s *Scene) error {
		if f != nil {
			s.backendFactory = f
		}
		return nil
	}
}

// WithBackend selects a registered backend by name.
func WithBackend(name string) SceneOption {
	return func(s *Scene) error {
		f, err := lookupBackend(name)
		if err != nil {
			return err
		}
		s.backendFactory = f
		return nil
	}
}

// WithFixedDelta sets the simulated time, in seconds, of one FixedUpdate.
func WithFixedDelta(dt float64) SceneOption {
	return func(s *Scene) error {
		if dt > 0 {
			s.fixedDelta = dt
		}
		return nil
	}
}

// Scene is the top-level object that owns the node tree, the collision
// backend and the default camera. Scenes are registered by name for the
// lifetime between NewScene and Destroy.
type Scene struct {
	id   uuid.UUID
	name string

	root    *Node
	camera  *Camera
	backend Backend
	store   EntityStore
	logger  *zap.Logger

	backendFactory BackendFactory
	fixedDelta     float64

	enabled   bool
	debug     bool
	destroyed bool

	// Scene-level hooks, run before the node tree.
	OnUpdate      func(delta float64)
	OnFixedUpdate func()

	walkStack []*Node
	hitBuf    []*Node
}

// NewScene creates an enabled scene with an empty root node and registers it
// under name. It fails with ErrSceneExists if the name is taken.
func NewScene(name string, opts ...SceneOption) (*Scene, error) {
	s := &Scene{
		id:             uuid.New(),
		name:           name,
		logger:         zap.NewNop(),
		backendFactory: func(logger *zap.Logger) Backend { return NewSimpleBackend(logger) },
		fixedDelta:     1.0 / DefaultTickRate,
		enabled:        true,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With(zap.String("scene", name), zap.String("scene_id", s.id.String()))

	if err := registerScene(s); err != nil {
		return nil, err
	}
	s.root = NewNode("root")
	s.root.scene = s
	s.logger.Debug("scene created")
	return s, nil
}

// ID returns the scene's unique instance id.
func (s *Scene) ID() uuid.UUID {
	return s.id
}

// Name returns the name the scene is registered under.
func (s *Scene) Name() string {
	return s.name
}

// Root returns the scene's root node.
func (s *Scene) Root() *Node {
	return s.root
}

// Logger returns the scene's logger.
func (s *Scene) Logger() *zap.Logger {
	return s.logger
}

// Backend returns the collision backend, or nil if no body was created yet.
func (s *Scene) Backend() Backend {
	return s.backend
}

// FixedDelta returns the simulated duration of one FixedUpdate in seconds.
func (s *Scene) FixedDelta() float64 {
	return s.fixedDelta
}

// Camera returns the default camera, or nil.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// SetDefaultCamera sets the camera used for pointer dispatch and debug
// drawing. A nil camera clears it.
func (s *Scene) SetDefaultCamera(cam *Camera) {
	s.camera = cam
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// per-step collision stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// IsDebugMode reports whether debug mode is on.
func (s *Scene) IsDebugMode() bool {
	return s.debug
}

// Enable resumes ticking.
func (s *Scene) Enable() { s.enabled = true }

// Disable stops ticking; FixedUpdate, PostFixedUpdate and Update become no-ops.
func (s *Scene) Disable() { s.enabled = false }

func (s *Scene) SetEnabled(enabled bool) { s.enabled = enabled }

func (s *Scene) IsEnabled() bool { return s.enabled }

// IsDestroyed reports whether Destroy was called.
func (s *Scene) IsDestroyed() bool { return s.destroyed }

// --- Ticks ---

// FixedUpdate runs OnFixedUpdate hooks depth first, then steps the collision
// backend by the fixed delta. Disabled scenes do nothing.
func (s *Scene) FixedUpdate() {
	if !s.enabled {
		return
	}
	if s.OnFixedUpdate != nil {
		s.OnFixedUpdate()
	}
	s.walk(func(n *Node) {
		if n.OnFixedUpdate != nil {
			n.OnFixedUpdate()
		}
	})
	if s.backend != nil {
		s.backend.Step(s.fixedDelta)
		if s.debug {
			s.debugLogStep()
		}
	}
}

// PostFixedUpdate lets the backend finish a tick after every scene stepped.
func (s *Scene) PostFixedUpdate(delta float64) {
	if !s.enabled || s.backend == nil {
		return
	}
	s.backend.PostUpdate(delta)
}

// Update runs OnUpdate hooks depth first and advances the default camera.
func (s *Scene) Update(delta float64) {
	if !s.enabled {
		return
	}
	if s.OnUpdate != nil {
		s.OnUpdate(delta)
	}
	s.walk(func(n *Node) {
		if n.OnUpdate != nil {
			n.OnUpdate(delta)
		}
	})
	if s.camera != nil {
		s.camera.update(float32(delta))
	}
}

// walk visits the tree in depth-first pre-order. Children are read after
// their parent's visit, so hooks may add, remove or dispose nodes; nodes that
// left the scene before their turn are skipped.
func (s *Scene) walk(visit func(n *Node)) {
	stack := append(s.walkStack[:0], s.root)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack[len(stack)-1] = nil
		stack = stack[:len(stack)-1]
		if !n.alive() || n.scene != s {
			continue
		}
		visit(n)
		if !n.alive() || n.scene != s {
			continue
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	s.walkStack = stack
}

// --- Bodies ---

// createBody creates n's body in the scene backend, creating the backend on
// first use, and mirrors the node's placement and velocities to it.
func (s *Scene) createBody(n *Node) error {
	if s.backend == nil {
		s.backend = s.backendFactory(s.logger.Named("collision"))
		s.logger.Debug("collision backend created")
	}
	h, err := s.backend.CreateBody(n, *n.shape)
	if err != nil {
		return err
	}
	n.body = h
	n.syncBodyTransform()
	if n.linearVelocity != (mgl64.Vec3{}) {
		_ = s.backend.SetLinearVelocity(h, n.linearVelocity)
	}
	if n.angularVelocity != (mgl64.Vec3{}) {
		_ = s.backend.SetAngularVelocity(h, n.angularVelocity)
	}
	return nil
}

// --- Queries ---

// QueryCollision reports every node whose shape contains point.
func (s *Scene) QueryCollision(point mgl64.Vec2, fn QueryFunc) {
	if s.backend != nil {
		s.backend.QueryPoint(point, fn)
	}
}

// QueryCollisionRange reports every node whose shape lies within r of point.
func (s *Scene) QueryCollisionRange(point mgl64.Vec2, r float64, fn QueryFunc) {
	if s.backend != nil {
		s.backend.QueryRange(point, r, fn)
	}
}

// QueryCollisionRect reports every node whose shape touches the rectangle
// spanned by corners a and b.
func (s *Scene) QueryCollisionRect(a, b mgl64.Vec2, fn QueryFunc) {
	if s.backend != nil {
		s.backend.QueryRect(RectFromPoints(a, b), fn)
	}
}

// QueryCollisionAny reports every node hit by the segment from start to end
// in no particular order. Suited to line-of-sight checks.
func (s *Scene) QueryCollisionAny(start, end mgl64.Vec2, fn RayFunc) {
	if s.backend != nil {
		s.backend.QueryAny(Ray2{Start: start, End: end}, fn)
	}
}

// QueryCollisionAll reports every node hit by the segment from start to end,
// nearest first. Suited to hit traces.
func (s *Scene) QueryCollisionAll(start, end mgl64.Vec2, fn RayFunc) {
	if s.backend != nil {
		s.backend.QueryAll(Ray2{Start: start, End: end}, fn)
	}
}

// CollisionDebugMesh fills mesh with the backend's debug geometry. Without a
// backend the mesh is emptied.
func (s *Scene) CollisionDebugMesh(mesh *DebugMesh) {
	if s.backend == nil {
		mesh.Reset()
		return
	}
	s.backend.DebugMesh(mesh)
}

// --- Teardown ---

// Destroy disposes the whole tree, drops the backend and unregisters the
// scene. Destroying twice is a no-op.
func (s *Scene) Destroy() {
	if s.destroyed {
		return
	}
	s.root.Dispose()
	s.backend = nil
	s.camera = nil
	s.store = nil
	s.enabled = false
	s.destroyed = true
	unregisterScene(s)
	s.logger.Debug("scene destroyed")
}
