package sapling

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

var _ Backend = (*SimpleBackend)(nil)

// simpleBody is one slot of the dense body table. A slot is reused after
// its body is destroyed; gen is bumped on destruction so stale handles stop
// matching.
type simpleBody struct {
	gen   uint32
	live  bool
	owner *Node
	shape Shape
	proxy int

	// Last position pushed to the broadphase.
	position mgl64.Vec2
	rotation mgl64.Quat

	linearVelocity  mgl64.Vec3
	angularVelocity mgl64.Vec3
}

// worldRect places the body's shape at position.
func (b *simpleBody) worldRect(position mgl64.Vec2) Rect {
	return b.shape.Rect.Translate(position)
}

// collisionPair is an unordered body pair, stored with a.index < b.index.
type collisionPair struct {
	a, b BodyHandle
}

func makePair(a, b BodyHandle) collisionPair {
	if b.index < a.index {
		a, b = b, a
	}
	return collisionPair{a: a, b: b}
}

func (p collisionPair) has(h BodyHandle) bool {
	return p.a == h || p.b == h
}

// StepStats summarizes the most recent Step of a SimpleBackend.
type StepStats struct {
	Bodies   int
	Pairs    int
	Contacts int
	Duration time.Duration
}

// SimpleBackend tracks axis-aligned rectangle bodies in a broadphase tree,
// keeps the set of pairs whose bounding boxes overlap and, each step, pushes
// dynamic bodies out of solid ones along the axis of least penetration.
// Dynamic-vs-dynamic and solid-vs-solid contacts only raise events.
type SimpleBackend struct {
	logger *zap.Logger

	bodies []simpleBody
	free   []uint32
	live   int

	broadphase *broadphase

	// pairs keeps insertion order so dispatch is deterministic; pairSet
	// deduplicates.
	pairs    []collisionPair
	pairSet  map[collisionPair]struct{}
	snapshot []collisionPair

	stats StepStats
}

// NewSimpleBackend creates an empty backend. A nil logger disables logging.
func NewSimpleBackend(logger *zap.Logger) *SimpleBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimpleBackend{
		logger:     logger,
		broadphase: newBroadphase(),
		pairSet:    make(map[collisionPair]struct{}),
	}
}

// --- Body table ---

// get returns the live body for h, or nil.
func (s *SimpleBackend) get(h BodyHandle) *simpleBody {
	if h.IsZero() || int(h.index) >= len(s.bodies) {
		return nil
	}
	b := &s.bodies[h.index]
	if !b.live || b.gen != h.gen {
		return nil
	}
	return b
}

// lookup is get for public entry points: misuse is logged and reported.
func (s *SimpleBackend) lookup(h BodyHandle, op string) (*simpleBody, error) {
	b := s.get(h)
	if b == nil {
		s.logger.Warn("invalid body handle", zap.String("op", op), zap.Stringer("handle", h))
		return nil, fmt.Errorf("%s %s: %w", op, h, ErrInvalidHandle)
	}
	return b, nil
}

// CreateBody allocates a body for node and inserts its proxy.
func (s *SimpleBackend) CreateBody(node *Node, shape Shape) (BodyHandle, error) {
	if !node.alive() {
		return BodyHandle{}, fmt.Errorf("create body for disposed node: %w", ErrInvalidHandle)
	}
	var index uint32
	if n := len(s.free); n > 0 {
		index = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.bodies = append(s.bodies, simpleBody{gen: 1})
		index = uint32(len(s.bodies) - 1)
	}
	b := &s.bodies[index]
	h := BodyHandle{index: index, gen: b.gen}
	pos := node.GlobalPosition2D()
	*b = simpleBody{
		gen:      b.gen,
		live:     true,
		owner:    node,
		shape:    shape,
		position: pos,
		rotation: mgl64.QuatIdent(),
	}
	b.proxy = s.broadphase.createProxy(b.worldRect(pos), h)
	s.live++
	s.logger.Debug("body created",
		zap.Stringer("handle", h),
		zap.String("node", node.Name),
		zap.Stringer("type", shape.Type))
	return h, nil
}

// DestroyBody removes the body's proxy and every pair that references it,
// then frees the slot. The handle is invalid afterwards.
func (s *SimpleBackend) DestroyBody(h BodyHandle) error {
	b, err := s.lookup(h, "DestroyBody")
	if err != nil {
		return err
	}
	s.broadphase.destroyProxy(b.proxy)
	s.purgePairs(h)

	b.live = false
	b.owner = nil
	b.gen++
	if b.gen == 0 {
		b.gen = 1
	}
	s.free = append(s.free, h.index)
	s.live--
	s.logger.Debug("body destroyed", zap.Stringer("handle", h))
	return nil
}

// NumBodies returns the number of live bodies.
func (s *SimpleBackend) NumBodies() int {
	return s.live
}

// NumPairs returns the number of tracked broadphase pairs.
func (s *SimpleBackend) NumPairs() int {
	return len(s.pairs)
}

// Stats returns statistics for the most recent Step.
func (s *SimpleBackend) Stats() StepStats {
	return s.stats
}

// --- Pairs ---

// addPair records a pair reported by the broadphase, ignoring duplicates.
func (s *SimpleBackend) addPair(userDataA, userDataB any) {
	p := makePair(userDataA.(BodyHandle), userDataB.(BodyHandle))
	if _, ok := s.pairSet[p]; ok {
		return
	}
	s.pairSet[p] = struct{}{}
	s.pairs = append(s.pairs, p)
}

func (s *SimpleBackend) purgePairs(h BodyHandle) {
	kept := s.pairs[:0]
	for _, p := range s.pairs {
		if p.has(h) {
			delete(s.pairSet, p)
			continue
		}
		kept = append(kept, p)
	}
	clearTail(s.pairs, len(kept))
	s.pairs = kept
}

// prunePairs drops pairs whose proxies no longer overlap.
func (s *SimpleBackend) prunePairs() {
	kept := s.pairs[:0]
	for _, p := range s.pairs {
		ba, bb := s.get(p.a), s.get(p.b)
		if ba == nil || bb == nil || !s.broadphase.testOverlap(ba.proxy, bb.proxy) {
			delete(s.pairSet, p)
			continue
		}
		kept = append(kept, p)
	}
	clearTail(s.pairs, len(kept))
	s.pairs = kept
}

func clearTail(pairs []collisionPair, from int) {
	for i := from; i < len(pairs); i++ {
		pairs[i] = collisionPair{}
	}
}

// --- Simulation ---

// Step refreshes every proxy from its owner's global position, updates and
// prunes the pair set, then resolves and reports every true overlap.
func (s *SimpleBackend) Step(dt float64) {
	start := time.Now()

	for i := range s.bodies {
		b := &s.bodies[i]
		if !b.live {
			continue
		}
		s.refreshProxy(b, b.owner.GlobalPosition2D())
	}
	s.broadphase.updatePairs(s.addPair)
	s.prunePairs()

	// Callbacks may destroy bodies, which edits s.pairs; iterate a copy.
	s.snapshot = append(s.snapshot[:0], s.pairs...)
	contacts := 0
	for _, p := range s.snapshot {
		if s.resolvePair(p) {
			contacts++
		}
	}

	s.stats = StepStats{
		Bodies:   s.live,
		Pairs:    len(s.pairs),
		Contacts: contacts,
		Duration: time.Since(start),
	}
}

// resolvePair runs the narrow phase for one pair. It returns true if the
// shapes overlapped.
func (s *SimpleBackend) resolvePair(p collisionPair) bool {
	ba, bb := s.get(p.a), s.get(p.b)
	if ba == nil || bb == nil {
		return false
	}
	nodeA, nodeB := ba.owner, bb.owner
	rectA := ba.worldRect(nodeA.GlobalPosition2D())
	rectB := bb.worldRect(nodeB.GlobalPosition2D())
	if !rectA.Overlaps(rectB) {
		return false
	}

	info := contactInfo(rectA, rectB)

	// Only one side is ever displaced.
	push := info.Normal.Mul(info.Force)
	if ba.shape.Type == ShapeDynamic && bb.shape.Type.Solid() {
		nodeA.modifyPositionByPhysics(nodeA.GlobalPosition2D().Add(push))
	} else if bb.shape.Type == ShapeDynamic && ba.shape.Type.Solid() {
		nodeB.modifyPositionByPhysics(nodeB.GlobalPosition2D().Sub(push))
	}

	if s.get(p.a) != nil && nodeA.alive() {
		info.Other = nodeB
		nodeA.fireCollision(&info)
	}
	if s.get(p.b) != nil && nodeB.alive() {
		infoB := info
		infoB.Other = nil
		if nodeA.alive() {
			infoB.Other = nodeA
		}
		infoB.Normal = info.Normal.Mul(-1)
		nodeB.fireCollision(&infoB)
	}
	return true
}

// contactInfo computes the separation for two overlapping rectangles as seen
// from a. The axis with the smaller overlap is used; ties use the x axis.
// The normal points from b toward a.
func contactInfo(a, b Rect) CollisionInfo {
	ox, oy := a.overlapExtents(b)
	ca, cb := a.Center(), b.Center()

	var info CollisionInfo
	if ox > oy {
		info.Force = oy
		if ca[1] < cb[1] {
			info.Normal = mgl64.Vec2{0, -1}
		} else {
			info.Normal = mgl64.Vec2{0, 1}
		}
	} else {
		info.Force = ox
		if ca[0] < cb[0] {
			info.Normal = mgl64.Vec2{-1, 0}
		} else {
			info.Normal = mgl64.Vec2{1, 0}
		}
	}

	minX, minY := max(a.X, b.X), max(a.Y, b.Y)
	info.Position = mgl64.Vec2{minX + ox/2, minY + oy/2}
	return info
}

// PostUpdate is a no-op for this backend.
func (s *SimpleBackend) PostUpdate(dt float64) {}

// refreshProxy moves b's proxy to position.
func (s *SimpleBackend) refreshProxy(b *simpleBody, position mgl64.Vec2) {
	d := position.Sub(b.position)
	b.position = position
	s.broadphase.moveProxy(b.proxy, b.worldRect(position), d[0], d[1])
}

// --- Body state ---

// UpdatePosition moves the body's proxy to the given global position.
func (s *SimpleBackend) UpdatePosition(h BodyHandle, position mgl64.Vec3) error {
	b, err := s.lookup(h, "UpdatePosition")
	if err != nil {
		return err
	}
	s.refreshProxy(b, mgl64.Vec2{position[0], position[1]})
	return nil
}

// UpdateRotation records the rotation. Shapes stay axis-aligned.
func (s *SimpleBackend) UpdateRotation(h BodyHandle, rotation mgl64.Quat) error {
	b, err := s.lookup(h, "UpdateRotation")
	if err != nil {
		return err
	}
	b.rotation = rotation
	return nil
}

// SetLinearVelocity records the velocity; it is not integrated.
func (s *SimpleBackend) SetLinearVelocity(h BodyHandle, v mgl64.Vec3) error {
	b, err := s.lookup(h, "SetLinearVelocity")
	if err != nil {
		return err
	}
	b.linearVelocity = v
	return nil
}

// SetAngularVelocity records the angular velocity; it is not integrated.
func (s *SimpleBackend) SetAngularVelocity(h BodyHandle, v mgl64.Vec3) error {
	b, err := s.lookup(h, "SetAngularVelocity")
	if err != nil {
		return err
	}
	b.angularVelocity = v
	return nil
}

func (s *SimpleBackend) LinearVelocity(h BodyHandle) (mgl64.Vec3, error) {
	b, err := s.lookup(h, "LinearVelocity")
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return b.linearVelocity, nil
}

func (s *SimpleBackend) AngularVelocity(h BodyHandle) (mgl64.Vec3, error) {
	b, err := s.lookup(h, "AngularVelocity")
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return b.angularVelocity, nil
}

// TestCollision reports whether p lies in the body's shape at its owner's
// current global position. Edges count as inside.
func (s *SimpleBackend) TestCollision(h BodyHandle, p mgl64.Vec2) (bool, error) {
	b, err := s.lookup(h, "TestCollision")
	if err != nil {
		return false, err
	}
	return b.worldRect(b.owner.GlobalPosition2D()).Contains(p), nil
}

// IsSolid reports true for static and kinematic bodies.
func (s *SimpleBackend) IsSolid(h BodyHandle) (bool, error) {
	b, err := s.lookup(h, "IsSolid")
	if err != nil {
		return false, err
	}
	return b.shape.Type.Solid(), nil
}

// --- Queries ---

// QueryPoint reports every body whose shape contains p.
func (s *SimpleBackend) QueryPoint(p mgl64.Vec2, fn QueryFunc) {
	s.queryArea(Rect{X: p[0], Y: p[1]}, func(r Rect) bool { return r.Contains(p) }, fn)
}

// QueryRange reports every body whose shape lies within r of p.
func (s *SimpleBackend) QueryRange(p mgl64.Vec2, r float64, fn QueryFunc) {
	if r < 0 {
		return
	}
	area := Rect{X: p[0] - r, Y: p[1] - r, Width: 2 * r, Height: 2 * r}
	s.queryArea(area, func(rect Rect) bool { return rect.distanceTo(p) <= r }, fn)
}

// QueryRect reports every body whose shape touches area.
func (s *SimpleBackend) QueryRect(area Rect, fn QueryFunc) {
	s.queryArea(area, func(r Rect) bool { return r.Intersects(area) }, fn)
}

// queryArea collects candidates from the tree, filters them with match and
// then dispatches in body order. Matches are gathered first because fn may
// destroy bodies.
func (s *SimpleBackend) queryArea(bounds Rect, match func(Rect) bool, fn QueryFunc) {
	var hits []BodyHandle
	s.broadphase.query(toAABB(bounds), func(id int) bool {
		h := s.broadphase.userData(id).(BodyHandle)
		if b := s.get(h); b != nil && match(b.worldRect(b.owner.GlobalPosition2D())) {
			hits = append(hits, h)
		}
		return true
	})
	sort.Slice(hits, func(i, j int) bool { return hits[i].index < hits[j].index })
	for _, h := range hits {
		b := s.get(h)
		if b == nil || !b.owner.alive() {
			continue
		}
		if !fn(b.owner) {
			return
		}
	}
}

type rayHit struct {
	handle BodyHandle
	t      float64
	point  mgl64.Vec2
	normal mgl64.Vec2
}

// QueryAny reports every body the ray crosses, in tree order.
func (s *SimpleBackend) QueryAny(ray Ray2, fn RayFunc) {
	s.dispatchRayHits(s.collectRayHits(ray), fn)
}

// QueryAll reports every body the ray crosses, nearest first.
func (s *SimpleBackend) QueryAll(ray Ray2, fn RayFunc) {
	hits := s.collectRayHits(ray)
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].t != hits[j].t {
			return hits[i].t < hits[j].t
		}
		return hits[i].handle.index < hits[j].handle.index
	})
	s.dispatchRayHits(hits, fn)
}

func (s *SimpleBackend) collectRayHits(ray Ray2) []rayHit {
	var hits []rayHit
	if ray.Direction().Len() == 0 {
		// Degenerate ray: behaves as a point probe at Start.
		s.broadphase.query(toAABB(Rect{X: ray.Start[0], Y: ray.Start[1]}), func(id int) bool {
			h := s.broadphase.userData(id).(BodyHandle)
			if b := s.get(h); b != nil && b.worldRect(b.owner.GlobalPosition2D()).Contains(ray.Start) {
				hits = append(hits, rayHit{handle: h, point: ray.Start})
			}
			return true
		})
		return hits
	}
	s.broadphase.rayCast(ray, func(id int) bool {
		h := s.broadphase.userData(id).(BodyHandle)
		b := s.get(h)
		if b == nil {
			return true
		}
		if t, normal, ok := ray.intersectRect(b.worldRect(b.owner.GlobalPosition2D())); ok {
			hits = append(hits, rayHit{handle: h, t: t, point: ray.At(t), normal: normal})
		}
		return true
	})
	return hits
}

func (s *SimpleBackend) dispatchRayHits(hits []rayHit, fn RayFunc) {
	for _, hit := range hits {
		b := s.get(hit.handle)
		if b == nil || !b.owner.alive() {
			continue
		}
		if !fn(b.owner, hit.point, hit.normal) {
			return
		}
	}
}

// --- Debug ---

// DebugMesh rebuilds mesh with one quad per proxy in the broadphase. It only
// reads simulation state.
func (s *SimpleBackend) DebugMesh(mesh *DebugMesh) {
	mesh.Reset()
	s.broadphase.query(unboundedAABB(), func(id int) bool {
		b := s.get(s.broadphase.userData(id).(BodyHandle))
		if b != nil {
			mesh.AddQuad(b.worldRect(b.owner.GlobalPosition2D()), ColorWhite)
		}
		return true
	})
}
