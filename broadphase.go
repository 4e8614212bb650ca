package sapling

import (
	"math"
	"sort"

	"github.com/ByteArena/box2d"
)

const nullProxy = box2d.B2_nullNode

// worldExtent bounds the "unbounded" broadphase query. Kept well below
// MaxFloat64 so the tree's overlap arithmetic never overflows.
const worldExtent = math.MaxFloat64 / 4

// proxyPair is a candidate pair of proxy ids with a < b.
type proxyPair struct {
	a, b int
}

// broadphase tracks moved proxies on top of a box2d dynamic AABB tree and
// reports newly overlapping proxy pairs on demand. Proxies carry fattened
// AABBs, so a small move does not touch the tree.
type broadphase struct {
	tree       box2d.B2DynamicTree
	moveBuffer []int
	pairBuffer []proxyPair
	proxyCount int
}

func newBroadphase() *broadphase {
	return &broadphase{tree: box2d.MakeB2DynamicTree()}
}

// toAABB converts a rect to a box2d AABB.
func toAABB(r Rect) box2d.B2AABB {
	aabb := box2d.MakeB2AABB()
	aabb.LowerBound = box2d.MakeB2Vec2(r.X, r.Y)
	aabb.UpperBound = box2d.MakeB2Vec2(r.X+r.Width, r.Y+r.Height)
	return aabb
}

func unboundedAABB() box2d.B2AABB {
	aabb := box2d.MakeB2AABB()
	aabb.LowerBound = box2d.MakeB2Vec2(-worldExtent, -worldExtent)
	aabb.UpperBound = box2d.MakeB2Vec2(worldExtent, worldExtent)
	return aabb
}

func (bp *broadphase) createProxy(r Rect, userData any) int {
	id := bp.tree.CreateProxy(toAABB(r), userData)
	bp.proxyCount++
	bp.bufferMove(id)
	return id
}

func (bp *broadphase) destroyProxy(id int) {
	bp.unbufferMove(id)
	bp.proxyCount--
	bp.tree.DestroyProxy(id)
}

// moveProxy refits the proxy to r. displacement predicts the next move and
// enlarges the fat AABB in that direction.
func (bp *broadphase) moveProxy(id int, r Rect, dx, dy float64) {
	if bp.tree.MoveProxy(id, toAABB(r), box2d.MakeB2Vec2(dx, dy)) {
		bp.bufferMove(id)
	}
}

// testOverlap reports whether the fat AABBs of two proxies overlap.
func (bp *broadphase) testOverlap(a, b int) bool {
	return box2d.B2TestOverlapBoundingBoxes(bp.tree.GetFatAABB(a), bp.tree.GetFatAABB(b))
}

func (bp *broadphase) userData(id int) any {
	return bp.tree.GetUserData(id)
}

func (bp *broadphase) bufferMove(id int) {
	bp.moveBuffer = append(bp.moveBuffer, id)
}

func (bp *broadphase) unbufferMove(id int) {
	for i, m := range bp.moveBuffer {
		if m == id {
			bp.moveBuffer[i] = nullProxy
		}
	}
}

// updatePairs reports every pair involving a proxy created or moved since the
// last call whose fat AABBs overlap. Each pair is reported once, in proxy id
// order.
func (bp *broadphase) updatePairs(fn func(userDataA, userDataB any)) {
	bp.pairBuffer = bp.pairBuffer[:0]
	for _, queryID := range bp.moveBuffer {
		if queryID == nullProxy {
			continue
		}
		fat := bp.tree.GetFatAABB(queryID)
		bp.tree.Query(func(id int) bool {
			if id == queryID {
				return true
			}
			bp.pairBuffer = append(bp.pairBuffer, proxyPair{a: min(id, queryID), b: max(id, queryID)})
			return true
		}, fat)
	}
	bp.moveBuffer = bp.moveBuffer[:0]

	sort.Slice(bp.pairBuffer, func(i, j int) bool {
		if bp.pairBuffer[i].a != bp.pairBuffer[j].a {
			return bp.pairBuffer[i].a < bp.pairBuffer[j].a
		}
		return bp.pairBuffer[i].b < bp.pairBuffer[j].b
	})
	for i, p := range bp.pairBuffer {
		if i > 0 && p == bp.pairBuffer[i-1] {
			continue
		}
		fn(bp.tree.GetUserData(p.a), bp.tree.GetUserData(p.b))
	}
}

// query reports every proxy whose fat AABB overlaps r. Returning false from
// fn stops the query.
func (bp *broadphase) query(aabb box2d.B2AABB, fn func(id int) bool) {
	bp.tree.Query(fn, aabb)
}

// rayCast reports every proxy whose fat AABB the segment may cross. The
// segment is never clipped, so every candidate is visited; fn returning false
// terminates the cast. Zero-length segments are rejected by the tree, so
// callers must handle them separately.
func (bp *broadphase) rayCast(ray Ray2, fn func(id int) bool) {
	input := box2d.MakeB2RayCastInput()
	input.P1 = box2d.MakeB2Vec2(ray.Start[0], ray.Start[1])
	input.P2 = box2d.MakeB2Vec2(ray.End[0], ray.End[1])
	input.MaxFraction = 1
	bp.tree.RayCast(func(in box2d.B2RayCastInput, id int) float64 {
		if !fn(id) {
			return 0
		}
		return in.MaxFraction
	}, input)
}
