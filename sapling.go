package sapling

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default debug tint.
var ColorWhite = Color{1, 1, 1, 1}

// Rect is an axis-aligned rectangle. X/Y is the minimum corner; Width and
// Height extend toward +X and +Y.
type Rect struct {
	X, Y, Width, Height float64
}

// RectFromPoints returns the rectangle spanned by two opposite corners, in
// any order.
func RectFromPoints(a, b mgl64.Vec2) Rect {
	minX, maxX := math.Min(a[0], b[0]), math.Max(a[0], b[0])
	minY, maxY := math.Min(a[1], b[1]), math.Max(a[1], b[1])
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Min returns the minimum corner.
func (r Rect) Min() mgl64.Vec2 { return mgl64.Vec2{r.X, r.Y} }

// Max returns the maximum corner.
func (r Rect) Max() mgl64.Vec2 { return mgl64.Vec2{r.X + r.Width, r.Y + r.Height} }

// Center returns the center point of the rectangle.
func (r Rect) Center() mgl64.Vec2 {
	return mgl64.Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// Translate returns r moved by v.
func (r Rect) Translate(v mgl64.Vec2) Rect {
	return Rect{X: r.X + v[0], Y: r.Y + v[1], Width: r.Width, Height: r.Height}
}

// Contains reports whether p lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(p mgl64.Vec2) bool {
	return p[0] >= r.X && p[0] <= r.X+r.Width &&
		p[1] >= r.Y && p[1] <= r.Y+r.Height
}

// Intersects reports whether r and other touch or overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Overlaps reports whether r and other share a region of positive area.
// Rectangles that only touch along an edge do not overlap.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// overlapExtents returns how far r and other overlap on each axis. Values are
// only meaningful when the rectangles overlap.
func (r Rect) overlapExtents(other Rect) (x, y float64) {
	x = math.Min(r.X+r.Width, other.X+other.Width) - math.Max(r.X, other.X)
	y = math.Min(r.Y+r.Height, other.Y+other.Height) - math.Max(r.Y, other.Y)
	return x, y
}

// distanceTo returns the distance from p to the closest point of r, or 0
// when p is inside.
func (r Rect) distanceTo(p mgl64.Vec2) float64 {
	cx := math.Max(r.X, math.Min(p[0], r.X+r.Width))
	cy := math.Max(r.Y, math.Min(p[1], r.Y+r.Height))
	return math.Hypot(p[0]-cx, p[1]-cy)
}

// Ray2 is a 2D segment cast from Start toward End.
type Ray2 struct {
	Start, End mgl64.Vec2
}

// Direction returns End - Start (not normalized).
func (r Ray2) Direction() mgl64.Vec2 {
	return r.End.Sub(r.Start)
}

// At returns the point at fraction t along the ray.
func (r Ray2) At(t float64) mgl64.Vec2 {
	return r.Start.Add(r.Direction().Mul(t))
}

// intersectRect clips the ray against rect using the slab method. It returns
// the entry fraction in [0, 1] and the face normal at the entry point. A ray
// that starts inside rect reports t=0 and a normal opposing the ray.
func (r Ray2) intersectRect(rect Rect) (t float64, normal mgl64.Vec2, ok bool) {
	d := r.Direction()
	tmin, tmax := 0.0, 1.0
	var axisNormal mgl64.Vec2
	inside := true

	for axis := 0; axis < 2; axis++ {
		lo, hi := rect.X, rect.X+rect.Width
		if axis == 1 {
			lo, hi = rect.Y, rect.Y+rect.Height
		}
		o := r.Start[axis]
		if o < lo || o > hi {
			inside = false
		}
		if d[axis] == 0 {
			if o < lo || o > hi {
				return 0, mgl64.Vec2{}, false
			}
			continue
		}
		t1 := (lo - o) / d[axis]
		t2 := (hi - o) / d[axis]
		var n mgl64.Vec2
		n[axis] = -1
		if t1 > t2 {
			t1, t2 = t2, t1
			n[axis] = 1
		}
		if t1 > tmin {
			tmin = t1
			axisNormal = n
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, mgl64.Vec2{}, false
		}
	}

	if inside {
		if d.Len() == 0 {
			return 0, mgl64.Vec2{}, true
		}
		return 0, d.Normalize().Mul(-1), true
	}
	return tmin, axisNormal, true
}
