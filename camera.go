package sapling

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera maps between world space and the screen: position, zoom, rotation
// and viewport. A scene has at most one default camera, used for pointer
// dispatch and debug drawing.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Rotation is the camera rotation in radians.
	Rotation float64
	// Viewport is the screen-space rectangle the camera maps onto.
	Viewport Rect

	followTarget *Node
	followOffset mgl64.Vec2
	followLerp   float64

	// BoundsEnabled clamps the camera position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	Bounds        Rect

	view    mgl64.Mat3
	invView mgl64.Mat3
	// Inputs the cached matrices were built from.
	cached cameraState

	scrollTween *scrollAnim
}

type cameraState struct {
	x, y, zoom, rotation float64
	viewport             Rect
	valid                bool
}

// NewCamera creates a camera with zoom 1 centered on the origin.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		Zoom:     1.0,
		Viewport: viewport,
	}
}

// Follow makes the camera track node's global position plus offset. A lerp
// of 1.0 snaps immediately; lower values give smoother following.
func (c *Camera) Follow(node *Node, offset mgl64.Vec2, lerp float64) {
	c.followTarget = node
	c.followOffset = offset
	c.followLerp = lerp
}

// Unfollow stops tracking the current target node.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// ScrollTo animates the camera to the given world position over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool {
	return c.scrollTween != nil
}

// SetBounds enables camera bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables camera bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// update advances follow, scroll and bounds clamping. Called from Scene.Update.
func (c *Camera) update(dt float32) {
	if c.followTarget != nil {
		if c.followTarget.IsDisposed() {
			c.followTarget = nil
		} else {
			target := c.followTarget.GlobalPosition2D().Add(c.followOffset)
			c.X += (target[0] - c.X) * c.followLerp
			c.Y += (target[1] - c.Y) * c.followLerp
		}
	}

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// clampToBounds restricts camera position so the visible area stays within Bounds.
func (c *Camera) clampToBounds() {
	halfW := c.Viewport.Width / (2 * c.Zoom)
	halfH := c.Viewport.Height / (2 * c.Zoom)

	minX := c.Bounds.X + halfW
	maxX := c.Bounds.X + c.Bounds.Width - halfW
	minY := c.Bounds.Y + halfH
	maxY := c.Bounds.Y + c.Bounds.Height - halfH

	// Bounds smaller than the visible area: center.
	if minX > maxX {
		c.X = c.Bounds.X + c.Bounds.Width/2
	} else {
		c.X = math.Max(minX, math.Min(c.X, maxX))
	}
	if minY > maxY {
		c.Y = c.Bounds.Y + c.Bounds.Height/2
	} else {
		c.Y = math.Max(minY, math.Min(c.Y, maxY))
	}
}

// ViewMatrix returns the world-to-screen matrix.
//
//	view = Translate(viewport center) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y)
func (c *Camera) ViewMatrix() mgl64.Mat3 {
	state := cameraState{x: c.X, y: c.Y, zoom: c.Zoom, rotation: c.Rotation, viewport: c.Viewport, valid: true}
	if state == c.cached {
		return c.view
	}
	center := c.Viewport.Center()
	c.view = mgl64.Translate2D(center[0], center[1]).
		Mul3(mgl64.Scale2D(c.Zoom, c.Zoom)).
		Mul3(mgl64.HomogRotate2D(-c.Rotation)).
		Mul3(mgl64.Translate2D(-c.X, -c.Y))
	c.invView = c.view.Inv()
	c.cached = state
	return c.view
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	v := c.ViewMatrix().Mul3x1(mgl64.Vec3{wx, wy, 1})
	return v[0], v[1]
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.ViewMatrix()
	v := c.invView.Mul3x1(mgl64.Vec3{sx, sy, 1})
	return v[0], v[1]
}

// VisibleBounds returns the axis-aligned bounding rect of the camera's visible
// area in world space.
func (c *Camera) VisibleBounds() Rect {
	vp := c.Viewport
	corners := [4][2]float64{
		{vp.X, vp.Y},
		{vp.X + vp.Width, vp.Y},
		{vp.X + vp.Width, vp.Y + vp.Height},
		{vp.X, vp.Y + vp.Height},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range corners {
		x, y := c.ScreenToWorld(p[0], p[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
