package sapling

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 2 values on a Node simultaneously. Create one via
// TweenPosition or TweenRotation and call Update(dt) each frame. Values are
// applied through the node's setters, so global transforms and collision
// bodies follow the animation. If the target node is disposed, the group
// stops immediately.
//
// There is no global animation manager; users call Update themselves.
type TweenGroup struct {
	tweens [2]*gween.Tween
	count  int
	apply  func(values [2]float64)
	target *Node
	Done   bool
}

// Update advances all tweens by dt seconds and applies the values. If the
// target node has been disposed, Done is set and nothing is written.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target == nil || g.target.IsDisposed() {
		g.Done = true
		return
	}

	var values [2]float64
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		values[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.apply(values)
	g.Done = allDone
}

// TweenPosition animates the node's local X and Y to the target over duration
// seconds.
func TweenPosition(node *Node, to mgl64.Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := node.LocalPosition2D()
	g := &TweenGroup{count: 2, target: node}
	g.tweens[0] = gween.New(float32(from[0]), float32(to[0]), duration, fn)
	g.tweens[1] = gween.New(float32(from[1]), float32(to[1]), duration, fn)
	g.apply = func(v [2]float64) { node.SetPosition(v[0], v[1]) }
	return g
}

// TweenRotation animates the node's local rotation, in radians, to the target
// over duration seconds.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: node}
	g.tweens[0] = gween.New(float32(node.LocalRotation2D()), float32(to), duration, fn)
	g.apply = func(v [2]float64) { node.SetRotation(v[0]) }
	return g
}
