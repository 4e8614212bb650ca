package sapling

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

func TestTweenPositionReachesTarget(t *testing.T) {
	node := NewNode("pos")
	node.SetPosition(10, 20)

	g := TweenPosition(node, mgl64.Vec2{100, 200}, 1.0, ease.Linear)

	// Exact halves avoid float32 accumulation drift.
	g.Update(0.5)
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	p := node.LocalPosition2D()
	if math.Abs(p[0]-100) > 0.5 || math.Abs(p[1]-200) > 0.5 {
		t.Errorf("position = %v, want ~(100, 200)", p)
	}
}

func TestTweenPositionMovesBody(t *testing.T) {
	s := newTestScene(t)
	node := addBody(t, s, "platform", ShapeKinematic, 0, 0, Rect{Width: 4, Height: 4})

	g := TweenPosition(node, mgl64.Vec2{50, 0}, 0.5, ease.Linear)
	g.Update(0.25)
	g.Update(0.25)

	if !node.TestCollision(mgl64.Vec2{52, 2}) {
		t.Error("body should follow the tweened node")
	}
	if node.TestCollision(mgl64.Vec2{2, 2}) {
		t.Error("body should have left its start position")
	}
}

func TestTweenRotationReachesTarget(t *testing.T) {
	node := NewNode("rot")

	tw := TweenRotation(node, math.Pi, 0.5, ease.Linear)
	tw.Update(0.25)
	tw.Update(0.25)

	if !tw.Done {
		t.Fatal("expected done after full duration")
	}
	if got := math.Abs(node.LocalRotation2D()); math.Abs(got-math.Pi) > 0.05 {
		t.Errorf("Rotation = %f, want ~%f", got, math.Pi)
	}
}

func TestTweenGroupDoneFlagTransition(t *testing.T) {
	node := NewNode("done")
	g := TweenPosition(node, mgl64.Vec2{50, 50}, 0.5, ease.Linear)

	if g.Done {
		t.Fatal("should not be Done at start")
	}

	g.Update(0.25)
	if g.Done {
		t.Fatal("should not be Done partway through")
	}

	g.Update(0.25)
	if !g.Done {
		t.Fatal("should be Done after full duration")
	}

	// Update after done is a no-op.
	g.Update(0.1)
	if !g.Done {
		t.Fatal("should remain Done")
	}
}

func TestTweenGroupPropagatesToChildren(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	child.SetPosition(5, 0)
	parent.AddChild(child)

	g := TweenPosition(parent, mgl64.Vec2{100, 0}, 1.0, ease.Linear)
	g.Update(0.5)
	g.Update(0.5)

	if p := child.GlobalPosition2D(); math.Abs(p[0]-105) > 0.5 {
		t.Errorf("child global X = %f, want ~105", p[0])
	}
}

func TestTweenGroupDisposedNode(t *testing.T) {
	node := NewNode("disposed")
	node.SetPosition(10, 20)

	g := TweenPosition(node, mgl64.Vec2{100, 200}, 1.0, ease.Linear)
	node.Dispose()
	g.Update(0.1)

	if !g.Done {
		t.Fatal("expected Done after disposed node detected")
	}
	if p := node.LocalPosition2D(); p != (mgl64.Vec2{10, 20}) {
		t.Errorf("position changed to %v on disposed node", p)
	}
}

func TestTweenGroupDisposedMidAnimation(t *testing.T) {
	node := NewNode("mid-dispose")

	g := TweenPosition(node, mgl64.Vec2{100, 100}, 1.0, ease.Linear)
	g.Update(0.1)
	g.Update(0.1)
	if g.Done {
		t.Fatal("should not be Done yet")
	}

	node.Dispose()
	saved := node.LocalPosition2D()

	g.Update(0.1)
	if !g.Done {
		t.Fatal("expected Done after node disposed mid-animation")
	}
	if node.LocalPosition2D() != saved {
		t.Error("position should not change after disposal")
	}
}

func TestTweenEasingFunctionsProduceDifferentCurves(t *testing.T) {
	nodeL := NewNode("linear")
	nodeC := NewNode("cubic")

	gL := TweenPosition(nodeL, mgl64.Vec2{100, 0}, 1.0, ease.Linear)
	gC := TweenPosition(nodeC, mgl64.Vec2{100, 0}, 1.0, ease.OutCubic)

	gL.Update(0.5)
	gC.Update(0.5)

	// OutCubic is ahead of linear at the midpoint.
	xl, xc := nodeL.LocalPosition2D()[0], nodeC.LocalPosition2D()[0]
	if math.Abs(xl-xc) < 1.0 {
		t.Errorf("easing curves should differ at midpoint: linear=%f cubic=%f", xl, xc)
	}
}
