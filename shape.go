package sapling

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// ShapeType classifies how a body takes part in collision resolution.
type ShapeType uint8

const (
	ShapeStatic    ShapeType = iota // never moved by resolution, always solid
	ShapeKinematic                  // moved only by external code, solid
	ShapeDynamic                    // moved by resolution, not solid to other dynamics
)

// String returns the lower-case name used in configuration files.
func (t ShapeType) String() string {
	switch t {
	case ShapeStatic:
		return "static"
	case ShapeKinematic:
		return "kinematic"
	case ShapeDynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("ShapeType(%d)", uint8(t))
	}
}

// Solid reports whether bodies of this type push dynamic bodies out.
func (t ShapeType) Solid() bool {
	return t == ShapeStatic || t == ShapeKinematic
}

// ParseShapeType converts a configuration name into a ShapeType.
func ParseShapeType(s string) (ShapeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static":
		return ShapeStatic, nil
	case "kinematic":
		return ShapeKinematic, nil
	case "dynamic":
		return ShapeDynamic, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShapeType, s)
}

// Shape describes a body's geometry and classification. Rect is expressed
// relative to the owning node's global position. Shapes are values; attaching
// one copies it.
type Shape struct {
	Type ShapeType
	Rect Rect
}

// NewShape returns a shape of the given type covering rect.
func NewShape(t ShapeType, rect Rect) Shape {
	return Shape{Type: t, Rect: rect}
}

// --- Node integration ---

// SetCollisionShape attaches shape to the node, replacing any existing body.
// If the node is not part of a scene tree the shape is remembered and
// ErrNoScene is returned; the body is created once the node is attached.
func (n *Node) SetCollisionShape(shape Shape) error {
	n.releaseBody()
	s := shape
	n.shape = &s
	if n.scene == nil {
		return ErrNoScene
	}
	return n.scene.createBody(n)
}

// ClearCollisionShape destroys the node's body and forgets its shape.
func (n *Node) ClearCollisionShape() {
	n.releaseBody()
	n.shape = nil
}

// CollisionShape returns the attached shape and whether one is set.
func (n *Node) CollisionShape() (Shape, bool) {
	if n.shape == nil {
		return Shape{}, false
	}
	return *n.shape, true
}

// HasBody reports whether the node currently owns a live collision body.
func (n *Node) HasBody() bool {
	return !n.body.IsZero()
}

// Body returns the node's body handle. The zero handle means no body.
func (n *Node) Body() BodyHandle {
	return n.body
}

// TestCollision reports whether the global point p lies inside the node's
// collision shape. Nodes without a body never collide.
func (n *Node) TestCollision(p mgl64.Vec2) bool {
	b := n.backend()
	if b == nil || n.body.IsZero() {
		return false
	}
	hit, err := b.TestCollision(n.body, p)
	return err == nil && hit
}

// backend returns the collision backend of the node's scene, or nil.
func (n *Node) backend() Backend {
	if n.scene == nil {
		return nil
	}
	return n.scene.backend
}

// releaseBody destroys the node's body, if any.
func (n *Node) releaseBody() {
	if n.body.IsZero() {
		return
	}
	if b := n.backend(); b != nil {
		if err := b.DestroyBody(n.body); err != nil {
			n.scene.logger.Warn("destroy body failed", zap.String("node", n.Name), zap.Error(err))
		}
	}
	n.body = BodyHandle{}
}

// syncBodyTransform pushes the node's global placement to its body.
func (n *Node) syncBodyTransform() {
	if n.body.IsZero() {
		return
	}
	b := n.backend()
	if b == nil {
		return
	}
	_ = b.UpdatePosition(n.body, n.GlobalPosition3D())
	_ = b.UpdateRotation(n.body, mgl64.QuatRotate(n.GlobalRotation2D(), zAxis))
}
