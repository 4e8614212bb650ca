package sapling

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// zAxis is the rotation axis used for 2D headings.
var zAxis = mgl64.Vec3{0, 0, 1}

// updateLocalTransform rebuilds the local matrix from translation and
// rotation, then propagates the global transform through the subtree.
//
//	local = Translate(translation) * Rotate(rotation)
func (n *Node) updateLocalTransform() {
	t := n.translation
	n.localTransform = mgl64.Translate3D(t[0], t[1], t[2]).Mul4(n.rotation.Mat4())
	n.updateGlobalTransform()
}

// updateGlobalTransform recomputes global = parent.global * local for n and,
// depth first, for every descendant. Nodes with a collision body push their
// new placement to the backend as they are visited.
func (n *Node) updateGlobalTransform() {
	if n.Parent != nil {
		n.globalTransform = n.Parent.globalTransform.Mul4(n.localTransform)
	} else {
		n.globalTransform = n.localTransform
	}
	n.syncBodyTransform()
	for _, child := range n.children {
		child.updateGlobalTransform()
	}
}

// --- Transform property setters ---

// SetPosition sets the node's local X and Y, keeping Z.
func (n *Node) SetPosition(x, y float64) {
	n.translation[0] = x
	n.translation[1] = y
	n.updateLocalTransform()
}

// SetPosition3D replaces the node's local translation.
func (n *Node) SetPosition3D(v mgl64.Vec3) {
	n.translation = v
	n.updateLocalTransform()
}

// SetRotation sets the node's local rotation to r radians around the Z axis.
func (n *Node) SetRotation(r float64) {
	n.rotation = mgl64.QuatRotate(r, zAxis)
	n.updateLocalTransform()
}

// SetRotationQuat replaces the node's local rotation.
func (n *Node) SetRotationQuat(q mgl64.Quat) {
	n.rotation = q.Normalize()
	n.updateLocalTransform()
}

// modifyPositionByPhysics moves the node so its global 2D position becomes
// p. Only the collision resolver calls this; the write goes to the local
// translation, expressed in the parent's space.
func (n *Node) modifyPositionByPhysics(p mgl64.Vec2) {
	z := n.globalTransform.At(2, 3)
	target := mgl64.Vec4{p[0], p[1], z, 1}
	if n.Parent != nil {
		target = n.Parent.globalTransform.Inv().Mul4x1(target)
	}
	n.translation = target.Vec3()
	n.updateLocalTransform()
}

// --- Getters ---

// LocalPosition2D returns the X/Y part of the local translation.
func (n *Node) LocalPosition2D() mgl64.Vec2 {
	return mgl64.Vec2{n.translation[0], n.translation[1]}
}

// LocalPosition3D returns the local translation.
func (n *Node) LocalPosition3D() mgl64.Vec3 {
	return n.translation
}

// LocalRotation2D returns the heading of the local rotation in radians.
func (n *Node) LocalRotation2D() float64 {
	v := n.rotation.Rotate(mgl64.Vec3{1, 0, 0})
	return math.Atan2(v[1], v[0])
}

// LocalRotation returns the local rotation quaternion.
func (n *Node) LocalRotation() mgl64.Quat {
	return n.rotation
}

// GlobalPosition2D returns the projection of the global translation onto the
// 2D plane.
func (n *Node) GlobalPosition2D() mgl64.Vec2 {
	return mgl64.Vec2{n.globalTransform.At(0, 3), n.globalTransform.At(1, 3)}
}

// GlobalPosition3D returns the global translation.
func (n *Node) GlobalPosition3D() mgl64.Vec3 {
	return mgl64.Vec3{n.globalTransform.At(0, 3), n.globalTransform.At(1, 3), n.globalTransform.At(2, 3)}
}

// GlobalRotation2D returns the heading, in radians, of the unit +X axis after
// the global transform is applied.
func (n *Node) GlobalRotation2D() float64 {
	v := n.globalTransform.Mul4x1(mgl64.Vec4{1, 0, 0, 0})
	return math.Atan2(v[1], v[0])
}

// LocalTransform returns the local matrix.
func (n *Node) LocalTransform() mgl64.Mat4 {
	return n.localTransform
}

// GlobalTransform returns the global matrix.
func (n *Node) GlobalTransform() mgl64.Mat4 {
	return n.globalTransform
}

// --- Coordinate conversion ---

// GlobalToLocal2D converts a global 2D point to this node's local space.
func (n *Node) GlobalToLocal2D(p mgl64.Vec2) mgl64.Vec2 {
	v := n.globalTransform.Inv().Mul4x1(mgl64.Vec4{p[0], p[1], 0, 1})
	return mgl64.Vec2{v[0], v[1]}
}

// LocalToGlobal2D converts a local 2D point to global space.
func (n *Node) LocalToGlobal2D(p mgl64.Vec2) mgl64.Vec2 {
	v := n.globalTransform.Mul4x1(mgl64.Vec4{p[0], p[1], 0, 1})
	return mgl64.Vec2{v[0], v[1]}
}

// --- Velocity ---

// SetLinearVelocity sets the node's linear velocity on the 2D plane.
func (n *Node) SetLinearVelocity(v mgl64.Vec2) {
	n.SetLinearVelocity3D(mgl64.Vec3{v[0], v[1], 0})
}

// SetLinearVelocity3D sets the node's linear velocity and mirrors it to the
// collision body, if any.
func (n *Node) SetLinearVelocity3D(v mgl64.Vec3) {
	n.linearVelocity = v
	if b := n.backend(); b != nil && !n.body.IsZero() {
		_ = b.SetLinearVelocity(n.body, v)
	}
}

// SetAngularVelocity sets the angular velocity around Z in radians per second.
func (n *Node) SetAngularVelocity(w float64) {
	n.SetAngularVelocity3D(mgl64.Vec3{0, 0, w})
}

// SetAngularVelocity3D sets the angular velocity vector and mirrors it to the
// collision body, if any.
func (n *Node) SetAngularVelocity3D(w mgl64.Vec3) {
	n.angularVelocity = w
	if b := n.backend(); b != nil && !n.body.IsZero() {
		_ = b.SetAngularVelocity(n.body, w)
	}
}

// LinearVelocity2D returns the X/Y part of the linear velocity. Nodes with a
// body report the backend's value.
func (n *Node) LinearVelocity2D() mgl64.Vec2 {
	v := n.linearVelocity
	if b := n.backend(); b != nil && !n.body.IsZero() {
		if bv, err := b.LinearVelocity(n.body); err == nil {
			v = bv
		}
	}
	return mgl64.Vec2{v[0], v[1]}
}

// AngularVelocity2D returns the angular velocity around Z.
func (n *Node) AngularVelocity2D() float64 {
	w := n.angularVelocity
	if b := n.backend(); b != nil && !n.body.IsZero() {
		if bw, err := b.AngularVelocity(n.body); err == nil {
			w = bw
		}
	}
	return w[2]
}
