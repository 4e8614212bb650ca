package sapling

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// --- ID counter ---

// nodeIDCounter hands out node IDs. Tree mutation happens on one goroutine.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is the fundamental scene graph element. Every node carries a local
// transform (translation + rotation) relative to its parent and a derived
// global transform relative to the scene root. The global transform is kept
// current synchronously by every setter, so readers never observe a stale
// value.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	Parent   *Node
	children []*Node
	scene    *Scene

	// Transform (local). Mutated only through the setters in transform.go.
	translation mgl64.Vec3
	rotation    mgl64.Quat

	// Computed
	localTransform  mgl64.Mat4
	globalTransform mgl64.Mat4

	// Collision
	shape *Shape
	body  BodyHandle

	// Informational; the simple backend does not integrate these.
	linearVelocity  mgl64.Vec3
	angularVelocity mgl64.Vec3

	// Metadata
	UserData any
	EntityID uint32

	// Per-node hooks (nil by default; zero cost when unused).
	OnUpdate      func(delta float64)
	OnFixedUpdate func()
	OnCollision   func(info *CollisionInfo)
	OnPointer     func(ctx PointerContext) bool

	// Internal
	disposed bool
}

// NewNode creates a detached node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		ID:              nextNodeID(),
		Name:            name,
		rotation:        mgl64.QuatIdent(),
		localTransform:  mgl64.Ident4(),
		globalTransform: mgl64.Ident4(),
	}
}

// Scene returns the scene whose tree contains this node, or nil.
func (n *Node) Scene() *Scene {
	return n.scene
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	n.checkAttach(child, "AddChild")
	if child.Parent == n {
		// Re-adding moves the child to the end.
		n.removeChildByPtr(child)
		child.Parent = nil
	}
	n.attach(child, len(n.children))
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	n.checkAttach(child, "AddChildAt")
	if child.Parent == n {
		// Index refers to the list after removal.
		n.removeChildByPtr(child)
		child.Parent = nil
	}
	if index < 0 || index > len(n.children) {
		panic("sapling: child index out of range")
	}
	n.attach(child, index)
}

// SetParent moves this node under parent, appending it to the parent's
// children. The local transform is kept as is; the global transform of the
// moved subtree is recomputed, so callers that want to keep the world
// placement must adjust the local transform themselves. A nil parent detaches
// the node.
func (n *Node) SetParent(parent *Node) {
	if parent == nil {
		n.RemoveFromParent()
		return
	}
	parent.AddChild(n)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if n.scene != nil && n.scene.debug {
		debugCheckDisposed(n, "RemoveChild (parent)")
		debugCheckDisposed(child, "RemoveChild (child)")
	}
	if child.Parent != n {
		panic("sapling: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	n.detach(child)
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) *Node {
	if index < 0 || index >= len(n.children) {
		panic("sapling: child index out of range")
	}
	child := n.children[index]
	copy(n.children[index:], n.children[index+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	n.detach(child)
	return child
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches every child, last first.
func (n *Node) RemoveChildren() {
	for len(n.children) > 0 {
		n.RemoveChildAt(len(n.children) - 1)
	}
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// SetChildIndex moves child to a new index among its siblings.
func (n *Node) SetChildIndex(child *Node, index int) {
	if child.Parent != n {
		panic("sapling: child's parent is not this node")
	}
	nc := len(n.children)
	if index < 0 || index >= nc {
		panic("sapling: child index out of range")
	}
	oldIndex := -1
	for i, c := range n.children {
		if c == child {
			oldIndex = i
			break
		}
	}
	if oldIndex == index {
		return
	}
	// Shift elements to fill the gap and open the target slot.
	if oldIndex < index {
		copy(n.children[oldIndex:], n.children[oldIndex+1:index+1])
	} else {
		copy(n.children[index+1:], n.children[index:oldIndex])
	}
	n.children[index] = child
}

// --- Disposal ---

// Dispose removes this node from its parent, destroys the collision bodies of
// the whole subtree, marks every node disposed and drops all hooks.
// Calling Dispose on a disposed node is a no-op.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.releaseBody()
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.scene = nil
	n.shape = nil
	n.UserData = nil
	n.OnUpdate = nil
	n.OnFixedUpdate = nil
	n.OnCollision = nil
	n.OnPointer = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// alive reports whether n is usable as a callback target.
func (n *Node) alive() bool {
	return n != nil && !n.disposed
}

// --- Helpers ---

func (n *Node) checkAttach(child *Node, op string) {
	if child == nil {
		panic("sapling: cannot add nil child")
	}
	if n.scene != nil && n.scene.debug {
		debugCheckDisposed(n, op+" (parent)")
		debugCheckDisposed(child, op+" (child)")
	}
	if isAncestor(child, n) {
		panic("sapling: adding child would create a cycle")
	}
}

// attach links child under n at index, moves scene membership over and
// refreshes the subtree's global transforms.
func (n *Node) attach(child *Node, index int) {
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child

	sceneChanged := child.scene != n.scene
	if sceneChanged {
		// Bodies belong to the old scene's backend.
		child.setScene(nil)
	}
	child.updateGlobalTransform()
	if sceneChanged {
		child.setScene(n.scene)
	}
	if n.scene != nil && n.scene.debug {
		n.scene.debugCheckTreeDepth(child)
		n.scene.debugCheckChildCount(n)
	}
}

// detach finishes removing child: it leaves the scene and its global
// transform becomes its local transform.
func (n *Node) detach(child *Node) {
	child.Parent = nil
	child.setScene(nil)
	child.updateGlobalTransform()
}

// setScene moves the subtree rooted at n into s, destroying bodies owned by
// the previous scene and creating bodies for shaped nodes in the new one.
func (n *Node) setScene(s *Scene) {
	if n.scene != s {
		n.releaseBody()
		n.scene = s
	}
	if s != nil && n.shape != nil && n.body.IsZero() {
		if err := s.createBody(n); err != nil {
			s.logger.Warn("create body failed", zap.String("node", n.Name), zap.Error(err))
		}
	}
	for _, child := range n.children {
		child.setScene(s)
	}
}

// isAncestor reports whether candidate is an ancestor of node (or node itself).
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
