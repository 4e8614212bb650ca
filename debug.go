package sapling

import (
	"fmt"

	"go.uber.org/zap"
)

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called when the node's scene is in debug
// mode; release builds skip it entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("sapling debug: %s on disposed node %q", op, n.Name))
	}
}

// debugMaxTreeDepth is the depth past which attaching a node logs a warning.
const debugMaxTreeDepth = 32

func (s *Scene) debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		s.logger.Warn("tree depth exceeds threshold",
			zap.String("node", n.Name),
			zap.Int("depth", depth),
			zap.Int("threshold", debugMaxTreeDepth))
	}
}

// debugMaxChildCount is the child count past which attaching logs a warning.
const debugMaxChildCount = 1000

func (s *Scene) debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		s.logger.Warn("child count exceeds threshold",
			zap.String("node", n.Name),
			zap.Int("children", len(n.children)),
			zap.Int("threshold", debugMaxChildCount))
	}
}

// statsReporter is implemented by backends that expose per-step statistics.
type statsReporter interface {
	Stats() StepStats
}

// debugLogStep logs the backend's statistics for the step that just ran.
func (s *Scene) debugLogStep() {
	r, ok := s.backend.(statsReporter)
	if !ok {
		return
	}
	st := r.Stats()
	s.logger.Debug("collision step",
		zap.Int("bodies", st.Bodies),
		zap.Int("pairs", st.Pairs),
		zap.Int("contacts", st.Contacts),
		zap.Duration("took", st.Duration))
}
