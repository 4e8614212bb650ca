package sapling

import (
	"fmt"
	"sync"
)

// registry is the process-wide scene table. The map exists only while at
// least one scene is alive: the first registration creates it and the last
// unregistration drops it.
var registry struct {
	mu     sync.Mutex
	byName map[string]*Scene
	order  []*Scene
}

func registerScene(s *Scene) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if registry.byName == nil {
		registry.byName = make(map[string]*Scene)
	}
	if _, ok := registry.byName[s.name]; ok {
		return fmt.Errorf("%w: %q", ErrSceneExists, s.name)
	}
	registry.byName[s.name] = s
	registry.order = append(registry.order, s)
	return nil
}

func unregisterScene(s *Scene) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if registry.byName[s.name] != s {
		return
	}
	delete(registry.byName, s.name)
	for i, o := range registry.order {
		if o == s {
			registry.order = append(registry.order[:i], registry.order[i+1:]...)
			break
		}
	}
	if len(registry.byName) == 0 {
		registry.byName = nil
		registry.order = nil
	}
}

// LookupScene returns the live scene registered under name, or nil.
func LookupScene(name string) *Scene {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return registry.byName[name]
}

// Scenes returns every live scene in creation order.
func Scenes() []*Scene {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	out := make([]*Scene, len(registry.order))
	copy(out, registry.order)
	return out
}
