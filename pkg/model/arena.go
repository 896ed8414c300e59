package model

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
)

// Handle identifies a node inside the arena of the load that created it.
// Handles are only meaningful together with the owning model.
type Handle uint32

// NoHandle is the zero handle; slot 0 is never allocated.
const NoHandle Handle = 0

// arena owns every node created for one tree generation. A load, InitEmpty or
// Reset starts a new arena, which invalidates the handles of the previous one.
type arena struct {
	mu    sync.RWMutex
	nodes []Node
}

func newArena() *arena {
	a := &arena{nodes: make([]Node, 1, 64)}
	return a
}

func (a *arena) add(n Node) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	slot, err := safecast.Conv[uint32](len(a.nodes))
	if err != nil {
		panic(fmt.Errorf("model: arena overflow: %w", err))
	}
	a.nodes = append(a.nodes, n)
	return Handle(slot)
}

func (a *arena) get(h Handle) Node {
	if h == NoHandle {
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if int(h) >= len(a.nodes) {
		return nil
	}
	return a.nodes[h]
}

func (a *arena) len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes) - 1
}
