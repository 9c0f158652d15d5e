package session

import "sync"

// Gate admits at most one pending login or registration per client key.
type Gate struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func NewGate() *Gate {
	return &Gate{pending: map[string]struct{}{}}
}

// Acquire marks key as busy. It returns false if key is already busy.
func (g *Gate) Acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.pending[key]; ok {
		return false
	}
	g.pending[key] = struct{}{}
	return true
}

func (g *Gate) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, key)
}
