package domain

import "sync"

// CallGuard rejects a call that arrives while another is already in flight
// on the same component. Entry points run one at a time; a second call
// during an external collaborator callout fails instead of blocking, which
// is the behavior the reentrancy hazard requires.
type CallGuard struct {
	mu sync.Mutex
}

func (g *CallGuard) Enter() error {
	if !g.mu.TryLock() {
		return ErrReentrantCall
	}
	return nil
}

func (g *CallGuard) Exit() {
	g.mu.Unlock()
}
