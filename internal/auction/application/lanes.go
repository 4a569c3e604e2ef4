package application

import (
	"sync"

	"github.com/google/uuid"
)

// lanes hands out one mutex per auction so every writer of the same auction runs
// read-decide-commit-publish as a unit, while different auctions never contend.
// Entries are reference counted and dropped when nobody holds or waits on them.
type lanes struct {
	mu sync.Mutex
	m  map[uuid.UUID]*lane
}

type lane struct {
	mu   sync.Mutex
	refs int
}

func newLanes() *lanes {
	return &lanes{m: make(map[uuid.UUID]*lane)}
}

// lock blocks until the lane of id is free and returns its unlock func
func (l *lanes) lock(id uuid.UUID) func() {
	l.mu.Lock()
	ln, ok := l.m[id]
	if !ok {
		ln = &lane{}
		l.m[id] = ln
	}
	ln.refs++
	l.mu.Unlock()

	ln.mu.Lock()
	return func() {
		ln.mu.Unlock()
		l.mu.Lock()
		ln.refs--
		if ln.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}

func (l *lanes) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
