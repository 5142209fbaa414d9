package locking

import (
	"context"
	"sync"

	portssvc "github.com/SscSPs/inventory_management_app/internal/core/ports/services"
)

// MemoryLocker is a keyed mutex for a single transaction service instance.
// Entries are dropped once nobody holds or waits on them.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*memoryEntry
}

type memoryEntry struct {
	held chan struct{}
	refs int
}

var _ portssvc.ProductLocker = (*MemoryLocker)(nil)

// NewMemoryLocker creates an empty keyed lock.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*memoryEntry)}
}

// Lock waits for productID or returns ctx.Err().
func (l *MemoryLocker) Lock(ctx context.Context, productID string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[productID]
	if !ok {
		e = &memoryEntry{held: make(chan struct{}, 1)}
		l.locks[productID] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.held <- struct{}{}:
	case <-ctx.Done():
		l.release(productID, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.held
			l.release(productID, e)
		})
	}, nil
}

func (l *MemoryLocker) release(productID string, e *memoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, productID)
	}
}

// size is the number of live entries.
func (l *MemoryLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
