// Package locker serializes work on a key, in process or across processes.
package locker

import (
	"context"
	"sync"
)

type memoryEntry struct {
	held chan struct{}
	refs int
}

// MemoryLocker is a keyed mutex for a single process. Waiters honour their
// context and idle keys are forgotten.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*memoryEntry
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*memoryEntry)}
}

// Lock blocks until key is held or ctx is done
func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &memoryEntry{held: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.held <- struct{}{}:
	case <-ctx.Done():
		l.release(key, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.held
			l.release(key, entry)
		})
	}, nil
}

func (l *MemoryLocker) release(key string, entry *memoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
}

// size reports how many keys are tracked
func (l *MemoryLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
