package app

import (
	"context"
	"errors"
	"sync"

	"github.com/example/grievd/internal/core/grievance"
)

// KeyLock serializes work per key. Different keys never contend.
// Entries are reference counted and removed when unused.
type KeyLock struct {
	mu      sync.Mutex
	entries map[string]*keyEntry
}

type keyEntry struct {
	sem  chan struct{}
	refs int
}

// NewKeyLock creates an empty KeyLock.
func NewKeyLock() *KeyLock {
	return &KeyLock{entries: make(map[string]*keyEntry)}
}

// Acquire blocks until the lock for key is held or ctx is done.
// A context deadline yields grievance.ErrLockTimeout; plain cancellation
// yields the context's error. On success the caller must call release once.
func (l *KeyLock) Acquire(ctx context.Context, key string) (release func(), err error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &keyEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, e)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, grievance.ErrLockTimeout
		}
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.unref(key, e)
		})
	}, nil
}

func (l *KeyLock) unref(key string, e *keyEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Len returns the number of keys currently held or awaited.
func (l *KeyLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
