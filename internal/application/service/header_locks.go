package service

import (
	"context"
	"sync"
)

// HeaderLocks hands out one exclusive lock per invoice header. Line writes
// and status transitions on the same header serialize on it; different
// headers never contend.
type HeaderLocks struct {
	mu    sync.Mutex
	locks map[int64]*headerLock
}

type headerLock struct {
	ch   chan struct{}
	refs int
}

// NewHeaderLocks creates an empty lock table
func NewHeaderLocks() *HeaderLocks {
	return &HeaderLocks{locks: make(map[int64]*headerLock)}
}

// Lock blocks until the header lock is held or ctx is done. The returned
// func releases the lock.
func (l *HeaderLocks) Lock(ctx context.Context, headerID int64) (func(), error) {
	l.mu.Lock()
	hl, ok := l.locks[headerID]
	if !ok {
		hl = &headerLock{ch: make(chan struct{}, 1)}
		l.locks[headerID] = hl
	}
	hl.refs++
	l.mu.Unlock()

	select {
	case hl.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-hl.ch
				l.release(headerID, hl)
			})
		}, nil
	case <-ctx.Done():
		l.release(headerID, hl)
		return nil, ctx.Err()
	}
}

func (l *HeaderLocks) release(headerID int64, hl *headerLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	hl.refs--
	if hl.refs == 0 {
		delete(l.locks, headerID)
	}
}

// Len returns the number of headers currently locked or awaited
func (l *HeaderLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
