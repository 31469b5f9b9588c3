package concurrency

import (
	"context"
	"sync"
)

// Locks serializes work per key. Keys are pull request references such as
// "octo/repo#123"; concurrent syncs of one pull request would otherwise both
// see "no generated comment" and create two.
type Locks struct {
	locks sync.Map // map[string]chan struct{}
}

// NewLocks creates an empty lock set
func NewLocks() *Locks {
	return &Locks{}
}

func (l *Locks) semaphore(key string) chan struct{} {
	actual, _ := l.locks.LoadOrStore(key, make(chan struct{}, 1))
	return actual.(chan struct{})
}

// Acquire blocks until the lock for key is held or ctx is done.
func (l *Locks) Acquire(ctx context.Context, key string) error {
	select {
	case l.semaphore(key) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes the lock for key without waiting.
func (l *Locks) TryAcquire(key string) bool {
	select {
	case l.semaphore(key) <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release releases the lock for key. Releasing an unheld lock is a no-op.
func (l *Locks) Release(key string) {
	if actual, ok := l.locks.Load(key); ok {
		select {
		case <-actual.(chan struct{}):
		default:
		}
	}
}
