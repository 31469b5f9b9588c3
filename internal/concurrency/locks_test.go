package concurrency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocks_TryAcquire(t *testing.T) {
	l := NewLocks()
	key := "octo/repo#123"

	if !l.TryAcquire(key) {
		t.Error("first TryAcquire should succeed")
	}
	if l.TryAcquire(key) {
		t.Error("second TryAcquire should fail while lock is held")
	}
	if !l.TryAcquire("octo/repo#124") {
		t.Error("other keys are independent")
	}

	l.Release(key)
	if !l.TryAcquire(key) {
		t.Error("TryAcquire should succeed after Release")
	}
	l.Release(key)
}

func TestLocks_Release_Idempotent(t *testing.T) {
	l := NewLocks()
	key := "octo/repo#456"

	l.Release(key)
	l.Release(key)

	l.TryAcquire(key)
	l.Release(key)
	l.Release(key)

	if !l.TryAcquire(key) {
		t.Error("TryAcquire should succeed after multiple releases")
	}
	l.Release(key)
}

func TestLocks_AcquireWaitsForRelease(t *testing.T) {
	l := NewLocks()
	key := "octo/repo#1"
	if err := l.Acquire(context.Background(), key); err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		if err := l.Acquire(context.Background(), key); err == nil {
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire must wait")
	case <-time.After(20 * time.Millisecond):
	}

	l.Release(key)
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Acquire did not proceed after Release")
	}
	l.Release(key)
}

func TestLocks_AcquireHonorsContext(t *testing.T) {
	l := NewLocks()
	key := "octo/repo#2"
	l.TryAcquire(key)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Acquire(ctx, key); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Acquire() = %v, want DeadlineExceeded", err)
	}
}

func TestLocks_Serializes(t *testing.T) {
	l := NewLocks()
	key := "octo/repo#3"

	var inside, maxInside int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background(), key); err != nil {
				t.Error(err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			l.Release(key)
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxInside)
	}
}
