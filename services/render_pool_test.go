package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRenderPool_ReleasesAfterPanic(t *testing.T) {
	pool := NewRenderPool(1, 0)

	err := pool.Do(context.Background(), func(context.Context) error {
		panic("boom")
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v, want panic error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := pool.Do(ctx, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("slot was not released: %v", err)
	}
}

func TestRenderPool_ReleasesAfterError(t *testing.T) {
	pool := NewRenderPool(1, 0)
	want := errors.New("render failed")
	if err := pool.Do(context.Background(), func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := pool.Do(ctx, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("slot was not released: %v", err)
	}
}

func TestRenderPool_BoundsConcurrency(t *testing.T) {
	pool := NewRenderPool(2, 0)
	var running, peak atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Do(context.Background(), func(context.Context) error {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
	}
}

func TestRenderPool_TimeoutWhileWaiting(t *testing.T) {
	pool := NewRenderPool(1, 20*time.Millisecond)
	started := make(chan struct{})
	release := make(chan struct{})
	go pool.Do(context.Background(), func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	defer close(release)
	<-started

	err := pool.Do(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
