package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// RenderPool bounds how many documents are rendered at once. A slot is held
// for the duration of one render and released on every exit path.
type RenderPool struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

// NewRenderPool allows size concurrent renders, each limited to timeout.
func NewRenderPool(size int64, timeout time.Duration) *RenderPool {
	if size < 1 {
		size = 1
	}
	return &RenderPool{sem: semaphore.NewWeighted(size), timeout: timeout}
}

// Do runs fn while holding a slot. A panic inside fn is returned as an error.
func (p *RenderPool) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire render slot: %w", err)
	}
	defer p.sem.Release(1)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()
	return fn(ctx)
}
