package service

import (
	"context"
	"sync"
	"time"
)

// PeriodicTask runs fn once immediately and then on every tick until Stop is
// called or the parent context ends.
type PeriodicTask struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartPeriodic launches the task. interval must be positive.
func StartPeriodic(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) *PeriodicTask {
	ctx, cancel := context.WithCancel(ctx)
	t := &PeriodicTask{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fn(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()

	return t
}

// Stop cancels the task and waits for the running iteration to return. Safe
// to call more than once.
func (t *PeriodicTask) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the task goroutine has exited.
func (t *PeriodicTask) Done() <-chan struct{} {
	return t.done
}
