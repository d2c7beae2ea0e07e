package tui

import (
	"context"
	"sync"
)

type edit struct {
	apply func() error
	done  chan error
}

// editQueue applies form edits on one goroutine in the order they were
// pushed. Commands run concurrently, so edits must not be issued from them.
type editQueue struct {
	mu      sync.Mutex
	pending []edit
	wake    chan struct{}
}

func newEditQueue(ctx context.Context) *editQueue {
	q := &editQueue{wake: make(chan struct{}, 1)}
	go q.run(ctx)
	return q
}

// push never blocks, so Update may call it. The returned channel receives
// the edit's error once it has been applied.
func (q *editQueue) push(apply func() error) <-chan error {
	done := make(chan error, 1)

	q.mu.Lock()
	q.pending = append(q.pending, edit{apply: apply, done: done})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return done
}

func (q *editQueue) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		}

		for {
			q.mu.Lock()
			if len(q.pending) == 0 {
				q.mu.Unlock()
				break
			}
			e := q.pending[0]
			q.pending = q.pending[1:]
			q.mu.Unlock()

			e.done <- e.apply()
		}
	}
}
