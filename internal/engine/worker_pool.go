package engine

import (
	"context"
	"errors"
	"sync"
)

// ErrShutdown is returned for work submitted after Shutdown.
var ErrShutdown = errors.New("engine: shut down")

// workerPool is a fixed-size goroutine pool with a bounded input queue.
// Results travel through channels carried by the payload itself.
type workerPool[T any] struct {
	queue   chan T
	process func(ctx context.Context, t T)
	wg      sync.WaitGroup

	// mu guards closing queue against senders; done wakes blocked senders
	// so that Drain can take the write lock.
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
	once   sync.Once
}

// newWorkerPool creates and starts a pool with n goroutines and queue capacity cap.
func newWorkerPool[T any](ctx context.Context, n, cap int, fn func(context.Context, T)) *workerPool[T] {
	p := &workerPool[T]{
		queue:   make(chan T, cap),
		process: fn,
		done:    make(chan struct{}),
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx)
		}()
	}
	return p
}

func (p *workerPool[T]) run(ctx context.Context) {
	for {
		select {
		case t, ok := <-p.queue:
			if !ok {
				return
			}
			p.process(ctx, t)
		case <-ctx.Done():
			return
		}
	}
}

// SubmitWait enqueues a job, blocking while the queue is full until ctx is
// done. It returns ErrShutdown once Drain has started.
func (p *workerPool[T]) SubmitWait(ctx context.Context, t T) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrShutdown
	}
	select {
	case p.queue <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrShutdown
	}
}

// Drain stops accepting jobs, lets the workers finish the queued ones and
// waits for them. Calling it again is a no-op.
func (p *workerPool[T]) Drain() {
	p.once.Do(func() {
		close(p.done)
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

// QueueLen returns how many jobs are currently queued.
func (p *workerPool[T]) QueueLen() int {
	return len(p.queue)
}

// QueueCap returns the total queue capacity.
func (p *workerPool[T]) QueueCap() int {
	return cap(p.queue)
}
