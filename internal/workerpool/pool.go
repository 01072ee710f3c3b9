// Package workerpool provides a fixed-size goroutine pool with a bounded queue.
package workerpool

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when submitting to a drained pool.
var ErrClosed = errors.New("worker pool is closed")

// Result is the outcome of one job.
type Result[T, R any] struct {
	Input T
	Value R
	Err   error
}

// job is the unit of work dispatched to a worker.
type job[T, R any] struct {
	payload T
	result  chan<- Result[T, R]
}

// Pool runs process over submitted inputs on n goroutines.
// Workers stop when the pool's context is done; queued jobs are then dropped.
type Pool[T, R any] struct {
	queue   chan job[T, R]
	process func(ctx context.Context, t T) (R, error)
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New creates and starts a pool with n goroutines and queue capacity queueCap.
func New[T, R any](ctx context.Context, n, queueCap int, fn func(context.Context, T) (R, error)) *Pool[T, R] {
	if n < 1 {
		n = 1
	}
	if queueCap < 0 {
		queueCap = 0
	}
	p := &Pool[T, R]{
		queue:   make(chan job[T, R], queueCap),
		process: fn,
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

func (p *Pool[T, R]) run(ctx context.Context) {
	for {
		select {
		case j, ok := <-p.queue:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				return
			}
			v, err := p.process(ctx, j.payload)
			if j.result != nil {
				j.result <- Result[T, R]{Input: j.payload, Value: v, Err: err}
			}
		case <-ctx.Done():
			return
		}
	}
}

// Submit enqueues a fire-and-forget job without blocking (returns false if
// the queue is full or the pool is closed).
func (p *Pool[T, R]) Submit(t T) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.queue <- job[T, R]{payload: t}:
		return true
	default:
		return false
	}
}

// SubmitWait enqueues a job, blocking until there is room or ctx is done.
// The job's result is sent to results, which must have room for it.
func (p *Pool[T, R]) SubmitWait(ctx context.Context, t T, results chan<- Result[T, R]) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- job[T, R]{payload: t, result: results}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain closes the queue and waits for all workers to finish.
// It is safe to call more than once.
func (p *Pool[T, R]) Drain() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// QueueLen returns how many jobs are currently queued.
func (p *Pool[T, R]) QueueLen() int {
	return len(p.queue)
}

// QueueCap returns the total queue capacity.
func (p *Pool[T, R]) QueueCap() int {
	return cap(p.queue)
}
