// Package worker runs requirement matching concurrently and paces outbound
// calls to remote endpoints.
package worker

import (
	"context"
	"sort"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool manages a pool of workers that execute jobs concurrently
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a pool whose jobs observe ctx. Cancelling ctx stops the
// workers after their current job.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2),
		results:    make(chan Result, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job; it returns without queuing once the pool is cancelled
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- job:
	}
}

// Wait closes the queue, waits for all jobs and returns their results in
// completion order.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)

	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var results []Result
	for result := range p.results {
		results = append(results, result)
	}

	return results
}

// Shutdown shuts down the worker pool immediately
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

// indexed carries a job's position so results can be put back in input order
type indexed[T any] struct {
	index int
	value T
}

func (r indexed[T]) GetError() error { return nil }

type indexedJob[T any] struct {
	index int
	fn    func(ctx context.Context, i int) T
}

func (j indexedJob[T]) Execute(ctx context.Context) Result {
	return indexed[T]{index: j.index, value: j.fn(ctx, j.index)}
}

// Ordered runs fn for every index in [0,n) across workers and returns the
// outputs in index order. With one worker it runs inline.
func Ordered[T any](ctx context.Context, workers, n int, fn func(ctx context.Context, i int) T) []T {
	out := make([]T, n)
	if n == 0 {
		return out
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			out[i] = fn(ctx, i)
		}
		return out
	}

	pool := NewPool(ctx, workers)
	pool.Start()

	// submit from a separate goroutine: the queue is bounded and Wait drains results
	go func() {
		for i := 0; i < n; i++ {
			pool.Submit(indexedJob[T]{index: i, fn: fn})
		}
	}()

	collected := make([]indexed[T], 0, n)
	for len(collected) < n {
		select {
		case res := <-pool.results:
			collected = append(collected, res.(indexed[T]))
		case <-pool.ctx.Done():
			pool.Shutdown()
			return fillOrdered(out, collected)
		}
	}
	pool.Shutdown()

	return fillOrdered(out, collected)
}

func fillOrdered[T any](out []T, collected []indexed[T]) []T {
	sort.Slice(collected, func(a, b int) bool { return collected[a].index < collected[b].index })
	for _, r := range collected {
		out[r.index] = r.value
	}
	return out
}
