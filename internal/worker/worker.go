// Package worker provides a small fixed-size pool for CPU-bound work. The
// vault submits key derivation and note encryption here so those PBKDF2
// passes never run on the caller's goroutine and their parallelism is
// bounded by the worker count.
package worker

import "runtime"

type result struct {
	value any
	err   error
}

type task struct {
	run  func() (any, error)
	done chan result
}

// Pool runs submitted tasks on a fixed set of workers. Tasks are never
// cancelled; once submitted they run to completion.
type Pool struct {
	tasks chan task
}

// Future resolves to the result of one submitted task.
type Future struct {
	done chan result
	res  *result
}

// Wait blocks until the task has completed and returns its result. It may be
// called more than once; later calls return the same result.
func (f *Future) Wait() (any, error) {
	if f.res == nil {
		r := <-f.done
		f.res = &r
	}
	return f.res.value, f.res.err
}

// NewPool starts workers goroutines; workers < 1 means one per CPU.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	p := &Pool{tasks: make(chan task, workers*4)}
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for t := range p.tasks {
		value, err := t.run()
		t.done <- result{value: value, err: err}
	}
}

// Submit queues job and returns a Future for its result. Submit blocks only
// when the task buffer is full.
func (p *Pool) Submit(job func() (any, error)) *Future {
	t := task{run: job, done: make(chan result, 1)}
	p.tasks <- t
	return &Future{done: t.done}
}

// Close stops accepting work and lets idle workers exit. In-flight tasks
// still run to completion.
func (p *Pool) Close() {
	close(p.tasks)
}
