// Package parallel runs the workgroups of a CPU-emulated compute dispatch on
// a fixed set of goroutines.
//
// Workgroups of a sample copy write disjoint destination pixels, so the pool
// only has to hand out indices and wait for them; it never coordinates data.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned by Run after Close.
var ErrPoolClosed = errors.New("parallel: worker pool is closed")

// WorkerPool is a pool of goroutines executing indexed jobs.
//
// Each worker has its own queue and steals from the others when it runs dry,
// which keeps short and long workgroup rows balanced.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int

	// queues holds per-worker job queues.
	queues []chan func()

	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case job := <-own:
			job()
		default:
			if job := p.steal(id); job != nil {
				job()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case job := <-own:
				job()
			}
		}
	}
}

func (p *WorkerPool) drain(q chan func()) {
	for {
		select {
		case job := <-q:
			job()
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case job := <-p.queues[i]:
			return job
		default:
		}
	}
	return nil
}

// Run calls fn(i) for every i in [0, n) across the workers and waits for all
// of them. Once ctx is cancelled, jobs that have not started are skipped and
// Run returns ctx.Err().
func (p *WorkerPool) Run(ctx context.Context, n int, fn func(i int)) error {
	if n <= 0 {
		return ctx.Err()
	}
	if !p.running.Load() {
		return ErrPoolClosed
	}

	var pending sync.WaitGroup
	pending.Add(n)

	for i := range n {
		job := func() {
			defer pending.Done()
			if ctx.Err() != nil {
				return
			}
			fn(i)
		}

		select {
		case p.queues[i%p.workers] <- job:
		case <-p.done:
			// Closed mid-run: account for everything not queued.
			for range n - i {
				pending.Done()
			}
			pending.Wait()
			return ErrPoolClosed
		}
	}

	pending.Wait()
	return ctx.Err()
}

// Close stops the workers after the queued jobs finish.
// Close is safe to call multiple times but must not race with Run.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
