package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// minBandRows is the smallest number of rows handed to a single work item.
// Thinner bands cost more in scheduling than they save.
const minBandRows = 8

// WorkerPool is a pool of goroutines used to shade a render target in
// horizontal bands.
//
// Each worker owns a queue and steals from the others when its own queue
// runs dry, so bands with uneven cost still balance.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers    int
	workQueues []chan func()
	done       chan struct{}
	wg         sync.WaitGroup
	running    atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}

	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
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

	myQueue := p.workQueues[id]

	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return

		case work := <-myQueue:
			if work != nil {
				work()
			}

		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}

			select {
			case <-p.done:
				p.drainQueue(myQueue)
				return
			case work := <-myQueue:
				if work != nil {
					work()
				}
			}
		}
	}
}

func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal takes one item from another worker's queue, or returns nil.
func (p *WorkerPool) steal(myID int) func() {
	for i := range p.workers {
		if i == myID {
			continue
		}

		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll distributes work across workers and waits for all of it.
// On a closed pool the work runs on the calling goroutine instead.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}

	if !p.running.Load() {
		for _, fn := range work {
			fn()
		}
		return
	}

	var completionWG sync.WaitGroup
	completionWG.Add(len(work))

	for i, fn := range work {
		workFn := fn
		wrapped := func() {
			defer completionWG.Done()
			workFn()
		}

		select {
		case p.workQueues[i%p.workers] <- wrapped:
		case <-p.done:
			// Closed while submitting: run it here so the caller
			// still gets a complete result.
			wrapped()
		}
	}

	completionWG.Wait()
}

// ForEachBand splits rows [0, height) into contiguous bands and calls fn
// for each band in parallel, returning once every band is done.
// Bands never overlap, so fn may write its rows without locking.
func (p *WorkerPool) ForEachBand(height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}

	bands := min(p.workers*2, (height+minBandRows-1)/minBandRows)
	if bands <= 1 {
		fn(0, height)
		return
	}

	rowsPerBand := (height + bands - 1) / bands
	work := make([]func(), 0, bands)

	for y0 := 0; y0 < height; y0 += rowsPerBand {
		start, end := y0, min(y0+rowsPerBand, height)
		work = append(work, func() { fn(start, end) })
	}

	p.ExecuteAll(work)
}

// Close stops accepting work, finishes what is queued and stops the workers.
// Close is safe to call multiple times.
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

// IsRunning reports whether the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
