// Package parallel spreads per-rectangle pixel work over a fixed set of
// goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/fbcomp/region"
)

// MinPixels is the smallest total area worth distributing. Smaller batches
// run on the calling goroutine.
const MinPixels = 64 * 1024

// Pool runs rectangle jobs on worker goroutines.
//
// Every worker owns a queue and steals from the others when its own queue
// is empty, so a few large rectangles do not leave workers idle while one
// queue is still full.
//
// Thread safety: Pool is safe for concurrent use. Jobs given to one Each
// call must not touch overlapping memory.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool starts a pool. If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	size := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), size)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
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
				drain(own)
				return
			case job := <-own:
				job()
			}
		}
	}
}

func drain(q chan func()) {
	for {
		select {
		case job := <-q:
			job()
		default:
			return
		}
	}
}

func (p *Pool) steal(id int) func() {
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

// Each calls fn once for every rectangle, with its index, and returns when
// all calls are done. Batches smaller than MinPixels, a nil pool or a
// closed pool run fn inline.
func (p *Pool) Each(rects []region.Rect, fn func(i int, r region.Rect)) {
	area := 0
	for _, r := range rects {
		area += r.Area()
	}
	if p == nil || len(rects) < 2 || area < MinPixels || !p.running.Load() {
		for i, r := range rects {
			fn(i, r)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(rects))
	for i, r := range rects {
		job := func() {
			defer wg.Done()
			fn(i, r)
		}
		select {
		case p.queues[i%p.workers] <- job:
		case <-p.done:
			job()
		}
	}
	wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// Close stops the workers after the queued jobs ran. It is safe to call
// more than once and on a nil pool.
func (p *Pool) Close() {
	if p == nil || !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}
