package fbcomp

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/fbcomp/internal/queue"
	"github.com/gogpu/fbcomp/surface"
)

// call is a queued request with an optional reply channel.
type call struct {
	req   Request
	reply chan result
}

type result struct {
	rep Reply
	err error
}

// Dispatcher serializes all access to a Display. Requests and input are
// queued from any goroutine and executed one at a time by Run.
type Dispatcher struct {
	d        *Display
	requests *queue.Queue[call]
	inputs   *queue.Queue[surface.Input]
}

// NewDispatcher returns a dispatcher owning d. After Run starts, d must
// only be used through the dispatcher, apart from its concurrent-safe
// queries.
func NewDispatcher(d *Display) *Dispatcher {
	return &Dispatcher{
		d:        d,
		requests: queue.New[call](),
		inputs:   queue.New[surface.Input](),
	}
}

// Display returns the display driven by the dispatcher.
func (p *Dispatcher) Display() *Display { return p.d }

// Do queues req and waits for its reply. If ctx ends first Do returns
// ctx.Err(); the request still runs.
func (p *Dispatcher) Do(ctx context.Context, req Request) (Reply, error) {
	c := call{req: req, reply: make(chan result, 1)}
	if !p.requests.Push(c) {
		return Reply{}, ErrDisplayClosed
	}
	select {
	case res := <-c.reply:
		return res.rep, res.err
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// Post queues req without waiting. Errors of the request are logged.
func (p *Dispatcher) Post(req Request) error {
	if !p.requests.Push(call{req: req}) {
		return ErrDisplayClosed
	}
	return nil
}

// PostInput queues an input report. It has the signature expected by
// surface.InputSource.
func (p *Dispatcher) PostInput(in surface.Input) {
	p.inputs.Push(in)
}

// Close stops accepting requests and input. Run executes what is already
// queued and returns.
func (p *Dispatcher) Close() {
	p.requests.Close()
	p.inputs.Close()
}

// Run executes queued requests and input until ctx is done or the
// dispatcher is closed and drained. It also sends interval events and
// performs idle flushes when configured.
func (p *Dispatcher) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if iv := p.d.opts.interval; iv > 0 {
		t := time.NewTicker(iv)
		defer t.Stop()
		tick = t.C
	}
	var idle *time.Timer
	var idleC <-chan time.Time
	if p.d.opts.idleFlush > 0 {
		idle = time.NewTimer(p.d.opts.idleFlush)
		defer idle.Stop()
		idleC = idle.C
	}

	for {
		busy := p.drain()
		if busy && idle != nil {
			idle.Reset(p.d.opts.idleFlush)
		}
		if p.requests.Len() == 0 && p.inputs.Len() == 0 && p.requests.Closed() {
			return nil
		}

		select {
		case <-ctx.Done():
			p.Close()
			for p.drain() {
			}
			return ctx.Err()
		case <-p.requests.Ready():
		case <-p.inputs.Ready():
		case now := <-tick:
			p.d.Tick(now)
		case <-idleC:
			p.d.Flush()
		}
	}
}

// drain executes one batch of requests and one batch of input, each being
// what was queued when the batch started. Work queued meanwhile waits for
// the next call, so a busy producer on one queue cannot hold back the
// other. It reports whether anything ran.
func (p *Dispatcher) drain() bool {
	calls := p.requests.Drain()
	for _, c := range calls {
		rep, err := p.d.Apply(c.req)
		if c.reply != nil {
			c.reply <- result{rep: rep, err: err}
		} else if err != nil {
			Logger().Debug("fbcomp: posted request failed", "request", fmt.Sprintf("%T", c.req), "err", err)
		}
	}
	inputs := p.inputs.Drain()
	for _, in := range inputs {
		p.d.HandleInput(in)
	}
	return len(calls) > 0 || len(inputs) > 0
}
