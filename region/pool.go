// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package region

import "errors"

// ErrNoMemory is returned when the pool cannot hand out another node.
var ErrNoMemory = errors.New("region: rectangle pool exhausted")

// Pool is an arena of rectangle nodes shared by every Region of one
// compositor. Nodes are addressed by index; releasing a node pushes its
// index on a free stack for reuse.
//
// Pool is not safe for concurrent use. All regions built on one pool must be
// used from the goroutine that owns it.
type Pool struct {
	nodes    []Rect
	free     []int32
	maxNodes int
	policy   MergePolicy
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithMaxNodes caps the arena at n nodes. Allocation beyond the cap fails
// with ErrNoMemory. Zero means unlimited.
func WithMaxNodes(n int) PoolOption {
	return func(p *Pool) {
		p.maxNodes = n
	}
}

// WithMergePolicy sets the thresholds used by Region.MergeRect.
func WithMergePolicy(mp MergePolicy) PoolOption {
	return func(p *Pool) {
		p.policy = mp
	}
}

// NewPool creates an empty pool.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{policy: DefaultMergePolicy()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// alloc stores r in a node and returns its index.
func (p *Pool) alloc(r Rect) (int32, error) {
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		p.nodes[idx] = r
		return idx, nil
	}
	if p.maxNodes > 0 && len(p.nodes) >= p.maxNodes {
		return -1, ErrNoMemory
	}
	p.nodes = append(p.nodes, r)
	return int32(len(p.nodes) - 1), nil
}

func (p *Pool) release(idx int32) {
	p.free = append(p.free, idx)
}

// Cap returns the number of nodes ever allocated by the arena.
func (p *Pool) Cap() int {
	return len(p.nodes)
}

// Idle returns the number of nodes waiting on the free stack.
func (p *Pool) Idle() int {
	return len(p.free)
}

// InUse returns the number of nodes currently owned by regions.
func (p *Pool) InUse() int {
	return len(p.nodes) - len(p.free)
}

// Policy returns the merge policy of the pool.
func (p *Pool) Policy() MergePolicy {
	return p.policy
}

// MergePolicy holds the thresholds of the opportunistic whole-region merge.
// The values are a performance tuning: they bound the number of fragments
// a dirty region can accumulate.
type MergePolicy struct {
	// MinRects is the rectangle count above which a collapse is considered.
	MinRects int

	// MaxWastePixels allows a collapse when the bounding box covers at most
	// this many pixels outside the region.
	MaxWastePixels int

	// MaxWastePercent allows a collapse when the wasted share of the
	// bounding box is at most this percentage.
	MaxWastePercent int
}

// DefaultMergePolicy returns the thresholds used when none are configured.
func DefaultMergePolicy() MergePolicy {
	return MergePolicy{
		MinRects:        16,
		MaxWastePixels:  4096,
		MaxWastePercent: 25,
	}
}
