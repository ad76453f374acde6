package pixel

import "sync"

// Pool recycles window back buffers.
//
// Buffers are grouped by dimensions and format so that a window closed and
// reopened at the same size, or resized back and forth, does not allocate.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*Buffer
	maxSize int
}

type poolKey struct {
	width  int
	height int
	format Format
}

// NewPool creates a pool keeping at most maxPerBucket buffers per size and
// format. Zero means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*Buffer),
		maxSize: maxPerBucket,
	}
}

// Get returns a zeroed buffer, reusing a pooled one when available.
func (p *Pool) Get(width, height int, format Format) (*Buffer, error) {
	key := poolKey{width: width, height: height, format: format}

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		buf := bucket[n-1]
		p.buckets[key] = bucket[:n-1]
		p.mu.Unlock()
		buf.Clear()
		return buf, nil
	}
	p.mu.Unlock()

	return New(width, height, format)
}

// Put hands buf back for reuse. Buffers with a padded stride are dropped.
func (p *Pool) Put(buf *Buffer) {
	if buf == nil || buf.Stride != buf.Format.RowBytes(buf.Width) {
		return
	}
	key := poolKey{width: buf.Width, height: buf.Height, format: buf.Format}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, buf)
}

// Len returns the number of pooled buffers.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}
