package cache

// lruNode is a node in a doubly-linked LRU list. The node keeps its key so
// eviction can delete the map entry in O(1).
type lruNode struct {
	key   Key
	value *Pixmap
	prev  *lruNode
	next  *lruNode
}

// lruList orders nodes by recency. The head is the most recently used node.
// It is not thread-safe; the owning Cache serializes access.
type lruList struct {
	head *lruNode
	tail *lruNode
	len  int
}

func (l *lruList) pushFront(n *lruNode) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.len++
}

func (l *lruList) moveToFront(n *lruNode) {
	if n == l.head {
		return
	}
	l.unlink(n)
	l.pushFront(n)
}

// back returns the least recently used node, or nil.
func (l *lruList) back() *lruNode {
	return l.tail
}

func (l *lruList) unlink(n *lruNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev = nil
	n.next = nil
	l.len--
}
