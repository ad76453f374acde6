// Package cache provides the pixmap cache used by buffer blits.
//
// A blit of a client buffer into a window converts the source pixels into
// the destination format once per visible sub-rectangle. When the client
// supplies a key for the buffer, the converted pixels of every
// sub-rectangle are kept here, keyed by the client key and the position of
// the sub-rectangle inside the buffer, so that repeated blits of the same
// content skip the conversion.
//
//	c := cache.New(4 << 20) // 4 MiB budget
//	k := cache.Key{ID: 42, Rect: region.R(0, 0, 31, 15)}
//	if px, ok := c.Get(k); ok { ... }
//	c.Put(k, px)
//
// The cache evicts least recently used entries once the byte budget is
// exceeded. It is safe for concurrent use.
package cache
