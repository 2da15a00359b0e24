// Package pool defines the native memory pool collaborator named in spec
// §1/§5: a thread-safe, caller-suppliable allocator used by the owning
// (pool-allocating) variants of Projector/Filter evaluation.
package pool

import "sync"

// Allocator is the interface the core consults to obtain output buffers
// when the caller asks for the owning (as opposed to zero-copy) evaluation
// variant (spec §9 Open Question: zero-copy is primary, owning is a
// trivial wrapper over it).
type Allocator interface {
	Allocate(size int) []byte
	Free(buf []byte)
}

// Tracking is a thread-safe default Allocator that tracks outstanding
// allocations by identity, so tests can assert no buffer returned to a
// caller was leaked (spec §3 Lifecycle: batches are caller-owned).
type Tracking struct {
	mu          sync.Mutex
	outstanding map[*byte]int
}

// NewTracking builds a Tracking allocator with no outstanding allocations.
func NewTracking() *Tracking {
	return &Tracking{outstanding: make(map[*byte]int)}
}

// Allocate returns a zeroed buffer of size bytes and records it as
// outstanding.
func (t *Tracking) Allocate(size int) []byte {
	buf := make([]byte, size)
	t.mu.Lock()
	defer t.mu.Unlock()
	if size > 0 {
		t.outstanding[&buf[0]] = size
	}
	return buf
}

// Free releases a buffer previously returned by Allocate.
func (t *Tracking) Free(buf []byte) {
	if len(buf) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.outstanding, &buf[0])
}

// Outstanding reports the number of allocations not yet freed, for leak
// detection in tests.
func (t *Tracking) Outstanding() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.outstanding)
}
