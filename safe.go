package arena

import (
	"sync"
)

// SafeArena is a mutex-protected wrapper around Arena for concurrent access.
// The whole arena is guarded by one lock; frames are never locked individually.
// Slices returned by Resolve are only safe to use inside Do, since another
// goroutine's allocation may relocate the buffer as soon as the lock is released.
type SafeArena struct {
	mu sync.Mutex
	a  *Arena
}

// NewSafeArena creates a new thread-safe arena with the specified initial size.
// If initialSize <= 0, DefaultInitialSize is used.
func NewSafeArena(initialSize int, opts ...Option) *SafeArena {
	return &SafeArena{a: NewArena(initialSize, opts...)}
}

// Do runs fn with exclusive access to the underlying arena.
// Use it for sequences that must not interleave with other goroutines,
// such as resolving a frame and copying its payload.
func (s *SafeArena) Do(fn func(a *Arena) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.a)
}

// Alloc thread-safely allocates a frame with size usable bytes.
func (s *SafeArena) Alloc(size int) (Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Alloc(size)
}

// AllocFrom thread-safely allocates a frame holding a copy of data.
func (s *SafeArena) AllocFrom(data []byte) (Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.AllocFrom(data)
}

// Read thread-safely returns a copy of a frame's payload.
func (s *SafeArena) Read(ref Ref) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.a.Resolve(ref)...)
}

// Retain thread-safely increments a frame's reference count.
func (s *SafeArena) Retain(ref Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Retain(ref)
}

// Release thread-safely decrements a frame's reference count.
func (s *SafeArena) Release(ref Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Release(ref)
}

// RefCount thread-safely returns a frame's reference count.
func (s *SafeArena) RefCount(ref Ref) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.RefCount(ref)
}

// EnsureCapacity thread-safely pre-grows the arena.
func (s *SafeArena) EnsureCapacity(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.EnsureCapacity(n)
}

// Reset thread-safely drops every frame.
func (s *SafeArena) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Reset()
}

// Destroy thread-safely releases the backing buffer.
func (s *SafeArena) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Destroy()
}
