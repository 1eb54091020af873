// Package arena implements a relocatable stack arena with reference-counted frames.
//
// # Overview
//
// An Arena is one contiguous, growable buffer. Allocations ("frames") are pushed
// on top of it and addressed by Ref, a generation-tagged offset, instead of by
// pointer. This is useful for:
//
//   - Runtimes that hand out integer handles instead of Go pointers
//   - Variable-sized buffers with mostly LIFO lifetimes
//   - Real-time code that must never reallocate (fixed-capacity mode)
//
// # Basic Usage
//
//	a := arena.NewArena(0) // Use default initial size
//	defer a.Destroy()      // Clean up when done
//
//	ref, err := a.Alloc(64)
//	if err != nil {
//		return err
//	}
//	copy(a.Resolve(ref), "payload") // resolve, use, discard
//	a.Release(ref)
//
// # Relocation
//
// Growth copies the buffer, so a slice returned by Resolve is only valid until
// the next Alloc or EnsureCapacity on the same arena. Keep Refs, not slices.
//
// # Reference Counting
//
// Every frame starts with a count of 1. Retain and Release adjust it. Memory is
// reclaimed from the top only: releasing the topmost frame pops it and every dead
// frame directly beneath it. A frame that dies under a live one is kept until
// the frame above it dies as well. There is no compaction and no hole reuse.
//
// # Errors
//
// Capacity exhaustion in fixed mode and out-of-range requests are returned as
// *Error values. Contract violations (stale or foreign Refs, negative sizes,
// touching dead frames) panic with an *Error; wrap calls in Try to turn those
// into returned errors instead of terminating.
//
// # Thread Safety
//
// The basic Arena type is not thread-safe. For concurrent access, use SafeArena:
//
//	s := arena.NewSafeArena(0)
//	defer s.Destroy()
//
//	ref, _ := s.Alloc(128)
//	_ = s.Do(func(a *arena.Arena) error {
//		copy(a.Resolve(ref), data)
//		return nil
//	})
//
// # Metrics and Monitoring
//
//	m := a.Metrics()
//	fmt.Println(m) // "1.2 KiB of 64 KiB in use (1.9%), 12 frames (11 live), 48 B pinned, 0 relocations"
package arena
