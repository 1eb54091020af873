package arena

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// SizeInUse returns the number of bytes between the bottom of the arena and its top,
// including frame headers, padding and dead frames not yet reclaimed.
func (a *Arena) SizeInUse() int {
	if a.buf == nil {
		return 0
	}
	return a.top
}

// NumFrames returns the number of frames still physically present, live or dead.
func (a *Arena) NumFrames() int {
	if a.buf == nil {
		return 0
	}
	n := 0
	a.walk(func(uint32, uint32, uint32) { n++ })
	return n
}

// LiveFrames returns the number of frames with a positive reference count.
func (a *Arena) LiveFrames() int {
	if a.buf == nil {
		return 0
	}
	n := 0
	a.walk(func(_, _, refs uint32) {
		if refs > 0 {
			n++
		}
	})
	return n
}

// PinnedBytes returns the bytes held by dead frames that sit below a live frame.
func (a *Arena) PinnedBytes() int {
	if a.buf == nil {
		return 0
	}
	n := 0
	a.walk(func(_, size, refs uint32) {
		if refs == 0 {
			n += FrameSize(int(size))
		}
	})
	return n
}

// Capacity returns the size of the backing buffer in bytes.
func (a *Arena) Capacity() int {
	return len(a.buf)
}

// Utilization returns the ratio of bytes in use to capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *Arena) Utilization() float64 {
	capacity := a.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(a.SizeInUse()) / float64(capacity)
}

// Relocations returns how many times growth moved the backing buffer.
func (a *Arena) Relocations() int {
	return a.relocations
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	return ArenaMetrics{
		SizeInUse:   a.SizeInUse(),
		Capacity:    a.Capacity(),
		NumFrames:   a.NumFrames(),
		LiveFrames:  a.LiveFrames(),
		PinnedBytes: a.PinnedBytes(),
		Relocations: a.Relocations(),
		Fixed:       a.fixed,
		Utilization: a.Utilization(),
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	SizeInUse   int     // Bytes below top
	Capacity    int     // Backing buffer size
	NumFrames   int     // Frames present, live or dead
	LiveFrames  int     // Frames with a positive reference count
	PinnedBytes int     // Bytes held by dead frames under a live one
	Relocations int     // Number of growth relocations
	Fixed       bool    // Real-time mode
	Utilization float64 // Ratio of used to total capacity (0.0-1.0)
}

func (m ArenaMetrics) String() string {
	return fmt.Sprintf("%s of %s in use (%.1f%%), %d frames (%d live), %s pinned, %d relocations",
		humanize.IBytes(uint64(m.SizeInUse)),
		humanize.IBytes(uint64(m.Capacity)),
		m.Utilization*100,
		m.NumFrames,
		m.LiveFrames,
		humanize.IBytes(uint64(m.PinnedBytes)),
		m.Relocations)
}

// Thread-safe metrics for SafeArena

// SizeInUse thread-safely returns the number of bytes below top.
func (s *SafeArena) SizeInUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.SizeInUse()
}

// Capacity thread-safely returns the backing buffer size.
func (s *SafeArena) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Capacity()
}

// Utilization thread-safely returns the ratio of bytes in use to capacity.
func (s *SafeArena) Utilization() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Utilization()
}

// Metrics thread-safely returns a snapshot of arena statistics.
func (s *SafeArena) Metrics() ArenaMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}
