package arena

import (
	"fmt"
	"runtime"
	"testing"
)

// BenchmarkRealisticUsage tests scenarios where arena should excel
func BenchmarkRealisticUsage(b *testing.B) {

	// Test 1: Many small allocations with periodic cleanup
	b.Run("ManySmallAllocs/Arena", func(b *testing.B) {
		a := NewArena(64 * 1024)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			// Allocate 100 small frames
			for j := 0; j < 100; j++ {
				_, _ = a.Alloc(64)
			}
			// Reset after every batch (simulates request cleanup)
			a.Reset()
		}
	})

	b.Run("ManySmallAllocs/Builtin", func(b *testing.B) {
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			objects := make([][]byte, 100)
			for j := 0; j < 100; j++ {
				objects[j] = make([]byte, 64)
			}
			if i%10 == 0 {
				runtime.GC()
			}
		}
	})

	// Test 2: Call-stack discipline, every frame released in reverse order
	b.Run("StackFrames/Arena", func(b *testing.B) {
		a := NewArena(64 * 1024)
		refs := make([]Ref, 32)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := range refs {
				refs[j], _ = a.Alloc(48)
			}
			for j := len(refs) - 1; j >= 0; j-- {
				a.Release(refs[j])
			}
		}
	})

	b.Run("StackFrames/Builtin", func(b *testing.B) {
		frames := make([][]byte, 32)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := range frames {
				frames[j] = make([]byte, 48)
			}
			for j := range frames {
				frames[j] = nil
			}
		}
	})

	// Test 3: Shared frames, retained by several owners before release
	b.Run("SharedFrames/Arena", func(b *testing.B) {
		a := NewArena(64 * 1024)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			ref, _ := a.AllocString("shared payload")
			for j := 0; j < 4; j++ {
				a.Retain(ref)
			}
			for j := 0; j < 5; j++ {
				a.Release(ref)
			}
		}
	})
}

// BenchmarkWorstCaseScenarios tests scenarios where the arena performs poorly.
// These benchmarks help identify when NOT to use it.
func BenchmarkWorstCaseScenarios(b *testing.B) {

	// Scenario 1: Tiny frames pay the full header on every allocation
	for _, size := range []int{1, 2, 8} {
		b.Run(fmt.Sprintf("TinyFrames/Arena_%dB", size), func(b *testing.B) {
			a := NewArena(64 * 1024)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, _ = a.Alloc(size)
				if i%1000 == 999 {
					a.Reset()
				}
			}
		})

		b.Run(fmt.Sprintf("TinyFrames/Builtin_%dB", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = make([]byte, size)
			}
		})
	}

	// Scenario 2: The bottom frame outlives everything, so nothing above it can be
	// reclaimed until the whole batch is gone
	b.Run("PinnedBottom", func(b *testing.B) {
		a := NewArena(64 * 1024)
		refs := make([]Ref, 64)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := range refs {
				refs[j], _ = a.Alloc(32)
			}
			for _, ref := range refs {
				a.Release(ref)
			}
		}
	})

	// Scenario 3: Growth from a tiny buffer relocates repeatedly
	b.Run("Relocation", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			a := NewArena(64)
			for j := 0; j < 256; j++ {
				_, _ = a.Alloc(256)
			}
			a.Destroy()
		}
	})

	b.Run("Relocation/Presized", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			a := NewArena(64)
			_ = a.EnsureCapacity(256 * FrameSize(256))
			for j := 0; j < 256; j++ {
				_, _ = a.Alloc(256)
			}
			a.Destroy()
		}
	})
}

// BenchmarkConcurrencyPatterns measures lock contention on SafeArena
func BenchmarkConcurrencyPatterns(b *testing.B) {
	b.Run("SafeArena/AllocRelease", func(b *testing.B) {
		s := NewSafeArena(1024 * 1024)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				ref, err := s.Alloc(64)
				if err != nil {
					b.Error(err)
					return
				}
				s.Release(ref)
			}
		})
	})

	b.Run("SafeArena/Metrics", func(b *testing.B) {
		s := NewSafeArena(1024 * 1024)
		for i := 0; i < 100; i++ {
			_, _ = s.Alloc(64)
		}
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_ = s.Metrics()
			}
		})
	})
}
