package arena

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewArena(t *testing.T) {
	tests := []struct {
		name        string
		initialSize int
		expected    int
	}{
		{"default initial size", 0, DefaultInitialSize},
		{"negative initial size", -1, DefaultInitialSize},
		{"custom initial size", 8192, 8192},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArena(tt.initialSize)
			if a.Cap() != tt.expected {
				t.Errorf("NewArena(%d) capacity = %d, want %d", tt.initialSize, a.Cap(), tt.expected)
			}
			if a.Top() != 0 {
				t.Errorf("NewArena(%d) top = %d, want 0", tt.initialSize, a.Top())
			}
			if a.Generation() == 0 {
				t.Errorf("NewArena(%d) generation is zero", tt.initialSize)
			}
		})
	}
}

func TestArenaAllocOffsets(t *testing.T) {
	a := NewArena(1 << 12)
	sizes := []int{64, 128, 32, 0, 7, 1000}

	prevTop := a.Top()
	var prevOff uint32
	for i, size := range sizes {
		ref, err := a.Alloc(size)
		require.NoError(t, err)
		if i > 0 && ref.Off <= prevOff {
			t.Errorf("Alloc(%d) offset = %d, want > %d", size, ref.Off, prevOff)
		}
		if int(ref.Off) != prevTop {
			t.Errorf("Alloc(%d) offset = %d, want previous top %d", size, ref.Off, prevTop)
		}
		if a.Top() != prevTop+FrameSize(size) {
			t.Errorf("top after Alloc(%d) = %d, want %d", size, a.Top(), prevTop+FrameSize(size))
		}
		if got := len(a.Resolve(ref)); got != size {
			t.Errorf("Resolve length = %d, want %d", got, size)
		}
		if a.RefCount(ref) != 1 {
			t.Errorf("new frame ref count = %d, want 1", a.RefCount(ref))
		}
		prevTop, prevOff = a.Top(), ref.Off
	}
}

func TestArenaLIFORelease(t *testing.T) {
	a := NewArena(1024)
	base := a.Top()

	fa, _ := a.Alloc(64)
	fb, _ := a.Alloc(128)
	fc, _ := a.Alloc(32)

	a.Release(fc)
	require.Equal(t, int(fc.Off), a.Top())
	a.Release(fb)
	require.Equal(t, int(fb.Off), a.Top())
	a.Release(fa)
	require.Equal(t, base, a.Top())
	require.Equal(t, 0, a.NumFrames())
}

func TestArenaOutOfOrderRelease(t *testing.T) {
	a := NewArena(1024)
	base := a.Top()

	fa, _ := a.Alloc(64)
	fb, _ := a.Alloc(128)
	fc, _ := a.Alloc(32)
	topAfterB := int(fc.Off)

	a.Release(fc)
	require.Equal(t, topAfterB, a.Top())

	// fb is still live, so fa's space stays pinned.
	a.Release(fa)
	require.Equal(t, topAfterB, a.Top())
	require.Equal(t, 0, a.RefCount(fa))
	require.Equal(t, FrameSize(64), a.PinnedBytes())

	// Releasing fb sweeps both frames.
	a.Release(fb)
	require.Equal(t, base, a.Top())
	require.Equal(t, 0, a.PinnedBytes())
}

func TestArenaRetainReleaseBalance(t *testing.T) {
	plain := NewArena(1024)
	ref, _ := plain.Alloc(40)
	plain.Release(ref)

	retained := NewArena(1024)
	ref, _ = retained.Alloc(40)
	retained.Retain(ref)
	require.Equal(t, 2, retained.RefCount(ref))
	retained.Release(ref)
	require.Equal(t, FrameSize(40), retained.Top())
	retained.Release(ref)

	require.Equal(t, plain.Top(), retained.Top())
}

func TestArenaGrowthRelocates(t *testing.T) {
	a := NewArena(64)

	first, err := a.AllocString("survives relocation")
	require.NoError(t, err)
	before := &a.Resolve(first)[0]

	big, err := a.Alloc(100)
	require.NoError(t, err)
	require.Equal(t, 256, a.Cap())
	require.Equal(t, 1, a.Relocations())

	after := &a.Resolve(first)[0]
	if before == after {
		t.Error("expected the buffer to move on growth")
	}
	require.Equal(t, "survives relocation", string(a.Resolve(first)))
	require.Len(t, a.Resolve(big), 100)
}

func TestArenaGrowthFactor(t *testing.T) {
	a := NewArena(64, WithGrowthFactor(4))
	_, err := a.Alloc(100)
	require.NoError(t, err)
	require.Equal(t, 256, a.Cap())

	// Factors below 2 are ignored.
	b := NewArena(64, WithGrowthFactor(1))
	_, err = b.Alloc(100)
	require.NoError(t, err)
	require.Equal(t, 128, b.Cap())
}

func TestArenaFixedCapacity(t *testing.T) {
	a := NewArena(64, WithFixedCapacity())
	require.True(t, a.Fixed())

	ref, err := a.Alloc(40)
	require.NoError(t, err)
	top := a.Top()

	_, err = a.Alloc(8)
	require.ErrorIs(t, err, ErrCapacity)
	require.Equal(t, top, a.Top())
	require.Equal(t, 64, a.Cap())
	require.Equal(t, 0, a.Relocations())

	// The arena is still usable after the failure.
	a.Release(ref)
	_, err = a.Alloc(8)
	require.NoError(t, err)
}

func TestArenaEnsureCapacity(t *testing.T) {
	a := NewArena(64)
	require.NoError(t, a.EnsureCapacity(16))
	require.Equal(t, 64, a.Cap())

	require.NoError(t, a.EnsureCapacity(500))
	capacity := a.Cap()
	require.GreaterOrEqual(t, capacity, FrameSize(500))

	_, err := a.Alloc(500)
	require.NoError(t, err)
	require.Equal(t, capacity, a.Cap())

	fixed := NewArena(64, WithFixedCapacity())
	require.ErrorIs(t, fixed.EnsureCapacity(500), ErrCapacity)
}

func TestArenaAllocZeroesReusedSpace(t *testing.T) {
	a := NewArena(256)
	ref, _ := a.Alloc(16)
	copy(a.Resolve(ref), "dirty dirty dirt")
	a.Release(ref)

	ref, _ = a.Alloc(16)
	require.Equal(t, make([]byte, 16), a.Resolve(ref))
}

func TestArenaContractViolations(t *testing.T) {
	t.Run("negative size", func(t *testing.T) {
		a := NewArena(64)
		err := Try(func() { _, _ = a.Alloc(-1) })
		require.ErrorIs(t, err, ErrInvalidSize)
		require.Equal(t, 0, a.Top())
	})

	t.Run("foreign ref", func(t *testing.T) {
		a, b := NewArena(64), NewArena(64)
		ref, _ := a.Alloc(8)
		_, _ = b.Alloc(8)
		err := Try(func() { b.Resolve(ref) })
		require.ErrorIs(t, err, ErrInvalidRef)
	})

	t.Run("dead frame below top", func(t *testing.T) {
		a := NewArena(256)
		low, _ := a.Alloc(8)
		_, _ = a.Alloc(8)
		a.Release(low)
		require.ErrorIs(t, Try(func() { a.Resolve(low) }), ErrDeadFrame)
		require.ErrorIs(t, Try(func() { a.Retain(low) }), ErrDeadFrame)
		require.ErrorIs(t, Try(func() { a.Release(low) }), ErrDeadFrame)
	})

	t.Run("reclaimed frame", func(t *testing.T) {
		a := NewArena(256)
		ref, _ := a.Alloc(8)
		a.Release(ref)
		require.ErrorIs(t, Try(func() { a.Resolve(ref) }), ErrInvalidRef)
	})

	t.Run("offset inside a frame", func(t *testing.T) {
		a := NewArena(256)
		ref, _ := a.Alloc(64)
		inner := Ref{Gen: ref.Gen, Off: ref.Off + 24}
		require.ErrorIs(t, Try(func() { a.Resolve(inner) }), ErrInvalidRef)
	})

	t.Run("zero ref", func(t *testing.T) {
		a := NewArena(64)
		require.ErrorIs(t, Try(func() { a.Retain(Ref{}) }), ErrInvalidRef)
	})
}

func TestArenaReset(t *testing.T) {
	a := NewArena(1024)
	ref, _ := a.Alloc(100)
	gen := a.Generation()

	a.Reset()
	require.Equal(t, 0, a.SizeInUse())
	require.Equal(t, 1024, a.Cap())
	require.NotEqual(t, gen, a.Generation())
	require.False(t, a.Live(ref))
	require.ErrorIs(t, Try(func() { a.Resolve(ref) }), ErrInvalidRef)
}

func TestArenaDestroy(t *testing.T) {
	a := NewArena(1024)
	ref, _ := a.Alloc(100)

	a.Destroy()

	if a.Cap() != 0 {
		t.Error("Expected no capacity after Destroy()")
	}
	require.False(t, a.Live(ref))

	// Test panic on use after destroy
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expected panic on use after Destroy()")
		}
		err, ok := r.(*Error)
		if !ok || err.Kind != KindDestroyed {
			t.Errorf("panic value = %v, want a %s error", r, KindDestroyed)
		}
	}()
	_, _ = a.Alloc(100)
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, 0},
		{1, frameAlign},
		{frameAlign, frameAlign},
		{frameAlign + 1, frameAlign * 2},
	}

	for _, tt := range tests {
		result := alignUp(tt.input)
		if result != tt.expected {
			t.Errorf("alignUp(%d) = %d, want %d", tt.input, result, tt.expected)
		}
	}
}

func BenchmarkArenaAlloc(b *testing.B) {
	a := NewArena(1024 * 1024)
	sizes := []int{8, 64, 256, 1024}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("size-%d", size), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = a.Alloc(size)
				if i%1000 == 999 { // Reset periodically to avoid growing too much
					a.Reset()
				}
			}
		})
	}
}

func BenchmarkArenaVsBuiltin(b *testing.B) {
	b.Run("arena", func(b *testing.B) {
		a := NewArena(1024 * 1024)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			ref, _ := a.Alloc(64)
			a.Release(ref)
		}
	})

	b.Run("builtin", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = make([]byte, 64)
		}
	})
}
