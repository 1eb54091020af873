// Package arena implements a relocatable stack arena with reference-counted frames.
// Typical usage: create one arena per allocation scope, allocate frames from it,
// retain and release them as ownership moves around, then Destroy() the arena.
package arena

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultInitialSize is the default capacity for new arenas (64 KiB).
	DefaultInitialSize = 1 << 16

	// MaxCapacity bounds the backing buffer so every offset fits a uint32 link.
	MaxCapacity = math.MaxInt32

	// MaxFrameSize is the largest payload a single frame can carry.
	MaxFrameSize = MaxCapacity - headerSize - frameAlign
)

var generations atomic.Uint32

// Ref is a weak, relocation-proof reference to a frame: the owning arena's
// generation plus the frame's offset. The zero Ref is never valid.
type Ref struct {
	Gen uint32
	Off uint32
}

// IsZero reports whether r is the zero Ref.
func (r Ref) IsZero() bool {
	return r.Gen == 0
}

func (r Ref) String() string {
	return fmt.Sprintf("ref(%d@%d)", r.Off, r.Gen)
}

// Option configures an Arena.
type Option func(*Arena)

// WithFixedCapacity selects real-time mode: the backing buffer is allocated once
// and never grows, so Alloc never relocates. Allocations that do not fit fail
// with a KindCapacity error.
func WithFixedCapacity() Option {
	return func(a *Arena) {
		a.fixed = true
	}
}

// WithGrowthFactor sets the capacity multiplier used when the arena grows.
// Values below 2 are ignored.
func WithGrowthFactor(n int) Option {
	return func(a *Arena) {
		if n >= 2 {
			a.growth = n
		}
	}
}

// WithLogger sets the logger for this arena instead of the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Arena) {
		a.log = l
	}
}

// Arena is a single growable buffer holding a stack of frames. Not goroutine-safe.
// Use SafeArena for concurrent access.
//
// Frames are addressed by Ref, never by pointer: growth copies the buffer to a
// new location, so any slice returned by Resolve is invalid after the next
// Alloc or EnsureCapacity call on the same arena.
type Arena struct {
	buf         []byte
	top         int
	last        uint32 // topmost frame offset + 1, 0 when empty
	gen         uint32
	growth      int
	relocations int
	fixed       bool
	id          uuid.UUID
	log         *zap.Logger
}

// NewArena creates a new Arena with the specified initial capacity.
// If initialSize <= 0, DefaultInitialSize is used.
func NewArena(initialSize int, opts ...Option) *Arena {
	if initialSize <= 0 {
		initialSize = DefaultInitialSize
	}
	if initialSize > MaxCapacity {
		initialSize = MaxCapacity
	}
	a := &Arena{
		growth: DefaultGrowthFactor,
		id:     uuid.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = Logger()
	}
	a.log = a.log.With(zap.Stringer("arena", a.id))
	a.gen = nextGeneration()
	a.buf = make([]byte, initialSize)
	return a
}

// FrameSize returns the number of arena bytes a frame with the given payload size occupies.
func FrameSize(size int) int {
	return headerSize + alignUp(size)
}

// Alloc reserves a frame with size usable bytes above the current top and returns
// its reference. The frame starts with a reference count of 1 and a zeroed payload.
//
// When the frame does not fit, a growable arena reallocates its buffer (relocating
// every frame) and a fixed arena returns a KindCapacity error without changing state.
// A negative size is a contract violation.
func (a *Arena) Alloc(size int) (Ref, error) {
	const op = "alloc"
	a.panicIfDestroyed(op)
	if size < 0 {
		Violate(Errorf(op, KindInvalidSize, "negative frame size %d", size))
	}
	if size > MaxFrameSize {
		return Ref{}, Errorf(op, KindInvalidSize, "frame size %d exceeds maximum %d", size, MaxFrameSize)
	}

	need := a.top + FrameSize(size)
	if err := a.reserve(op, need); err != nil {
		return Ref{}, err
	}

	off := uint32(a.top)
	putHeader(a.buf[a.top:], uint32(size), 1, a.last, off)
	clear(a.buf[a.top+headerSize : need])
	a.top = need
	a.last = off + 1

	return Ref{Gen: a.gen, Off: off}, nil
}

// EnsureCapacity grows the arena so that a frame with an n-byte payload can be
// allocated without relocation. Fixed arenas return a KindCapacity error instead.
func (a *Arena) EnsureCapacity(n int) error {
	const op = "ensure_capacity"
	a.panicIfDestroyed(op)
	if n < 0 {
		Violate(Errorf(op, KindInvalidSize, "negative size %d", n))
	}
	if n > MaxFrameSize {
		return Errorf(op, KindInvalidSize, "frame size %d exceeds maximum %d", n, MaxFrameSize)
	}
	return a.reserve(op, a.top+FrameSize(n))
}

// Resolve returns the payload of a live frame. The slice is only valid until the
// next Alloc or EnsureCapacity on this arena; re-resolve after every allocation.
func (a *Arena) Resolve(ref Ref) []byte {
	off := int(a.live("resolve", ref))
	start := off + headerSize
	end := start + int(frameSize(a.buf[off:]))
	return a.buf[start:end:end]
}

// Size returns the payload size of a live frame.
func (a *Arena) Size(ref Ref) int {
	off := a.live("size", ref)
	return int(frameSize(a.buf[off:]))
}

// Retain increments the reference count of a live frame.
func (a *Arena) Retain(ref Ref) {
	const op = "retain"
	off := a.live(op, ref)
	n := frameRefs(a.buf[off:])
	if n == math.MaxUint32 {
		Violate(refError(op, KindInvalidSize, off, "reference count overflow"))
	}
	setFrameRefs(a.buf[off:], n+1)
}

// Release decrements the reference count of a live frame.
//
// Space is only reclaimed from the top: when the topmost frame dies, it and every
// dead frame directly beneath it are popped. A frame that dies below a live one
// stays in place until everything above it is released too.
func (a *Arena) Release(ref Ref) {
	off := a.live("release", ref)
	n := frameRefs(a.buf[off:]) - 1
	setFrameRefs(a.buf[off:], n)
	if n > 0 {
		return
	}
	if off+1 != a.last {
		a.log.Debug("frame dead below top",
			zap.Uint32("off", off),
			zap.Int("top", a.top))
		return
	}
	a.sweep()
}

// RefCount returns the reference count of a frame that is still physically present.
func (a *Arena) RefCount(ref Ref) int {
	off := a.frame("ref_count", ref)
	return int(frameRefs(a.buf[off:]))
}

// Live reports whether ref names a frame of this arena with a positive count.
func (a *Arena) Live(ref Ref) bool {
	if a.buf == nil || ref.Gen != a.gen {
		return false
	}
	off := int(ref.Off)
	if off+headerSize > a.top || !validMarker(a.buf[off:], ref.Off) {
		return false
	}
	return frameRefs(a.buf[off:]) > 0
}

// Reset drops every frame but keeps the backing buffer for reuse.
// The arena moves to a new generation, so every outstanding Ref is rejected.
func (a *Arena) Reset() {
	a.panicIfDestroyed("reset")
	a.top = 0
	a.last = 0
	a.gen = nextGeneration()
	a.log.Debug("arena reset", zap.Uint32("generation", a.gen))
}

// Destroy releases the backing buffer unconditionally and makes the arena unusable.
// Any subsequent operation panics.
func (a *Arena) Destroy() {
	if a.buf != nil {
		a.log.Debug("arena destroyed", zap.Int("top", a.top), zap.Int("cap", len(a.buf)))
	}
	a.buf = nil
	a.top = 0
	a.last = 0
	a.gen = 0
}

// Top returns the current high-water offset.
func (a *Arena) Top() int {
	return a.top
}

// Cap returns the size of the backing buffer.
func (a *Arena) Cap() int {
	return len(a.buf)
}

// Fixed reports whether the arena runs in real-time (non-growing) mode.
func (a *Arena) Fixed() bool {
	return a.fixed
}

// Generation returns the tag carried by every Ref this arena currently issues.
func (a *Arena) Generation() uint32 {
	return a.gen
}

// ID returns the arena's instance identifier, used in log fields.
func (a *Arena) ID() uuid.UUID {
	return a.id
}

// Ref rebuilds a reference from an offset stored inside one of this arena's frames.
func (a *Arena) Ref(off uint32) Ref {
	return Ref{Gen: a.gen, Off: off}
}

// reserve makes sure the buffer holds at least need bytes.
func (a *Arena) reserve(op string, need int) error {
	if need <= len(a.buf) {
		return nil
	}
	if a.fixed {
		return CapacityExceeded(op, need, len(a.buf))
	}
	if need > MaxCapacity {
		return Errorf(op, KindCapacity, "need %d bytes, maximum capacity is %d", need, MaxCapacity)
	}

	size := len(a.buf)
	for size < need {
		if size > MaxCapacity/a.growth {
			size = MaxCapacity
			break
		}
		size *= a.growth
	}

	buf := make([]byte, size)
	copy(buf, a.buf[:a.top])
	from := len(a.buf)
	a.buf = buf
	a.relocations++

	a.log.Debug("arena grown",
		zap.Int("from", from),
		zap.Int("to", size),
		zap.Int("top", a.top))
	return nil
}

// sweep pops the topmost frame and every contiguous dead frame beneath it.
func (a *Arena) sweep() {
	from := a.top
	link := a.last
	for link != 0 {
		off := link - 1
		if frameRefs(a.buf[off:]) != 0 {
			break
		}
		a.top = int(off)
		link = framePrev(a.buf[off:])
	}
	a.last = link

	a.log.Debug("frames reclaimed",
		zap.Int("from", from),
		zap.Int("top", a.top))
}

// frame validates ref against this arena and returns its offset.
func (a *Arena) frame(op string, ref Ref) uint32 {
	a.panicIfDestroyed(op)
	if ref.Gen != a.gen {
		Violate(refError(op, KindInvalidRef, ref.Off, "reference belongs to another arena or generation"))
	}
	off := int(ref.Off)
	if off+headerSize > a.top {
		Violate(refError(op, KindInvalidRef, ref.Off, fmt.Sprintf("offset beyond top %d", a.top)))
	}
	if !validMarker(a.buf[off:], ref.Off) {
		Violate(refError(op, KindInvalidRef, ref.Off, "no frame marker"))
	}
	return ref.Off
}

// live validates ref and requires a positive reference count.
func (a *Arena) live(op string, ref Ref) uint32 {
	off := a.frame(op, ref)
	if frameRefs(a.buf[off:]) == 0 {
		Violate(refError(op, KindDeadFrame, off, "reference count is zero"))
	}
	return off
}

// walk visits frames from the topmost down to the oldest still tracked.
func (a *Arena) walk(fn func(off uint32, size, refs uint32)) {
	for link := a.last; link != 0; {
		off := link - 1
		h := a.buf[off:]
		fn(off, frameSize(h), frameRefs(h))
		link = framePrev(h)
	}
}

// panicIfDestroyed panics if the arena has been destroyed.
func (a *Arena) panicIfDestroyed(op string) {
	if a.buf == nil {
		Violate(Errorf(op, KindDestroyed, "use after Destroy()"))
	}
}

func nextGeneration() uint32 {
	for {
		if g := generations.Add(1); g != 0 {
			return g
		}
	}
}
