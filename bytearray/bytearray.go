package bytearray

import (
	"bytes"

	"github.com/zeebo/xxh3"

	arena "github.com/pavanmanishd/refarena"
)

// Any marks a range endpoint as unspecified. Every negative value is treated the same.
const Any = -1

const (
	lengthAt = 0
	capAt    = 4
	dataAt   = 8

	// MaxCapacity is the largest capacity a single array can have.
	MaxCapacity = arena.MaxFrameSize - dataAt - 1
)

// FromText creates an array holding a copy of text, sized exactly to it.
func FromText(a *arena.Arena, text string) (arena.Ref, error) {
	ref, err := alloc(a, "from_text", len(text))
	if err != nil {
		return arena.Ref{}, err
	}
	p := a.Resolve(ref)
	copy(p[dataAt:], text)
	setLength(p, len(text))
	return ref, nil
}

// FromBytes creates an array holding a copy of b, sized exactly to it.
func FromBytes(a *arena.Arena, b []byte) (arena.Ref, error) {
	ref, err := alloc(a, "from_bytes", len(b))
	if err != nil {
		return arena.Ref{}, err
	}
	p := a.Resolve(ref)
	copy(p[dataAt:], b)
	setLength(p, len(b))
	return ref, nil
}

// WithCapacity creates an empty array that can grow to capacity bytes in place.
func WithCapacity(a *arena.Arena, capacity int) (arena.Ref, error) {
	return alloc(a, "with_capacity", capacity)
}

// Size returns the logical length of the array.
func Size(a *arena.Arena, h arena.Ref) int {
	n, _ := header(a.Resolve(h), h)
	return n
}

// Cap returns the allocated capacity of the array.
func Cap(a *arena.Arena, h arena.Ref) int {
	_, c := header(a.Resolve(h), h)
	return c
}

// View returns the array content. The slice is borrowed from the arena and is
// only valid until the next allocation on it.
func View(a *arena.Arena, h arena.Ref) []byte {
	p := a.Resolve(h)
	n, _ := header(p, h)
	return p[dataAt : dataAt+n : dataAt+n]
}

// CString returns the content followed by its zero terminator. Like View, the
// slice is only valid until the next allocation on the arena.
func CString(a *arena.Arena, h arena.Ref) []byte {
	p := a.Resolve(h)
	n, _ := header(p, h)
	return p[dataAt : dataAt+n+1 : dataAt+n+1]
}

// Text returns a copy of the array content as a string.
func Text(a *arena.Arena, h arena.Ref) string {
	return string(View(a, h))
}

// Retain increments the array's reference count.
func Retain(a *arena.Arena, h arena.Ref) {
	a.Retain(h)
}

// Release decrements the array's reference count.
func Release(a *arena.Arena, h arena.Ref) {
	a.Release(h)
}

// Equal reports whether two arrays hold the same bytes.
func Equal(a *arena.Arena, x, y arena.Ref) bool {
	return bytes.Equal(View(a, x), View(a, y))
}

// EqualBytes reports whether the array holds exactly b.
func EqualBytes(a *arena.Arena, h arena.Ref, b []byte) bool {
	return bytes.Equal(View(a, h), b)
}

// Compare orders two arrays byte-wise, like bytes.Compare.
func Compare(a *arena.Arena, x, y arena.Ref) int {
	return bytes.Compare(View(a, x), View(a, y))
}

// Hash returns the xxh3 hash of the array content.
func Hash(a *arena.Arena, h arena.Ref) uint64 {
	return xxh3.Hash(View(a, h))
}

func alloc(a *arena.Arena, op string, capacity int) (arena.Ref, error) {
	if capacity < 0 {
		arena.Violate(arena.Errorf("bytearray."+op, arena.KindInvalidSize, "negative capacity %d", capacity))
	}
	if capacity > MaxCapacity {
		return arena.Ref{}, arena.Errorf("bytearray."+op, arena.KindInvalidSize,
			"capacity %d exceeds maximum %d", capacity, MaxCapacity)
	}
	ref, err := a.Alloc(dataAt + capacity + 1)
	if err != nil {
		return arena.Ref{}, err
	}
	a.PutUint32(ref, capAt, uint32(capacity))
	return ref, nil
}

// header decodes and checks the length and capacity of a resolved array payload.
func header(p []byte, h arena.Ref) (length, capacity int) {
	if len(p) < dataAt+1 {
		arena.Violate(arena.Errorf("bytearray", arena.KindCorrupt, "%v is not a byte array", h))
	}
	length = int(uint32At(p, lengthAt))
	capacity = int(uint32At(p, capAt))
	if capacity != len(p)-dataAt-1 || length > capacity {
		arena.Violate(arena.Errorf("bytearray", arena.KindCorrupt,
			"%v: length %d, capacity %d, payload %d", h, length, capacity, len(p)))
	}
	return length, capacity
}
