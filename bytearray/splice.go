package bytearray

import (
	"encoding/binary"

	arena "github.com/pavanmanishd/refarena"
)

// resolveRange turns a (from, n) pair with optional wildcards into a start and
// length inside an array of the given size.
//
//	from and n given: start = from,        length = n
//	only from:        start = from,        length = size - from
//	only n:           start = size - n,    length = n
//
// Leaving both unspecified is a contract violation. A range that does not lie
// within [0, size) is returned as a KindOutOfBounds error.
func resolveRange(op string, from, n, size int) (start, length int, err error) {
	mode := 0
	if from >= 0 {
		mode += 2
	}
	if n >= 0 {
		mode++
	}

	switch mode {
	case 3:
		start, length = from, n
	case 2:
		start, length = from, size-from
	case 1:
		start, length = size-n, n
	default:
		arena.Violate(arena.Errorf(op, arena.KindUnspecifiedRange, "at least one of from and len must be given"))
	}

	stop := start + length - 1
	if start < 0 || length < 0 || stop >= size {
		return 0, 0, arena.OutOfBounds(op, start, stop, size)
	}
	return start, length, nil
}

// Subarray copies a range of src into a new, exactly sized array.
// See resolveRange for the meaning of from and n.
func Subarray(a *arena.Arena, src arena.Ref, from, n int) (arena.Ref, error) {
	const op = "bytearray.subarray"
	start, length, err := resolveRange(op, from, n, Size(a, src))
	if err != nil {
		return arena.Ref{}, err
	}

	ref, err := alloc(a, "subarray", length)
	if err != nil {
		return arena.Ref{}, err
	}
	p := a.Resolve(ref)
	copy(p[dataAt:], View(a, src)[start:start+length])
	setLength(p, length)
	return ref, nil
}

// Concat creates an array holding the content of every src, in order.
// The same handle may appear more than once.
func Concat(a *arena.Arena, srcs ...arena.Ref) (arena.Ref, error) {
	total := 0
	for _, s := range srcs {
		total += Size(a, s)
	}

	ref, err := alloc(a, "concat", total)
	if err != nil {
		return arena.Ref{}, err
	}
	p := a.Resolve(ref)
	pos := dataAt
	for _, s := range srcs {
		pos += copy(p[pos:], View(a, s))
	}
	setLength(p, total)
	return ref, nil
}

// Splice replaces the range [dfrom, dfrom+dlen) of dst with the range
// [sfrom, sfrom+slen) of src. The destination range is resolved against the
// capacity of dst, so it may reach into spare space past the current content;
// the source range is resolved against the length of src.
//
// The result is dst's bytes before the range, then the source bytes, then
// whatever content of dst followed the range. When that fits in dst's
// capacity, dst is modified in place and returned with one extra reference.
// Otherwise a new array is allocated and returned; dst is left untouched.
// In both cases the caller still owns its original reference to dst and must
// release it. dst and src must be different arrays.
func Splice(a *arena.Arena, dst arena.Ref, dfrom, dlen int, src arena.Ref, sfrom, slen int) (arena.Ref, error) {
	const op = "bytearray.splice"
	if dst == src {
		arena.Violate(arena.Errorf(op, arena.KindAliased, "cannot splice %v into itself", dst))
	}

	dp := a.Resolve(dst)
	dsize, dcap := header(dp, dst)
	dstart, dn, err := resolveRange(op, dfrom, dlen, dcap)
	if err != nil {
		return arena.Ref{}, err
	}
	sstart, sn, err := resolveRange(op, sfrom, slen, Size(a, src))
	if err != nil {
		return arena.Ref{}, err
	}

	tail := 0
	if dsize > dstart+dn {
		tail = dsize - (dstart + dn)
	}
	size := dstart + sn + tail

	if size <= dcap {
		data := dp[dataAt:]
		copy(data[dstart+sn:], data[dstart+dn:dstart+dn+tail])
		copy(data[dstart:], View(a, src)[sstart:sstart+sn])
		if size < dsize {
			clear(data[size:dsize])
		}
		data[size] = 0
		setLength(dp, size)
		a.Retain(dst)
		return dst, nil
	}

	capacity := size
	if grown := 2 * dcap; grown > capacity && grown <= MaxCapacity {
		capacity = grown
	}
	ref, err := alloc(a, "splice", capacity)
	if err != nil {
		return arena.Ref{}, err
	}

	// The allocation may have moved every frame.
	p := a.Resolve(ref)
	data := p[dataAt:]
	old := a.Resolve(dst)[dataAt:]
	copy(data, old[:dstart])
	copy(data[dstart:], View(a, src)[sstart:sstart+sn])
	copy(data[dstart+sn:], old[dstart+dn:dstart+dn+tail])
	setLength(p, size)
	return ref, nil
}

func uint32At(p []byte, at int) uint32 {
	return binary.LittleEndian.Uint32(p[at:])
}

func setLength(p []byte, n int) {
	binary.LittleEndian.PutUint32(p[lengthAt:], uint32(n))
}
