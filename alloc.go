package arena

import "encoding/binary"

// AllocFrom allocates a frame holding a copy of data.
// data may itself be a view into this arena: the copy reads the pre-growth bytes.
func (a *Arena) AllocFrom(data []byte) (Ref, error) {
	ref, err := a.Alloc(len(data))
	if err != nil {
		return Ref{}, err
	}
	copy(a.Resolve(ref), data)
	return ref, nil
}

// AllocString allocates a frame holding a copy of s.
func (a *Arena) AllocString(s string) (Ref, error) {
	ref, err := a.Alloc(len(s))
	if err != nil {
		return Ref{}, err
	}
	copy(a.Resolve(ref), s)
	return ref, nil
}

// Uint32 reads a little-endian word at byte offset at of a frame's payload.
func (a *Arena) Uint32(ref Ref, at int) uint32 {
	p := a.Resolve(ref)
	if at < 0 || at+4 > len(p) {
		Violate(refError("uint32", KindOutOfBounds, ref.Off, "word outside payload"))
	}
	return binary.LittleEndian.Uint32(p[at:])
}

// PutUint32 writes a little-endian word at byte offset at of a frame's payload.
func (a *Arena) PutUint32(ref Ref, at int, v uint32) {
	p := a.Resolve(ref)
	if at < 0 || at+4 > len(p) {
		Violate(refError("put_uint32", KindOutOfBounds, ref.Off, "word outside payload"))
	}
	binary.LittleEndian.PutUint32(p[at:], v)
}

// Uint64 reads a little-endian double word at byte offset at of a frame's payload.
func (a *Arena) Uint64(ref Ref, at int) uint64 {
	p := a.Resolve(ref)
	if at < 0 || at+8 > len(p) {
		Violate(refError("uint64", KindOutOfBounds, ref.Off, "word outside payload"))
	}
	return binary.LittleEndian.Uint64(p[at:])
}

// PutUint64 writes a little-endian double word at byte offset at of a frame's payload.
func (a *Arena) PutUint64(ref Ref, at int, v uint64) {
	p := a.Resolve(ref)
	if at < 0 || at+8 > len(p) {
		Violate(refError("put_uint64", KindOutOfBounds, ref.Off, "word outside payload"))
	}
	binary.LittleEndian.PutUint64(p[at:], v)
}
