package table

import (
	arena "github.com/pavanmanishd/refarena"
)

// Node frames start with a tag byte.
//
// Leaf:
//
//	[0]       tagLeaf
//	[4:8)     key array link
//	[8:12)    value array link
//	[16:24)   xxh3 of the key
//
// Interior:
//
//	[0]             tagInterior
//	[4:8)           terminal leaf link (key ends at this depth)
//	[8+4*b:12+4*b)  child link for byte b
//
// A link is a frame offset plus one; zero means empty.
const (
	tagLeaf     = 1
	tagInterior = 2

	leafKeyAt   = 4
	leafValueAt = 8
	leafHashAt  = 16
	leafSize    = 24

	terminalAt   = 4
	childrenAt   = 8
	interiorSize = childrenAt + 4*256
)

func childAt(b byte) int {
	return childrenAt + 4*int(b)
}

func newInterior(a *arena.Arena) (arena.Ref, error) {
	ref, err := a.Alloc(interiorSize)
	if err != nil {
		return arena.Ref{}, err
	}
	a.Resolve(ref)[0] = tagInterior
	return ref, nil
}

func newLeaf(a *arena.Arena, key, value arena.Ref, hash uint64) (arena.Ref, error) {
	ref, err := a.Alloc(leafSize)
	if err != nil {
		return arena.Ref{}, err
	}
	a.Resolve(ref)[0] = tagLeaf
	a.PutUint32(ref, leafKeyAt, key.Off+1)
	a.PutUint32(ref, leafValueAt, value.Off+1)
	a.PutUint64(ref, leafHashAt, hash)
	return ref, nil
}

func isLeaf(a *arena.Arena, node arena.Ref) bool {
	switch a.Resolve(node)[0] {
	case tagLeaf:
		return true
	case tagInterior:
		return false
	}
	arena.Violate(arena.Errorf("table", arena.KindCorrupt, "%v is not a table node", node))
	return false
}

// link follows the link stored at byte offset at of node.
func link(a *arena.Arena, node arena.Ref, at int) (arena.Ref, bool) {
	l := a.Uint32(node, at)
	if l == 0 {
		return arena.Ref{}, false
	}
	return a.Ref(l - 1), true
}

func setLink(a *arena.Arena, node arena.Ref, at int, target arena.Ref) {
	a.PutUint32(node, at, target.Off+1)
}

func clearLink(a *arena.Arena, node arena.Ref, at int) {
	a.PutUint32(node, at, 0)
}

func leafKey(a *arena.Arena, leaf arena.Ref) arena.Ref {
	k, _ := link(a, leaf, leafKeyAt)
	return k
}

func leafValue(a *arena.Arena, leaf arena.Ref) arena.Ref {
	v, _ := link(a, leaf, leafValueAt)
	return v
}

// freeLeaf drops the leaf together with its key and value arrays.
func freeLeaf(a *arena.Arena, leaf arena.Ref) {
	key, value := leafKey(a, leaf), leafValue(a, leaf)
	a.Release(leaf)
	a.Release(key)
	a.Release(value)
}

// freeNode drops an interior node and everything below it.
func freeNode(a *arena.Arena, node arena.Ref) {
	for b := 255; b >= 0; b-- {
		if child, ok := link(a, node, childAt(byte(b))); ok {
			freeAny(a, child)
		}
	}
	if leaf, ok := link(a, node, terminalAt); ok {
		freeLeaf(a, leaf)
	}
	a.Release(node)
}

func freeAny(a *arena.Arena, node arena.Ref) {
	if isLeaf(a, node) {
		freeLeaf(a, node)
		return
	}
	freeNode(a, node)
}
