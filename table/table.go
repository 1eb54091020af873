// Package table implements a lookup table whose nodes, keys and values all live
// in an arena.
//
// The table is a 256-way byte trie. Interior nodes branch on one key byte and
// carry an extra terminal slot for a key that ends at their depth; leaves hold
// a key array, a value array and the key's xxh3 hash. Leaves sit as high in the
// trie as their key allows and are pushed down only when another key shares
// their prefix.
//
// Values go in and out as bytearray handles. Get and Put hand the caller a
// reference it must release; the table keeps its own.
package table

import (
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	arena "github.com/pavanmanishd/refarena"
	"github.com/pavanmanishd/refarena/bytearray"
)

// Table is a byte-keyed lookup table stored in an arena.
type Table struct {
	a    *arena.Arena
	root arena.Ref
	n    int
}

// New creates an empty table in a.
func New(a *arena.Arena) (*Table, error) {
	root, err := newInterior(a)
	if err != nil {
		return nil, err
	}
	return &Table{a: a, root: root}, nil
}

// Arena returns the arena holding the table.
func (t *Table) Arena() *arena.Arena {
	return t.a
}

// Root returns the root node's reference.
func (t *Table) Root() arena.Ref {
	return t.root
}

// Len returns the number of keys.
func (t *Table) Len() int {
	return t.n
}

// Retain adds a reference to the table.
func (t *Table) Retain() {
	t.a.Retain(t.root)
}

// Release drops a reference to the table. The last release frees every node,
// key and value the table still holds; values handed out by Get or Put stay
// alive through the caller's own references.
func (t *Table) Release() {
	if t.a.RefCount(t.root) > 1 {
		t.a.Release(t.root)
		return
	}
	freeNode(t.a, t.root)
	t.root = arena.Ref{}
	t.n = 0
}

// Put stores a copy of key and value. When key was already present, its
// previous value is returned with replaced set; the caller owns that reference.
func (t *Table) Put(key, value []byte) (old arena.Ref, replaced bool, err error) {
	hash := xxh3.Hash(key)
	if node, at, ok := t.find(key, hash); ok {
		v, err := bytearray.FromBytes(t.a, value)
		if err != nil {
			return arena.Ref{}, false, err
		}
		leaf, _ := link(t.a, node, at)
		old = leafValue(t.a, leaf)
		t.a.PutUint32(leaf, leafValueAt, v.Off+1)
		return old, true, nil
	}

	if err := t.insert(key, value, hash); err != nil {
		return arena.Ref{}, false, err
	}
	t.n++
	return arena.Ref{}, false, nil
}

// Get returns the value stored for key with an extra reference the caller must release.
func (t *Table) Get(key []byte) (arena.Ref, bool) {
	node, at, ok := t.find(key, xxh3.Hash(key))
	if !ok {
		return arena.Ref{}, false
	}
	leaf, _ := link(t.a, node, at)
	v := leafValue(t.a, leaf)
	t.a.Retain(v)
	return v, true
}

// Has reports whether key is present.
func (t *Table) Has(key []byte) bool {
	_, _, ok := t.find(key, xxh3.Hash(key))
	return ok
}

// Delete removes key and reports whether it was present.
// Interior nodes left empty stay in place until the table is released.
func (t *Table) Delete(key []byte) bool {
	node, at, ok := t.find(key, xxh3.Hash(key))
	if !ok {
		return false
	}
	leaf, _ := link(t.a, node, at)
	clearLink(t.a, node, at)
	freeLeaf(t.a, leaf)
	t.n--
	return true
}

// Each calls fn for every entry in byte-wise key order until fn returns false.
// fn receives borrowed references; retain them to keep them past the call.
func (t *Table) Each(fn func(key, value arena.Ref) bool) {
	t.each(t.root, fn)
}

func (t *Table) each(node arena.Ref, fn func(key, value arena.Ref) bool) bool {
	if leaf, ok := link(t.a, node, terminalAt); ok {
		if !fn(leafKey(t.a, leaf), leafValue(t.a, leaf)) {
			return false
		}
	}
	for b := 0; b < 256; b++ {
		child, ok := link(t.a, node, childAt(byte(b)))
		if !ok {
			continue
		}
		if isLeaf(t.a, child) {
			if !fn(leafKey(t.a, child), leafValue(t.a, child)) {
				return false
			}
			continue
		}
		if !t.each(child, fn) {
			return false
		}
	}
	return true
}

// find locates the slot holding key's leaf: the node and the byte offset of the link.
func (t *Table) find(key []byte, hash uint64) (arena.Ref, int, bool) {
	node := t.root
	for depth := 0; ; depth++ {
		at := terminalAt
		if depth < len(key) {
			at = childAt(key[depth])
		}
		child, ok := link(t.a, node, at)
		if !ok {
			return arena.Ref{}, 0, false
		}
		if !isLeaf(t.a, child) {
			node = child
			continue
		}
		if t.a.Uint64(child, leafHashAt) == hash && bytearray.EqualBytes(t.a, leafKey(t.a, child), key) {
			return node, at, true
		}
		return arena.Ref{}, 0, false
	}
}

// insert adds a leaf for a key known to be absent, splitting leaves that share its prefix.
func (t *Table) insert(key, value []byte, hash uint64) error {
	v, err := bytearray.FromBytes(t.a, value)
	if err != nil {
		return err
	}
	k, err := bytearray.FromBytes(t.a, key)
	if err != nil {
		bytearray.Release(t.a, v)
		return err
	}
	leaf, err := newLeaf(t.a, k, v, hash)
	if err != nil {
		bytearray.Release(t.a, k)
		bytearray.Release(t.a, v)
		return err
	}

	node := t.root
	for depth := 0; ; depth++ {
		at := terminalAt
		if depth < len(key) {
			at = childAt(key[depth])
		}
		child, ok := link(t.a, node, at)
		if !ok {
			setLink(t.a, node, at, leaf)
			return nil
		}
		if !isLeaf(t.a, child) {
			node = child
			continue
		}

		// child shares key[:depth+1]: push it one level down.
		next, err := newInterior(t.a)
		if err != nil {
			freeLeaf(t.a, leaf)
			return err
		}
		other := bytearray.View(t.a, leafKey(t.a, child))
		otherAt := terminalAt
		if depth+1 < len(other) {
			otherAt = childAt(other[depth+1])
		}
		setLink(t.a, next, otherAt, child)
		setLink(t.a, node, at, next)
		node = next
		arena.Logger().Debug("table leaf split", zap.Int("depth", depth+1))
	}
}
