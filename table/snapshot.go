package table

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	arena "github.com/pavanmanishd/refarena"
	"github.com/pavanmanishd/refarena/bytearray"
)

// cborEncMode uses canonical mode so equal tables encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("table: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Entry is one key/value pair of a snapshot.
type Entry struct {
	Key   []byte `cbor:"1,keyasint"`
	Value []byte `cbor:"2,keyasint"`
}

// Entries copies every pair out of the arena in key order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, t.n)
	t.Each(func(key, value arena.Ref) bool {
		out = append(out, Entry{
			Key:   append([]byte(nil), bytearray.View(t.a, key)...),
			Value: append([]byte(nil), bytearray.View(t.a, value)...),
		})
		return true
	})
	return out
}

// Snapshot serializes the table to CBOR.
func (t *Table) Snapshot() ([]byte, error) {
	return cborEncMode.Marshal(t.Entries())
}

// Restore builds a new table in a from a Snapshot.
func Restore(a *arena.Arena, data []byte) (*Table, error) {
	var entries []Entry
	if err := cbor.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("table: unmarshal snapshot: %w", err)
	}

	t, err := New(a)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		old, replaced, err := t.Put(e.Key, e.Value)
		if err != nil {
			t.Release()
			return nil, fmt.Errorf("table: restore %q: %w", e.Key, err)
		}
		if replaced {
			a.Release(old)
		}
	}
	return t, nil
}
