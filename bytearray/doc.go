// Package bytearray provides mutable byte arrays stored as arena frames.
//
// A byte array is an arena.Ref whose frame payload is laid out as
//
//	[0:4)             length (little endian)
//	[4:8)             capacity
//	[8:8+capacity)    data
//	[8+capacity]      terminator, always zero
//
// The byte right after the content is always zero, so CString can hand the
// data to code that expects a NUL-terminated string. Bytes between the length
// and the capacity are kept zeroed.
//
// Every function takes the owning arena and goes through it for each access;
// nothing here keeps a resolved slice across an allocation. Views returned by
// View and CString share the relocation hazard of arena.Resolve: use them
// before the next allocation on the same arena.
//
// Range arguments accept Any for "unspecified":
//
//	Subarray(a, s, 0, 3)     // first three bytes
//	Subarray(a, s, 9, Any)   // from offset 9 to the end
//	Subarray(a, s, Any, 3)   // last three bytes
package bytearray
