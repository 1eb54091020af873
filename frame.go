package arena

import "encoding/binary"

// Frame header layout, little endian:
//
//	[0:4)   payload size
//	[4:8)   reference count
//	[8:12)  previous frame offset + 1 (0 = bottom of the stack)
//	[12:16) marker, frameMagic ^ frame offset
const (
	headerSize = 16
	frameAlign = 8
	frameMagic = 0xb22a7c5d
)

func putHeader(b []byte, size, refs, prev, off uint32) {
	binary.LittleEndian.PutUint32(b[0:], size)
	binary.LittleEndian.PutUint32(b[4:], refs)
	binary.LittleEndian.PutUint32(b[8:], prev)
	binary.LittleEndian.PutUint32(b[12:], frameMagic^off)
}

func frameSize(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b[0:])
}

func frameRefs(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b[4:])
}

func framePrev(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b[8:])
}

func setFrameRefs(b []byte, n uint32) {
	binary.LittleEndian.PutUint32(b[4:], n)
}

func validMarker(b []byte, off uint32) bool {
	return off%frameAlign == 0 && binary.LittleEndian.Uint32(b[12:]) == frameMagic^off
}

// alignUp rounds n up to the frame alignment.
func alignUp(n int) int {
	const mask = frameAlign - 1
	return (n + mask) &^ mask
}
