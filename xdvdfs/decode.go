package xdvdfs

import (
	"encoding/binary"
	"fmt"
)

// Decode interprets the first width bytes of b as a little-endian unsigned
// integer. width must be 1, 2 or 4 and b must hold at least width bytes;
// anything else is a caller bug and panics.
func Decode(b []byte, width int) uint32 {
	if len(b) < width {
		panic(fmt.Sprintf("xdvdfs: decode width %d from %d byte span", width, len(b)))
	}
	switch width {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(binary.LittleEndian.Uint16(b))
	case 4:
		return binary.LittleEndian.Uint32(b)
	}
	panic(fmt.Sprintf("xdvdfs: unsupported decode width %d", width))
}

func le8(b []byte) uint8 {
	return uint8(Decode(b, 1))
}

func le16(b []byte) uint16 {
	return uint16(Decode(b, 2))
}

func le32(b []byte) uint32 {
	return Decode(b, 4)
}
