package xiso

import "strings"

// DirectoryAttr is the attribute bitset stored in every directory entry.
type DirectoryAttr uint8

const (
	AttrReadOnly  DirectoryAttr = 0x01
	AttrHidden    DirectoryAttr = 0x02
	AttrSystem    DirectoryAttr = 0x04
	AttrDirectory DirectoryAttr = 0x10
	AttrArchive   DirectoryAttr = 0x20
	AttrNormal    DirectoryAttr = 0x80
)

func (a DirectoryAttr) Has(flag DirectoryAttr) bool {
	return a&flag == flag
}

// String renders the set flags in ls-like order, "-" for each clear one.
func (a DirectoryAttr) String() string {
	var b strings.Builder
	flags := []struct {
		attr DirectoryAttr
		char byte
	}{
		{AttrDirectory, 'd'},
		{AttrReadOnly, 'r'},
		{AttrHidden, 'h'},
		{AttrSystem, 's'},
		{AttrArchive, 'a'},
		{AttrNormal, 'n'},
	}
	for _, f := range flags {
		if a.Has(f.attr) {
			b.WriteByte(f.char)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}
