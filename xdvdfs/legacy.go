package xdvdfs

import (
	"bytes"
	"io"
)

// Some early authoring tools leave a stale right offset on the last entry
// in a table sector instead of zero. The rest of that sector is 0xFF
// padding, so the real right sibling can only start at the next sector
// boundary of the table.
//
// This was worked out against a single encoder and is only applied when
// asked for.

const paddingProbeSize = 32

var paddingProbe = bytes.Repeat([]byte{0xff}, paddingProbeSize)

// FixStaleRightOffset checks for 0xFF padding directly after the entry and,
// when found, moves the right offset to the next table sector boundary. It
// reports whether the offset was changed. The stream position is restored.
func (d *DirectoryEntry) FixStaleRightOffset(rs io.ReadSeeker) (fixed bool, err error) {
	if d.right == 0 {
		return false, nil
	}

	saved, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return false, Fatal(err)
	}
	defer func() {
		if _, serr := rs.Seek(saved, io.SeekStart); serr != nil && err == nil {
			err = Fatal(serr)
		}
	}()

	end := d.end()
	probe, err := readSpan(rs, d.tableBase()+end, paddingProbeSize)
	if err != nil {
		return false, err
	}
	if !bytes.Equal(probe, paddingProbe) {
		return false, nil
	}

	units := (end + SectorSize - 1) / SectorSize * (SectorSize / EntryOffsetUnit)
	if units > 0xffff {
		return false, nil
	}
	d.right = uint16(units)
	return true, nil
}

// end is the table offset just past this entry, 4-byte aligned.
func (d *DirectoryEntry) end() int64 {
	n := int64(entryHeaderSize + len(d.name))
	return d.offset + (n+EntryOffsetUnit-1)/EntryOffsetUnit*EntryOffsetUnit
}
