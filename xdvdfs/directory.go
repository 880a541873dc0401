package xdvdfs

import (
	"bytes"
	"io"
	"strings"

	"github.com/rstms/xiso"
)

const (
	entryHeaderSize = 0x0e

	// EntryOffsetUnit converts the left/right offsets stored in an entry
	// into bytes.
	EntryOffsetUnit = 4

	// DefaultChunkSize is the payload copy buffer size.
	DefaultChunkSize = 0x40000
)

// bytes allowed in a filename besides ASCII letters and digits
const filenamePunct = ". !#$%'()-@^_`{}~"

// DirectoryEntry is one node of a directory table's binary search tree.
//
// Child offsets are relative to the table the entry was loaded from, so the
// entry keeps that table sector and the volume sector offset as its
// addressing context. Decoded children are never stored; every navigation
// call reads the stream again.
type DirectoryEntry struct {
	left        uint16
	right       uint16
	startSector uint32
	size        uint32
	attr        xiso.DirectoryAttr
	name        []byte

	table        uint32
	offset       int64
	sectorOffset int64
}

// ReadDirectoryEntry decodes the entry found offset bytes into the table
// at sector, with sectorOffset applied to the whole volume.
func ReadDirectoryEntry(rs io.ReadSeeker, sector uint32, offset int64, sectorOffset int64) (*DirectoryEntry, error) {
	d := &DirectoryEntry{
		table:        sector,
		offset:       offset,
		sectorOffset: sectorOffset,
	}

	buf, err := readSpan(rs, d.tableBase()+offset, SectorSize)
	if err != nil {
		return nil, err
	}
	if len(buf) < entryHeaderSize {
		return nil, d.Wrap(ErrTruncatedRead)
	}

	d.left = le16(buf[0x00:])
	d.right = le16(buf[0x02:])
	d.startSector = le32(buf[0x04:])
	d.size = le32(buf[0x08:])
	d.attr = xiso.DirectoryAttr(le8(buf[0x0c:]))
	nameLen := int(le8(buf[0x0d:]))
	if len(buf) < entryHeaderSize+nameLen {
		return nil, d.Wrap(ErrTruncatedRead)
	}
	d.name = bytes.Clone(buf[entryHeaderSize : entryHeaderSize+nameLen])

	return d, nil
}

func (d *DirectoryEntry) tableBase() int64 {
	return (d.sectorOffset + int64(d.table)) * SectorSize
}

// Wrap attaches this entry's location and raw name to err.
func (d *DirectoryEntry) Wrap(err error) *FormatError {
	return &FormatError{
		Err:    err,
		Sector: d.sectorOffset + int64(d.table),
		Offset: d.offset,
		Name:   string(d.name),
	}
}

// ValidFilename reports whether name may be used as a host path element.
func ValidFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case 'A' <= c && c <= 'Z':
		case 'a' <= c && c <= 'z':
		case '0' <= c && c <= '9':
		case strings.IndexByte(filenamePunct, c) >= 0:
		default:
			return false
		}
	}
	return true
}

// Filename returns the decoded name, failing with ErrInvalidFilename for
// anything that could escape the extraction directory.
func (d *DirectoryEntry) Filename() (string, error) {
	name := string(d.name)
	if !ValidFilename(name) {
		return "", d.Wrap(ErrInvalidFilename)
	}
	return name, nil
}

// Name returns the raw name bytes without validation, for diagnostics.
func (d *DirectoryEntry) Name() string {
	return string(d.name)
}

func (d *DirectoryEntry) IsDir() bool {
	return d.attr.Has(xiso.AttrDirectory)
}

// IsEmptySector reports whether this is the placeholder written for an
// empty directory: a zero length name, or table space filled with 0xFF.
func (d *DirectoryEntry) IsEmptySector() bool {
	return len(d.name) == 0 || (d.left == 0xffff && d.right == 0xffff)
}

func (d *DirectoryEntry) HasLeftChild() bool {
	return d.left != 0
}

func (d *DirectoryEntry) HasRightChild() bool {
	return d.right != 0
}

func (d *DirectoryEntry) LeftOffset() uint16 {
	return d.left
}

func (d *DirectoryEntry) RightOffset() uint16 {
	return d.right
}

func (d *DirectoryEntry) Attr() xiso.DirectoryAttr {
	return d.attr
}

func (d *DirectoryEntry) Size() int64 {
	return int64(d.size)
}

func (d *DirectoryEntry) StartSector() uint32 {
	return d.startSector
}

// TableSector is the sector of the table this entry was read from,
// relative to the volume sector offset.
func (d *DirectoryEntry) TableSector() uint32 {
	return d.table
}

// Offset is the byte offset of this entry within its table.
func (d *DirectoryEntry) Offset() int64 {
	return d.offset
}

func (d *DirectoryEntry) SectorOffset() int64 {
	return d.sectorOffset
}

// LeftChild loads the left sibling from the same table. Callers check
// HasLeftChild first.
func (d *DirectoryEntry) LeftChild(rs io.ReadSeeker) (*DirectoryEntry, error) {
	return d.sibling(rs, d.left)
}

// RightChild loads the right sibling from the same table. Callers check
// HasRightChild first.
func (d *DirectoryEntry) RightChild(rs io.ReadSeeker) (*DirectoryEntry, error) {
	return d.sibling(rs, d.right)
}

func (d *DirectoryEntry) sibling(rs io.ReadSeeker, units uint16) (*DirectoryEntry, error) {
	return ReadDirectoryEntry(rs, d.table, int64(units)*EntryOffsetUnit, d.sectorOffset)
}

// FirstChild loads the root node of the table describing this directory's
// contents.
func (d *DirectoryEntry) FirstChild(rs io.ReadSeeker) (*DirectoryEntry, error) {
	if !d.IsDir() {
		return nil, d.Wrap(ErrNotADirectory)
	}
	return ReadDirectoryEntry(rs, d.startSector, 0, d.sectorOffset)
}

// Extract copies the file payload to w in chunks of chunkSize bytes and
// returns the number of bytes written. Read failures are FormatErrors;
// failures of w are WriteErrors.
func (d *DirectoryEntry) Extract(rs io.ReadSeeker, w io.Writer, chunkSize int) (int64, error) {
	if d.IsDir() {
		return 0, d.Wrap(ErrIsADirectory)
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	remaining := int64(d.size)
	if remaining == 0 {
		return 0, nil
	}

	sector := d.sectorOffset + int64(d.startSector)
	if _, err := rs.Seek(sector*SectorSize, io.SeekStart); err != nil {
		return 0, Fatal(err)
	}

	buf := make([]byte, min(int64(chunkSize), remaining))
	var written int64
	for remaining > 0 {
		n := int(min(int64(len(buf)), remaining))
		if _, err := io.ReadFull(rs, buf[:n]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return written, &FormatError{Err: ErrTruncatedRead, Sector: sector, Offset: written, Name: d.Name()}
			}
			return written, Fatal(err)
		}
		m, err := w.Write(buf[:n])
		written += int64(m)
		if err == nil && m != n {
			err = io.ErrShortWrite
		}
		if err != nil {
			return written, &WriteError{Name: d.Name(), Err: err}
		}
		remaining -= int64(n)
	}
	return written, nil
}
