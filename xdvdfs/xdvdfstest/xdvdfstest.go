// Package xdvdfstest builds small synthetic xdvdfs images in memory for
// tests. It encodes the format independently of package xdvdfs.
package xdvdfstest

import (
	"bytes"
	"encoding/binary"
	"slices"
	"strings"

	"github.com/rstms/xiso"
)

const (
	SectorSize  = 2048
	MagicNumber = "MICROSOFT*XBOX*MEDIA"

	volumeSector     = 32
	firstTableSector = 33
	entryHeaderSize  = 0x0e
)

// Node describes a file or directory to place in a built image.
type Node struct {
	Name     string
	Attr     xiso.DirectoryAttr
	Data     []byte
	Children []*Node
}

func File(name string, data []byte) *Node {
	return &Node{Name: name, Attr: xiso.AttrArchive, Data: data}
}

func Dir(name string, children ...*Node) *Node {
	return &Node{Name: name, Attr: xiso.AttrDirectory, Children: children}
}

func (n *Node) IsDir() bool {
	return n.Attr.Has(xiso.AttrDirectory)
}

// Entry is a raw directory entry as it is laid out in a table sector.
type Entry struct {
	Left        uint16
	Right       uint16
	StartSector uint32
	Size        uint32
	Attr        xiso.DirectoryAttr
	Name        string
}

// Image is a growable image buffer. Sector numbers passed to its methods
// are relative to SectorOffset, the way the volume addresses them.
type Image struct {
	SectorOffset int64
	buf          []byte
	next         uint32
}

func New(sectorOffset int64) *Image {
	return &Image{SectorOffset: sectorOffset, next: firstTableSector}
}

// Build lays out nodes as the root directory of a fresh image, each
// directory table a balanced tree with its root at offset 0.
func Build(sectorOffset int64, nodes ...*Node) *Image {
	img := New(sectorOffset)
	sector, size := img.WriteTable(nodes)
	img.WriteVolumeDescriptor(sector, size, 0)
	return img
}

func (i *Image) Bytes() []byte {
	return i.buf
}

func (i *Image) Reader() *bytes.Reader {
	return bytes.NewReader(i.buf)
}

// Truncate cuts the image to n bytes.
func (i *Image) Truncate(n int) {
	if n < len(i.buf) {
		i.buf = i.buf[:n]
	}
}

// Alloc reserves count sectors after everything written so far.
func (i *Image) Alloc(count int) uint32 {
	start := i.next
	i.next += uint32(count)
	i.grow(i.pos(i.next, 0))
	return start
}

func (i *Image) pos(sector uint32, offset int64) int64 {
	return (i.SectorOffset+int64(sector))*SectorSize + offset
}

func (i *Image) grow(end int64) {
	if end > int64(len(i.buf)) {
		i.buf = append(i.buf, make([]byte, end-int64(len(i.buf)))...)
	}
}

func (i *Image) WriteAt(sector uint32, offset int64, p []byte) {
	start := i.pos(sector, offset)
	i.grow(start + int64(len(p)))
	copy(i.buf[start:], p)
}

func (i *Image) Fill(sector uint32, count int, b byte) {
	i.WriteAt(sector, 0, bytes.Repeat([]byte{b}, count*SectorSize))
}

func (i *Image) WriteVolumeDescriptor(rootSector, rootSize uint32, fileTime uint64) {
	sector := make([]byte, SectorSize)
	copy(sector[0x00:], MagicNumber)
	binary.LittleEndian.PutUint32(sector[0x14:], rootSector)
	binary.LittleEndian.PutUint32(sector[0x18:], rootSize)
	binary.LittleEndian.PutUint64(sector[0x1c:], fileTime)
	copy(sector[0x7ec:], MagicNumber)
	i.WriteAt(volumeSector, 0, sector)
}

// WriteEntry encodes e at offset bytes into the table at sector and returns
// the 4-byte aligned size it occupies.
func (i *Image) WriteEntry(sector uint32, offset int64, e Entry) int64 {
	raw := make([]byte, EntrySize(e.Name))
	binary.LittleEndian.PutUint16(raw[0x00:], e.Left)
	binary.LittleEndian.PutUint16(raw[0x02:], e.Right)
	binary.LittleEndian.PutUint32(raw[0x04:], e.StartSector)
	binary.LittleEndian.PutUint32(raw[0x08:], e.Size)
	raw[0x0c] = byte(e.Attr)
	raw[0x0d] = byte(len(e.Name))
	copy(raw[entryHeaderSize:], e.Name)
	i.WriteAt(sector, offset, raw)
	return int64(len(raw))
}

// WriteData stores a file payload in freshly allocated sectors and returns
// the first one. Empty payloads get sector 0.
func (i *Image) WriteData(data []byte) uint32 {
	if len(data) == 0 {
		return 0
	}
	sector := i.Alloc((len(data) + SectorSize - 1) / SectorSize)
	i.WriteAt(sector, 0, data)
	return sector
}

// EntrySize is the aligned on-disk size of an entry named name.
func EntrySize(name string) int64 {
	return int64(entryHeaderSize+len(name)+3) / 4 * 4
}

type slot struct {
	node   *Node
	offset int64
	left   int
	right  int
}

type table struct {
	slots []slot
	size  int64
}

// add places the median of nodes, then its left and right halves, so the
// subtree root always precedes its children.
func (t *table) add(nodes []*Node) int {
	if len(nodes) == 0 {
		return -1
	}
	mid := len(nodes) / 2
	idx := len(t.slots)
	t.slots = append(t.slots, slot{node: nodes[mid], offset: t.size})
	t.size += EntrySize(nodes[mid].Name)
	left := t.add(nodes[:mid])
	right := t.add(nodes[mid+1:])
	t.slots[idx].left = left
	t.slots[idx].right = right
	return idx
}

func (t *table) units(idx int) uint16 {
	if idx < 0 {
		return 0
	}
	return uint16(t.slots[idx].offset / 4)
}

// WriteTable writes a directory table for nodes, recursing into
// subdirectories, and returns its sector and byte size. An empty node list
// produces a sentinel table.
func (i *Image) WriteTable(nodes []*Node) (uint32, uint32) {
	sorted := slices.Clone(nodes)
	slices.SortFunc(sorted, func(a, b *Node) int {
		return strings.Compare(strings.ToUpper(a.Name), strings.ToUpper(b.Name))
	})

	var t table
	t.add(sorted)
	sectors := max(1, int((t.size+SectorSize-1)/SectorSize))
	start := i.Alloc(sectors)
	i.Fill(start, sectors, 0xff)
	size := uint32(sectors * SectorSize)

	if len(t.slots) == 0 {
		i.WriteEntry(start, 0, Entry{})
		return start, size
	}

	for idx, s := range t.slots {
		e := Entry{
			Left:  t.units(s.left),
			Right: t.units(s.right),
			Attr:  s.node.Attr,
			Name:  s.node.Name,
		}
		if s.node.IsDir() {
			e.StartSector, e.Size = i.WriteTable(s.node.Children)
		} else {
			e.StartSector = i.WriteData(s.node.Data)
			e.Size = uint32(len(s.node.Data))
		}
		i.WriteEntry(start, t.slots[idx].offset, e)
	}
	return start, size
}
