package xdvdfs

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"

	"github.com/go-restruct/restruct"
)

const (
	SectorSize             = 2048
	VolumeDescriptorSector = 32

	// RedumpSectorOffset is the extra sector displacement found in
	// Redump-style dumps, which carry the video partition in front of the
	// game partition.
	RedumpSectorOffset = 0x30600

	MagicNumber = "MICROSOFT*XBOX*MEDIA"
)

// seconds between 1601-01-01 and 1970-01-01
const fileTimeEpochDelta = 11644473600

// volumeDescriptorRecord is the on-disk layout of the volume descriptor
// sector.
type volumeDescriptorRecord struct {
	Magic      [20]byte
	RootSector uint32
	RootSize   uint32
	FileTime   uint64
	Reserved   [0x7c8]byte
	Magic2     [20]byte
}

// VolumeDescriptor is the xdvdfs superblock. It sits at sector 32 of the
// image, shifted by the sector offset it was read with.
type VolumeDescriptor struct {
	magic        [20]byte
	magic2       [20]byte
	RootSector   uint32
	RootSize     uint32
	FileTime     uint64
	sectorOffset int64
}

// ReadVolumeDescriptor decodes the volume descriptor found sectorOffset
// sectors past its standard location. The result is not validated.
func ReadVolumeDescriptor(rs io.ReadSeeker, sectorOffset int64) (*VolumeDescriptor, error) {
	sector := sectorOffset + VolumeDescriptorSector
	buf, err := readSpan(rs, sector*SectorSize, SectorSize)
	if err != nil {
		return nil, err
	}
	if len(buf) < SectorSize {
		return nil, &FormatError{Err: ErrTruncatedRead, Sector: sector, Offset: int64(len(buf))}
	}

	var rec volumeDescriptorRecord
	if err := restruct.Unpack(buf, binary.LittleEndian, &rec); err != nil {
		return nil, Fatal(err)
	}

	vd := &VolumeDescriptor{
		magic:        rec.Magic,
		magic2:       rec.Magic2,
		RootSector:   rec.RootSector,
		RootSize:     rec.RootSize,
		FileTime:     rec.FileTime,
		sectorOffset: sectorOffset,
	}
	return vd, nil
}

// Validate checks both magic numbers and the root table location. A
// descriptor that fails here must be discarded, not patched.
func (v *VolumeDescriptor) Validate() error {
	if !bytes.Equal(v.magic[:], []byte(MagicNumber)) {
		return v.formatError(ErrBadMagicStart, 0)
	}
	if v.RootSector == 0 || v.RootSize == 0 {
		return v.formatError(ErrEmptyRoot, 0x14)
	}
	if !bytes.Equal(v.magic2[:], []byte(MagicNumber)) {
		return v.formatError(ErrBadMagicEnd, 0x7ec)
	}
	return nil
}

func (v *VolumeDescriptor) formatError(err error, offset int64) *FormatError {
	return &FormatError{
		Err:    err,
		Sector: v.sectorOffset + VolumeDescriptorSector,
		Offset: offset,
	}
}

// RootEntry loads the first node of the root directory table.
func (v *VolumeDescriptor) RootEntry(rs io.ReadSeeker) (*DirectoryEntry, error) {
	return ReadDirectoryEntry(rs, v.RootSector, 0, v.sectorOffset)
}

func (v *VolumeDescriptor) SectorOffset() int64 {
	return v.sectorOffset
}

// Created converts the FILETIME stamp to UTC. A zero stamp yields the zero
// time.
func (v *VolumeDescriptor) Created() time.Time {
	if v.FileTime == 0 {
		return time.Time{}
	}
	secs := int64(v.FileTime/10000000) - fileTimeEpochDelta
	nsec := int64(v.FileTime%10000000) * 100
	return time.Unix(secs, nsec).UTC()
}

// readSpan seeks to pos and reads up to size bytes. Running into the end of
// the stream is not an error here; callers check the length they need.
func readSpan(rs io.ReadSeeker, pos int64, size int) ([]byte, error) {
	if _, err := rs.Seek(pos, io.SeekStart); err != nil {
		return nil, Fatal(err)
	}
	buf := make([]byte, size)
	n, err := io.ReadFull(rs, buf)
	switch err {
	case nil, io.EOF, io.ErrUnexpectedEOF:
	default:
		return nil, Fatal(err)
	}
	return buf[:n], nil
}
