package xdvdfs

import (
	"errors"
	"io"
)

// FileSystem gives read access to an xdvdfs volume on a seekable stream.
// The stream is borrowed for the lifetime of the FileSystem and every
// operation repositions it, so it must not be shared concurrently.
type FileSystem struct {
	rs io.ReadSeeker
	vd *VolumeDescriptor
}

// New opens the volume on rs, retrying at RedumpSectorOffset when the
// standard location does not validate.
func New(rs io.ReadSeeker) (*FileSystem, error) {
	return Open(rs, RedumpSectorOffset)
}

// Open validates the volume descriptor at the standard location and, if
// that fails with a format error, once more at alternateOffset sectors.
// An alternateOffset of zero disables the retry.
func Open(rs io.ReadSeeker, alternateOffset int64) (*FileSystem, error) {
	vd, err := loadVolume(rs, 0)
	if err != nil {
		var fe *FormatError
		if !errors.As(err, &fe) || alternateOffset == 0 {
			return nil, err
		}
		var retryErr error
		vd, retryErr = loadVolume(rs, alternateOffset)
		if retryErr != nil {
			return nil, errors.Join(err, retryErr)
		}
	}

	result := &FileSystem{
		rs: rs,
		vd: vd,
	}
	return result, nil
}

func loadVolume(rs io.ReadSeeker, sectorOffset int64) (*VolumeDescriptor, error) {
	vd, err := ReadVolumeDescriptor(rs, sectorOffset)
	if err != nil {
		return nil, err
	}
	if err := vd.Validate(); err != nil {
		return nil, err
	}
	return vd, nil
}

func (f *FileSystem) RootDir() (*DirectoryEntry, error) {
	return f.vd.RootEntry(f.rs)
}

func (f *FileSystem) Volume() *VolumeDescriptor {
	return f.vd
}

func (f *FileSystem) Stream() io.ReadSeeker {
	return f.rs
}

func (f *FileSystem) SectorOffset() int64 {
	return f.vd.SectorOffset()
}

// Redump reports whether the volume was found at a shifted location.
func (f *FileSystem) Redump() bool {
	return f.vd.SectorOffset() != 0
}

func (f *FileSystem) Info() (map[string]any, error) {
	info := map[string]any{
		"magic":         MagicNumber,
		"root_sector":   f.vd.RootSector,
		"root_size":     f.vd.RootSize,
		"sector_offset": f.vd.SectorOffset(),
		"redump":        f.Redump(),
	}
	if created := f.vd.Created(); !created.IsZero() {
		info["created"] = created.Format("2006-01-02T15:04:05Z")
	}

	root, err := f.RootDir()
	if err != nil {
		return nil, err
	}
	info["root_empty"] = root.IsEmptySector()

	return info, nil
}
