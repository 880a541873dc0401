package image

import (
	"github.com/rstms/xiso"
	"github.com/rstms/xiso/xdvdfs"
	"github.com/spf13/afero"
)

type FileRecord struct {
	Name     string
	Dir      bool
	Size     int64
	Sector   uint32
	Attr     xiso.DirectoryAttr
	Hidden   bool
	System   bool
	ReadOnly bool
}

type Image struct {
	Filename string
	config   Config
	file     afero.File
	fs       *xdvdfs.FileSystem
}

// OpenImage opens an image file on the host filesystem.
func OpenImage(filename string, config Config) (*Image, error) {
	if !IsFile(filename) {
		return nil, Fatalf("not a file: %s", filename)
	}
	return Open(afero.NewOsFs(), filename, config)
}

// Open opens filename on fsys and validates its volume descriptor. Format
// errors are returned as they are so callers can classify them.
func Open(fsys afero.Fs, filename string, config Config) (*Image, error) {
	i := Image{Filename: filename, config: config}
	var err error
	i.file, err = fsys.Open(filename)
	if err != nil {
		return nil, Fatal(err)
	}
	i.fs, err = xdvdfs.Open(i.file, config.AlternateOffset)
	if err != nil {
		i.file.Close()
		return nil, err
	}
	return &i, nil
}

func (i *Image) Close() error {
	if i.file != nil {
		err := i.file.Close()
		if err != nil {
			return Fatal(err)
		}
		i.file = nil
	}
	return nil
}

func (i *Image) FileSystem() *xdvdfs.FileSystem {
	return i.fs
}

// Redump reports whether the volume was found at the alternate offset.
func (i *Image) Redump() bool {
	return i.fs.Redump()
}

func (i *Image) Info() (map[string]any, error) {
	info, err := i.fs.Info()
	if err != nil {
		return nil, err
	}
	info["filename"] = i.Filename
	return info, nil
}

// ScanFiles lists every file and directory in traversal order without
// reading any payload.
func (i *Image) ScanFiles() ([]FileRecord, error) {
	records := []FileRecord{}
	w := NewWalker(i.fs, &listSink{}, i.config)
	w.Visit = func(name string, entry *xdvdfs.DirectoryEntry) {
		records = append(records, newFileRecord(name, entry))
	}
	if _, err := w.Walk(); err != nil {
		return []FileRecord{}, err
	}
	return records, nil
}

func newFileRecord(name string, entry *xdvdfs.DirectoryEntry) FileRecord {
	attr := entry.Attr()
	record := FileRecord{
		Name:     name,
		Dir:      entry.IsDir(),
		Sector:   entry.StartSector(),
		Attr:     attr,
		Hidden:   attr.Has(xiso.AttrHidden),
		System:   attr.Has(xiso.AttrSystem),
		ReadOnly: attr.Has(xiso.AttrReadOnly),
	}
	if !record.Dir {
		record.Size = entry.Size()
	}
	return record
}

// Extract replays the image tree into sink.
func (i *Image) Extract(sink xiso.Sink) (*Result, error) {
	return NewWalker(i.fs, sink, i.config).Walk()
}
