package image

import (
	"errors"
	"io"
	"log"
	"path"

	"github.com/rstms/xiso"
	"github.com/rstms/xiso/xdvdfs"
)

// Result summarizes one traversal. Failures holds host side errors that
// were reported and skipped; format errors abort the walk instead.
type Result struct {
	Directories int
	Files       int
	Bytes       int64
	Failures    []error
}

// Walker visits every reachable entry of a volume and replays the tree
// into a sink: a directory is entered, its whole table walked and left
// again, then the left and right siblings follow.
type Walker struct {
	fs     *xdvdfs.FileSystem
	rs     io.ReadSeeker
	sink   xiso.Sink
	config Config
	dirs   []string
	result Result

	// Visit, when set, is called with the path of every real entry before
	// the sink sees it.
	Visit func(path string, entry *xdvdfs.DirectoryEntry)
}

func NewWalker(fs *xdvdfs.FileSystem, sink xiso.Sink, config Config) *Walker {
	return &Walker{
		fs:     fs,
		rs:     fs.Stream(),
		sink:   sink,
		config: config,
	}
}

// Walk traverses the volume from its root entry. The returned Result is
// valid, possibly partial, even when err is not nil.
func (w *Walker) Walk() (*Result, error) {
	w.result = Result{}
	w.dirs = nil

	root, err := w.fs.RootDir()
	if err != nil {
		return &w.result, err
	}
	err = w.visit(root, 1, 1, tableSteps(w.fs.Volume().RootSize))
	return &w.result, err
}

// minEntrySize is the smallest aligned footprint of a directory entry: the
// header, one name byte and padding to the 4 byte boundary.
const minEntrySize = 16

// tableSteps bounds the sibling chain length of a table of the given size.
// A chain longer than the number of entries the table can hold must revisit
// an entry.
func tableSteps(size uint32) int {
	steps := int(size / minEntrySize)
	if steps < 1 {
		steps = 1
	}
	return steps
}

// visit walks the subtree rooted at entry. depth counts nested directory
// tables; step counts sibling hops inside the current table and is bounded
// by limit.
func (w *Walker) visit(entry *xdvdfs.DirectoryEntry, depth, step, limit int) error {
	if depth > w.config.maxDepth() || step > limit {
		return entry.Wrap(xdvdfs.ErrMaxDepthExceeded)
	}
	if entry.IsEmptySector() {
		return nil
	}

	name, err := entry.Filename()
	if err != nil {
		return err
	}
	if w.Visit != nil {
		w.Visit(w.pathOf(name), entry)
	}

	if entry.IsDir() {
		err = w.directory(entry, name, depth)
	} else {
		err = w.file(entry, name)
	}
	if err != nil {
		return err
	}

	if w.config.LegacyPadding {
		fixed, err := entry.FixStaleRightOffset(w.rs)
		if err != nil {
			return err
		}
		if fixed {
			w.logf("padding after %s, right offset moved to %d", w.pathOf(name), entry.RightOffset())
		}
	}

	if entry.HasLeftChild() {
		left, err := entry.LeftChild(w.rs)
		if err != nil {
			return err
		}
		if err := w.visit(left, depth, step+1, limit); err != nil {
			return err
		}
	}

	if entry.HasRightChild() {
		right, err := entry.RightChild(w.rs)
		if err != nil {
			return err
		}
		if err := w.visit(right, depth, step+1, limit); err != nil {
			return err
		}
	}

	return nil
}

func (w *Walker) directory(entry *xdvdfs.DirectoryEntry, name string, depth int) (err error) {
	p := w.pathOf(name)
	w.logf("creating directory %s", p)

	// A directory the sink refuses is reported once and its subtree is
	// skipped; the entries below it are not counted as failures.
	handle, err := w.sink.CreateDirectory(name)
	if err != nil {
		w.fail(p, err)
		return nil
	}
	if err := w.sink.EnterDirectory(handle); err != nil {
		w.fail(p, err)
		return nil
	}
	w.result.Directories++
	w.dirs = append(w.dirs, name)

	defer func() {
		w.dirs = w.dirs[:len(w.dirs)-1]
		if lerr := w.sink.LeaveDirectory(); lerr != nil && err == nil {
			err = Fatal(lerr)
		}
	}()

	first, err := entry.FirstChild(w.rs)
	if err != nil {
		return err
	}
	return w.visit(first, depth+1, 1, tableSteps(uint32(entry.Size())))
}

func (w *Walker) file(entry *xdvdfs.DirectoryEntry, name string) error {
	p := w.pathOf(name)

	out, err := w.sink.CreateFile(name)
	if err != nil {
		w.fail(p, err)
		return nil
	}
	if out == nil {
		w.result.Files++
		return nil
	}

	w.logf("extracting %s", p)
	n, err := entry.Extract(w.rs, out, w.config.ChunkSize)
	cerr := out.Close()
	w.result.Bytes += n
	if err != nil {
		var we *xdvdfs.WriteError
		if errors.As(err, &we) {
			w.fail(p, err)
			return nil
		}
		return err
	}
	if cerr != nil {
		w.fail(p, cerr)
		return nil
	}
	w.result.Files++
	return nil
}

func (w *Walker) pathOf(name string) string {
	parts := make([]string, 0, len(w.dirs)+2)
	parts = append(parts, "/")
	parts = append(parts, w.dirs...)
	parts = append(parts, name)
	return path.Join(parts...)
}

func (w *Walker) fail(p string, err error) {
	log.Printf("failed %s: %v\n", p, err)
	w.result.Failures = append(w.result.Failures, Fatalf("%s: %v", p, err))
}

func (w *Walker) logf(format string, args ...any) {
	if w.config.Verbose {
		log.Printf(format+"\n", args...)
	}
}
