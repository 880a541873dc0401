package image

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rstms/xiso"
	"github.com/rstms/xiso/xdvdfs"
	"github.com/spf13/afero"
)

// HostSink writes the extracted tree below a root directory of an
// afero.Fs.
type HostSink struct {
	fs   afero.Fs
	dirs []string
}

// ensure HostSink implements xiso.Sink
var _ xiso.Sink = (*HostSink)(nil)

// NewHostSink creates root, if needed, and returns a sink positioned in it.
func NewHostSink(fsys afero.Fs, root string) (*HostSink, error) {
	if err := fsys.MkdirAll(root, 0755); err != nil {
		return nil, Fatal(err)
	}
	return &HostSink{fs: fsys, dirs: []string{root}}, nil
}

func (s *HostSink) cwd() string {
	return s.dirs[len(s.dirs)-1]
}

func (s *HostSink) join(name string) (string, error) {
	if !xdvdfs.ValidFilename(name) {
		return "", Fatalf("unsafe filename: %q", name)
	}
	return filepath.Join(s.cwd(), name), nil
}

func (s *HostSink) CreateDirectory(name string) (string, error) {
	pathname, err := s.join(name)
	if err != nil {
		return "", err
	}
	err = s.fs.Mkdir(pathname, 0755)
	if err != nil {
		// extracting over a previous run is fine
		if isDir, derr := afero.IsDir(s.fs, pathname); derr == nil && isDir {
			return pathname, nil
		}
		return "", Fatal(err)
	}
	return pathname, nil
}

func (s *HostSink) EnterDirectory(handle string) error {
	if filepath.Dir(handle) != filepath.Clean(s.cwd()) {
		return Fatalf("directory %s is not in %s", handle, s.cwd())
	}
	s.dirs = append(s.dirs, handle)
	return nil
}

func (s *HostSink) LeaveDirectory() error {
	if len(s.dirs) < 2 {
		return Fatalf("leave directory at extraction root")
	}
	s.dirs = s.dirs[:len(s.dirs)-1]
	return nil
}

func (s *HostSink) CreateFile(name string) (io.WriteCloser, error) {
	pathname, err := s.join(name)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.OpenFile(pathname, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, Fatal(err)
	}
	return f, nil
}

// DryRunSink accepts the whole tree and creates nothing. Payloads are still
// read so a truncated image fails the same way it would for real.
type DryRunSink struct {
	depth int
}

var _ xiso.Sink = (*DryRunSink)(nil)

func NewDryRunSink() *DryRunSink {
	return &DryRunSink{}
}

func (s *DryRunSink) CreateDirectory(name string) (string, error) {
	return name, nil
}

func (s *DryRunSink) EnterDirectory(handle string) error {
	s.depth++
	return nil
}

func (s *DryRunSink) LeaveDirectory() error {
	if s.depth == 0 {
		return Fatalf("leave directory at extraction root")
	}
	s.depth--
	return nil
}

func (s *DryRunSink) CreateFile(name string) (io.WriteCloser, error) {
	return discard{}, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) {
	return len(p), nil
}

func (discard) Close() error {
	return nil
}

// listSink walks the tree without touching payloads.
type listSink struct {
	DryRunSink
}

func (s *listSink) CreateFile(name string) (io.WriteCloser, error) {
	return nil, nil
}
