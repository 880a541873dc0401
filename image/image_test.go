package image

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rstms/xiso"
	"github.com/rstms/xiso/xdvdfs"
	"github.com/rstms/xiso/xdvdfs/xdvdfstest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func pattern(n int, seed byte) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i) ^ seed
	}
	return data
}

type testFile struct {
	path string
	data []byte
}

func testTree() ([]*xdvdfstest.Node, []testFile, []string) {
	xbe := pattern(70000, 0x11)
	intro := pattern(5000, 0x22)
	nodes := []*xdvdfstest.Node{
		xdvdfstest.File("default.xbe", xbe),
		xdvdfstest.File("readme.txt", []byte("hi")),
		xdvdfstest.Dir("media",
			xdvdfstest.File("intro.bik", intro),
			xdvdfstest.Dir("sub", xdvdfstest.File("deep.txt", []byte("hello"))),
		),
		xdvdfstest.Dir("empty"),
		xdvdfstest.File("zero", nil),
	}
	files := []testFile{
		{"default.xbe", xbe},
		{"readme.txt", []byte("hi")},
		{"media/intro.bik", intro},
		{"media/sub/deep.txt", []byte("hello")},
		{"zero", []byte{}},
	}
	dirs := []string{"media", "media/sub", "empty"}
	return nodes, files, dirs
}

func writeImage(t *testing.T, fsys afero.Fs, filename string, img *xdvdfstest.Image) {
	err := afero.WriteFile(fsys, filename, img.Bytes(), 0600)
	require.Nil(t, err)
}

func TestImageExtractTree(t *testing.T) {
	fsys := afero.NewMemMapFs()
	nodes, files, dirs := testTree()
	writeImage(t, fsys, "/game.iso", xdvdfstest.Build(0, nodes...))

	config := DefaultConfig()
	config.ChunkSize = 4096
	result, err := ExtractImage(fsys, "/game.iso", "/game", config, false)
	require.Nil(t, err)
	require.Empty(t, result.Failures)
	require.Equal(t, len(files), result.Files)
	require.Equal(t, len(dirs), result.Directories)

	for _, dir := range dirs {
		isDir, err := afero.IsDir(fsys, filepath.Join("/game", dir))
		require.Nil(t, err)
		require.True(t, isDir, dir)
	}
	for _, file := range files {
		data, err := afero.ReadFile(fsys, filepath.Join("/game", file.path))
		require.Nil(t, err)
		require.True(t, bytes.Equal(file.data, data), file.path)
	}

	empty, err := afero.ReadDir(fsys, "/game/empty")
	require.Nil(t, err)
	require.Empty(t, empty)
}

func TestImageExtractTwice(t *testing.T) {
	fsys := afero.NewMemMapFs()
	nodes, _, _ := testTree()
	writeImage(t, fsys, "/game.iso", xdvdfstest.Build(0, nodes...))
	_, err := ExtractImage(fsys, "/game.iso", "/game", DefaultConfig(), false)
	require.Nil(t, err)
	result, err := ExtractImage(fsys, "/game.iso", "/game", DefaultConfig(), false)
	require.Nil(t, err)
	require.Empty(t, result.Failures)
}

func TestImageDryRun(t *testing.T) {
	fsys := afero.NewMemMapFs()
	nodes, files, _ := testTree()
	writeImage(t, fsys, "/game.iso", xdvdfstest.Build(0, nodes...))

	result, err := ExtractImage(fsys, "/game.iso", "/game", DefaultConfig(), true)
	require.Nil(t, err)
	require.Equal(t, len(files), result.Files)
	require.Equal(t, int64(70000+2+5000+5), result.Bytes)

	exists, err := afero.Exists(fsys, "/game")
	require.Nil(t, err)
	require.False(t, exists)
}

func TestImageInvalidFilenameCreatesNothing(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeImage(t, fsys, "/evil.iso", xdvdfstest.Build(0,
		xdvdfstest.File("..", []byte("up")),
	))
	_, err := ExtractImage(fsys, "/evil.iso", "/out/evil", DefaultConfig(), false)
	require.True(t, errors.Is(err, xdvdfs.ErrInvalidFilename))

	entries, err := afero.ReadDir(fsys, "/out/evil")
	require.Nil(t, err)
	require.Empty(t, entries)
	exists, err := afero.Exists(fsys, "/out/up")
	require.Nil(t, err)
	require.False(t, exists)
}

func TestImageAlternateOffset(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeImage(t, fsys, "/redump.iso", xdvdfstest.Build(100,
		xdvdfstest.File("default.xbe", []byte("XBEH")),
	))

	config := DefaultConfig()
	config.AlternateOffset = 100
	img, err := Open(fsys, "/redump.iso", config)
	require.Nil(t, err)
	defer img.Close()
	require.True(t, img.Redump())

	info, err := img.Info()
	require.Nil(t, err)
	require.Equal(t, int64(100), info["sector_offset"])
	require.Equal(t, "/redump.iso", info["filename"])

	config.AlternateOffset = 0
	_, err = Open(fsys, "/redump.iso", config)
	require.True(t, errors.Is(err, xdvdfs.ErrBadMagicStart))
}

func TestImageNotXbox(t *testing.T) {
	fsys := afero.NewMemMapFs()
	err := afero.WriteFile(fsys, "/plain.iso", make([]byte, 80*xdvdfstest.SectorSize), 0600)
	require.Nil(t, err)
	_, err = Open(fsys, "/plain.iso", DefaultConfig())
	require.True(t, errors.Is(err, xdvdfs.ErrBadMagicStart))
}

func TestImageScanFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeImage(t, fsys, "/game.iso", xdvdfstest.Build(0,
		xdvdfstest.File("b.txt", []byte("bb")),
		&xdvdfstest.Node{Name: "a.sys", Attr: xiso.AttrHidden | xiso.AttrSystem | xiso.AttrReadOnly, Data: []byte("a")},
		xdvdfstest.Dir("c", xdvdfstest.File("d", []byte("dddd"))),
	))
	img, err := Open(fsys, "/game.iso", DefaultConfig())
	require.Nil(t, err)
	defer img.Close()

	records, err := img.ScanFiles()
	require.Nil(t, err)
	require.Len(t, records, 4)

	byName := map[string]FileRecord{}
	for _, record := range records {
		byName[record.Name] = record
	}
	require.Equal(t, int64(2), byName["/b.txt"].Size)
	require.True(t, byName["/a.sys"].Hidden)
	require.True(t, byName["/a.sys"].System)
	require.True(t, byName["/a.sys"].ReadOnly)
	require.True(t, byName["/c"].Dir)
	require.Equal(t, int64(0), byName["/c"].Size)
	require.Equal(t, int64(4), byName["/c/d"].Size)
}

func TestOutputDir(t *testing.T) {
	require.Equal(t, "halo", OutputDir("halo.iso"))
	require.Equal(t, filepath.Join("games", "halo"), OutputDir(filepath.Join("games", "halo.iso")))
	require.Equal(t, "image.d", OutputDir("image"))
}

func TestHostSinkRejectsUnsafeNames(t *testing.T) {
	fsys := afero.NewMemMapFs()
	sink, err := NewHostSink(fsys, "/out")
	require.Nil(t, err)
	_, err = sink.CreateFile("../escape")
	require.Error(t, err)
	_, err = sink.CreateDirectory("a\\b")
	require.Error(t, err)
	require.Error(t, sink.LeaveDirectory())
}

func TestHostSinkNesting(t *testing.T) {
	fsys := afero.NewMemMapFs()
	sink, err := NewHostSink(fsys, "/out")
	require.Nil(t, err)

	dir, err := sink.CreateDirectory("sub")
	require.Nil(t, err)
	require.Nil(t, sink.EnterDirectory(dir))
	f, err := sink.CreateFile("file")
	require.Nil(t, err)
	_, err = f.Write([]byte("data"))
	require.Nil(t, err)
	require.Nil(t, f.Close())
	require.Nil(t, sink.LeaveDirectory())

	f, err = sink.CreateFile("top")
	require.Nil(t, err)
	require.Nil(t, f.Close())

	data, err := afero.ReadFile(fsys, "/out/sub/file")
	require.Nil(t, err)
	require.Equal(t, "data", string(data))
	exists, err := afero.Exists(fsys, "/out/top")
	require.Nil(t, err)
	require.True(t, exists)
}
