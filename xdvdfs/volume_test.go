package xdvdfs

import (
	"errors"
	"testing"
	"time"

	"github.com/rstms/xiso/xdvdfs/xdvdfstest"
	"github.com/stretchr/testify/require"
)

func validImage() *xdvdfstest.Image {
	return xdvdfstest.Build(0, xdvdfstest.File("default.xbe", []byte("XBEH")))
}

func requireFormatError(t *testing.T, err error, target error) *FormatError {
	require.Error(t, err)
	require.True(t, errors.Is(err, target), "expected %v, got %v", target, err)
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	return fe
}

func TestVolumeDescriptorValid(t *testing.T) {
	img := validImage()
	vd, err := ReadVolumeDescriptor(img.Reader(), 0)
	require.Nil(t, err)
	require.Nil(t, vd.Validate())
	require.Equal(t, uint32(33), vd.RootSector)
	require.Equal(t, uint32(SectorSize), vd.RootSize)
	require.Equal(t, int64(0), vd.SectorOffset())
	require.True(t, vd.Created().IsZero())
}

func TestVolumeDescriptorBadMagicStart(t *testing.T) {
	img := validImage()
	img.Bytes()[VolumeDescriptorSector*SectorSize] ^= 0xff
	vd, err := ReadVolumeDescriptor(img.Reader(), 0)
	require.Nil(t, err)
	fe := requireFormatError(t, vd.Validate(), ErrBadMagicStart)
	require.Equal(t, int64(VolumeDescriptorSector), fe.Sector)
}

func TestVolumeDescriptorBadMagicEnd(t *testing.T) {
	img := validImage()
	img.Bytes()[VolumeDescriptorSector*SectorSize+0x7ec+19] = '?'
	vd, err := ReadVolumeDescriptor(img.Reader(), 0)
	require.Nil(t, err)
	requireFormatError(t, vd.Validate(), ErrBadMagicEnd)
}

func TestVolumeDescriptorEmptyRoot(t *testing.T) {
	img := validImage()
	img.WriteVolumeDescriptor(0, SectorSize, 0)
	vd, err := ReadVolumeDescriptor(img.Reader(), 0)
	require.Nil(t, err)
	requireFormatError(t, vd.Validate(), ErrEmptyRoot)

	img.WriteVolumeDescriptor(33, 0, 0)
	vd, err = ReadVolumeDescriptor(img.Reader(), 0)
	require.Nil(t, err)
	requireFormatError(t, vd.Validate(), ErrEmptyRoot)
}

func TestVolumeDescriptorTruncated(t *testing.T) {
	img := validImage()
	img.Truncate(VolumeDescriptorSector*SectorSize + 100)
	_, err := ReadVolumeDescriptor(img.Reader(), 0)
	requireFormatError(t, err, ErrTruncatedRead)
}

func TestVolumeDescriptorCreated(t *testing.T) {
	img := validImage()
	// 2001-11-15 00:00:00 UTC
	stamp := uint64(1005782400+fileTimeEpochDelta) * 10000000
	img.WriteVolumeDescriptor(33, SectorSize, stamp+5)
	vd, err := ReadVolumeDescriptor(img.Reader(), 0)
	require.Nil(t, err)
	expected := time.Date(2001, 11, 15, 0, 0, 0, 500, time.UTC)
	require.True(t, expected.Equal(vd.Created()), "got %v", vd.Created())
}

func TestVolumeDescriptorRootEntry(t *testing.T) {
	img := validImage()
	rs := img.Reader()
	vd, err := ReadVolumeDescriptor(rs, 0)
	require.Nil(t, err)
	root, err := vd.RootEntry(rs)
	require.Nil(t, err)
	name, err := root.Filename()
	require.Nil(t, err)
	require.Equal(t, "default.xbe", name)
	require.Equal(t, uint32(33), root.TableSector())
}
