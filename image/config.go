package image

import (
	"github.com/rstms/xiso/xdvdfs"
)

// DefaultMaxDepth bounds the traversal recursion so corrupt or cyclic
// offsets fail instead of looping.
const DefaultMaxDepth = 255

// Config controls how an image is read and walked.
type Config struct {
	// Verbose logs every directory and file as it is visited.
	Verbose bool
	// ChunkSize is the payload copy buffer size in bytes.
	ChunkSize int
	// MaxDepth is the deepest directory nesting allowed. Sibling chains are
	// bounded separately by the size of their table.
	MaxDepth int
	// LegacyPadding enables the stale right offset correction for images
	// from early authoring tools.
	LegacyPadding bool
	// AlternateOffset is the sector displacement retried when the volume
	// does not validate at the standard location. Zero disables the retry.
	AlternateOffset int64
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:       xdvdfs.DefaultChunkSize,
		MaxDepth:        DefaultMaxDepth,
		AlternateOffset: xdvdfs.RedumpSectorOffset,
	}
}

func (c Config) maxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}
