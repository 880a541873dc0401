package xdvdfs

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagicStart    = errors.New("first magic number incorrect")
	ErrEmptyRoot        = errors.New("root directory table is empty")
	ErrBadMagicEnd      = errors.New("second magic number incorrect")
	ErrNotADirectory    = errors.New("not a directory")
	ErrIsADirectory     = errors.New("is a directory")
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrMaxDepthExceeded = errors.New("maximum directory depth exceeded")
	ErrTruncatedRead    = errors.New("truncated read")
)

// FormatError reports a malformed or untrusted structure in the image.
// Sector is absolute, with the volume sector offset already applied.
type FormatError struct {
	Err    error
	Sector int64
	Offset int64
	Name   string
}

func (e *FormatError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("xdvdfs: %v: sector=%d offset=%d name=%q", e.Err, e.Sector, e.Offset, e.Name)
	}
	return fmt.Sprintf("xdvdfs: %v: sector=%d offset=%d", e.Err, e.Sector, e.Offset)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// WriteError is a failure of the output writer while copying a payload.
// The image itself is still trustworthy when one of these is returned.
type WriteError struct {
	Name string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Name, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
