package xiso

import "io"

// A Sink is the host filesystem an image tree is extracted into.
//
// Calls arrive in traversal order. Every successful EnterDirectory is
// matched by exactly one LeaveDirectory, even when extraction inside that
// directory fails.
type Sink interface {
	// CreateDirectory makes a directory named name inside the current
	// directory and returns a handle for EnterDirectory.
	CreateDirectory(name string) (string, error)
	EnterDirectory(handle string) error
	LeaveDirectory() error
	// CreateFile opens name in the current directory for writing. A nil
	// writer with a nil error asks the caller to skip the payload.
	CreateFile(name string) (io.WriteCloser, error)
}
