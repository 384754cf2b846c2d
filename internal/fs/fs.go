// Package fs provides the filesystem operations the editor needs, behind an
// interface so tests can inject failures.
//
// The main types are:
//   - [FS]: interface for filesystem operations
//   - [Real]: production implementation using [os], atomic writes and flock
//   - [Faulty]: testing implementation that fails chosen paths on demand
//
// Example usage:
//
//	fsys := fs.NewReal()
//	data, err := fsys.ReadFile("dataset.json")
//	if err != nil {
//	    return err
//	}
package fs

import (
	"io"
	"os"
)

// Locker is a held lock. Close releases it.
//
// Example:
//
//	lock, err := fsys.Lock("/cache/dataset.json")
//	if err != nil {
//	    return err // lock contention or timeout
//	}
//	defer lock.Close() // always release
//
//	// ... exclusive access to dataset.json ...
type Locker interface {
	io.Closer
}

// FS defines the filesystem operations used by the persistence layer.
//
// Two implementations are provided:
//   - [Real]: production use, wraps [os] package
//   - [Faulty]: testing use, injects failures
//
// All methods mirror their [os] package equivalents but can be intercepted
// for testing with fault injection.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically.
	// Uses a temp file + rename so readers never see a partial file.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	// No error if the directory already exists.
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	// Returns [os.ErrNotExist] if file doesn't exist.
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error

	// Lock acquires an exclusive lock associated with path.
	// Returns an error satisfying errors.Is(err, ErrWouldBlock) if the lock
	// is held elsewhere and cannot be acquired within the lock timeout.
	// Call [Locker.Close] to release the lock.
	Lock(path string) (Locker, error)
}
