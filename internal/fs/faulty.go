package fs

import (
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
)

// PathState is the fault state [Faulty] applies to a path.
type PathState int

const (
	// PathNormal means no fault. This is the zero value, so untracked paths
	// are normal.
	PathNormal PathState = iota
	// PathIOError has a "bad sector": every read and write returns EIO.
	PathIOError
	// PathReadOnly fails writes with EROFS; reads pass through.
	PathReadOnly
	// PathNoPermission fails reads and writes with EACCES.
	PathNoPermission
)

// Faulty wraps an [FS] and fails operations on paths that were marked with
// [Faulty.SetPathState]. A state set on a directory applies to everything
// below it.
//
// Unlike random fault injection, Faulty is deterministic: a test decides
// exactly which path breaks and how. All injected errors are real OS errors
// (syscall.Errno wrapped in *fs.PathError), so os.IsPermission and errors.Is
// work the same as with real failures. Use [IsInjected] to tell them apart.
//
// Faulty is safe for concurrent use.
type Faulty struct {
	fs FS

	mu     sync.RWMutex
	states map[string]PathState

	readFails  atomic.Int64
	writeFails atomic.Int64
	lockFails  atomic.Int64
}

// NewFaulty wraps fs. With no path states set it behaves exactly like fs.
func NewFaulty(fs FS) *Faulty {
	return &Faulty{fs: fs, states: make(map[string]PathState)}
}

// SetPathState sets the fault state for path and everything below it.
func (f *Faulty) SetPathState(path string, state PathState) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path = filepath.Clean(path)

	if state == PathNormal {
		delete(f.states, path)

		return
	}

	f.states[path] = state
}

// ResetAllPathStates clears every fault.
func (f *Faulty) ResetAllPathStates() {
	f.mu.Lock()
	defer f.mu.Unlock()

	clear(f.states)
}

// FaultyStats counts injected failures.
type FaultyStats struct {
	ReadFails  int64
	WriteFails int64
	LockFails  int64
}

// Stats returns the number of injected failures so far.
func (f *Faulty) Stats() FaultyStats {
	return FaultyStats{
		ReadFails:  f.readFails.Load(),
		WriteFails: f.writeFails.Load(),
		LockFails:  f.lockFails.Load(),
	}
}

// state returns the state of the closest marked ancestor of path.
func (f *Faulty) state(path string) PathState {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.states) == 0 {
		return PathNormal
	}

	p := filepath.Clean(path)

	for {
		if s, ok := f.states[p]; ok {
			return s
		}

		parent := filepath.Dir(p)
		if parent == p {
			return PathNormal
		}

		p = parent
	}
}

func (f *Faulty) readErr(op, path string) error {
	switch f.state(path) {
	case PathIOError:
		f.readFails.Add(1)

		return pathError(op, path, syscall.EIO)
	case PathNoPermission:
		f.readFails.Add(1)

		return pathError(op, path, syscall.EACCES)
	default:
		return nil
	}
}

func (f *Faulty) writeErr(op, path string) error {
	switch f.state(path) {
	case PathIOError:
		f.writeFails.Add(1)

		return pathError(op, path, syscall.EIO)
	case PathReadOnly:
		f.writeFails.Add(1)

		return pathError(op, path, syscall.EROFS)
	case PathNoPermission:
		f.writeFails.Add(1)

		return pathError(op, path, syscall.EACCES)
	default:
		return nil
	}
}

func pathError(op, path string, errno syscall.Errno) error {
	err := &iofs.PathError{Op: op, Path: path, Err: errno}
	markInjectedPathError(err)

	return err
}

func (f *Faulty) ReadFile(path string) ([]byte, error) {
	if err := f.readErr("read", path); err != nil {
		return nil, err
	}

	return f.fs.ReadFile(path)
}

func (f *Faulty) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := f.writeErr("write", path); err != nil {
		return err
	}

	return f.fs.WriteFileAtomic(path, data, perm)
}

func (f *Faulty) MkdirAll(path string, perm os.FileMode) error {
	if err := f.writeErr("mkdir", path); err != nil {
		return err
	}

	return f.fs.MkdirAll(path, perm)
}

func (f *Faulty) Stat(path string) (os.FileInfo, error) {
	if err := f.readErr("stat", path); err != nil {
		return nil, err
	}

	return f.fs.Stat(path)
}

func (f *Faulty) Exists(path string) (bool, error) {
	if err := f.readErr("stat", path); err != nil {
		return false, err
	}

	return f.fs.Exists(path)
}

func (f *Faulty) Remove(path string) error {
	if err := f.writeErr("remove", path); err != nil {
		return err
	}

	return f.fs.Remove(path)
}

func (f *Faulty) Lock(path string) (Locker, error) {
	if f.state(path) != PathNormal {
		f.lockFails.Add(1)

		return nil, &InjectedError{Err: ErrWouldBlock}
	}

	return f.fs.Lock(path)
}

// Compile-time interface checks.
var _ FS = (*Faulty)(nil)
