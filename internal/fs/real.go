package fs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// ErrWouldBlock is returned by [FS.Lock] when another holder keeps the lock
// past the lock timeout.
var ErrWouldBlock = errors.New("lock would block")

// Real implements [FS] using the real filesystem.
//
// Most methods are pure passthroughs to the [os] package. The exceptions are
// [Real.Exists] which wraps [os.Stat], [Real.WriteFileAtomic] which uses
// atomic file writes, and [Real.Lock] which provides file locking.
type Real struct {
	// LockTimeout bounds how long Lock waits. Zero means DefaultLockTimeout.
	LockTimeout time.Duration
}

// DefaultLockTimeout is used when [Real.LockTimeout] is zero.
const DefaultLockTimeout = 2 * time.Second

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// A passthrough wrapper for [os.ReadFile].
func (r *Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFileAtomic writes through a temp file in the same directory and
// renames it over path. The final file always has mode perm.
func (r *Real) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	err := atomic.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		return err
	}

	// atomic.WriteFile only carries over the mode of a file it replaces.
	return os.Chmod(path, perm)
}

// A passthrough wrapper for [os.MkdirAll].
func (r *Real) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// A passthrough wrapper for [os.Stat].
func (r *Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Exists checks if a file exists using [os.Stat].
// Returns (true, nil) if the file exists, (false, nil) if it does not,
// or (false, err) for other errors.
func (r *Real) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// A passthrough wrapper for [os.Remove].
func (r *Real) Remove(path string) error {
	return os.Remove(path)
}

// --- Locking ---

const (
	lockPerms   = 0o644
	dirPerms    = 0o755
	lockPollMin = time.Millisecond
	lockPollMax = 25 * time.Millisecond
	lockFileExt = ".lock"
)

// realLock holds an exclusive flock on a lock file.
type realLock struct {
	file *os.File
}

func (l *realLock) Close() error {
	if l.file == nil {
		return nil
	}

	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil {
		unlockErr = fmt.Errorf("unlocking lock: %w", unlockErr)
	}

	return errors.Join(unlockErr, closeErr)
}

// Lock takes an exclusive flock on path+".lock", creating the file and its
// directory if needed. The lock file is left in place on release so that
// every holder locks the same inode.
//
// Lock polls with backoff until [Real.LockTimeout] expires and then returns
// an error wrapping [ErrWouldBlock].
func (r *Real) Lock(path string) (Locker, error) {
	lockPath := path + lockFileExt

	timeout := r.LockTimeout
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}

	deadline := time.Now().Add(timeout)
	wait := lockPollMin

	if err := os.MkdirAll(filepath.Dir(lockPath), dirPerms); err != nil {
		return nil, err
	}

	for {
		lock, err := tryLock(lockPath)
		if err == nil {
			return lock, nil
		}

		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, errInodeMismatch) {
			return nil, err
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrWouldBlock, lockPath)
		}

		time.Sleep(wait)
		wait = min(wait*2, lockPollMax)
	}
}

// errInodeMismatch means the lock file was replaced between open and flock.
var errInodeMismatch = errors.New("inode mismatch")

func tryLock(lockPath string) (*realLock, error) {
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, lockPerms)
	if err != nil {
		return nil, err
	}

	fd := int(file.Fd())

	err = unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		_ = file.Close()

		return nil, err
	}

	// Verify the file at the path still has the inode we locked.
	var openStat, pathStat unix.Stat_t

	fstatErr := unix.Fstat(fd, &openStat)
	statErr := unix.Stat(lockPath, &pathStat)

	if fstatErr != nil || statErr != nil || openStat.Ino != pathStat.Ino {
		_ = unix.Flock(fd, unix.LOCK_UN)
		_ = file.Close()

		return nil, errInodeMismatch
	}

	return &realLock{file: file}, nil
}

// Compile-time interface checks.
var _ FS = (*Real)(nil)
