// Package store loads and saves progress tables.
//
// A [Store] reads and writes user-chosen files and a background cache file
// through the same pipeline:
//
//	load: read → JSON decode → dataset.Validate → dataset.NormalizeLoaded
//	save: dataset.PrepareForPersistence → JSON encode → atomic write
//
// The cache location is resolved once per Store and reused.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/calvinalkan/progress-table/internal/dataset"
	"github.com/calvinalkan/progress-table/internal/fs"
)

// Error variables for store operations.
var (
	ErrMalformedJSON = errors.New("file is not valid JSON")
	ErrRead          = errors.New("cannot read file")
	ErrWrite         = errors.New("cannot write file")
	ErrNoCacheDir    = errors.New("cannot determine cache directory")
)

// CacheFileName is the name of the cache file inside the cache directory.
const CacheFileName = "dataset.json"

// AppDirName is the per-application directory below the user cache dir.
const AppDirName = "progress-table"

const (
	filePerms  = 0o644
	cachePerms = 0o755
)

// Options configures a [Store].
type Options struct {
	// CacheDir overrides the cache directory. When empty it is derived from
	// Env and the platform defaults, see [Store.CachePath].
	CacheDir string

	// Env is consulted for XDG_CACHE_HOME. Nil means no overrides.
	Env map[string]string
}

// Store is the persistence gateway. It is safe for concurrent use.
type Store struct {
	fs        fs.FS
	cachePath func() (string, error)
}

// New returns a Store using fsys for all I/O.
func New(fsys fs.FS, opts Options) *Store {
	s := &Store{fs: fsys}
	s.cachePath = sync.OnceValues(func() (string, error) {
		return resolveCachePath(opts)
	})

	return s
}

// Load reads, validates and normalizes the dataset at path.
//
// Errors match [ErrRead], [ErrMalformedJSON] or [dataset.ErrSchemaViolation];
// a schema failure can be unwrapped to *[dataset.SchemaError].
func (s *Store) Load(path string) (dataset.Dataset, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("%w %s: %w", ErrRead, path, err)
	}

	return Decode(data)
}

// Decode runs the load pipeline on raw file content.
func Decode(data []byte) (dataset.Dataset, error) {
	var raw any

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}

	doc, err := dataset.Validate(raw)
	if err != nil {
		return dataset.Dataset{}, err
	}

	return dataset.NormalizeLoaded(doc), nil
}

// Encode runs the save pipeline up to the bytes that would be written:
// normalized, two-space indented JSON with a trailing newline.
func Encode(ds dataset.Dataset) ([]byte, error) {
	prepared := dataset.PrepareForPersistence(ds)

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	err := enc.Encode(prepared)
	if err != nil {
		return nil, fmt.Errorf("encoding dataset: %w", err)
	}

	return buf.Bytes(), nil
}

// Save normalizes ds and writes it to path atomically. The parent directory
// must exist. Errors match [ErrWrite].
func (s *Store) Save(path string, ds dataset.Dataset) error {
	data, err := Encode(ds)
	if err != nil {
		return err
	}

	err = s.fs.WriteFileAtomic(path, data, filePerms)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}

	return nil
}

// CachePath returns the cache file location, resolving it on first use:
//  1. Options.CacheDir, if set
//  2. $XDG_CACHE_HOME/progress-table
//  3. os.UserCacheDir()/progress-table
//
// The result (or error) is memoized for the lifetime of the Store.
func (s *Store) CachePath() (string, error) {
	return s.cachePath()
}

func resolveCachePath(opts Options) (string, error) {
	if opts.CacheDir != "" {
		dir, err := filepath.Abs(opts.CacheDir)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrNoCacheDir, err)
		}

		return filepath.Join(dir, CacheFileName), nil
	}

	if xdg := opts.Env["XDG_CACHE_HOME"]; xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, AppDirName, CacheFileName), nil
	}

	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoCacheDir, err)
	}

	return filepath.Join(dir, AppDirName, CacheFileName), nil
}

// LoadCache loads the cached dataset. A missing cache file is not an error:
// found is false and ds is the zero Dataset. A cache that exists but cannot
// be read or parsed returns the same errors as [Store.Load].
func (s *Store) LoadCache() (ds dataset.Dataset, found bool, err error) {
	path, err := s.CachePath()
	if err != nil {
		return dataset.Dataset{}, false, err
	}

	exists, err := s.fs.Exists(path)
	if err != nil {
		return dataset.Dataset{}, false, fmt.Errorf("%w %s: %w", ErrRead, path, err)
	}

	if !exists {
		return dataset.Dataset{}, false, nil
	}

	ds, err = s.Load(path)
	if err != nil {
		return dataset.Dataset{}, true, err
	}

	return ds, true, nil
}

// WriteCache saves ds to the cache location, creating the directory on
// demand.
func (s *Store) WriteCache(ds dataset.Dataset) error {
	path, err := s.CachePath()
	if err != nil {
		return err
	}

	err = s.fs.MkdirAll(filepath.Dir(path), cachePerms)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}

	return s.Save(path, ds)
}

// LockCache takes the exclusive lock that guards the cache file. Only one
// editor session should write through to a cache at a time.
func (s *Store) LockCache() (fs.Locker, error) {
	path, err := s.CachePath()
	if err != nil {
		return nil, err
	}

	lock, err := s.fs.Lock(path)
	if err != nil {
		return nil, fmt.Errorf("locking cache %s: %w", path, err)
	}

	return lock, nil
}
