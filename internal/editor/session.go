// Package editor ties the pieces of a running progress table editor together.
//
// A [Session] owns the live table, the persistence gateway, the change
// notifier and the dialog collaborator. It is created once at startup with
// [Start] and torn down with [Session.Close]. Front ends drive the table
// through [Session.Table] and the explicit file actions through
// [Session.OpenFile] and [Session.SaveFile].
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/calvinalkan/progress-table/internal/dataset"
	"github.com/calvinalkan/progress-table/internal/fs"
	"github.com/calvinalkan/progress-table/internal/notify"
	"github.com/calvinalkan/progress-table/internal/store"
	"github.com/calvinalkan/progress-table/internal/table"
)

// ErrSessionActive is returned by [Start] when another session holds the
// cache lock.
var ErrSessionActive = errors.New("another editor session is using the cache")

// Gateway is the persistence a Session needs. *store.Store implements it.
type Gateway interface {
	Load(path string) (dataset.Dataset, error)
	Save(path string, ds dataset.Dataset) error
	LoadCache() (dataset.Dataset, bool, error)
	WriteCache(ds dataset.Dataset) error
	LockCache() (fs.Locker, error)
}

// Options configures [Start].
type Options struct {
	Store  Gateway
	Dialog Dialog
	// Publisher receives every committed snapshot. Nil means notify.Discard.
	Publisher notify.Publisher
	Logger    *slog.Logger
	// LockCache takes the cache lock for the lifetime of the session.
	LockCache bool
}

// Session is one running editor.
type Session struct {
	store    Gateway
	dialog   Dialog
	logger   *slog.Logger
	notifier *notify.Notifier
	engine   *table.Engine
	lock     io.Closer

	mu       sync.Mutex
	lastPath string
}

// Start restores the table from the cache (or the built-in default), wires
// the notifier as the commit hook and publishes the initial snapshot.
//
// A cache that exists but fails validation is reported through the dialog
// and replaced by the default table. Read failures are only logged.
func Start(ctx context.Context, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Session{
		store:  opts.Store,
		dialog: opts.Dialog,
		logger: logger.With("component", "editor"),
	}

	if opts.LockCache {
		lock, err := s.store.LockCache()

		switch {
		case errors.Is(err, fs.ErrWouldBlock):
			return nil, fmt.Errorf("%w: %w", ErrSessionActive, err)
		case err != nil:
			s.logger.Warn("running without cache lock", "error", err)
		default:
			s.lock = lock
		}
	}

	s.notifier = notify.New(notify.Options{
		Publisher: opts.Publisher,
		Cache:     s.store,
		Report: func(err error) {
			s.dialog.Notify(err.Error(), KindWarning)
		},
		Logger: logger,
	})

	initial := s.restore()

	s.engine = table.New(initial, func(ds dataset.Dataset) {
		s.notifier.Committed(ctx, ds)
	})

	s.notifier.Committed(ctx, s.engine.Dataset())

	return s, nil
}

func (s *Session) restore() dataset.Dataset {
	ds, found, err := s.store.LoadCache()

	switch {
	case errors.Is(err, store.ErrMalformedJSON), errors.Is(err, dataset.ErrSchemaViolation):
		s.logger.Error("cached table is invalid", "error", err)
		s.dialog.Notify(fmt.Sprintf("Cached table could not be restored: %v", err), KindError)

		return dataset.Default()
	case err != nil:
		s.logger.Warn("cannot read cached table", "error", err)

		return dataset.Default()
	case !found:
		s.logger.Debug("no cached table, using default")

		return dataset.Default()
	}

	s.warnInconsistent("cache", ds)

	return ds
}

func (s *Session) warnInconsistent(source string, ds dataset.Dataset) {
	for _, v := range dataset.Inconsistencies(ds) {
		s.logger.Warn("inconsistent table", "source", source, "path", v.Path, "problem", v.Message)
	}
}

// Table returns the live table.
func (s *Session) Table() *table.Engine {
	return s.engine
}

// Dataset returns the current snapshot.
func (s *Session) Dataset() dataset.Dataset {
	return s.engine.Dataset()
}

// Results forwards the notifier's task results.
func (s *Session) Results() <-chan notify.Result {
	return s.notifier.Results()
}

// LastPath returns the file most recently opened or saved.
func (s *Session) LastPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastPath
}

// OpenFile loads a table and makes it the live one. With an empty path the
// dialog is asked for one. Failures are reported through the dialog and
// leave the live table unchanged. It reports whether a table was loaded.
func (s *Session) OpenFile(ctx context.Context, path string) bool {
	path, ok := s.choosePath(ctx, path, ActionOpen, "Open table")
	if !ok {
		return false
	}

	ds, err := s.store.Load(path)
	if err != nil {
		s.logger.Info("open failed", "path", path, "error", err)
		s.dialog.Notify(fmt.Sprintf("Cannot open %s: %v", path, err), KindError)

		return false
	}

	s.warnInconsistent(path, ds)
	s.engine.Replace(ds)
	s.setLastPath(path)
	s.dialog.Notify("Opened "+path, KindInfo)

	return true
}

// SaveFile writes the live table to a file. With an empty path the dialog
// is asked for one. Failures are reported through the dialog. It reports
// whether the file was written.
func (s *Session) SaveFile(ctx context.Context, path string) bool {
	path, ok := s.choosePath(ctx, path, ActionSave, "Save table")
	if !ok {
		return false
	}

	err := s.store.Save(path, s.engine.Dataset())
	if err != nil {
		s.logger.Info("save failed", "path", path, "error", err)
		s.dialog.Notify(fmt.Sprintf("Cannot save %s: %v", path, err), KindError)

		return false
	}

	s.setLastPath(path)
	s.dialog.Notify("Saved "+path, KindInfo)

	return true
}

func (s *Session) choosePath(ctx context.Context, path string, action Action, title string) (string, bool) {
	if path != "" {
		return path, true
	}

	path, ok, err := s.dialog.Confirm(ctx, DialogOptions{
		Action:      action,
		Title:       title,
		DefaultPath: s.LastPath(),
		Extensions:  []string{"json"},
	})
	if err != nil {
		s.dialog.Notify(fmt.Sprintf("%s: %v", title, err), KindError)

		return "", false
	}

	if !ok || path == "" {
		return "", false
	}

	return path, true
}

func (s *Session) setLastPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastPath = path
}

// Close flushes the pending cache write and releases the cache lock.
func (s *Session) Close() error {
	err := s.notifier.Close()

	if s.lock != nil {
		err = errors.Join(err, s.lock.Close())
		s.lock = nil
	}

	return err
}
