// Package table owns the live progress table and applies structural edits to
// it.
//
// Every operation on [Engine] is atomic: it either commits a complete new
// snapshot and reports it to the commit hook exactly once, or it returns an
// error and the current snapshot is left untouched. Committed snapshots are
// never modified afterwards, so callers may hold on to them.
package table

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/calvinalkan/progress-table/internal/dataset"
)

// CommitFunc is called with every committed snapshot, in commit order. It
// runs while the engine is locked and must not call back into the engine.
type CommitFunc func(ds dataset.Dataset)

// Engine holds the current snapshot.
//
// Engine is safe for concurrent use; operations are serialized.
type Engine struct {
	mu       sync.Mutex
	current  dataset.Dataset
	onCommit CommitFunc
}

// New returns an engine holding a copy of initial. onCommit may be nil.
func New(initial dataset.Dataset, onCommit CommitFunc) *Engine {
	return &Engine{current: initial.Clone(), onCommit: onCommit}
}

// Dataset returns the current snapshot. It must be treated as read-only.
func (e *Engine) Dataset() dataset.Dataset {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.current
}

// mutate runs fn on a deep copy of the current snapshot and commits the result
// if fn succeeds. fn returning errNoChange ends the operation without a commit.
func (e *Engine) mutate(fn func(next *dataset.Dataset) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.current.Clone()

	err := fn(&next)
	if err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}

		return err
	}

	e.current = next

	if e.onCommit != nil {
		e.onCommit(next)
	}

	return nil
}

// Replace installs ds as the current snapshot.
func (e *Engine) Replace(ds dataset.Dataset) {
	_ = e.mutate(func(next *dataset.Dataset) error {
		*next = ds.Clone()

		return nil
	})
}

// ResetToDefault replaces the snapshot with [dataset.Default], discarding
// everything else.
func (e *Engine) ResetToDefault() {
	e.Replace(dataset.Default())
}

// AddRow appends a row.
//
// On an empty table the row is dated [dataset.SeedDate], every column is
// [dataset.DefaultValue] and the row is visible. Otherwise the row is dated
// three calendar months after the last row, copies its values and starts
// hidden.
func (e *Engine) AddRow() error {
	return e.mutate(func(next *dataset.Dataset) error {
		if len(next.Rows) == 0 {
			values := make(map[string]float64, len(next.Headers))
			for _, h := range next.Headers {
				values[h] = dataset.DefaultValue
			}

			next.Rows = append(next.Rows, dataset.Row{Date: dataset.SeedDate, Values: values})

			return nil
		}

		last := next.Rows[len(next.Rows)-1].Clone()
		last.Date = last.Date.AddMonths(dataset.RowSpacingMonths)
		last.Hidden = true

		next.Rows = append(next.Rows, last)

		return nil
	})
}

// AddColumn appends a column named "Lab {n+1}" where n is the current column
// count, sets it to [dataset.DefaultValue] on every row and returns the name.
//
// The name is not searched for a free slot. If a renamed column already holds
// it, AddColumn fails with [dataset.ErrDuplicateColumnName].
func (e *Engine) AddColumn() (string, error) {
	var name string

	err := e.mutate(func(next *dataset.Dataset) error {
		name = dataset.ColumnName(len(next.Headers) + 1)
		if next.HasHeader(name) {
			return fmt.Errorf("%w: %q", dataset.ErrDuplicateColumnName, name)
		}

		next.Headers = append(next.Headers, name)

		for _, row := range next.Rows {
			row.Values[name] = dataset.DefaultValue
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return name, nil
}

// RemoveColumn deletes the column and its value on every row. Removing an
// unknown column does nothing.
func (e *Engine) RemoveColumn(name string) error {
	return e.mutate(func(next *dataset.Dataset) error {
		idx := slices.Index(next.Headers, name)
		if idx < 0 {
			return errNoChange
		}

		next.Headers = slices.Delete(next.Headers, idx, idx+1)

		for _, row := range next.Rows {
			delete(row.Values, name)
		}

		return nil
	})
}

// RenameColumn renames oldName to newName in place, keeping its position, and
// moves the value key on every row.
//
// Renaming a column to its own name succeeds without a commit.
func (e *Engine) RenameColumn(oldName, newName string) error {
	return e.mutate(func(next *dataset.Dataset) error {
		idx := slices.Index(next.Headers, oldName)
		if idx < 0 {
			return fmt.Errorf("%w: %q", dataset.ErrColumnNotFound, oldName)
		}

		if oldName == newName {
			return errNoChange
		}

		if strings.TrimSpace(newName) == "" {
			return dataset.ErrEmptyColumnName
		}

		if next.HasHeader(newName) {
			return fmt.Errorf("%w: %q", dataset.ErrDuplicateColumnName, newName)
		}

		next.Headers[idx] = newName

		for _, row := range next.Rows {
			if v, ok := row.Values[oldName]; ok {
				delete(row.Values, oldName)
				row.Values[newName] = v
			}
		}

		return nil
	})
}

// SetCellValue parses raw as a float and stores it. Unparseable input is
// stored as NaN and only becomes 0 when the snapshot is persisted. Negative
// numbers are accepted.
func (e *Engine) SetCellValue(row int, header, raw string) error {
	return e.mutate(func(next *dataset.Dataset) error {
		if err := checkRow(*next, row); err != nil {
			return err
		}

		if !next.HasHeader(header) {
			return fmt.Errorf("%w: %q", dataset.ErrColumnNotFound, header)
		}

		next.Rows[row].Values[header] = ParseValue(raw)

		return nil
	})
}

// ParseValue converts cell input to a number, returning NaN when it does not
// parse.
func ParseValue(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}

	return v
}

// ShiftRowDate moves a row's date one calendar month forward (direction +1)
// or back (direction -1).
//
// The shift fails with [dataset.ErrInvalidDateShift] when the new date would
// equal or pass a neighboring row's date.
func (e *Engine) ShiftRowDate(row, direction int) error {
	return e.mutate(func(next *dataset.Dataset) error {
		shifted, err := shiftedDate(*next, row, direction)
		if err != nil {
			return err
		}

		next.Rows[row].Date = shifted

		return nil
	})
}

// CanShiftRowDate reports whether [Engine.ShiftRowDate] would succeed. The
// presentation layer uses it to disable the action.
func (e *Engine) CanShiftRowDate(row, direction int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := shiftedDate(e.current, row, direction)

	return err == nil
}

func shiftedDate(ds dataset.Dataset, row, direction int) (dataset.Date, error) {
	if err := checkRow(ds, row); err != nil {
		return dataset.Date{}, err
	}

	if direction != 1 && direction != -1 {
		return dataset.Date{}, fmt.Errorf("%w: got %d", dataset.ErrInvalidDirection, direction)
	}

	shifted := ds.Rows[row].Date.AddMonths(direction)

	if row > 0 {
		prev := ds.Rows[row-1].Date
		if !prev.Before(shifted) {
			return dataset.Date{}, fmt.Errorf("%w: %s is not after %s", dataset.ErrInvalidDateShift, shifted, prev)
		}
	}

	if row < len(ds.Rows)-1 {
		following := ds.Rows[row+1].Date
		if !shifted.Before(following) {
			return dataset.Date{}, fmt.Errorf("%w: %s is not before %s", dataset.ErrInvalidDateShift, shifted, following)
		}
	}

	return shifted, nil
}

// RemoveRow deletes the row; later rows move up by one.
func (e *Engine) RemoveRow(row int) error {
	return e.mutate(func(next *dataset.Dataset) error {
		if err := checkRow(*next, row); err != nil {
			return err
		}

		next.Rows = slices.Delete(next.Rows, row, row+1)

		return nil
	})
}

// ToggleRowHidden flips the row's hidden flag.
func (e *Engine) ToggleRowHidden(row int) error {
	return e.mutate(func(next *dataset.Dataset) error {
		if err := checkRow(*next, row); err != nil {
			return err
		}

		next.Rows[row].Hidden = !next.Rows[row].Hidden

		return nil
	})
}

func checkRow(ds dataset.Dataset, row int) error {
	if row < 0 || row >= len(ds.Rows) {
		return fmt.Errorf("%w: %d (have %d rows)", dataset.ErrRowIndexOutOfRange, row, len(ds.Rows))
	}

	return nil
}
