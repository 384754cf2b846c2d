package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Error variables for dataset operations.
var (
	ErrSchemaViolation     = errors.New("schema violation")
	ErrDuplicateColumnName = errors.New("column name already exists")
	ErrColumnNotFound      = errors.New("column not found")
	ErrEmptyColumnName     = errors.New("column name cannot be empty")
	ErrRowIndexOutOfRange  = errors.New("row index out of range")
	ErrInvalidDateShift    = errors.New("date shift would cross a neighboring row")
	ErrInvalidDirection    = errors.New("direction must be +1 or -1")
)

// Violation is one structural problem found by [Validate].
type Violation struct {
	// Path is the dotted location of the offending value, e.g.
	// "rows.2.values.Lab 1". Empty for the document root.
	Path    string
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}

	return v.Path + ": " + v.Message
}

// SchemaError carries every violation found in a document.
//
// errors.Is(err, ErrSchemaViolation) reports true for a *SchemaError.
type SchemaError struct {
	Violations []Violation
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}

	return fmt.Sprintf("%s: %s", ErrSchemaViolation, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrSchemaViolation) work.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaViolation
}
