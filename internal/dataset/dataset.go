// Package dataset defines the progress table data model and the pure
// functions around it: structural validation of parsed documents, inbound and
// outbound normalization, calendar-month date arithmetic and the built-in
// default snapshot.
//
// A [Dataset] is an ordered list of column headers plus chronologically
// ordered rows. Each row maps every header to a non-negative multiplier.
// Nothing in this package performs I/O.
package dataset

import (
	"maps"
	"slices"
)

// Dataset is one snapshot of the table.
//
// Invariants after every committed mutation:
//   - Headers has no duplicates.
//   - Every row's Values key set equals the header set.
//   - Rows are strictly ascending by Date.
//
// Values may hold NaN while an edit is in progress; [PrepareForPersistence]
// removes those before anything leaves the process.
type Dataset struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Row is one dated sample.
type Row struct {
	Date   Date               `json:"date"`
	Values map[string]float64 `json:"values"`
	Hidden bool               `json:"hidden"`
}

// Document is the validated wire form produced by [Validate]. Hidden is a
// pointer so that an absent flag can be told apart from false.
type Document struct {
	Headers []string
	Rows    []DocumentRow
}

// DocumentRow is one row of a [Document].
type DocumentRow struct {
	Date   Date
	Values map[string]float64
	Hidden *bool
}

// Clone returns a deep copy of ds.
func (ds Dataset) Clone() Dataset {
	out := Dataset{
		Headers: slices.Clone(ds.Headers),
		Rows:    make([]Row, len(ds.Rows)),
	}

	if out.Headers == nil {
		out.Headers = []string{}
	}

	for i, row := range ds.Rows {
		out.Rows[i] = row.Clone()
	}

	return out
}

// Clone returns a deep copy of r.
func (r Row) Clone() Row {
	values := maps.Clone(r.Values)
	if values == nil {
		values = map[string]float64{}
	}

	return Row{Date: r.Date, Values: values, Hidden: r.Hidden}
}

// HasHeader reports whether name is one of the headers.
func (ds Dataset) HasHeader(name string) bool {
	return slices.Contains(ds.Headers, name)
}

// Len returns the number of rows.
func (ds Dataset) Len() int {
	return len(ds.Rows)
}

// Document converts ds to its wire form. Hidden is always set.
func (ds Dataset) Document() Document {
	doc := Document{
		Headers: slices.Clone(ds.Headers),
		Rows:    make([]DocumentRow, len(ds.Rows)),
	}

	for i, row := range ds.Rows {
		hidden := row.Hidden
		doc.Rows[i] = DocumentRow{
			Date:   row.Date,
			Values: maps.Clone(row.Values),
			Hidden: &hidden,
		}
	}

	return doc
}
