package dataset

import "fmt"

// SeedDate is the date of the first row added to an empty table.
var SeedDate = NewDate(2027, 10, 14)

// Spacing between rows created by [Default] and by appending a row.
const RowSpacingMonths = 3

// DefaultValue is the multiplier given to new cells.
const DefaultValue = 1.0

// ColumnName returns the generated name for the n-th column (1-based).
func ColumnName(n int) string {
	return fmt.Sprintf("Lab %d", n)
}

// Default returns the built-in snapshot used when nothing else is available.
// Every call returns a fresh copy.
func Default() Dataset {
	headers := []string{ColumnName(1), ColumnName(2), ColumnName(3)}

	multipliers := [][]float64{
		{1, 1, 1},
		{1.5, 1.2, 1.1},
		{2.25, 1.5, 1.2},
		{3.5, 1.9, 1.4},
	}

	ds := Dataset{Headers: headers, Rows: make([]Row, len(multipliers))}

	for i, row := range multipliers {
		values := make(map[string]float64, len(headers))
		for j, h := range headers {
			values[h] = row[j]
		}

		ds.Rows[i] = Row{
			Date:   SeedDate.AddMonths(i * RowSpacingMonths),
			Values: values,
		}
	}

	return ds
}
