package dataset

import (
	"fmt"
	"slices"
	"strconv"
)

// Inconsistencies lists every cross-field invariant ds breaks: duplicate
// headers, rows whose value keys differ from the headers, and rows that are
// not strictly after their predecessor.
//
// [Validate] does not run these checks. Callers use them to warn about files
// that were accepted structurally.
func Inconsistencies(ds Dataset) []Violation {
	var out []Violation

	seen := make(map[string]bool, len(ds.Headers))

	for i, h := range ds.Headers {
		if seen[h] {
			out = append(out, Violation{
				Path:    join("headers", strconv.Itoa(i)),
				Message: fmt.Sprintf("duplicate header %q", h),
			})
		}

		seen[h] = true
	}

	for i, row := range ds.Rows {
		path := join("rows", strconv.Itoa(i))

		for _, h := range ds.Headers {
			if _, ok := row.Values[h]; !ok {
				out = append(out, Violation{Path: join(path, "values"), Message: fmt.Sprintf("missing value for %q", h)})
			}
		}

		extra := make([]string, 0)

		for k := range row.Values {
			if !seen[k] {
				extra = append(extra, k)
			}
		}

		slices.Sort(extra)

		for _, k := range extra {
			out = append(out, Violation{Path: join(path, "values"), Message: fmt.Sprintf("value for unknown header %q", k)})
		}

		if i > 0 && !ds.Rows[i-1].Date.Before(row.Date) {
			out = append(out, Violation{
				Path:    join(path, "date"),
				Message: fmt.Sprintf("%s is not after %s", row.Date, ds.Rows[i-1].Date),
			})
		}
	}

	return out
}
