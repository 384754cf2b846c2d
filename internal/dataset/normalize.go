package dataset

import (
	"maps"
	"math"
	"slices"
)

// NormalizeLoaded turns a validated [Document] into a [Dataset]. Rows without
// a hidden flag become visible, and nil collections become empty ones.
//
// Row order and value keys are taken as-is. A document whose value keys do not
// match its headers is not repaired here.
func NormalizeLoaded(doc Document) Dataset {
	ds := Dataset{
		Headers: slices.Clone(doc.Headers),
		Rows:    make([]Row, len(doc.Rows)),
	}

	if ds.Headers == nil {
		ds.Headers = []string{}
	}

	for i, row := range doc.Rows {
		values := maps.Clone(row.Values)
		if values == nil {
			values = map[string]float64{}
		}

		hidden := false
		if row.Hidden != nil {
			hidden = *row.Hidden
		}

		ds.Rows[i] = Row{Date: row.Date, Values: values, Hidden: hidden}
	}

	return ds
}

// PrepareForPersistence returns a copy of ds that is safe to publish or write:
// every NaN, infinite or negative value becomes 0. ds is not modified.
func PrepareForPersistence(ds Dataset) Dataset {
	out := ds.Clone()

	for _, row := range out.Rows {
		for k, v := range row.Values {
			row.Values[k] = sanitize(v)
		}
	}

	return out
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}

	return v
}
