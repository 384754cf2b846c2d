package dataset_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/calvinalkan/progress-table/internal/dataset"
)

func Test_NormalizeLoaded_Defaults_Hidden_To_False_When_Absent(t *testing.T) {
	t.Parallel()

	hidden := true
	doc := dataset.Document{
		Headers: []string{"A"},
		Rows: []dataset.DocumentRow{
			{Date: dataset.NewDate(2027, 1, 1), Values: map[string]float64{"A": 1}},
			{Date: dataset.NewDate(2027, 2, 1), Values: map[string]float64{"A": 2}, Hidden: &hidden},
			{Date: dataset.NewDate(2027, 3, 1)},
		},
	}

	got := dataset.NormalizeLoaded(doc)
	want := dataset.Dataset{
		Headers: []string{"A"},
		Rows: []dataset.Row{
			{Date: dataset.NewDate(2027, 1, 1), Values: map[string]float64{"A": 1}},
			{Date: dataset.NewDate(2027, 2, 1), Values: map[string]float64{"A": 2}, Hidden: true},
			{Date: dataset.NewDate(2027, 3, 1), Values: map[string]float64{}},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("dataset mismatch (-want +got):\n%s", diff)
	}
}

func Test_NormalizeLoaded_Keeps_Row_Order_When_Unsorted(t *testing.T) {
	t.Parallel()

	doc := dataset.Document{
		Headers: []string{},
		Rows: []dataset.DocumentRow{
			{Date: dataset.NewDate(2028, 1, 1)},
			{Date: dataset.NewDate(2027, 1, 1)},
		},
	}

	got := dataset.NormalizeLoaded(doc)

	if got.Rows[0].Date != dataset.NewDate(2028, 1, 1) || got.Rows[1].Date != dataset.NewDate(2027, 1, 1) {
		t.Fatalf("rows were resequenced: %v", got.Rows)
	}
}

func Test_PrepareForPersistence_Zeros_Non_Finite_Values_When_Present(t *testing.T) {
	t.Parallel()

	in := dataset.Dataset{
		Headers: []string{"A", "B", "C"},
		Rows: []dataset.Row{
			{Date: dataset.NewDate(2027, 1, 1), Values: map[string]float64{"A": math.NaN(), "B": 2.5, "C": math.Inf(1)}},
			{Date: dataset.NewDate(2027, 2, 1), Values: map[string]float64{"A": 0, "B": -3, "C": 7}, Hidden: true},
		},
	}

	got := dataset.PrepareForPersistence(in)
	want := dataset.Dataset{
		Headers: []string{"A", "B", "C"},
		Rows: []dataset.Row{
			{Date: dataset.NewDate(2027, 1, 1), Values: map[string]float64{"A": 0, "B": 2.5, "C": 0}},
			{Date: dataset.NewDate(2027, 2, 1), Values: map[string]float64{"A": 0, "B": 0, "C": 7}, Hidden: true},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prepared mismatch (-want +got):\n%s", diff)
	}

	// The input keeps its live values.
	if !math.IsNaN(in.Rows[0].Values["A"]) {
		t.Errorf("input mutated: A=%v, want NaN", in.Rows[0].Values["A"])
	}

	if got, want := in.Rows[1].Values["B"], -3.0; got != want {
		t.Errorf("input mutated: B=%v, want=%v", got, want)
	}
}

func Test_Document_Round_Trips_Through_NormalizeLoaded_When_Converted(t *testing.T) {
	t.Parallel()

	ds := dataset.Default()
	ds.Rows[1].Hidden = true
	ds.Rows[2].Values["Lab 2"] = math.NaN()

	got := dataset.NormalizeLoaded(ds.Document())

	if diff := cmp.Diff(ds, got, cmpopts.EquateNaNs()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func Test_Default_Is_Consistent_When_Created(t *testing.T) {
	t.Parallel()

	ds := dataset.Default()

	if v := dataset.Inconsistencies(ds); len(v) != 0 {
		t.Fatalf("default snapshot inconsistent: %v", v)
	}

	if got, want := ds.Rows[0].Date, dataset.SeedDate; got != want {
		t.Errorf("first date=%s, want=%s", got, want)
	}

	// Fresh copy on every call.
	ds.Rows[0].Values["Lab 1"] = 99

	if got := dataset.Default().Rows[0].Values["Lab 1"]; got == 99 {
		t.Fatal("Default returned shared state")
	}
}

func Test_Inconsistencies_Reports_Duplicates_And_Order_When_Broken(t *testing.T) {
	t.Parallel()

	ds := dataset.Dataset{
		Headers: []string{"A", "A"},
		Rows: []dataset.Row{
			{Date: dataset.NewDate(2027, 2, 1), Values: map[string]float64{"A": 1}},
			{Date: dataset.NewDate(2027, 2, 1), Values: map[string]float64{"A": 1}},
		},
	}

	want := []dataset.Violation{
		{Path: "headers.1", Message: `duplicate header "A"`},
		{Path: "rows.1.date", Message: "2027-02-01 is not after 2027-02-01"},
	}

	if diff := cmp.Diff(want, dataset.Inconsistencies(ds)); diff != "" {
		t.Fatalf("inconsistencies mismatch (-want +got):\n%s", diff)
	}
}
