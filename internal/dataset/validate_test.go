package dataset_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/progress-table/internal/dataset"
)

func decode(t *testing.T, src string) any {
	t.Helper()

	var raw any
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	return raw
}

func Test_Validate_Returns_Document_When_Well_Formed(t *testing.T) {
	t.Parallel()

	raw := decode(t, `{
		"headers": ["Lab 1", "Lab 2"],
		"rows": [
			{"date": "2027-10-14", "values": {"Lab 1": 1, "Lab 2": 2.5}},
			{"date": "2028-01-14", "values": {"Lab 1": 1.5, "Lab 2": 3}, "hidden": true}
		],
		"extra": "ignored"
	}`)

	doc, err := dataset.Validate(raw)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	hidden := true
	want := dataset.Document{
		Headers: []string{"Lab 1", "Lab 2"},
		Rows: []dataset.DocumentRow{
			{Date: dataset.NewDate(2027, 10, 14), Values: map[string]float64{"Lab 1": 1, "Lab 2": 2.5}},
			{Date: dataset.NewDate(2028, 1, 14), Values: map[string]float64{"Lab 1": 1.5, "Lab 2": 3}, Hidden: &hidden},
		},
	}

	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func Test_Validate_Collects_Every_Violation_When_Malformed(t *testing.T) {
	t.Parallel()

	raw := decode(t, `{
		"headers": ["Lab 1", 7],
		"rows": [
			{"date": "2027-10-14", "values": {"Lab 1": 1}},
			"not a row",
			{"date": "someday", "values": {"Lab 1": "x", "Lab 2": null}, "hidden": "yes"},
			{"values": []}
		]
	}`)

	_, err := dataset.Validate(raw)
	if !errors.Is(err, dataset.ErrSchemaViolation) {
		t.Fatalf("err=%v, want ErrSchemaViolation", err)
	}

	var schemaErr *dataset.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("err=%T, want *SchemaError", err)
	}

	want := []dataset.Violation{
		{Path: "headers.1", Message: "expected string, received number"},
		{Path: "rows.1", Message: "expected object, received string"},
		{Path: "rows.2.date", Message: `invalid date "someday"`},
		{Path: "rows.2.values.Lab 1", Message: "expected number, received string"},
		{Path: "rows.2.values.Lab 2", Message: "expected number, received null"},
		{Path: "rows.2.hidden", Message: "expected boolean, received string"},
		{Path: "rows.3.date", Message: "required"},
		{Path: "rows.3.values", Message: "expected object, received array"},
	}

	if diff := cmp.Diff(want, schemaErr.Violations); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func Test_Validate_Reports_Missing_Top_Level_Fields_When_Absent(t *testing.T) {
	t.Parallel()

	_, err := dataset.Validate(decode(t, `{}`))

	var schemaErr *dataset.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("err=%v, want *SchemaError", err)
	}

	want := []dataset.Violation{
		{Path: "headers", Message: "required"},
		{Path: "rows", Message: "required"},
	}

	if diff := cmp.Diff(want, schemaErr.Violations); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func Test_Validate_Rejects_Root_When_Not_Object(t *testing.T) {
	t.Parallel()

	_, err := dataset.Validate(decode(t, `[1, 2]`))
	if err == nil {
		t.Fatal("expected error")
	}

	if got, want := err.Error(), "schema violation: expected object, received array"; got != want {
		t.Fatalf("err=%q, want=%q", got, want)
	}
}

// Structural validation accepts files whose value keys disagree with the
// headers. The mismatch is visible through Inconsistencies.
func Test_Validate_Accepts_Mismatched_Value_Keys_When_Structurally_Valid(t *testing.T) {
	t.Parallel()

	raw := decode(t, `{
		"headers": ["Lab 1", "Lab 2"],
		"rows": [{"date": "2027-10-14", "values": {"Lab 1": 1, "Stray": 4}}]
	}`)

	doc, err := dataset.Validate(raw)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	got := dataset.Inconsistencies(dataset.NormalizeLoaded(doc))
	want := []dataset.Violation{
		{Path: "rows.0.values", Message: `missing value for "Lab 2"`},
		{Path: "rows.0.values", Message: `value for unknown header "Stray"`},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("inconsistencies mismatch (-want +got):\n%s", diff)
	}
}
