package dataset_test

import (
	"encoding/json"
	"testing"

	"github.com/calvinalkan/progress-table/internal/dataset"
)

func Test_AddMonths_Clamps_To_Last_Day_When_Target_Month_Is_Shorter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from   string
		months int
		want   string
	}{
		{"2027-01-31", 1, "2027-02-28"},
		{"2028-01-31", 1, "2028-02-29"},
		{"2027-03-31", -1, "2027-02-28"},
		{"2027-05-31", 1, "2027-06-30"},
		{"2027-10-14", 3, "2028-01-14"},
		{"2027-11-30", 3, "2028-02-29"},
		{"2027-01-15", -1, "2026-12-15"},
		{"2027-12-31", 1, "2028-01-31"},
	}

	for _, tt := range tests {
		got := dataset.MustParseDate(tt.from).AddMonths(tt.months).String()
		if got != tt.want {
			t.Errorf("%s + %d months=%s, want=%s", tt.from, tt.months, got, tt.want)
		}
	}
}

func Test_ParseDate_Accepts_ISO_And_RFC3339_When_Valid(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]string{
		"2027-10-14":                "2027-10-14",
		" 2027-10-14 ":              "2027-10-14",
		"2027-10-14T00:00:00Z":      "2027-10-14",
		"2027-10-14T23:30:00-05:00": "2027-10-14",
	} {
		d, err := dataset.ParseDate(input)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", input, err)
		}

		if got := d.String(); got != want {
			t.Errorf("ParseDate(%q)=%s, want=%s", input, got, want)
		}
	}
}

func Test_ParseDate_Returns_Error_When_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "2027-02-30", "14.10.2027", "tomorrow"} {
		if _, err := dataset.ParseDate(input); err == nil {
			t.Errorf("ParseDate(%q) should fail", input)
		}
	}
}

func Test_Date_Compare_Orders_Chronologically_When_Compared(t *testing.T) {
	t.Parallel()

	a := dataset.NewDate(2027, 1, 31)
	b := dataset.NewDate(2027, 2, 1)

	if !a.Before(b) || b.Before(a) || a.Before(a) {
		t.Fatalf("Before ordering broken for %s and %s", a, b)
	}

	if got, want := a.Compare(a), 0; got != want {
		t.Errorf("Compare(self)=%d, want=%d", got, want)
	}
}

func Test_Date_JSON_Uses_Canonical_Form_When_Marshaled(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(dataset.NewDate(2027, 3, 4))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if got, want := string(data), `"2027-03-04"`; got != want {
		t.Fatalf("json=%s, want=%s", got, want)
	}

	var d dataset.Date
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got, want := d, dataset.NewDate(2027, 3, 4); got != want {
		t.Fatalf("date=%s, want=%s", got, want)
	}
}
