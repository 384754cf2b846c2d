package cli

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_SplitArgs_Handles_Quotes_When_Given(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want []string
		err  error
	}{
		{line: "show --all", want: []string{"show", "--all"}},
		{line: `  set   1 "Lab 1"  2 `, want: []string{"set", "1", "Lab 1", "2"}},
		{line: `rename-column 'Lab 1' "Lab \"A\""`, want: []string{"rename-column", "Lab 1", `Lab "A"`}},
		{line: `set 1 Lab\ 2 ""`, want: []string{"set", "1", "Lab 2", ""}},
		{line: `'a\b'`, want: []string{`a\b`}},
		{line: `open "x`, err: errUnterminatedQuote},
		{line: `open x\`, err: errUnterminatedQuote},
	}

	for _, tt := range tests {
		got, err := splitArgs(tt.line)
		if !errors.Is(err, tt.err) {
			t.Fatalf("splitArgs(%q) err=%v, want=%v", tt.line, err, tt.err)
		}

		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("splitArgs(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func Test_QuoteArg_Round_Trips_Through_SplitArgs(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"Lab 1", `a"b`, `c\d`, "plain"} {
		got, err := splitArgs(quoteArg(s))
		if err != nil {
			t.Fatalf("splitArgs(quoteArg(%q)): %v", s, err)
		}

		if diff := cmp.Diff([]string{s}, got); diff != "" {
			t.Fatalf("quoteArg(%q) mismatch (-want +got):\n%s", s, diff)
		}
	}
}
