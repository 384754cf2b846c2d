package cli_test

import (
	"bytes"
	"testing"

	"github.com/calvinalkan/progress-table/internal/cli"
)

func Test_Invalid_Global_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("--invalid-flag", "show")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")

	cli.AssertContains(t, stderr, "Global flags:")
	cli.AssertContains(t, stderr, "--help")
	cli.AssertContains(t, stderr, "--cwd")
	cli.AssertContains(t, stderr, "--config")
	cli.AssertContains(t, stderr, "--cache-dir")
}

func Test_Empty_Cache_Dir_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("--cache-dir=", "show")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "cache-dir cannot be empty")
	cli.AssertContains(t, stderr, "Global flags:")
}

func Test_Bare_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	// Call Run directly without test helper (which adds --cwd)
	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"ptab"}, nil, nil)

	if got, want := exitCode, 0; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stderr.String(), ""; got != want {
		t.Errorf("stderr=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stdout.String(), "ptab - progress multiplier table editor")
	cli.AssertContains(t, stdout.String(), "--cwd")
	cli.AssertContains(t, stdout.String(), "add-row")
	cli.AssertContains(t, stdout.String(), "set <row> <column> <value>")
	cli.AssertContains(t, stdout.String(), "shell [flags]")
}

func Test_Help_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("--help")

	cli.AssertContains(t, stdout, "Commands:")
	cli.AssertContains(t, stdout, "Rows are numbered from 1.")
}

func Test_Unknown_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("frobnicate")

	cli.AssertContains(t, stderr, "unknown command: frobnicate")
	cli.AssertContains(t, stderr, "Commands:")
}

func Test_Command_Help_When_Flag_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("shift", "--help")

	cli.AssertContains(t, stdout, "Usage: ptab shift <row> [flags]")
	cli.AssertContains(t, stdout, "clamped")
	cli.AssertContains(t, stdout, "--back")
}

func Test_Command_Prints_Help_When_Flag_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("show", "--bogus")

	cli.AssertContains(t, stderr, "error: unknown flag: --bogus")
	cli.AssertContains(t, stderr, "Usage: ptab show [flags]")
}

func Test_Command_Fails_When_Arg_Count_Wrong(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "set missing value", args: []string{"set", "1", "Lab 1"}},
		{name: "add-row extra arg", args: []string{"add-row", "x"}},
		{name: "rename-column one arg", args: []string{"rename-column", "Lab 1"}},
		{name: "open two paths", args: []string{"open", "a.json", "b.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stderr := c.MustFail(tt.args...)
			cli.AssertContains(t, stderr, "wrong number of arguments")
		})
	}
}
