package cli_test

import (
	"path/filepath"
	"testing"

	"github.com/calvinalkan/progress-table/internal/cli"
)

func runShell(t *testing.T, c *cli.CLI, script string, args ...string) (string, string) {
	t.Helper()

	stdout, stderr, exitCode := c.RunWithInput(script, append([]string{"shell"}, args...)...)
	if got, want := exitCode, 0; got != want {
		t.Fatalf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}

	return stdout, stderr
}

func Test_Shell_Runs_Commands_On_One_Table_When_Scripted(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, _ := runShell(t, c, "add-column\nset 1 \"Lab 4\" 7\nshow\nexit\n")

	cli.AssertContains(t, stdout, "ptab shell.")
	cli.AssertContains(t, stdout, "Added column Lab 4")
	cli.AssertContains(t, stdout, "Set row 1 Lab 4 = 7")
	cli.AssertContains(t, c.ReadCache(), `"Lab 4": 7`)
}

func Test_Shell_Exits_When_Input_Ends(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, _ := runShell(t, c, "add-row")

	cli.AssertContains(t, stdout, "Added row 5")
	cli.AssertContains(t, c.ReadCache(), "2028-10-14")
}

func Test_Shell_Prompts_For_Path_When_Save_Has_No_Argument(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	path := filepath.Join(c.Dir, "out.json")

	stdout, _ := runShell(t, c, "save\nout.json\nw\n\nq\n")

	cli.AssertContains(t, stdout, "Save table: ")
	cli.AssertContains(t, stdout, "Saved "+path)
	cli.AssertContains(t, stdout, "Save table ["+path+"]: ")
	cli.AssertContains(t, c.ReadFile("out.json"), `"Lab 1"`)
}

func Test_Shell_Open_Is_Cancelled_When_Input_Ends_At_Prompt(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr := runShell(t, c, "o\n")

	cli.AssertContains(t, stdout, "Open table: ")
	cli.AssertNotContains(t, stdout, "Opened")
	cli.AssertNotContains(t, stderr, "error")
}

func Test_Shell_Opens_File_When_Path_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("in.json", sampleTable)

	stdout, _ := runShell(t, c, "open in.json\nshow\n")

	cli.AssertContains(t, stdout, "Opened "+filepath.Join(c.Dir, "in.json"))
	cli.AssertContains(t, stdout, "Bench")
}

func Test_Shell_Reports_Errors_And_Continues_When_Command_Fails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr := runShell(t, c, "frob\nset 99 \"Lab 1\" 1\nrename-column \"Lab 1\nshell\nopen bad.json\nadd-column\n")

	cli.AssertContains(t, stderr, "Unknown command: frob")
	cli.AssertContains(t, stderr, "row index out of range")
	cli.AssertContains(t, stderr, "unterminated quote")
	cli.AssertContains(t, stderr, "already in a shell")
	cli.AssertContains(t, stderr, "error: Cannot open")
	cli.AssertContains(t, stdout, "Added column Lab 4")
}

func Test_Shell_Help_Lists_Commands_When_Asked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, _ := runShell(t, c, "help\n")

	cli.AssertContains(t, stdout, "toggle-hidden <row>")
	cli.AssertContains(t, stdout, "exit / quit / q")
	cli.AssertNotContains(t, stdout, "shell [flags]")
}

func Test_Shell_Flags_Reset_When_Command_Repeated(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, _ := runShell(t, c, "shift --back 2\nshift 4\n")

	cli.AssertContains(t, stdout, "Moved row 2 to 2027-12-14")
	cli.AssertContains(t, stdout, "Moved row 4 to 2028-08-14")
}

func Test_Shell_Serves_Events_When_Listen_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, _ := runShell(t, c, "exit\n", "--listen", "127.0.0.1:0")

	cli.AssertContains(t, stdout, "Serving events on http://127.0.0.1:")
}
