package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/progress-table/internal/editor"
	"github.com/calvinalkan/progress-table/internal/notify"
)

const (
	shellPrompt = "ptab> "
	historyName = ".ptab_history"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// lineReader is the part of *liner.State the shell uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// ShellCmd returns the shell command.
func ShellCmd(a *app) *Command {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	fs.String("listen", "", "Serve the table as server-sent events on `addr` (overrides config listen)")

	return &Command{
		Flags: fs,
		Usage: "shell [flags]",
		Short: "Edit interactively",
		Long: "Start an interactive session. Every command of ptab is available " +
			"without the ptab prefix and works on one live table; changes are " +
			"written through to the cache as you go. 'w' and 'o' are short for " +
			"save and open. With --listen the current table is served at " +
			"GET /data and streamed at GET /events.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if err := wantArgs(args, 0); err != nil {
				return err
			}

			listen, _ := fs.GetString("listen")
			if !fs.Changed("listen") {
				listen = a.cfg.Listen
			}

			return execShell(ctx, a, io, listen)
		},
	}
}

type shell struct {
	app     *app
	lines   lineReader
	session *editor.Session
	history string
}

func execShell(ctx context.Context, a *app, o *IO, listen string) error {
	sh := &shell{app: a}
	sh.lines = sh.newLineReader()

	defer func() {
		sh.saveHistory()
		_ = sh.lines.Close()
	}()

	bus := notify.NewBus(0)
	dialog := &promptDialog{lines: sh.lines, cwd: a.cfg.EffectiveCwd, out: a.out, errOut: a.errOut}

	session, err := a.startSession(ctx, dialog, bus)
	if err != nil {
		return err
	}

	sh.session = session

	if listen != "" {
		srv, err := notify.Serve(listen, notify.NewHandler(bus, a.logger))
		if err != nil {
			return errors.Join(err, session.Close())
		}

		defer func() { _ = srv.Close() }()

		o.Println("Serving events on http://" + srv.Addr() + "/events")
	}

	o.Println("ptab shell. Type 'help' for commands.")

	sh.loop(ctx)

	return session.Close()
}

func (sh *shell) newLineReader() lineReader {
	f, ok := sh.app.in.(*os.File)
	if !ok || f != os.Stdin {
		return &scanReader{scanner: bufio.NewScanner(sh.app.in), out: sh.app.out}
	}

	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	l.SetCompleter(sh.complete)

	if home := sh.app.env["HOME"]; home != "" {
		sh.history = filepath.Join(home, historyName)

		if hf, err := os.Open(sh.history); err == nil {
			_, _ = l.ReadHistory(hf)
			_ = hf.Close()
		}
	}

	return l
}

func (sh *shell) saveHistory() {
	w, ok := sh.lines.(interface {
		WriteHistory(w io.Writer) (int, error)
	})
	if !ok || sh.history == "" {
		return
	}

	if f, err := os.Create(sh.history); err == nil {
		_, _ = w.WriteHistory(f)
		_ = f.Close()
	}
}

func (sh *shell) loop(ctx context.Context) {
	for ctx.Err() == nil {
		line, err := sh.lines.Prompt(shellPrompt)
		if err != nil {
			if !isAbort(err) {
				fprintln(sh.app.errOut, "error: reading input:", err)
			}

			fprintln(sh.app.out)

			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		sh.lines.AppendHistory(line)

		args, err := splitArgs(line)
		if err != nil {
			fprintln(sh.app.errOut, "error:", err)

			continue
		}

		if !sh.dispatch(ctx, args) {
			return
		}
	}
}

// dispatch runs one shell line. It returns false when the shell should exit.
func (sh *shell) dispatch(ctx context.Context, args []string) bool {
	name := strings.ToLower(args[0])

	switch name {
	case "exit", "quit", "q":
		return false
	case "help", "?":
		sh.printHelp()

		return true
	case "w":
		name = "save"
	case "o":
		name = "open"
	case "shell":
		fprintln(sh.app.errOut, "error: already in a shell")

		return true
	}

	cmd := findCommand(sh.commands(), name)
	if cmd == nil {
		fprintln(sh.app.errOut, "Unknown command:", args[0], "(type 'help' for commands)")

		return true
	}

	o := NewIO(sh.app.out, sh.app.errOut)
	cmd.Run(ctx, o, args[1:])
	o.Finish()

	return true
}

// commands returns the shell's commands, all bound to the live session.
func (sh *shell) commands() []*Command {
	live := func(_ context.Context, _ *IO, fn func(s *editor.Session) error) error {
		return fn(sh.session)
	}

	var out []*Command

	for _, c := range sh.app.commands(live) {
		if c.Name() != "shell" {
			out = append(out, c)
		}
	}

	return out
}

func (sh *shell) printHelp() {
	fprintln(sh.app.out, "Commands:")

	for _, c := range sh.commands() {
		fprintln(sh.app.out, c.HelpLine())
	}

	fprintln(sh.app.out, fmt.Sprintf("  %-22s %s", "w / o", "Short for save / open"))
	fprintln(sh.app.out, fmt.Sprintf("  %-22s %s", "help", "Show this help"))
	fprintln(sh.app.out, fmt.Sprintf("  %-22s %s", "exit / quit / q", "Leave the shell"))
	fprintln(sh.app.out)
	fprintln(sh.app.out, `Quote names with spaces: rename-column "Lab 1" Squat`)
}

// complete provides tab completion for command names and, after a command
// that takes a column, for column names.
func (sh *shell) complete(line string) []string {
	var completions []string

	name, rest, hasArgs := strings.Cut(line, " ")
	if !hasArgs {
		lower := strings.ToLower(line)

		for _, c := range sh.commands() {
			if strings.HasPrefix(c.Name(), lower) {
				completions = append(completions, c.Name())
			}
		}

		return completions
	}

	switch name {
	case "remove-column", "rename-column":
	default:
		return nil
	}

	partial := strings.TrimPrefix(rest, `"`)

	for _, h := range sh.session.Dataset().Headers {
		if strings.HasPrefix(h, partial) {
			completions = append(completions, name+" "+quoteArg(h))
		}
	}

	return completions
}

// scanReader reads lines from a non-terminal input.
type scanReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (r *scanReader) Prompt(prompt string) (string, error) {
	_, _ = io.WriteString(r.out, prompt)

	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}

		return "", io.EOF
	}

	return r.scanner.Text(), nil
}

func (r *scanReader) AppendHistory(string) {}

func (r *scanReader) Close() error { return nil }

func isAbort(err error) bool {
	return errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF)
}

// splitArgs splits a shell line into words. Double and single quotes group
// words; a backslash escapes the next character outside single quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)

			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, current.String())
				current.Reset()

				inWord = false
			}
		default:
			current.WriteRune(r)

			inWord = true
		}
	}

	if quote != 0 || escaped {
		return nil, errUnterminatedQuote
	}

	if inWord {
		args = append(args, current.String())
	}

	return args, nil
}

func quoteArg(s string) string {
	if !strings.ContainsAny(s, " \t\"'\\") {
		return s
	}

	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
