package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/progress-table/internal/config"
	"github.com/calvinalkan/progress-table/internal/logging"
)

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. A signal on it cancels the context of the running
// command.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := flag.NewFlagSet("ptab", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{})
	globals.Usage = func() {}

	cwd := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	configPath := globals.StringP("config", "c", "", "Use config `file` instead of "+config.FileName)
	cacheDir := globals.String("cache-dir", "", "Override the cache `dir`")
	help := globals.BoolP("help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	err := globals.Parse(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, globals, nil)

		return 1
	}

	rest := globals.Args()

	cfg, err := config.Load(config.Input{
		WorkDirOverride:     *cwd,
		ConfigPath:          *configPath,
		CacheDirOverride:    *cacheDir,
		HasCacheDirOverride: globals.Changed("cache-dir"),
		Env:                 env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, globals, nil)

		return 1
	}

	a := &app{
		cfg:    cfg,
		env:    env,
		in:     in,
		out:    out,
		errOut: errOut,
		logger: logging.New(errOut, cfg.LogLevel, cfg.LogFormat),
	}

	commands := a.commands(a.oneShot)

	if *help || len(rest) == 0 {
		printUsage(out, globals, commands)

		return 0
	}

	name := rest[0]

	cmd := findCommand(commands, name)
	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut, globals, commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	o := NewIO(out, errOut)

	code := cmd.Run(ctx, o, rest[1:])
	if finished := o.Finish(); code == 0 {
		code = finished
	}

	return code
}

func findCommand(commands []*Command, name string) *Command {
	for _, c := range commands {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

func printUsage(w io.Writer, globals *flag.FlagSet, commands []*Command) {
	fprintln(w, "ptab - progress multiplier table editor")
	fprintln(w)
	fprintln(w, "Usage: ptab [flags] <command> [args]")
	fprintln(w)
	fprintln(w, "Global flags:")
	fprintln(w, strings.TrimRight(globals.FlagUsages(), "\n"))

	if len(commands) == 0 {
		return
	}

	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}

	fprintln(w)
	fprintln(w, "Rows are numbered from 1. Run 'ptab <command> --help' for details.")
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

var (
	errArgCount   = errors.New("wrong number of arguments")
	errInvalidRow = errors.New("row must be a positive number")
)
