package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/calvinalkan/progress-table/internal/editor"
)

// ioDialog is the dialog of one-shot commands. It never prompts: file
// commands need their path as an argument. Messages are routed to IO so
// that a failed open or save sets the exit code.
type ioDialog struct {
	o *IO
}

func (d *ioDialog) Confirm(context.Context, editor.DialogOptions) (string, bool, error) {
	return "", false, errPathRequired
}

func (d *ioDialog) Notify(message string, kind editor.Kind) {
	switch kind {
	case editor.KindError:
		d.o.Error(message)
	case editor.KindWarning:
		d.o.Warn(message)
	default:
		d.o.Println(message)
	}
}

// promptDialog is the dialog of the shell. Confirm prompts for a path on
// the shell's line reader; messages are printed right away.
type promptDialog struct {
	lines  lineReader
	cwd    string
	out    io.Writer
	errOut io.Writer
}

func (d *promptDialog) Confirm(_ context.Context, opts editor.DialogOptions) (string, bool, error) {
	prompt := opts.Title
	if opts.DefaultPath != "" {
		prompt += " [" + opts.DefaultPath + "]"
	}

	answer, err := d.lines.Prompt(prompt + ": ")
	if err != nil {
		if isAbort(err) {
			return "", false, nil
		}

		return "", false, err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = opts.DefaultPath
	}

	return resolvePath(answer, d.cwd), answer != "", nil
}

func (d *promptDialog) Notify(message string, kind editor.Kind) {
	switch kind {
	case editor.KindError, editor.KindWarning:
		_, _ = fmt.Fprintf(d.errOut, "%s: %s\n", kind, message)
	default:
		_, _ = fmt.Fprintln(d.out, message)
	}
}
