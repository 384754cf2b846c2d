package cli

import (
	"fmt"
	"io"
)

// IO handles command output. Warnings and errors reported while a command
// runs are collected and printed to stderr both before the first line of
// regular output and again at the end, so they stay visible when the output
// is piped through head or tail.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	warnings []string
	errors   []string
	started  bool
}

// NewIO creates a new IO instance.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Warn records a warning. Warnings do not change the exit code.
func (o *IO) Warn(message string) {
	o.warnings = append(o.warnings, message)
}

// Error records a failure that was already handled, e.g. a file that could
// not be opened. Output continues but [IO.Finish] returns exit code 1.
func (o *IO) Error(message string) {
	o.errors = append(o.errors, message)
}

// Println writes to stdout. On first call, any collected messages
// are printed to stderr first.
func (o *IO) Println(a ...any) {
	o.flushStart()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout. On first call, any collected
// messages are printed to stderr first.
func (o *IO) Printf(format string, a ...any) {
	o.flushStart()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Finish prints collected messages to stderr and returns the exit code:
// 1 if any error was recorded, 0 otherwise.
func (o *IO) Finish() int {
	o.printMessages()

	if len(o.errors) > 0 {
		return 1
	}

	return 0
}

func (o *IO) flushStart() {
	if !o.started && len(o.warnings)+len(o.errors) > 0 {
		o.printMessages()
	}

	o.started = true
}

func (o *IO) printMessages() {
	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}

	for _, e := range o.errors {
		_, _ = fmt.Fprintln(o.errOut, "error:", e)
	}
}
