package errs

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ConsoleReporter is the default error Handler: it formats
//
//	Error: <msg> (Line L, Column C) [E<code>]
//	Hint: <suggestion>
//
// with ANSI color when writing to a TTY, as in spec.md §4.7.
type ConsoleReporter struct {
	out   io.Writer
	color bool
}

// NewConsoleReporter builds a reporter writing to out. Color is
// enabled automatically when out is a file descriptor attached to a
// terminal (including Windows' Cygwin-style terminals), mirroring the
// teacher's own TTY-detection builtin.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	color := false
	if f, ok := out.(*os.File); ok {
		fd := f.Fd()
		color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return &ConsoleReporter{out: out, color: color}
}

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// Handle renders one ErrorInfo. It is registered as the default
// errs.Handler by New.
func (r *ConsoleReporter) Handle(info *ErrorInfo) {
	if len(info.StackTrace) > 0 {
		fmt.Fprintln(r.out, "Traceback (most recent call last):")
		for _, f := range info.StackTrace {
			fmt.Fprintf(r.out, "  File \"%s\", line %d, in %s\n", f.FileName, f.Line, f.FunctionName)
		}
	}
	line := fmt.Sprintf("Error: %s (Line %d, Column %d) [E%d]", info.Message, info.Line, info.Column, info.Code)
	if r.color {
		color := ansiRed
		if info.Severity == Warning || info.Severity == Info {
			color = ansiYellow
		}
		line = color + line + ansiReset
	}
	fmt.Fprintln(r.out, line)
	if info.Suggestion != "" {
		fmt.Fprintf(r.out, "Hint: %s\n", info.Suggestion)
	}
}
