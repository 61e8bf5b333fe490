// Command arc packs files into an uncompressed archive and unpacks them again.
//
// Usage:
//
//	arc pack <file>... <archive>
//	arc unpack <archive> [-C dir] [-v]
//	arc list <archive> [--digests]
//
// Settings are read from an optional TOML file (--config) and overridden by
// flags. Logs go to stderr; errors exit with status 1.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

// printError writes err to w, in red when w is a terminal.
func printError(w io.Writer, err error) {
	msg := fmt.Sprintf("error: %v", err)
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		c := color.New(color.FgRed)
		c.EnableColor()
		_, _ = c.Fprintln(w, msg)
		return
	}
	_, _ = fmt.Fprintln(w, msg)
}
