// internal/ui/output.go
package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Spinner starts a spinner on w with the given suffix. Call the returned func to stop it.
func Spinner(w io.Writer, suffix string) (stop func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}

func Success(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.GreenString("✓ "+format, args...))
}

func Failure(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.RedString("✗ "+format, args...))
}

func Notice(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.YellowString(format, args...))
}

func Print(w io.Writer, s string) {
	fmt.Fprintln(w, s)
}
