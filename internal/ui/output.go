package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects OK/Panel and Fail, mostly for tests and cobra.
func SetOutput(out, errOut io.Writer) {
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

func OK(msg string)   { fmt.Fprintln(stdout, current.Success.Render(current.SymOK+" "+msg)) }
func Fail(msg string) { fmt.Fprintln(stderr, current.Error.Render(current.SymFail+" "+msg)) }

// Box frames inner with the theme's border.
func Box(inner string) string {
	return lipgloss.NewStyle().
		Border(current.Border).
		BorderForeground(current.BorderColor).
		Padding(0, 1).
		Render(inner)
}

// Panel prints lines in a framed box.
func Panel(lines []string) {
	fmt.Fprintln(stdout, Box(strings.Join(lines, "\n")))
}
