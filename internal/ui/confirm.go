package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm prints prompt with a [y/N] suffix and reads one line from in.
// Only "y" or "yes" (any case) confirms; EOF or anything else declines.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	promptStyle := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)
	fmt.Fprint(out, promptStyle.Render(prompt+" [y/N]: "))

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}
	fmt.Fprintln(out, MutedStyle.Render("  Cancelled."))
	return false
}

// ConfirmDestructive shows a warning box listing what will be lost and
// then asks for confirmation.
func ConfirmDestructive(in io.Reader, out io.Writer, title string, warnings []string) bool {
	r := &Result{Type: ResultWarning, Title: title, Hints: warnings, Width: GetTerminalWidth()}
	fmt.Fprintln(out, r.Render())
	return Confirm(in, out, "Continue?")
}
