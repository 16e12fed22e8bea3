package tui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseChoice parses a numbered-prompt response against n candidates.
// Empty input defaults to option 1 (index 0), matching spec §4.9. Any
// out-of-range or non-numeric input is an error.
func ParseChoice(raw string, n int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	choice, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid selection %q", raw)
	}
	if choice < 1 || choice > n {
		return 0, fmt.Errorf("selection %d out of range [1,%d]", choice, n)
	}
	return choice - 1, nil
}

// PromptInstall renders the "Install? [1/2/…/n]:" prompt for n
// alternatives and reads one line from in, returning the 0-based index
// of the chosen candidate. Destructive confirmations (remove/undo) use
// Confirm with defaultYes=false, which prints "[y/N]", instead — this
// helper is for the install-alternatives prompt
// specifically, always defaulting to the first (highest-ranked) option.
func PromptInstall(out io.Writer, in io.Reader, n int) (int, error) {
	options := make([]string, n)
	for i := range options {
		options[i] = strconv.Itoa(i + 1)
	}
	fmt.Fprintf(out, "Install? [%s]: ", strings.Join(options, "/"))

	reader := bufio.NewReader(in)
	line, _ := reader.ReadString('\n')
	return ParseChoice(line, n)
}

// Confirm renders a yes/no prompt whose default answer is shown in
// upper case. Destructive operations (remove, undo) pass
// defaultYes=false per spec §4.9.
func Confirm(out io.Writer, in io.Reader, prompt string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	fmt.Fprintf(out, "%s [%s]: ", prompt, hint)

	reader := bufio.NewReader(in)
	line, _ := reader.ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))

	switch line {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized response %q", line)
	}
}
