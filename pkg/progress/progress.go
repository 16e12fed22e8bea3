/*
Package progress provides phase spinners and streaming-output helpers
for nx's SystemOrchestrator (update/rebuild/upgrade), which reads child
process output line-by-line and forwards it to the user while preserving
indentation on wrapped lines (spec §5).
*/
package progress

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner represents a loading spinner with success/failure states
type Spinner struct {
	spinner *spinner.Spinner
	message string
}

// NewSpinner creates a new spinner with the given message
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Prefix = message + " "
	return &Spinner{
		spinner: s,
		message: message,
	}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	s.spinner.Start()
}

// Stop stops the spinner animation
func (s *Spinner) Stop() {
	s.spinner.Stop()
}

// Success stops the spinner and shows a success message
func (s *Spinner) Success(message string) {
	s.spinner.Stop()
	fmt.Printf("✅ %s\n", message)
}

// Fail stops the spinner and shows a failure message
func (s *Spinner) Fail(message string) {
	s.spinner.Stop()
	fmt.Printf("❌ %s\n", message)
}

// Update changes the spinner message
func (s *Spinner) Update(message string) {
	s.message = message
	s.spinner.Prefix = message + " "
}

// WithProgress wraps a function with a progress spinner
func WithProgress(message string, fn func() error) error {
	s := NewSpinner(message)
	s.Start()

	if err := fn(); err != nil {
		s.Fail("Operation failed")
		return err
	}

	s.Success("Operation completed")
	return nil
}

// StreamLines copies r line-by-line to w, indenting any non-empty line
// that does not start with a space by two spaces so wrapped command output
// stays visually nested under the phase heading that preceded it.
func StreamLines(w io.Writer, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" && !strings.HasPrefix(line, " ") {
			line = "  " + line
		}
		fmt.Fprintln(w, line)
	}
	return scanner.Err()
}
