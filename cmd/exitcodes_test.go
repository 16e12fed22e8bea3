package cmd

import (
	"errors"
	"fmt"
	"testing"

	nxerrors "github.com/shawnkhoffman/nx/internal/errors"
)

func TestExitCodeForNil(t *testing.T) {
	if got := exitCodeFor(nil); got != 0 {
		t.Fatalf("exitCodeFor(nil) = %d, want 0", got)
	}
}

func TestExitCodeForArgError(t *testing.T) {
	err := nxerrors.NewArgError("no package name given")
	if got := exitCodeFor(err); got != 2 {
		t.Fatalf("exitCodeFor(ArgError) = %d, want 2", got)
	}
}

func TestExitCodeForWrappedArgError(t *testing.T) {
	err := fmt.Errorf("install failed: %w", nxerrors.NewArgError("no package name given"))
	if got := exitCodeFor(err); got != 2 {
		t.Fatalf("exitCodeFor(wrapped ArgError) = %d, want 2", got)
	}
}

func TestExitCodeForOtherErrors(t *testing.T) {
	if got := exitCodeFor(errors.New("some other failure")); got != 1 {
		t.Fatalf("exitCodeFor(plain error) = %d, want 1", got)
	}
	if got := exitCodeFor(nxerrors.NewConfigError(nxerrors.NoRepo, nil)); got != 1 {
		t.Fatalf("exitCodeFor(ConfigError) = %d, want 1", got)
	}
}
