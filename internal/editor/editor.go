// Package editor opens config files in the user's preferred text editor.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/logging"
)

// Editor runs an editor process attached to the given streams.
type Editor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an editor attached to the terminal.
func New() *Editor {
	return &Editor{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Open edits path and waits for the editor to exit. $EDITOR and $VISUAL may
// carry arguments, e.g. "code --wait".
func (e *Editor) Open(ctx context.Context, path string) error {
	argv := Command()
	logging.FromContext(ctx).Debug("opening editor", "editor", argv[0], "path", path)

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return errors.NewSystemError(
			errors.Wrapf(err, "running editor %s", argv[0]),
			"Set EDITOR to an editor that is installed")
	}
	return nil
}

// Command returns the editor command line to use. Fallback chain:
// $EDITOR, $VISUAL, nano, vi.
func Command() []string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	if _, err := exec.LookPath("nano"); err == nil {
		return []string{"nano"}
	}
	return []string{"vi"}
}
