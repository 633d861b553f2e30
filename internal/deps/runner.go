package deps

import (
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/logging"
)

// Runner runs external programs.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner runs programs as child processes.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run runs name with args in dir and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return errors.NewSystemError(
			errors.Wrapf(err, "%s is not installed", name),
			"Install "+name+" and make sure it is on your PATH")
	}

	logging.FromContext(ctx).Debug("running", "cmd", name+" "+strings.Join(args, " "), "dir", dir)

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running %s %s", name, strings.Join(args, " "))
	}
	return nil
}
