package doctor

import (
	"context"
	"os/exec"

	"github.com/spf13/afero"

	"github.com/thoreinstein/cairn/internal/configfile"
	"github.com/thoreinstein/cairn/internal/deps"
	"github.com/thoreinstein/cairn/internal/errors"
)

// ToolCheck looks for an external program on PATH.
type ToolCheck struct {
	program  string
	required bool
	hint     string

	// lookPath is exec.LookPath outside tests.
	lookPath func(string) (string, error)
}

var _ Check = (*ToolCheck)(nil)

// NewToolCheck checks that program is on PATH. A missing required program
// is an error, a missing optional one a warning.
func NewToolCheck(program string, required bool, hint string) *ToolCheck {
	return &ToolCheck{program: program, required: required, hint: hint, lookPath: exec.LookPath}
}

// Name returns the unique identifier for this check.
func (c *ToolCheck) Name() string {
	return "tool-" + c.program
}

// Category returns the grouping for this check.
func (c *ToolCheck) Category() string {
	return "tools"
}

// Run executes the check.
func (c *ToolCheck) Run(context.Context) *CheckResult {
	path, err := c.lookPath(c.program)
	if err == nil {
		return &CheckResult{
			Status:  SeverityPass,
			Message: c.program + " found",
			Details: map[string]any{"path": path},
		}
	}

	status := SeverityWarning
	if c.required {
		status = SeverityError
	}
	return &CheckResult{
		Status:  status,
		Message: c.program + " not found on PATH",
		FixHint: c.hint,
	}
}

// ConfigCheck loads one config file and reports whether it is valid.
type ConfigCheck struct {
	config string
	load   func(ctx context.Context) (path string, found bool, err error)
}

var _ Check = (*ConfigCheck)(nil)

// NewConfigCheck checks the config called name with load. A missing file
// is informational.
func NewConfigCheck(name string, load func(ctx context.Context) (string, bool, error)) *ConfigCheck {
	return &ConfigCheck{config: name, load: load}
}

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string {
	return "config-" + c.config
}

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string {
	return "config"
}

// Run executes the check.
func (c *ConfigCheck) Run(ctx context.Context) *CheckResult {
	path, found, err := c.load(ctx)
	switch {
	case err != nil:
		result := &CheckResult{
			Status:  SeverityError,
			Message: err.Error(),
			FixHint: "Fix the file by hand, then run: cairn config validate " + c.config,
		}
		var schemaErr *configfile.SchemaError
		if errors.As(err, &schemaErr) {
			result.Message = c.config + " config is invalid"
			result.Details = map[string]any{
				"path":   schemaErr.Path,
				"stage":  schemaErr.Stage.String(),
				"issues": schemaErr.Issues.String(),
			}
		}
		return result
	case !found:
		return &CheckResult{Status: SeverityInfo, Message: c.config + " config not found"}
	default:
		return &CheckResult{
			Status:  SeverityPass,
			Message: c.config + " config is valid",
			Details: map[string]any{"path": path},
		}
	}
}

// ToolchainCheck compares rust-toolchain.toml with the toolchain the
// project config selects.
type ToolchainCheck struct {
	fs   afero.Fs
	dir  string
	want string
}

var _ Check = (*ToolchainCheck)(nil)

// NewToolchainCheck checks rust-toolchain.toml in dir against want.
func NewToolchainCheck(fs afero.Fs, dir, want string) *ToolchainCheck {
	return &ToolchainCheck{fs: fs, dir: dir, want: want}
}

// Name returns the unique identifier for this check.
func (c *ToolchainCheck) Name() string {
	return "rust-toolchain"
}

// Category returns the grouping for this check.
func (c *ToolchainCheck) Category() string {
	return "project"
}

// Run executes the check.
func (c *ToolchainCheck) Run(context.Context) *CheckResult {
	tf, ok, err := deps.ReadToolchain(c.fs, c.dir)
	switch {
	case err != nil:
		return &CheckResult{
			Status:  SeverityError,
			Message: err.Error(),
			FixHint: "Delete rust-toolchain.toml and run: cairn init",
		}
	case !ok:
		return &CheckResult{
			Status:  SeverityWarning,
			Message: "rust-toolchain.toml not found",
			FixHint: "Run: cairn init",
		}
	case tf.Toolchain.Channel != c.want:
		return &CheckResult{
			Status:  SeverityWarning,
			Message: "rust-toolchain.toml selects " + tf.Toolchain.Channel + " but cairn.yaml selects " + c.want,
			Details: map[string]any{"file": tf.Toolchain.Channel, "config": c.want},
			FixHint: "Make toolchain.rust in cairn.yaml match rust-toolchain.toml",
		}
	default:
		return &CheckResult{Status: SeverityPass, Message: "rust toolchain " + c.want}
	}
}
