package deps

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/logging"
	"github.com/thoreinstein/cairn/internal/paths"
	"github.com/thoreinstein/cairn/internal/project"
)

// Step is one thing the installer did or would do.
type Step struct {
	Manager Manager `json:"manager"`
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Dir     string  `json:"dir,omitempty"`
	Skipped bool    `json:"skipped"`
}

// Report lists the steps of one install run in order.
type Report struct {
	Toolchain string `json:"toolchain,omitempty"`
	Steps     []Step `json:"steps"`
}

// Installed counts the steps that installed something.
func (r *Report) Installed() int {
	n := 0
	for _, s := range r.Steps {
		if !s.Skipped {
			n++
		}
	}
	return n
}

// Installer installs a project's toolchain and tools into the cairn cache.
type Installer struct {
	Runner Runner
	Fs     afero.Fs

	// InstallDir returns where one tool version is installed. Defaults to
	// paths.ToolInstallDir.
	InstallDir func(manager, name, version string) string

	// DryRun reports the steps without running anything.
	DryRun bool

	// Out receives one progress line per step. Optional.
	Out io.Writer
}

// NewInstaller returns an installer running real processes on the OS file
// system.
func NewInstaller(out io.Writer) *Installer {
	return &Installer{
		Runner: &ExecRunner{Stdout: out, Stderr: out},
		Fs:     afero.NewOsFs(),
		Out:    out,
	}
}

func (i *Installer) installDir(m Manager, name, version string) string {
	if i.InstallDir != nil {
		return i.InstallDir(string(m), name, version)
	}
	return paths.ToolInstallDir(string(m), name, version)
}

func (i *Installer) progress(format string, args ...any) {
	if i.Out != nil {
		fmt.Fprintf(i.Out, format+"\n", args...)
	}
}

// Install installs the Rust toolchain, when the project uses cargo tools,
// and then every resolved tool that is not installed yet. It stops at the
// first failure.
func (i *Installer) Install(ctx context.Context, projectDir string, cfg *project.Config) (*Report, error) {
	logger := logging.FromContext(ctx)

	resolved, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	if hasManager(resolved, Cargo) {
		channel, err := i.channel(projectDir, cfg)
		if err != nil {
			return nil, err
		}
		report.Toolchain = channel

		i.progress("rust toolchain %s", channel)
		if !i.DryRun {
			if err := i.Runner.Run(ctx, projectDir, "rustup", "toolchain", "install", channel,
				"--profile", "minimal", "--target", WasmTarget); err != nil {
				return report, err
			}
		}
	}

	for _, r := range resolved {
		if !r.Compatible {
			logger.Warn("pinned version is outside the supported range", "manager", r.Manager, "name", r.Name, "version", r.Version)
		}

		step := Step{Manager: r.Manager, Name: r.Name, Version: r.Version, Dir: i.installDir(r.Manager, r.Name, r.Version)}
		installed, err := i.isInstalled(step)
		if err != nil {
			return report, err
		}
		step.Skipped = installed

		if installed {
			logger.Debug("already installed", "manager", r.Manager, "name", r.Name, "version", r.Version)
			i.progress("%s %s@%s already installed", r.Manager, r.Name, r.Version)
			report.Steps = append(report.Steps, step)
			continue
		}

		i.progress("%s install %s@%s", r.Manager, r.Name, r.Version)
		if !i.DryRun {
			if err := i.install(ctx, projectDir, report.Toolchain, step); err != nil {
				return report, err
			}
		}
		report.Steps = append(report.Steps, step)
	}

	return report, nil
}

// channel returns the toolchain from rust-toolchain.toml, falling back to
// the project config.
func (i *Installer) channel(projectDir string, cfg *project.Config) (string, error) {
	tf, ok, err := ReadToolchain(i.Fs, projectDir)
	if err != nil {
		return "", err
	}
	if ok {
		return tf.Toolchain.Channel, nil
	}
	if cfg == nil {
		return project.DefaultRustToolchain, nil
	}
	return cfg.RustToolchain(), nil
}

// isInstalled checks for the binary or package a finished install leaves.
func (i *Installer) isInstalled(s Step) (bool, error) {
	var marker string
	switch s.Manager {
	case Cargo:
		marker = filepath.Join(s.Dir, "bin", s.Name)
	case Npm:
		marker = filepath.Join(s.Dir, "node_modules", filepath.FromSlash(s.Name), "package.json")
	default:
		return false, errors.Wrapf(ErrUnknownManager, "%q", s.Manager)
	}
	ok, err := afero.Exists(i.Fs, marker)
	if err != nil {
		return false, errors.Wrapf(err, "checking %s", marker)
	}
	return ok, nil
}

func (i *Installer) install(ctx context.Context, projectDir, channel string, s Step) error {
	if err := i.Fs.MkdirAll(s.Dir, paths.DefaultDirPerm); err != nil {
		return errors.Wrapf(err, "creating %s", s.Dir)
	}

	switch s.Manager {
	case Cargo:
		return i.Runner.Run(ctx, projectDir, "cargo", "+"+channel, "install", s.Name,
			"--version", s.Version, "--root", s.Dir, "--locked")
	case Npm:
		return i.Runner.Run(ctx, projectDir, "npm", "install", "--prefix", s.Dir,
			"--no-save", "--no-fund", "--no-audit", s.Name+"@"+s.Version)
	default:
		return errors.Wrapf(ErrUnknownManager, "%q", s.Manager)
	}
}

func hasManager(resolved []Resolved, m Manager) bool {
	for _, r := range resolved {
		if r.Manager == m {
			return true
		}
	}
	return false
}
