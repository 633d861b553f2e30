package project

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/thoreinstein/cairn/internal/configfile"
	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/paths"
)

// Name is the logical config name of the project config.
const Name = "project"

// DocsURL documents the project config file.
const DocsURL = "https://github.com/thoreinstein/cairn/blob/main/docs/configs/project.md"

// DefaultRustToolchain is used when the project does not pick a toolchain.
const DefaultRustToolchain = "stable"

// Config is the latest shape of cairn.yaml.
type Config struct {
	Version      configfile.Version `yaml:"version"`
	Name         string             `yaml:"name"`
	Dependencies Dependencies       `yaml:"dependencies,omitempty"`
	Toolchain    Toolchain          `yaml:"toolchain,omitempty"`
}

// Dependencies holds version pins by package manager and package name.
type Dependencies struct {
	Npm   map[string]string `yaml:"npm,omitempty"`
	Cargo map[string]string `yaml:"cargo,omitempty"`
}

// Toolchain selects compiler toolchains.
type Toolchain struct {
	Rust string `yaml:"rust,omitempty"`
}

// RustToolchain returns the configured Rust toolchain or the default.
func (c *Config) RustToolchain() string {
	if c.Toolchain.Rust == "" {
		return DefaultRustToolchain
	}
	return c.Toolchain.Rust
}

// Definition describes cairn.yaml. defaultName is the project name written
// into a newly created file.
func Definition(defaultName string) configfile.Definition[Config] {
	return configfile.Definition[Config]{
		Name:        Name,
		FileName:    paths.ProjectConfigName,
		Description: "Defines a cairn project",
		DocsURL:     DocsURL,
		Schemas:     []configfile.Schema{schemaV0(), schemaV1(), schemaV2()},
		Migrations:  []configfile.Migration{migrateV0, migrateV1},
		Default: func(context.Context) (string, error) {
			return defaultConfig(defaultName)
		},
		Validate: Validate,
	}
}

// NewLoader returns a loader for cairn.yaml.
func NewLoader(store *configfile.Store, defaultName string) (*configfile.Loader[Config], error) {
	return configfile.NewLoader(store, Definition(defaultName))
}

// Root finds the project directory containing dir.
func Root(dir string) (string, error) {
	root, err := paths.FindProjectRoot(dir)
	if err != nil {
		if errors.Is(err, paths.ErrProjectNotFound) {
			return "", errors.NewUserError(errors.ErrNoProject, "Run: cairn init")
		}
		return "", err
	}
	return root, nil
}

// NameFromDir turns a directory name into a project name.
func NameFromDir(dir string) string {
	name := strings.ToLower(filepath.Base(filepath.Clean(dir)))
	name = invalidNameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		return "cairn-project"
	}
	return name
}

var (
	invalidNameChars = regexp.MustCompile(`[^a-z0-9_-]+`)
	rustChannel      = regexp.MustCompile(`^(stable|beta|nightly)(-\d{4}-\d{2}-\d{2})?$`)
)

func defaultConfig(name string) (string, error) {
	return fmt.Sprintf("version: 2\nname: %s\ntoolchain:\n  rust: %s\n", name, DefaultRustToolchain), nil
}

// Validate checks the rules cairn.yaml's schema cannot express.
func Validate(cfg *Config, path string) error {
	var problems []string

	if strings.TrimSpace(cfg.Name) == "" {
		problems = append(problems, "name must not be blank")
	}

	for _, group := range []struct {
		manager string
		pins    map[string]string
	}{
		{"npm", cfg.Dependencies.Npm},
		{"cargo", cfg.Dependencies.Cargo},
	} {
		for name, version := range group.pins {
			if strings.TrimSpace(name) == "" {
				problems = append(problems, fmt.Sprintf("dependencies.%s has a dependency without a name", group.manager))
				continue
			}
			if _, err := semver.StrictNewVersion(version); err != nil {
				problems = append(problems, fmt.Sprintf("dependencies.%s.%s: %q is not a semantic version", group.manager, name, version))
			}
		}
	}

	if rust := cfg.Toolchain.Rust; rust != "" && !rustChannel.MatchString(rust) {
		if _, err := semver.StrictNewVersion(rust); err != nil {
			problems = append(problems, fmt.Sprintf("toolchain.rust: %q is not a channel or version", rust))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return errors.WithDetailf(errors.Newf("%s", strings.Join(problems, "\n")), "config: %s", path)
}
