package deps

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/thoreinstein/cairn/internal/configfile"
	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/logging"
	"github.com/thoreinstein/cairn/internal/project"
)

// Manager is a package manager cairn installs tools with.
type Manager string

// Supported package managers.
const (
	Npm   Manager = "npm"
	Cargo Manager = "cargo"
)

// Managers lists the supported package managers in install order.
var Managers = []Manager{Cargo, Npm}

// Errors for dependency specs.
var (
	ErrUnknownManager = errors.New("unknown package manager")
	ErrInvalidSpec    = errors.New("invalid dependency")
)

// ParseManager parses a package manager name.
func ParseManager(s string) (Manager, error) {
	switch m := Manager(strings.ToLower(strings.TrimSpace(s))); m {
	case Npm, Cargo:
		return m, nil
	default:
		return "", errors.Wrapf(ErrUnknownManager, "%q, expected npm or cargo", s)
	}
}

// Tool is a tool cairn ships a default version of.
type Tool struct {
	Name    string
	Version string
	// Constraint is the range of versions cairn works with.
	Constraint string
}

var defaults = map[Manager][]Tool{
	Npm: {
		{Name: "@fluencelabs/aqua", Version: "0.14.2", Constraint: "^0.14.0"},
		{Name: "@fluencelabs/aqua-lib", Version: "0.9.1", Constraint: ">=0.9.0 <0.10.0"},
		{Name: "@fluencelabs/spell", Version: "0.6.9", Constraint: "^0.6.0"},
	},
	Cargo: {
		{Name: "marine", Version: "0.19.0", Constraint: ">=0.19.0 <0.21.0"},
		{Name: "mrepl", Version: "0.27.0", Constraint: "^0.27.0"},
	},
}

// Defaults returns the tools cairn ships for m.
func Defaults(m Manager) []Tool {
	return slices.Clone(defaults[m])
}

func defaultTool(m Manager, name string) (Tool, bool) {
	for _, t := range defaults[m] {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// Spec is a dependency written as name@version.
type Spec struct {
	Name    string
	Version string
}

func (s Spec) String() string {
	if s.Version == "" {
		return s.Name
	}
	return s.Name + "@" + s.Version
}

// ParseSpec parses "name@version" or "name". Scoped npm names such as
// "@scope/pkg@1.0.0" keep their leading "@". The version, when present,
// must be an exact semantic version.
func ParseSpec(s string) (Spec, error) {
	s = strings.TrimSpace(s)
	name, version := s, ""
	if i := strings.LastIndex(s, "@"); i > 0 {
		name, version = s[:i], s[i+1:]
		if version == "" {
			return Spec{}, errors.Wrapf(ErrInvalidSpec, "%q has an empty version", s)
		}
	}
	if name == "" || name == "@" {
		return Spec{}, errors.Wrapf(ErrInvalidSpec, "%q has no name", s)
	}
	if version != "" {
		v, err := semver.StrictNewVersion(version)
		if err != nil {
			return Spec{}, errors.Wrapf(ErrInvalidSpec, "%q: %v", s, err)
		}
		version = v.String()
	}
	return Spec{Name: name, Version: version}, nil
}

// Resolved is the version a project uses for one tool.
type Resolved struct {
	Manager Manager `json:"manager"`
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Default string  `json:"default,omitempty"`
	Pinned  bool    `json:"pinned"`
	// Compatible is false when a pin falls outside the range cairn supports.
	Compatible bool `json:"compatible"`
}

// Resolve merges cairn's defaults with the pins in cfg. Pins win. The result
// is ordered by manager, then name.
func Resolve(cfg *project.Config) ([]Resolved, error) {
	var out []Resolved
	for _, m := range Managers {
		pins := pinsFor(cfg, m)

		names := map[string]bool{}
		for _, t := range defaults[m] {
			names[t.Name] = true
		}
		for name := range pins {
			names[name] = true
		}

		for _, name := range slices.Sorted(maps.Keys(names)) {
			r := Resolved{Manager: m, Name: name, Compatible: true}
			tool, known := defaultTool(m, name)
			if known {
				r.Version = tool.Version
				r.Default = tool.Version
			}
			if pin, ok := pins[name]; ok {
				r.Version = pin
				r.Pinned = true
				if known && tool.Constraint != "" {
					ok, err := satisfies(pin, tool.Constraint)
					if err != nil {
						return nil, errors.Wrapf(err, "%s %s", m, name)
					}
					r.Compatible = ok
				}
			}
			out = append(out, r)
		}
	}
	return out, nil
}

func pinsFor(cfg *project.Config, m Manager) map[string]string {
	if cfg == nil {
		return nil
	}
	switch m {
	case Npm:
		return cfg.Dependencies.Npm
	case Cargo:
		return cfg.Dependencies.Cargo
	default:
		return nil
	}
}

func satisfies(version, constraint string) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, errors.Wrapf(err, "version %q", version)
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, errors.Wrapf(err, "constraint %q", constraint)
	}
	return c.Check(v), nil
}

// Pin records spec for manager m in the project config behind h and commits
// it. A spec without a version pins cairn's default version.
func Pin(ctx context.Context, h *configfile.Handle[project.Config], m Manager, spec Spec) (Spec, error) {
	if spec.Version == "" {
		tool, ok := defaultTool(m, spec.Name)
		if !ok {
			return Spec{}, errors.Wrapf(ErrInvalidSpec, "%s has no default version, use %s@<version>", spec.Name, spec.Name)
		}
		spec.Version = tool.Version
	}

	deps := &h.Config.Dependencies
	switch m {
	case Npm:
		if deps.Npm == nil {
			deps.Npm = map[string]string{}
		}
		deps.Npm[spec.Name] = spec.Version
	case Cargo:
		if deps.Cargo == nil {
			deps.Cargo = map[string]string{}
		}
		deps.Cargo[spec.Name] = spec.Version
	default:
		return Spec{}, errors.Wrapf(ErrUnknownManager, "%q", m)
	}

	if err := h.Commit(ctx); err != nil {
		return Spec{}, err
	}
	logging.FromContext(ctx).Info("pinned dependency", "manager", m, "dependency", spec.String())
	return spec, nil
}
