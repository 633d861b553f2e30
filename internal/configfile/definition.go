package configfile

import (
	"context"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/paths"
)

// Schema is a JSON Schema document accepting exactly one config version.
type Schema struct {
	Version  int
	Document map[string]any
}

// Migration turns a config at version N into a config at version N+1.
// It may modify and return its input.
type Migration func(ctx context.Context, cfg map[string]any) (map[string]any, error)

// Generator returns the YAML body of a config file created from defaults.
type Generator func(ctx context.Context) (string, error)

// SemanticValidator checks rules a schema cannot express on a config that
// already matches the latest schema.
type SemanticValidator[T any] func(cfg *T, path string) error

// Definition describes one kind of versioned config file.
type Definition[T any] struct {
	// Name is the logical config name. It also names the schema file.
	Name string

	// FileName is the default file name, e.g. "provider.yaml".
	FileName string

	// Description is written as a comment into newly created files.
	Description string

	// DocsURL is linked from newly created files when set.
	DocsURL string

	// Schemas holds one schema per accepted version in ascending version
	// order. The last schema is the latest one.
	Schemas []Schema

	// Migrations[i] migrates version i to version i+1. With at least one
	// migration the latest schema's version must be len(Migrations).
	Migrations []Migration

	// Default generates the body of a missing file. Optional.
	Default Generator

	// Validate runs after schema validation. Optional.
	Validate SemanticValidator[T]

	// SchemaDir overrides where the JSON Schema file is written. Relative
	// paths are resolved against the config's directory. Defaults to
	// "schemas".
	SchemaDir string
}

// LatestVersion returns the version every loaded config ends up at.
func (d *Definition[T]) LatestVersion() int {
	if len(d.Schemas) == 0 {
		return len(d.Migrations)
	}
	return d.Schemas[len(d.Schemas)-1].Version
}

func (d *Definition[T]) check() error {
	if d.Name == "" {
		return errors.Wrap(errors.ErrMissingName, "config definition")
	}
	if !paths.IsYAMLFile(d.FileName) {
		return errors.Newf("config %q: file name %q must end in .yaml or .yml", d.Name, d.FileName)
	}
	if len(d.Schemas) == 0 {
		return errors.Newf("config %q: at least one schema is required", d.Name)
	}
	prev := -1
	for i, s := range d.Schemas {
		if s.Version <= prev {
			return errors.Newf("config %q: schema at index %d has version %d, want a version above %d",
				d.Name, i, s.Version, prev)
		}
		if s.Document == nil {
			return errors.Newf("config %q: schema for version %d is empty", d.Name, s.Version)
		}
		prev = s.Version
	}
	if len(d.Migrations) > 0 && prev != len(d.Migrations) {
		return errors.Newf("config %q: %d migrations lead to version %d but the latest schema is version %d",
			d.Name, len(d.Migrations), len(d.Migrations), prev)
	}
	return nil
}

// Version is a config version that decodes from either a YAML integer or a
// numeric string and always encodes as an integer.
type Version int

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Version) UnmarshalYAML(node *yaml.Node) error {
	n, err := strconv.Atoi(strings.TrimSpace(node.Value))
	if err != nil {
		return errors.Newf("line %d: version %q is not an integer", node.Line, node.Value)
	}
	*v = Version(n)
	return nil
}

// parseVersion reads a version from a decoded YAML or JSON value.
func parseVersion(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, errors.Newf("version %v is not an integer", v)
		}
		return int(v), nil
	case Version:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, errors.Newf("version %q is not an integer", v)
		}
		return n, nil
	case nil:
		return 0, errors.New("version is required")
	default:
		return 0, errors.Newf("version has unsupported type %T", raw)
	}
}
