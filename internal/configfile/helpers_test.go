package configfile

import (
	"context"
	"testing"

	"github.com/spf13/afero"
)

// countingFs counts completed atomic writes, which always end in a rename.
type countingFs struct {
	afero.Fs
	renames []string
}

func (c *countingFs) Rename(oldname, newname string) error {
	c.renames = append(c.renames, newname)
	return c.Fs.Rename(oldname, newname)
}

func writeFile(t *testing.T, fs afero.Fs, path, text string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(text), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return string(data)
}

var versionProp = map[string]any{
	"type":        []any{"integer", "string"},
	"description": "Config version",
}

// fooConfig is a config with one schema at version 1 and no migrations.
type fooConfig struct {
	Version Version `yaml:"version"`
	Bar     float64 `yaml:"bar"`
}

func fooDefinition(defaultBody string) Definition[fooConfig] {
	def := Definition[fooConfig]{
		Name:        "foo",
		FileName:    "foo.yaml",
		Description: "Foo settings",
		DocsURL:     "https://example.com/foo",
		Schemas: []Schema{{
			Version: 1,
			Document: map[string]any{
				"$schema":              "http://json-schema.org/draft-07/schema#",
				"type":                 "object",
				"additionalProperties": false,
				"required":             []any{"version", "bar"},
				"properties": map[string]any{
					"version": versionProp,
					"bar":     map[string]any{"type": "number", "description": "How much bar"},
				},
			},
		}},
	}
	if defaultBody != "" {
		def.Default = func(context.Context) (string, error) {
			return defaultBody, nil
		}
	}
	return def
}

// bookConfig is the latest shape of a config with three versions.
type bookConfig struct {
	Version Version  `yaml:"version"`
	Title   string   `yaml:"title"`
	Tags    []string `yaml:"tags"`
}

func bookSchema(version int, required []any, props map[string]any) Schema {
	props["version"] = versionProp
	return Schema{
		Version: version,
		Document: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             required,
			"properties":           props,
		},
	}
}

// bookDefinition records the index of every migration it runs in calls.
func bookDefinition(calls *[]int) Definition[bookConfig] {
	return Definition[bookConfig]{
		Name:     "book",
		FileName: "book.yaml",
		Schemas: []Schema{
			bookSchema(0, []any{"version", "name"}, map[string]any{
				"name": map[string]any{"type": "string"},
			}),
			bookSchema(1, []any{"version", "title"}, map[string]any{
				"title": map[string]any{"type": "string"},
			}),
			bookSchema(2, []any{"version", "title", "tags"}, map[string]any{
				"title": map[string]any{"type": "string", "minLength": 1},
				"tags":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}),
		},
		Migrations: []Migration{
			func(_ context.Context, cfg map[string]any) (map[string]any, error) {
				*calls = append(*calls, 0)
				cfg["title"] = cfg["name"]
				delete(cfg, "name")
				return cfg, nil
			},
			func(_ context.Context, cfg map[string]any) (map[string]any, error) {
				*calls = append(*calls, 1)
				cfg["tags"] = []any{}
				return cfg, nil
			},
		},
	}
}

func newTestLoader[T any](t *testing.T, fs afero.Fs, def Definition[T], opts ...Option) *Loader[T] {
	t.Helper()
	store := NewStore(append([]Option{WithFs(fs)}, opts...)...)
	l, err := NewLoader(store, def)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	return l
}
