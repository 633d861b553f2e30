package project

import (
	"context"

	"github.com/thoreinstein/cairn/internal/configfile"
)

var versionProperty = map[string]any{
	"type":        []any{"integer", "string"},
	"description": "Config version, managed by cairn",
}

func pinsProperty(description string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"description":          description,
		"additionalProperties": map[string]any{"type": "string", "description": "Pinned version"},
	}
}

func schemaV0() configfile.Schema {
	return configfile.Schema{
		Version: 0,
		Document: map[string]any{
			"type":     "object",
			"required": []any{"version", "name"},
			"properties": map[string]any{
				"version":           versionProperty,
				"name":              map[string]any{"type": "string"},
				"npmDependencies":   pinsProperty("npm version pins"),
				"cargoDependencies": pinsProperty("cargo version pins"),
				"relaysPath":        map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		},
	}
}

func schemaV1() configfile.Schema {
	return configfile.Schema{
		Version: 1,
		Document: map[string]any{
			"type":     "object",
			"required": []any{"version", "name"},
			"properties": map[string]any{
				"version":      versionProperty,
				"name":         map[string]any{"type": "string"},
				"dependencies": dependenciesProperty(),
				"relaysPath":   map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		},
	}
}

func schemaV2() configfile.Schema {
	return configfile.Schema{
		Version: 2,
		Document: map[string]any{
			"$schema":     "http://json-schema.org/draft-07/schema#",
			"title":       "cairn project config",
			"description": "Defines a cairn project",
			"type":        "object",
			"required":    []any{"version", "name"},
			"properties": map[string]any{
				"version": versionProperty,
				"name": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Project name",
				},
				"dependencies": dependenciesProperty(),
				"toolchain": map[string]any{
					"type":                 "object",
					"description":          "Compiler toolchains",
					"additionalProperties": false,
					"properties": map[string]any{
						"rust": map[string]any{
							"type":        "string",
							"description": "Rust channel or version, e.g. stable or 1.75.0",
						},
					},
				},
			},
			"additionalProperties": false,
		},
	}
}

func dependenciesProperty() map[string]any {
	return map[string]any{
		"type":                 "object",
		"description":          "Version pins that override cairn's defaults",
		"additionalProperties": false,
		"properties": map[string]any{
			"npm":   pinsProperty("npm packages by name"),
			"cargo": pinsProperty("cargo crates by name"),
		},
	}
}

// migrateV0 groups the per-manager dependency maps under dependencies.
func migrateV0(_ context.Context, cfg map[string]any) (map[string]any, error) {
	deps := map[string]any{}
	if npm, ok := cfg["npmDependencies"]; ok {
		deps["npm"] = npm
		delete(cfg, "npmDependencies")
	}
	if cargo, ok := cfg["cargoDependencies"]; ok {
		deps["cargo"] = cargo
		delete(cfg, "cargoDependencies")
	}
	if len(deps) > 0 {
		cfg["dependencies"] = deps
	}
	return cfg, nil
}

// migrateV1 drops relaysPath and selects the default Rust toolchain.
func migrateV1(_ context.Context, cfg map[string]any) (map[string]any, error) {
	delete(cfg, "relaysPath")
	if _, ok := cfg["toolchain"]; !ok {
		cfg["toolchain"] = map[string]any{"rust": DefaultRustToolchain}
	}
	return cfg, nil
}
