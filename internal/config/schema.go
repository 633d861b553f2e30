package config

import (
	"context"

	"github.com/thoreinstein/cairn/internal/configfile"
)

func envNames() []any {
	out := make([]any, len(Environments))
	for i, e := range Environments {
		out[i] = e
	}
	return out
}

var versionProperty = map[string]any{
	"type":        []any{"integer", "string"},
	"description": "Config version, managed by cairn",
}

func schemaV0() configfile.Schema {
	return configfile.Schema{
		Version: 0,
		Document: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []any{"version"},
			"properties": map[string]any{
				"version":       versionProperty,
				"docsInConfigs": map[string]any{"type": "boolean"},
				"env":           map[string]any{"type": "string", "enum": envNames()},
			},
		},
	}
}

func schemaV1() configfile.Schema {
	return configfile.Schema{
		Version: 1,
		Document: map[string]any{
			"$schema":              "http://json-schema.org/draft-07/schema#",
			"title":                "cairn user config",
			"description":          "Global cairn preferences",
			"type":                 "object",
			"additionalProperties": false,
			"required":             []any{"version"},
			"properties": map[string]any{
				"version": versionProperty,
				KeyDocsInConfigs: map[string]any{
					"type":        "boolean",
					"description": "Write full property documentation into newly created config files",
				},
				KeyDefaultEnv: map[string]any{
					"type":        "string",
					"enum":        envNames(),
					"description": "Environment used when a command does not name one",
				},
				KeyAutoInstall: map[string]any{
					"type":        "boolean",
					"description": "Install missing tools before running them",
				},
			},
		},
	}
}

// migrateV0 renames the camel-case keys and turns on auto install.
func migrateV0(_ context.Context, cfg map[string]any) (map[string]any, error) {
	if v, ok := cfg["docsInConfigs"]; ok {
		cfg[KeyDocsInConfigs] = v
		delete(cfg, "docsInConfigs")
	}
	if v, ok := cfg["env"]; ok {
		cfg[KeyDefaultEnv] = v
		delete(cfg, "env")
	}
	if _, ok := cfg[KeyAutoInstall]; !ok {
		cfg[KeyAutoInstall] = true
	}
	return cfg, nil
}
