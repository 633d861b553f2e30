package config

import (
	"context"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/cairn/internal/configfile"
	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/paths"
)

// Name is the logical config name of the user preferences.
const Name = "user"

// DocsURL documents the user config file.
const DocsURL = "https://github.com/thoreinstein/cairn/blob/main/docs/configs/user.md"

// Preference keys, as written in the file and read through viper.
const (
	KeyDocsInConfigs = "docs_in_configs"
	KeyDefaultEnv    = "default_env"
	KeyAutoInstall   = "auto_install"
)

// Environments lists the deployment environments cairn knows about.
var Environments = []string{"local", "stage", "testnet", "mainnet"}

// Config is the latest shape of the user config file. Every preference is
// optional; unset ones are nil or empty and fall back to viper's defaults.
type Config struct {
	Version       configfile.Version `mapstructure:"version" yaml:"version"`
	DocsInConfigs *bool              `mapstructure:"docs_in_configs" yaml:"docs_in_configs,omitempty"`
	DefaultEnv    string             `mapstructure:"default_env" yaml:"default_env,omitempty"`
	AutoInstall   *bool              `mapstructure:"auto_install" yaml:"auto_install,omitempty"`
}

// Init sets up viper's environment binding and defaults.
// Call this once at application startup before accessing preferences.
func Init() {
	viper.SetEnvPrefix("CAIRN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(KeyDocsInConfigs, false)
	viper.SetDefault(KeyDefaultEnv, "local")
	viper.SetDefault(KeyAutoInstall, true)
}

// Definition describes the user config file.
func Definition() configfile.Definition[Config] {
	return configfile.Definition[Config]{
		Name:        Name,
		FileName:    paths.UserConfigName,
		Description: "Global cairn preferences",
		DocsURL:     DocsURL,
		Schemas:     []configfile.Schema{schemaV0(), schemaV1()},
		Migrations:  []configfile.Migration{migrateV0},
		Default:     defaultConfig,
	}
}

// NewLoader returns a loader for the user config.
func NewLoader(store *configfile.Store) (*configfile.Loader[Config], error) {
	return configfile.NewLoader(store, Definition())
}

// Load reads the user config in dir, creating it when missing, merges it
// into viper and returns the effective preferences.
func Load(ctx context.Context, store *configfile.Store, dir string) (*Config, error) {
	l, err := NewLoader(store)
	if err != nil {
		return nil, err
	}
	doc, err := l.LoadOrCreate(ctx, dir)
	if err != nil {
		return nil, err
	}

	if err := viper.MergeConfigMap(fileValues(doc.Value())); err != nil {
		return nil, errors.Wrap(err, "merging user config")
	}

	return Effective(), nil
}

// Effective returns the preferences as viper resolves them: environment
// first, then the user config, then defaults.
func Effective() *Config {
	return &Config{
		Version:       configfile.Version(len(Definition().Migrations)),
		DocsInConfigs: boolPtr(viper.GetBool(KeyDocsInConfigs)),
		DefaultEnv:    viper.GetString(KeyDefaultEnv),
		AutoInstall:   boolPtr(viper.GetBool(KeyAutoInstall)),
	}
}

// fileValues returns the preferences cfg sets. Unset ones are left out so
// viper keeps resolving them from its defaults.
func fileValues(cfg Config) map[string]any {
	values := make(map[string]any, 3)
	if cfg.DocsInConfigs != nil {
		values[KeyDocsInConfigs] = *cfg.DocsInConfigs
	}
	if cfg.DefaultEnv != "" {
		values[KeyDefaultEnv] = cfg.DefaultEnv
	}
	if cfg.AutoInstall != nil {
		values[KeyAutoInstall] = *cfg.AutoInstall
	}
	return values
}

// DocsInConfigs reports whether new config files get a full documentation
// header.
func DocsInConfigs() bool {
	return viper.GetBool(KeyDocsInConfigs)
}

// AutoInstall reports whether missing tools are installed before use.
func AutoInstall() bool {
	return viper.GetBool(KeyAutoInstall)
}

func boolPtr(b bool) *bool {
	return &b
}

func defaultConfig(context.Context) (string, error) {
	return "version: 1\n" +
		KeyDocsInConfigs + ": false\n" +
		KeyDefaultEnv + ": local\n" +
		KeyAutoInstall + ": true\n", nil
}
