// Package config manages cairn's own user preferences.
//
// Preferences live in a versioned config file, by default
// ~/.config/cairn/config.yaml, handled by the configfile package like every
// other cairn config. Viper layers CAIRN_* environment variables and built-in
// defaults over the file:
//
//	version: 1
//	docs_in_configs: false   # write full docs into new config files
//	default_env: local       # local, stage, testnet or mainnet
//	auto_install: true       # install missing tools before running them
//
// Every key but version is optional. An unset key stays out of the file on
// commit and resolves to its default.
//
// # Loading Preferences
//
// Call [Init] once at startup, then [Load] to read (or create) the file and
// merge it into viper:
//
//	config.Init()
//	prefs, err := config.Load(ctx, store, paths.UserConfigDir())
//
// [DocsInConfigs] reads the effective docs_in_configs preference and is what
// the config store consults when it creates new files.
//
// # Changing Preferences
//
// [Set] validates and applies one key on a mutable handle; the caller
// commits it:
//
//	h, err := config.NewLoader(store).Ensure(ctx, dir)
//	if err := config.Set(h.Config, "default_env", "testnet"); err != nil {
//	    return err
//	}
//	return h.Commit(ctx)
package config
